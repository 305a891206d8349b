package types

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"parts.dev/tagger/evaluation"
	"parts.dev/tagger/logger"
)

const (
	CorpusSourceFile = "file"
	CorpusSourceS3   = "s3"
)

var ErrInvalidProfile = errors.New("invalid evaluation profile")

type CorpusConfig struct {
	Source string `yaml:"source" json:"source"`
	Path   string `yaml:"path" json:"path"`
}

// Profile describes one cross validation run.
type Profile struct {
	Name        string       `yaml:"-" json:"name"`
	FilePath    string       `yaml:"-" json:"file_path"`
	Corpus      CorpusConfig `yaml:"corpus" json:"corpus"`
	Folds       int          `yaml:"folds" json:"folds"`
	Seed        int64        `yaml:"seed" json:"seed"`
	Parallelism int          `yaml:"parallelism" json:"parallelism"`
	SaveModel   string       `yaml:"save_model" json:"save_model"`
}

func (p *Profile) applyDefaults() {
	if p.Corpus.Source == "" {
		p.Corpus.Source = CorpusSourceFile
	}
	if p.Folds == 0 {
		p.Folds = evaluation.DefaultFolds
	}
}

func (p Profile) Validate() error {
	switch {
	case p.Corpus.Source != CorpusSourceFile && p.Corpus.Source != CorpusSourceS3:
		return fmt.Errorf("%w %q: unknown corpus source %q", ErrInvalidProfile, p.Name, p.Corpus.Source)
	case p.Corpus.Path == "":
		return fmt.Errorf("%w %q: corpus path is required", ErrInvalidProfile, p.Name)
	case p.Folds < 2:
		return fmt.Errorf("%w %q: folds must be at least 2", ErrInvalidProfile, p.Name)
	case p.Parallelism < 0:
		return fmt.Errorf("%w %q: parallelism must not be negative", ErrInvalidProfile, p.Name)
	}
	return nil
}

func ParseProfile(name string, buf []byte) (Profile, error) {
	profile := Profile{Name: name}
	if err := yaml.Unmarshal(buf, &profile); err != nil {
		return Profile{}, fmt.Errorf("%w %q: %v", ErrInvalidProfile, name, err)
	}
	profile.applyDefaults()
	return profile, profile.Validate()
}

// LoadProfiles reads every *.yaml file of dirPath. Files that cannot be read
// or fail validation are logged and skipped. Profiles are sorted by name.
func LoadProfiles(dirPath string) ([]Profile, error) {
	partsLogger := logger.NewLogger("LoadProfiles")

	files, err := ioutil.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	profileChan := make(chan Profile, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(file os.FileInfo) {
			defer wg.Done()
			filePath := path.Join(dirPath, file.Name())
			buf, err := ioutil.ReadFile(filePath)
			if err != nil {
				partsLogger.Err(err).Str("file", filePath).Msg("Failed to read profile")
				return
			}
			profile, err := ParseProfile(strings.TrimSuffix(file.Name(), ".yaml"), buf)
			if err != nil {
				partsLogger.Err(err).Str("file", filePath).Msg("Skipping profile")
				return
			}
			profile.FilePath = filePath
			profileChan <- profile
		}(f)
	}

	go func() {
		wg.Wait()
		close(profileChan)
	}()

	profiles := make([]Profile, 0, len(files))
	for profile := range profileChan {
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}
