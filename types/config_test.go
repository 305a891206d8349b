package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parts.dev/tagger/evaluation"
)

func writeFile(t *testing.T, dir, name, content string) {
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestParseProfile(t *testing.T) {
	profile, err := ParseProfile("wsj", []byte(`
corpus:
  path: /data/treebank3.2.txt
seed: 7
parallelism: 4
save_model: wsj-full
`))
	require.NoError(t, err)
	assert.Equal(t, Profile{
		Name:        "wsj",
		Corpus:      CorpusConfig{Source: CorpusSourceFile, Path: "/data/treebank3.2.txt"},
		Folds:       evaluation.DefaultFolds,
		Seed:        7,
		Parallelism: 4,
		SaveModel:   "wsj-full",
	}, profile)
}

func TestParseProfileInvalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "corpus: [",
		"no path":        "folds: 3",
		"unknown source": "corpus: {source: ftp, path: x}",
		"one fold":       "corpus: {path: x}\nfolds: 1",
		"negative":       "corpus: {path: x}\nparallelism: -1",
	}
	for name, content := range cases {
		_, err := ParseProfile(name, []byte(content))
		assert.ErrorIs(t, err, ErrInvalidProfile, name)
	}
}

func TestLoadProfiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "corpus: {source: s3, path: corpora/wsj.txt}\nfolds: 5\n")
	writeFile(t, dir, "a.yaml", "corpus: {path: /data/wsj.txt}\n")
	writeFile(t, dir, "broken.yaml", "folds: 3\n")
	writeFile(t, dir, "notes.txt", "corpus: {path: ignored}\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	profiles, err := LoadProfiles(dir)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "a", profiles[0].Name)
	assert.Equal(t, filepath.Join(dir, "a.yaml"), profiles[0].FilePath)
	assert.Equal(t, evaluation.DefaultFolds, profiles[0].Folds)
	assert.Equal(t, "b", profiles[1].Name)
	assert.Equal(t, CorpusSourceS3, profiles[1].Corpus.Source)
	assert.Equal(t, 5, profiles[1].Folds)

	_, err = LoadProfiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
