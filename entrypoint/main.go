package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"parts.dev/tagger/api"
	"parts.dev/tagger/evaluation"
	"parts.dev/tagger/logger"
	"parts.dev/tagger/pipeline"
	"parts.dev/tagger/pos"
	"parts.dev/tagger/types"
	"parts.dev/tagger/worker"
)

type Config struct {
	CorpusPath    string `envconfig:"PARTS_CORPUS_PATH"`
	CorpusS3Key   string `envconfig:"PARTS_CORPUS_S3_KEY"`
	ProfilesPath  string `envconfig:"PARTS_PROFILES_PATH"`
	ModelName     string `envconfig:"PARTS_MODEL_NAME" default:"default"`
	ModelStore    string `envconfig:"PARTS_MODEL_STORE" default:"file"`
	ModelDir      string `envconfig:"PARTS_MODEL_DIR" default:"models"`
	RestAPIActive bool   `envconfig:"PARTS_REST_API_ACTIVE" default:"false"`
	RestAPIPort   string `envconfig:"PARTS_REST_API_PORT" default:"10000"`
	WorkerActive  bool   `envconfig:"PARTS_WORKER_ACTIVE" default:"true"`
}

const modelLoadMaxRetries = 5

func main() {
	logger.SetupLogging()
	partsLogger := logger.NewLogger("Main")
	fatalErrLogger := partsLogger.Fatal().Caller()
	evaluate := flag.Bool("evaluate", false, "run cross validation for every profile and exit")
	train := flag.Bool("train", false, "train a model from the configured corpus, save it and exit")
	flag.Parse()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}

	ctx := context.Background()

	if *evaluate {
		if err := runEvaluation(ctx, config); err != nil {
			fatalErrLogger.Err(err).Msg("Evaluation failed")
			os.Exit(1)
		}
		return
	}

	if *train {
		if err := runTraining(ctx, config); err != nil {
			fatalErrLogger.Err(err).Msg("Training failed")
			os.Exit(1)
		}
		return
	}

	store, err := newStore(config.ModelStore, config.ModelDir)
	if err != nil {
		fatalErrLogger.Err(err).Msg("Failed to open model store")
		os.Exit(1)
	}

	var model *pos.Model
	for retry := 0; retry < modelLoadMaxRetries; retry++ {
		model, err = store.Load(ctx, config.ModelName)
		if err == nil {
			break
		}
		partsLogger.Err(err).Str("model", config.ModelName).Msg("Failed to load model. Retrying in 5 sec")
		time.Sleep(5 * time.Second)
	}
	if model == nil {
		fatalErrLogger.Msgf("Could not load model after %d retries, exiting", modelLoadMaxRetries)
		os.Exit(1)
	}

	ppln, err := pipeline.NewTagging(model)
	if err != nil {
		fatalErrLogger.Err(err).Msg("Failed to start tagging pipeline")
		os.Exit(1)
	}

	if config.RestAPIActive {
		serve := func() {
			partsLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Pipeline: ppln,
			}
			http.HandleFunc("/", apiRequest.ProcessData)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			partsLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
		}
		if !config.WorkerActive {
			serve()
			return
		}
		go serve()
	}

	if !config.WorkerActive {
		partsLogger.Warn().Msg("Neither the REST API nor the worker is active, exiting")
		return
	}

	partsLogger.Info().Msg("Start tagging worker")
	for {
		rmqWorker, err := worker.New(ppln)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			partsLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}

func runTraining(ctx context.Context, config Config) error {
	partsLogger := logger.NewLogger("Training")

	corpus := types.CorpusConfig{Source: types.CorpusSourceFile, Path: config.CorpusPath}
	if config.CorpusS3Key != "" {
		corpus = types.CorpusConfig{Source: types.CorpusSourceS3, Path: config.CorpusS3Key}
	}
	sentences, err := loadCorpus(ctx, corpus)
	if err != nil {
		return err
	}
	model, err := pos.Train(sentences)
	if err != nil {
		return err
	}
	store, err := newStore(config.ModelStore, config.ModelDir)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, config.ModelName, model); err != nil {
		return err
	}
	partsLogger.Info().
		Str("model", config.ModelName).
		Int("sentences", len(sentences)).
		Int("tags", len(model.TagCounts)).
		Msg("Model saved")
	return nil
}

func runEvaluation(ctx context.Context, config Config) error {
	partsLogger := logger.NewLogger("Evaluation")

	if config.ProfilesPath == "" {
		return fmt.Errorf("PARTS_PROFILES_PATH is required for evaluation")
	}
	profiles, err := types.LoadProfiles(config.ProfilesPath)
	if err != nil {
		return err
	}
	partsLogger.Info().Msgf("Loaded %d profiles", len(profiles))

	for _, profile := range profiles {
		report, err := evaluateProfile(ctx, config, profile)
		if err != nil {
			return fmt.Errorf("profile %q: %w", profile.Name, err)
		}
		out, err := json.Marshal(struct {
			Profile string `json:"profile"`
			evaluation.Report
		}{profile.Name, report})
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
	return nil
}

func evaluateProfile(ctx context.Context, config Config, profile types.Profile) (evaluation.Report, error) {
	sentences, err := loadCorpus(ctx, profile.Corpus)
	if err != nil {
		return evaluation.Report{}, err
	}
	report, err := evaluation.CrossValidate(ctx, sentences, evaluation.Options{
		Folds:       profile.Folds,
		Seed:        profile.Seed,
		Parallelism: profile.Parallelism,
	})
	if err != nil {
		return evaluation.Report{}, err
	}
	if profile.SaveModel == "" {
		return report, nil
	}

	model, err := pos.Train(sentences)
	if err != nil {
		return evaluation.Report{}, err
	}
	store, err := newStore(config.ModelStore, config.ModelDir)
	if err != nil {
		return evaluation.Report{}, err
	}
	if err := store.Save(ctx, profile.SaveModel, model); err != nil {
		return evaluation.Report{}, err
	}
	return report, nil
}
