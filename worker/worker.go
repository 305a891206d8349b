package worker

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"parts.dev/tagger/logger"
	"parts.dev/tagger/pipeline"
	"parts.dev/tagger/rmq"
)

type Config struct {
	ResultTimeout time.Duration `envconfig:"PARTS_WORKER_RESULT_TIMEOUT" default:"30s"`
}

type Worker struct {
	config      Config
	rmq         rmqTransactions
	partsLogger *zerolog.Logger
	ppln        pipeline.Pipeline
}

func New(ppln pipeline.Pipeline) (*Worker, error) {
	partsLogger := logger.NewLogger("Worker")

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		partsLogger.Error().Err(err).Msg("Could not read config")
		return nil, err
	}

	worker := Worker{
		config:      config,
		partsLogger: &partsLogger,
		ppln:        ppln,
	}
	if err := worker.refreshRMQClient(); err != nil {
		partsLogger.Error().Err(err).Msg("Could not create RMQ client")
		return nil, err
	}
	return &worker, nil
}

// StartWorker consumes tagging requests until the RMQ client can no longer be
// refreshed.
func (worker *Worker) StartWorker() error {
	defer worker.Close()
	for {
		select {
		case delivery, ok := <-worker.rmq.getDeliveriesCh():
			if ok {
				go worker.processMessage(&delivery)
				continue
			}
			worker.partsLogger.Error().Msg("Deliveries channel closed, trying to refresh RMQ client")
			if err := worker.refreshRMQClient(); err != nil {
				return fmt.Errorf(
					"rmq deliveries channel has been closed and refresh returned error: %w",
					err,
				)
			}
		case rmqErr := <-worker.rmq.getRespChanErrorsCh():
			if rmqErr == nil {
				continue
			}
			worker.partsLogger.Err(rmqErr).Msg("Response connection received error, trying to refresh RMQ client")
			if err := worker.refreshRMQClient(); err != nil {
				return fmt.Errorf(
					"response connection received error and refresh failed with: %w",
					err,
				)
			}
		case rmqErr := <-worker.rmq.getReqChanErrorsCh():
			if rmqErr == nil {
				continue
			}
			worker.partsLogger.Err(rmqErr).Msg("Request connection received error, trying to refresh RMQ client")
			if err := worker.refreshRMQClient(); err != nil {
				return fmt.Errorf(
					"request connection received error and refresh failed with: %w",
					err,
				)
			}
		}
	}
}

func (worker *Worker) Close() {
	if worker.rmq != nil {
		worker.rmq.close()
	}
}

func (worker *Worker) refreshRMQClient() error {
	worker.partsLogger.Info().Msg("Refreshing RMQ client")
	if oldClient := worker.rmq; oldClient != nil {
		defer oldClient.close()
	}
	rmqClient, err := rmq.NewClient()
	if err != nil {
		worker.partsLogger.Err(err).Msg("Failed to refresh RMQ client")
		return err
	}
	worker.rmq = &rmqClientWrapper{rmqClient}
	worker.partsLogger.Info().Msg("Refreshed RMQ client")
	return nil
}
