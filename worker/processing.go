package worker

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"parts.dev/tagger/pipeline"
)

var (
	errPipelineClosed  = errors.New("pipeline channel was closed before returning a result")
	errPipelineTimeout = errors.New("pipeline did not return a result in time")
)

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	taskLogger := worker.partsLogger.With().
		Str("correlation_id", delivery.CorrelationId).
		Logger()

	request, err := parseRequest(delivery)
	if err != nil {
		taskLogger.Err(err).Msg("Could not parse tagging request")
		worker.rmq.rejectDelivery(delivery, &taskLogger)
		return
	}
	taskLogger = taskLogger.With().Str("id", request.ID).Logger()
	taskLogger.Info().Int("words", len(request.Tokens())).Msg("Started tagging task")

	result, err := worker.runPipeline(request)
	if err != nil {
		taskLogger.Err(err).Msg("Tagging task failed")
		worker.rmq.rejectDelivery(delivery, &taskLogger)
		return
	}
	if result.Err != nil {
		// published as an error result, not retried
		taskLogger.Err(result.Err).Msg("Pipeline returned an error result")
	}

	if err := worker.sendResult(delivery, result, &taskLogger); err != nil {
		worker.rmq.rejectDelivery(delivery, &taskLogger)
		return
	}
	if err := worker.rmq.acknowledgeDelivery(delivery); err != nil {
		taskLogger.Err(err).Msg("Failed to acknowledge delivery")
		return
	}
	taskLogger.Info().Msg("Finished tagging task")
}

func parseRequest(delivery *amqp.Delivery) (pipeline.Request, error) {
	var request pipeline.Request
	if err := json.Unmarshal(delivery.Body, &request); err != nil {
		return request, fmt.Errorf("unmarshal request: %w", err)
	}
	if request.ID == "" {
		request.ID = delivery.CorrelationId
	}
	return request, nil
}

func (worker *Worker) runPipeline(request pipeline.Request) (pipeline.Result, error) {
	timer := time.NewTimer(worker.config.ResultTimeout)
	defer timer.Stop()

	select {
	case result, ok := <-worker.ppln(request):
		if !ok {
			return pipeline.Result{}, errPipelineClosed
		}
		return result, nil
	case <-timer.C:
		return pipeline.Result{}, errPipelineTimeout
	}
}

func (worker *Worker) sendResult(delivery *amqp.Delivery, result pipeline.Result, taskLogger *zerolog.Logger) error {
	body, err := json.Marshal(result)
	if err != nil {
		taskLogger.Err(err).Msg("Failed to marshal result")
		return err
	}
	if err := worker.rmq.publishResult(delivery, body); err != nil {
		taskLogger.Err(err).Msg("Failed to publish result")
		return err
	}
	return nil
}
