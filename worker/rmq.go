package worker

import (
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"parts.dev/tagger/rmq"
)

type rmqTransactions interface {
	publishResult(delivery *amqp.Delivery, body []byte) error
	acknowledgeDelivery(delivery *amqp.Delivery) error
	rejectDelivery(delivery *amqp.Delivery, partsLogger *zerolog.Logger)
	getDeliveriesCh() <-chan amqp.Delivery
	getReqChanErrorsCh() <-chan *amqp.Error
	getRespChanErrorsCh() <-chan *amqp.Error
	close()
}

type rmqClientWrapper struct {
	rmqClient *rmq.Client
}

func (wrapper *rmqClientWrapper) close() {
	wrapper.rmqClient.Close()
}

func (wrapper *rmqClientWrapper) getDeliveriesCh() <-chan amqp.Delivery {
	return wrapper.rmqClient.Deliveries
}

func (wrapper *rmqClientWrapper) getReqChanErrorsCh() <-chan *amqp.Error {
	return wrapper.rmqClient.ReqChanErrors
}

func (wrapper *rmqClientWrapper) getRespChanErrorsCh() <-chan *amqp.Error {
	return wrapper.rmqClient.RespChanErrors
}

func (wrapper *rmqClientWrapper) publishResult(delivery *amqp.Delivery, body []byte) error {
	return wrapper.rmqClient.SendResult(
		delivery.ReplyTo,
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: delivery.CorrelationId,
			Body:          body,
		},
	)
}

func (wrapper *rmqClientWrapper) acknowledgeDelivery(delivery *amqp.Delivery) error {
	return delivery.Ack(false)
}

// rejectDelivery requeues a delivery the first time it fails and drops it
// after that.
func (wrapper *rmqClientWrapper) rejectDelivery(delivery *amqp.Delivery, partsLogger *zerolog.Logger) {
	if delivery.Redelivered {
		partsLogger.Info().Msg("Rejecting delivery as it already has been redelivered")
		if err := delivery.Reject(false); err != nil {
			partsLogger.Err(err).Msg("Failed to reject delivery")
		}
		return
	}
	partsLogger.Info().Msg("Requeuing delivery as it has not been redelivered yet")
	if err := delivery.Reject(true); err != nil {
		partsLogger.Err(err).Msg("Failed to requeue delivery")
	}
}
