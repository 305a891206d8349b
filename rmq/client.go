package rmq

import (
	"fmt"
	"io"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"parts.dev/tagger/logger"
)

type Config struct {
	Host                    string `envconfig:"PARTS_RMQ_HOST" required:"true"`
	Port                    string `envconfig:"PARTS_RMQ_PORT" required:"true"`
	Username                string `envconfig:"PARTS_RMQ_USERNAME" required:"true"`
	Password                string `envconfig:"PARTS_RMQ_PASSWORD" required:"true"`
	Exchange                string `envconfig:"PARTS_RMQ_EXCHANGE" default:"parts-default-exchange"`
	MaxParallelRequestCount int    `envconfig:"PARTS_RMQ_MAX_PARALLEL_REQUESTS" default:"5"`
	TagQueue                string `envconfig:"PARTS_TAG_QUEUE" required:"true"`
	ResultQueue             string `envconfig:"PARTS_RESULT_QUEUE" required:"true"`
}

type Client struct {
	Deliveries     <-chan amqp.Delivery
	ReqChanErrors  <-chan *amqp.Error
	RespChanErrors <-chan *amqp.Error
	config         Config
	reqConn        *amqp.Connection
	respConn       *amqp.Connection
	respChannel    *amqp.Channel
	partsLogger    *zerolog.Logger
}

func NewClient() (*Client, error) {
	partsLogger := logger.NewLogger("RMQ client")
	var err error
	var config Config
	if err = envconfig.Process("", &config); err != nil {
		partsLogger.Error().Err(err).Msg("Could not read env config")
		return nil, err
	}

	url := getURL(config)
	respConn, respChannel, err := setup(url)
	if err != nil {
		return nil, fmt.Errorf("failed connection: %w", err)
	}
	reqConn, reqChannel, err := setup(url)
	if err != nil {
		closeAll(respConn)
		return nil, fmt.Errorf("failed connection: %w", err)
	}

	deliveries, err := consume(reqChannel, config)
	if err != nil {
		closeAll(reqConn, respConn)
		return nil, err
	}
	reqChanErrors := reqChannel.NotifyClose(make(chan *amqp.Error))
	respChanErrors := respChannel.NotifyClose(make(chan *amqp.Error))

	partsLogger.Info().Str("queue", config.TagQueue).Msg("Consuming tagging requests")
	return &Client{
		Deliveries:     deliveries,
		ReqChanErrors:  reqChanErrors,
		RespChanErrors: respChanErrors,
		config:         config,
		reqConn:        reqConn,
		respConn:       respConn,
		respChannel:    respChannel,
		partsLogger:    &partsLogger,
	}, nil
}

// SendResult publishes to replyTo through the default exchange when the
// requester asked for a reply queue, and to the configured result queue
// otherwise.
func (c *Client) SendResult(replyTo string, msg amqp.Publishing) error {
	if replyTo != "" {
		return c.respChannel.Publish("", replyTo, false, false, msg)
	}
	return c.respChannel.Publish(
		c.config.Exchange,
		c.config.ResultQueue,
		false,
		false,
		msg)
}

func (c *Client) Close() {
	closeAll(c.reqConn, c.respConn)
}

type queueConsumer interface {
	QueueDeclarePassive(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

func consume(ch queueConsumer, config Config) (<-chan amqp.Delivery, error) {
	q, err := ch.QueueDeclarePassive(
		config.TagQueue, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(
		config.TagQueue,
		config.TagQueue,
		config.Exchange,
		false,
		nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	if err := ch.Qos(config.MaxParallelRequestCount, 0, false); err != nil {
		return nil, fmt.Errorf("qos: %w", err)
	}

	deliveries, err := ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume deliveries: %w", err)
	}
	return deliveries, nil
}

func closeAll(closers ...io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}

func getURL(config Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", config.Username, config.Password, config.Host, config.Port)
}

func setup(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}
