package worker

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"parts.dev/tagger/pipeline"
)

type failingMethod struct {
	fail bool
}

type pipelineMock struct {
	ppln   pipeline.Pipeline
	config pipelineMockConfig
	calls  pipelineCall
}

type pipelineMockConfig struct {
	closed bool
	hang   bool
	result pipeline.Result
}

type pipelineCall struct {
	pipeline bool
	request  pipeline.Request
}

type rmqMock struct {
	config    rmqMockConfig
	calls     rmqMockCalls
	published []byte
}

type rmqMockConfig struct {
	publishResult       failingMethod
	acknowledgeDelivery failingMethod
}

type rmqMockCalls struct {
	publishResult       bool
	acknowledgeDelivery bool
	rejectDelivery      bool
}

func (mock *rmqMock) close() {}

func getPipelineMock(config pipelineMockConfig) *pipelineMock {
	mock := pipelineMock{config: config}
	mock.ppln = func(request pipeline.Request) <-chan pipeline.Result {
		mock.calls.pipeline = true
		mock.calls.request = request
		ch := make(chan pipeline.Result, 1)
		switch {
		case mock.config.hang:
		case mock.config.closed:
			close(ch)
		default:
			res := mock.config.result
			res.ID = request.ID
			ch <- res
			close(ch)
		}
		return ch
	}
	return &mock
}

func (mock *rmqMock) publishResult(_ *amqp.Delivery, body []byte) error {
	mock.calls.publishResult = true
	if mock.config.publishResult.fail {
		return errors.New("publishResult failed")
	}
	mock.published = body
	return nil
}

func (mock *rmqMock) acknowledgeDelivery(*amqp.Delivery) error {
	mock.calls.acknowledgeDelivery = true
	if mock.config.acknowledgeDelivery.fail {
		return errors.New("acknowledgeDelivery failed")
	}
	return nil
}

func (mock *rmqMock) rejectDelivery(*amqp.Delivery, *zerolog.Logger) {
	mock.calls.rejectDelivery = true
}

func (mock *rmqMock) getDeliveriesCh() <-chan amqp.Delivery {
	return nil
}

func (mock *rmqMock) getReqChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) getRespChanErrorsCh() <-chan *amqp.Error {
	return nil
}
