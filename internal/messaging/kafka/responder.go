package kafka

import (
	"context"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// RequestHandler обрабатывает входящий intent и возвращает тело ответа.
// Реализация обязана вернуть валидный конверт и для ошибочных запросов.
type RequestHandler func(pattern string, payload []byte) []byte

// Responder слушает топик входящих запросов и публикует ответы
// в reply-топик запрашивающей стороны.
type Responder struct {
	consumer *Consumer
	producer *Producer
	handler  RequestHandler
	logger   *log.Entry
}

// NewResponder создает responder поверх consumer group и producer'а.
func NewResponder(brokers []string, groupID, topic string, producer *Producer, handler RequestHandler) (*Responder, error) {
	responder := &Responder{
		producer: producer,
		handler:  handler,
		logger:   log.WithField("component", "kafka-responder"),
	}

	consumer, err := NewConsumer(brokers, groupID, []string{topic}, responder.handleMessage, false)
	if err != nil {
		return nil, err
	}
	responder.consumer = consumer
	return responder, nil
}

// Start запускает обработку входящих запросов.
func (r *Responder) Start(ctx context.Context) error {
	return r.consumer.Start(ctx)
}

// Stop останавливает обработку.
func (r *Responder) Stop() error {
	return r.consumer.Stop()
}

func (r *Responder) handleMessage(_ context.Context, message *sarama.ConsumerMessage) error {
	pattern := HeaderValue(message, HeaderPattern)
	correlationID := HeaderValue(message, HeaderCorrelationID)
	replyTo := HeaderValue(message, HeaderReplyTo)

	if replyTo == "" {
		r.logger.WithFields(log.Fields{
			"pattern": pattern,
			"topic":   message.Topic,
		}).Warn("request without reply-to header dropped")
		return nil
	}

	response := r.handler(pattern, message.Value)

	headers := []sarama.RecordHeader{
		{Key: []byte(HeaderCorrelationID), Value: []byte(correlationID)},
		{Key: []byte(HeaderPattern), Value: []byte(pattern)},
	}
	if err := r.producer.PublishMessage(replyTo, correlationID, response, headers); err != nil {
		r.logger.WithError(err).WithFields(log.Fields{
			"pattern":  pattern,
			"reply_to": replyTo,
		}).Error("failed to publish reply")
		return err
	}
	return nil
}
