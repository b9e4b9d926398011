package kafka

import (
	"context"
	"sync"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// ReplyDispatcher маршрутизирует ответы request/reply обмена по correlation-id
// к ожидающим вызовам. Реализует MessageHandler для consumer'а reply-топика.
//
// Consumer group reply-топика должна быть уникальной для инстанса сервиса,
// иначе ответы распределятся между инстансами и не дойдут до ожидающего.
type ReplyDispatcher struct {
	mu      sync.Mutex
	waiters map[string]chan []byte
	logger  *log.Entry
}

// NewReplyDispatcher создает диспетчер ответов.
func NewReplyDispatcher() *ReplyDispatcher {
	return &ReplyDispatcher{
		waiters: make(map[string]chan []byte),
		logger:  log.WithField("component", "kafka-reply-dispatcher"),
	}
}

// Expect регистрирует ожидание ответа по correlation-id. Возвращённый cancel
// обязателен к вызову, иначе запись ожидания утечёт.
func (d *ReplyDispatcher) Expect(correlationID string) (<-chan []byte, func()) {
	ch := make(chan []byte, 1)

	d.mu.Lock()
	d.waiters[correlationID] = ch
	d.mu.Unlock()

	cancel := func() {
		d.mu.Lock()
		delete(d.waiters, correlationID)
		d.mu.Unlock()
	}
	return ch, cancel
}

// HandleMessage доставляет ответ ожидающему вызову. Ответы без ожидающего
// (поздние или чужие) отбрасываются.
func (d *ReplyDispatcher) HandleMessage(_ context.Context, message *sarama.ConsumerMessage) error {
	correlationID := HeaderValue(message, HeaderCorrelationID)
	if correlationID == "" {
		d.logger.WithField("topic", message.Topic).Warn("reply without correlation id dropped")
		return nil
	}

	d.mu.Lock()
	ch, ok := d.waiters[correlationID]
	if ok {
		delete(d.waiters, correlationID)
	}
	d.mu.Unlock()

	if !ok {
		d.logger.WithField("correlation_id", correlationID).Debug("late reply dropped")
		return nil
	}

	ch <- message.Value
	return nil
}
