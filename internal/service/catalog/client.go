package catalog

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
)

const defaultLookupTimeout = 5 * time.Second

// LookupMetrics считает обращения к каталогу. Nil отключает учёт.
type LookupMetrics interface {
	RecordCatalogLookup()
	RecordCatalogLookupFailure()
}

// productPayload — представление товара в ответе каталога.
type productPayload struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// lookupReply — конверт ответа каталога на validateProductsExists.
type lookupReply struct {
	OK      bool             `json:"ok"`
	Message string           `json:"message"`
	Code    int              `json:"code"`
	Data    []productPayload `json:"data"`
}

// BusClient — request/reply клиент каталога поверх шины сообщений.
// Каталог может вернуть меньше товаров, чем запрошено: это не ошибка.
type BusClient struct {
	producer   *kafka.Producer
	replies    *kafka.ReplyDispatcher
	replyTopic string
	timeout    time.Duration
	metrics    LookupMetrics
	logger     *log.Entry
}

// NewBusClient создает клиента каталога. Producer и диспетчер ответов
// передаются явно: клиент не владеет транспортом и не является синглтоном.
func NewBusClient(producer *kafka.Producer, replies *kafka.ReplyDispatcher, replyTopic string, timeout time.Duration, metrics LookupMetrics, logger *log.Entry) *BusClient {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	if logger == nil {
		logger = log.WithField("component", "catalog-client")
	}
	return &BusClient{
		producer:   producer,
		replies:    replies,
		replyTopic: replyTopic,
		timeout:    timeout,
		metrics:    metrics,
		logger:     logger,
	}
}

// LookupProducts запрашивает товары по набору идентификаторов одним
// round trip'ом. Недоступность каталога и таймаут превращаются
// в ErrCatalogUnavailable.
func (c *BusClient) LookupProducts(ids []int64) ([]domain.Product, error) {
	payload, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.RecordCatalogLookup()
	}

	correlationID := uuid.NewString()
	replyCh, cancel := c.replies.Expect(correlationID)
	defer cancel()

	headers := []sarama.RecordHeader{
		{Key: []byte(kafka.HeaderPattern), Value: []byte(kafka.PatternValidateProducts)},
		{Key: []byte(kafka.HeaderCorrelationID), Value: []byte(correlationID)},
		{Key: []byte(kafka.HeaderReplyTo), Value: []byte(c.replyTopic)},
	}
	if err := c.producer.PublishMessage(kafka.TopicCatalogRequests, correlationID, payload, headers); err != nil {
		c.logger.WithError(err).Warn("failed to publish catalog lookup request")
		return nil, c.failLookup(domain.ErrCatalogUnavailable)
	}

	select {
	case body := <-replyCh:
		products, err := c.decodeReply(body)
		if err != nil {
			return nil, c.failLookup(err)
		}
		return products, nil
	case <-time.After(c.timeout):
		c.logger.WithField("correlation_id", correlationID).Warn("catalog lookup timed out")
		return nil, c.failLookup(domain.ErrCatalogUnavailable)
	}
}

func (c *BusClient) failLookup(err error) error {
	if c.metrics != nil {
		c.metrics.RecordCatalogLookupFailure()
	}
	return err
}

func (c *BusClient) decodeReply(body []byte) ([]domain.Product, error) {
	var reply lookupReply
	if err := json.Unmarshal(body, &reply); err != nil {
		c.logger.WithError(err).Warn("failed to decode catalog reply")
		return nil, domain.ErrCatalogUnavailable
	}

	if !reply.OK {
		message := reply.Message
		if message == "" {
			message = "catalog lookup failed"
		}
		code := reply.Code
		if code == 0 {
			code = domain.CodeInternal
		}
		return nil, &domain.Error{Message: message, Reason: domain.ReasonInternal, Code: code}
	}

	products := make([]domain.Product, 0, len(reply.Data))
	for _, p := range reply.Data {
		products = append(products, domain.Product{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	return products, nil
}

var _ domain.CatalogClient = (*BusClient)(nil)
