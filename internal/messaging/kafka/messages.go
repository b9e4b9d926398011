package kafka

import "time"

// Topics шины сообщений.
const (
	// TopicOrderRequests — входящие intents сервиса заказов.
	TopicOrderRequests = "orders.requests"
	// TopicCatalogRequests — запросы к сервису каталога.
	TopicCatalogRequests = "catalog.requests"
	// TopicCatalogReplies — ответы каталога на запросы этого сервиса.
	TopicCatalogReplies = "orders.catalog.replies"
	// TopicOrderEvents — события жизненного цикла заказов.
	TopicOrderEvents = "orders.events"
)

// Kafka headers для request/reply корреляции.
const (
	HeaderPattern       = "x-pattern"
	HeaderCorrelationID = "x-correlation-id"
	HeaderReplyTo       = "x-reply-to"
)

// Имена входящих intents (request/reply паттернов).
const (
	PatternCreateOrder           = "createOrder"
	PatternFindAllOrders         = "findAllOrders"
	PatternFindAllOrdersByStatus = "findAllOrdersByStatus"
	PatternFindOneOrder          = "findOneOrder"
	PatternChangeStatus          = "changeStatus"
	PatternMarkOrderPaid         = "markOrderPaid"
	PatternRemoveOrder           = "removeOrder"

	// PatternValidateProducts — исходящий intent к каталогу.
	PatternValidateProducts = "validateProductsExists"
)

// OrderEventMessage — событие заказа, публикуемое в TopicOrderEvents.
type OrderEventMessage struct {
	EventType string    `json:"event_type"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
