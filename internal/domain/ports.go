package domain

import "time"

// CatalogClient описывает асинхронный request/reply прокси к сервису каталога.
// Lookup может вернуть меньше товаров, чем запрошено: отсутствие id в ответе
// не является ошибкой транспорта.
type CatalogClient interface {
	// LookupProducts запрашивает товары по набору идентификаторов.
	LookupProducts(ids []int64) ([]Product, error)
}

// OrderRepository — durable-хранилище заказов и их позиций.
// Удаление заказа каскадно удаляет позиции.
type OrderRepository interface {
	Create(order Order) error
	// Get возвращает заказ вместе с позициями или ErrOrderNotFound.
	Get(id string) (Order, error)
	// List возвращает страницу заказов без позиций, по createdAt по убыванию.
	List(limit, offset int) ([]Order, error)
	ListByStatus(status OrderStatus, limit, offset int) ([]Order, error)
	Count() (int, error)
	CountByStatus(status OrderStatus) (int, error)
	// UpdateStatus меняет статус и возвращает обновлённый заказ без позиций.
	UpdateStatus(id string, status OrderStatus) (Order, error)
	// MarkPaid фиксирует подтверждённый платёж: status=PAID, paid, paidAt, реквизиты.
	MarkPaid(id string, receipt PaymentReceipt) (Order, error)
	Delete(id string) error
}

// EventPublisher публикует события жизненного цикла заказа. Публикация
// best-effort: ошибка не должна ронять операцию.
type EventPublisher interface {
	PublishOrderEvent(event OrderEvent) error
}

// Типы событий заказа.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status.changed"
	EventOrderPaid          = "order.paid"
	EventOrderRemoved       = "order.removed"
)

// OrderEvent описывает событие жизненного цикла заказа.
type OrderEvent struct {
	Type     string
	OrderID  string
	Status   OrderStatus
	Occurred time.Time
}
