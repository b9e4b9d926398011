package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// NewOrderItem — входная позиция createOrder. Price — цена, присланная
// клиентом; она отбрасывается в пользу цены каталога.
type NewOrderItem struct {
	ProductID int64
	Quantity  int32
	Price     decimal.Decimal
}

// PaidOrder — подтверждение платежа по заказу.
type PaidOrder struct {
	OrderID        string
	StripeChargeID string
	ReceiptURL     string
}

// Orchestrator — ядро сервиса: композиция каталога и хранилища
// в операции над агрегатом заказа. Все зависимости инжектируются.
type Orchestrator struct {
	repo    domain.OrderRepository
	catalog domain.CatalogClient
	events  domain.EventPublisher
	logger  *log.Entry
}

// NewOrchestrator конструирует оркестратор. events может быть nil —
// тогда события не публикуются.
func NewOrchestrator(repo domain.OrderRepository, catalog domain.CatalogClient, events domain.EventPublisher, logger *log.Entry) *Orchestrator {
	if logger == nil {
		logger = log.WithField("component", "orders-orchestrator")
	}
	return &Orchestrator{
		repo:    repo,
		catalog: catalog,
		events:  events,
		logger:  logger,
	}
}

// Create валидирует товары через каталог, переоценивает позиции ценами
// каталога и атомарно сохраняет заказ. Один каталожный round trip
// на любой размер заказа; при его ошибке запись не выполняется.
func (o *Orchestrator) Create(items []NewOrderItem) (OrderEnvelope, error) {
	if len(items) == 0 {
		return OrderEnvelope{}, domain.NewValidationError(domain.ErrItemsRequired.Error())
	}

	draft := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return OrderEnvelope{}, domain.NewValidationError(domain.ErrItemQtyInvalid.Error())
		}
		draft = append(draft, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	products, err := o.catalog.LookupProducts(domain.DistinctProductIDs(draft))
	if err != nil {
		o.logger.WithError(err).Warn("catalog lookup failed, order is not persisted")
		return OrderEnvelope{}, err
	}
	byID := indexProducts(products)

	// Переоценка: цена позиции — всегда цена каталога.
	totalAmount := decimal.Zero
	var totalItems int32
	for i := range draft {
		product, ok := byID[draft[i].ProductID]
		if !ok {
			return OrderEnvelope{}, domain.NewProductNotFoundError(draft[i].ProductID)
		}
		draft[i].Price = product.Price
		totalAmount = totalAmount.Add(product.Price.Mul(decimal.NewFromInt32(draft[i].Quantity)))
		totalItems += draft[i].Quantity
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:          uuid.NewString(),
		TotalAmount: totalAmount,
		TotalItems:  totalItems,
		Status:      domain.OrderStatusPending,
		Items:       draft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return OrderEnvelope{}, domain.NewValidationError(joinErrors(errs))
	}

	if err := o.repo.Create(order); err != nil {
		o.logger.WithError(err).WithField("order_id", order.ID).Error("failed to persist order")
		return OrderEnvelope{}, err
	}

	// Имена берём из того же каталожного ответа, без второго запроса.
	for i := range order.Items {
		order.Items[i].Name = byID[order.Items[i].ProductID].Name
	}

	o.publishEvent(domain.EventOrderCreated, order.ID, order.Status)

	return OrderEnvelope{OK: true, Message: "Order created!", Data: toOrderView(order)}, nil
}

// FindAll возвращает страницу заказов, от новых к старым.
// Пустая страница — ошибка NotFound, а не пустой успешный список.
func (o *Orchestrator) FindAll(page, limit int) (OrdersEnvelope, error) {
	page, limit = domain.NormalizePageParams(page, limit, domain.DefaultListLimit)

	totalCount, err := o.repo.Count()
	if err != nil {
		o.logger.WithError(err).Error("failed to count orders")
		return OrdersEnvelope{}, err
	}
	info := domain.Paginate(page, limit, totalCount)

	results, err := o.repo.List(limit, info.Offset)
	if err != nil {
		o.logger.WithError(err).Error("failed to list orders")
		return OrdersEnvelope{}, err
	}

	return o.buildOrdersEnvelope(results, totalCount, info)
}

// FindAllByStatus возвращает страницу заказов с заданным статусом.
func (o *Orchestrator) FindAllByStatus(page, limit int, status domain.OrderStatus) (OrdersEnvelope, error) {
	page, limit = domain.NormalizePageParams(page, limit, domain.DefaultListByStatusLimit)

	totalCount, err := o.repo.CountByStatus(status)
	if err != nil {
		o.logger.WithError(err).Error("failed to count orders by status")
		return OrdersEnvelope{}, err
	}
	info := domain.Paginate(page, limit, totalCount)

	results, err := o.repo.ListByStatus(status, limit, info.Offset)
	if err != nil {
		o.logger.WithError(err).Error("failed to list orders by status")
		return OrdersEnvelope{}, err
	}

	return o.buildOrdersEnvelope(results, totalCount, info)
}

// FindOne — двухстадийный конвейер: чтение агрегата из хранилища,
// затем обогащение позиций именами из каталога. Ошибка обогащения
// валит чтение целиком: имена в ответе обязательны.
func (o *Orchestrator) FindOne(id string) (OrderEnvelope, error) {
	order, err := o.fetchAggregate(id)
	if err != nil {
		return OrderEnvelope{}, err
	}

	order, err = o.enrichWithCatalogNames(order)
	if err != nil {
		return OrderEnvelope{}, err
	}

	return OrderEnvelope{OK: true, Message: "Order fetched!", Data: toOrderView(order)}, nil
}

// ChangeStatus меняет статус заказа. Совпадающий статус — идемпотентный
// no-op без записи. Таблица допустимых переходов не применяется:
// разрешён любой переход между различными статусами.
func (o *Orchestrator) ChangeStatus(id string, status domain.OrderStatus) (OrderEnvelope, error) {
	current, err := o.FindOne(id)
	if err != nil {
		return OrderEnvelope{}, err
	}

	if current.Data.Status == string(status) {
		current.Message = "Order already updated!"
		return current, nil
	}

	updated, err := o.repo.UpdateStatus(id, status)
	if err != nil {
		o.logger.WithError(err).WithField("order_id", id).Error("failed to update order status")
		return OrderEnvelope{}, err
	}

	o.publishEvent(domain.EventOrderStatusChanged, updated.ID, updated.Status)

	return OrderEnvelope{OK: true, Message: "Order updated!", Data: toOrderView(updated)}, nil
}

// MarkPaid фиксирует подтверждённый платёж: status=PAID, paid, paidAt
// и реквизиты провайдера. Каталожного обогащения здесь нет.
func (o *Orchestrator) MarkPaid(paid PaidOrder) (OrderEnvelope, error) {
	updated, err := o.repo.MarkPaid(paid.OrderID, domain.PaymentReceipt{
		StripeChargeID: paid.StripeChargeID,
		ReceiptURL:     paid.ReceiptURL,
		PaidAt:         time.Now().UTC(),
	})
	if err != nil {
		o.logger.WithError(err).WithField("order_id", paid.OrderID).Error("failed to mark order paid")
		return OrderEnvelope{}, err
	}

	o.publishEvent(domain.EventOrderPaid, updated.ID, updated.Status)

	return OrderEnvelope{OK: true, Message: "Order paid!", Data: toOrderView(updated)}, nil
}

// Remove проверяет существование заказа через FindOne (включая попутное
// обогащение) и удаляет его; позиции удаляются каскадно.
func (o *Orchestrator) Remove(id string) (OrderEnvelope, error) {
	fetched, err := o.FindOne(id)
	if err != nil {
		return OrderEnvelope{}, err
	}

	if err := o.repo.Delete(id); err != nil {
		o.logger.WithError(err).WithField("order_id", id).Error("failed to delete order")
		return OrderEnvelope{}, err
	}

	o.publishEvent(domain.EventOrderRemoved, id, domain.OrderStatus(fetched.Data.Status))

	fetched.Message = "Order deleted!"
	return fetched, nil
}

func (o *Orchestrator) buildOrdersEnvelope(orders []domain.Order, totalCount int, info domain.PageInfo) (OrdersEnvelope, error) {
	if len(orders) == 0 {
		return OrdersEnvelope{}, domain.ErrNoOrdersFound
	}

	return OrdersEnvelope{
		OK:         true,
		Message:    "orders fetched!",
		Data:       toOrderViews(orders),
		Count:      len(orders),
		TotalCount: totalCount,
		TotalPages: info.TotalPages,
		NextPage:   info.NextPage,
		PrevPage:   info.PrevPage,
	}, nil
}

func (o *Orchestrator) fetchAggregate(id string) (domain.Order, error) {
	order, err := o.repo.Get(id)
	if err != nil {
		o.logger.WithError(err).WithField("order_id", id).Warn("failed to load order")
		return domain.Order{}, err
	}
	return order, nil
}

// enrichWithCatalogNames дополняет позиции актуальными именами из каталога.
// Товар, пропавший из каталога после создания заказа, оставляет имя пустым.
func (o *Orchestrator) enrichWithCatalogNames(order domain.Order) (domain.Order, error) {
	if len(order.Items) == 0 {
		return order, nil
	}

	products, err := o.catalog.LookupProducts(domain.DistinctProductIDs(order.Items))
	if err != nil {
		o.logger.WithError(err).WithField("order_id", order.ID).Warn("catalog enrichment failed")
		return domain.Order{}, err
	}

	byID := indexProducts(products)
	for i := range order.Items {
		if product, ok := byID[order.Items[i].ProductID]; ok {
			order.Items[i].Name = product.Name
		}
	}
	return order, nil
}

func (o *Orchestrator) publishEvent(eventType, orderID string, status domain.OrderStatus) {
	if o.events == nil {
		return
	}
	event := domain.OrderEvent{
		Type:     eventType,
		OrderID:  orderID,
		Status:   status,
		Occurred: time.Now().UTC(),
	}
	if err := o.events.PublishOrderEvent(event); err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"event":    eventType,
		}).Warn("failed to publish order event")
	}
}

func indexProducts(products []domain.Product) map[int64]domain.Product {
	byID := make(map[int64]domain.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	return byID
}

func joinErrors(errs []error) string {
	builder := strings.Builder{}
	for i, err := range errs {
		builder.WriteString(err.Error())
		if i < len(errs)-1 {
			builder.WriteString("; ")
		}
	}
	return builder.String()
}
