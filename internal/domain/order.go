package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, оплата ещё не подтверждена.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusPaid — оплата подтверждена платёжным провайдером.
	OrderStatusPaid OrderStatus = "PAID"
	// OrderStatusDelivered — заказ доставлен клиенту.
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus проверяет и нормализует строковое значение статуса.
func ParseOrderStatus(value string) (OrderStatus, bool) {
	switch OrderStatus(value) {
	case OrderStatusPending, OrderStatusPaid, OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(value), true
	default:
		return "", false
	}
}

// OrderItem представляет одну позицию заказа.
// Цена всегда берётся из каталога на момент создания заказа,
// клиентское значение отбрасывается.
type OrderItem struct {
	ProductID int64
	Quantity  int32
	Price     decimal.Decimal
	// Name заполняется из каталога только в ответах и не персистится.
	Name string
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID          string
	TotalAmount decimal.Decimal
	TotalItems  int32
	Status      OrderStatus
	Paid        bool
	PaidAt      *time.Time
	// Реквизиты платёжного провайдера, заполняются при markOrderPaid.
	StripeChargeID string
	ReceiptURL     string
	Items          []OrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Product — проекция товара из каталога: источник истины по имени и цене.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// PaymentReceipt содержит данные подтверждённого платежа.
type PaymentReceipt struct {
	StripeChargeID string
	ReceiptURL     string
	PaidAt         time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalAmount.IsNegative() {
		errs = append(errs, ErrAmountNegative)
	}
	if o.TotalItems < 0 {
		errs = append(errs, ErrTotalItemsNegative)
	}

	// Сверяем агрегаты с позициями: totalAmount = Σ price*qty, totalItems = Σ qty.
	amount := decimal.Zero
	var items int32
	for _, item := range o.Items {
		if item.Quantity < 1 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.Price.IsNegative() {
			errs = append(errs, ErrItemPriceInvalid)
		}
		amount = amount.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
		items += item.Quantity
	}
	if !amount.Equal(o.TotalAmount) {
		errs = append(errs, ErrAmountMismatch)
	}
	if items != o.TotalItems {
		errs = append(errs, ErrTotalItemsMismatch)
	}

	return errs
}

// DistinctProductIDs возвращает идентификаторы товаров без дублей,
// сохраняя порядок первого вхождения.
func DistinctProductIDs(items []OrderItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
