package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// ItemView — проекция позиции заказа в ответе. Name присутствует,
// только когда позиция обогащена данными каталога.
type ItemView struct {
	ProductID int64           `json:"productId"`
	Quantity  int32           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name,omitempty"`
}

// OrderView — проекция заказа в ответе.
type OrderView struct {
	ID             string          `json:"id"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	TotalItems     int32           `json:"totalItems"`
	Status         string          `json:"status"`
	Paid           bool            `json:"paid"`
	PaidAt         *time.Time      `json:"paidAt"`
	StripeChargeID string          `json:"stripeChargeId,omitempty"`
	ReceiptURL     string          `json:"receiptUrl,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Items          []ItemView      `json:"OrderItems,omitempty"`
}

// OrderEnvelope — единый конверт ответа для операций над одним заказом.
type OrderEnvelope struct {
	OK      bool      `json:"ok"`
	Message string    `json:"message"`
	Data    OrderView `json:"data"`
}

// OrdersEnvelope — конверт страничной выборки заказов.
type OrdersEnvelope struct {
	OK         bool        `json:"ok"`
	Message    string      `json:"message"`
	Data       []OrderView `json:"data"`
	Count      int         `json:"count"`
	TotalCount int         `json:"totalCount"`
	TotalPages int         `json:"totalPages"`
	NextPage   *int        `json:"nextPage"`
	PrevPage   *int        `json:"prevPage"`
}

// ErrorEnvelope — конверт любой ошибки операции.
type ErrorEnvelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Reason  string `json:"error"`
	Code    int    `json:"code"`
}

// NewErrorEnvelope строит конверт из нормализованной ошибки.
func NewErrorEnvelope(err error) ErrorEnvelope {
	normalized := domain.NormalizeError(err)
	return ErrorEnvelope{
		OK:      false,
		Message: normalized.Message,
		Reason:  normalized.Reason,
		Code:    normalized.Code,
	}
}

func toOrderView(order domain.Order) OrderView {
	view := OrderView{
		ID:             order.ID,
		TotalAmount:    order.TotalAmount,
		TotalItems:     order.TotalItems,
		Status:         string(order.Status),
		Paid:           order.Paid,
		PaidAt:         order.PaidAt,
		StripeChargeID: order.StripeChargeID,
		ReceiptURL:     order.ReceiptURL,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, ItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Name:      item.Name,
		})
	}
	return view
}

func toOrderViews(orders []domain.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, toOrderView(order))
	}
	return views
}
