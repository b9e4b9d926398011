package bus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
)

// createOrderRequest — полезная нагрузка createOrder.
type createOrderRequest struct {
	Items []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductID int64           `json:"productId"`
	Quantity  int32           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// paginationRequest — параметры страничной выборки.
type paginationRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// statusPaginationRequest — выборка по статусу с пагинацией.
type statusPaginationRequest struct {
	Status string `json:"status"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

// changeStatusRequest — смена статуса заказа.
type changeStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// paidOrderRequest — подтверждение платежа от платёжного сервиса.
type paidOrderRequest struct {
	OrderID         string `json:"orderId"`
	StripePaymentID string `json:"stripePaymentId"`
	ReceiptURL      string `json:"receiptUrl"`
}

// Handler принимает intents с шины, валидирует полезную нагрузку
// и транслирует их в операции оркестратора. Единственная точка
// нормализации ошибок: наружу всегда уходит валидный конверт.
type Handler struct {
	orchestrator *orders.Orchestrator
	metrics      *metrics.OrderMetrics
	logger       *log.Entry
}

// NewHandler создает обработчик intents. metrics может быть nil.
func NewHandler(orchestrator *orders.Orchestrator, m *metrics.OrderMetrics, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "bus-handler")
	}
	return &Handler{
		orchestrator: orchestrator,
		metrics:      m,
		logger:       logger,
	}
}

// HandleRequest реализует kafka.RequestHandler: по имени intent'а
// выбирает операцию и возвращает сериализованный конверт ответа.
func (h *Handler) HandleRequest(pattern string, payload []byte) []byte {
	started := time.Now()
	if h.metrics != nil {
		h.metrics.RecordIntentStarted()
	}

	body, err := h.dispatch(pattern, payload)
	if err != nil {
		h.logger.WithError(err).WithField("pattern", pattern).Warn("intent failed")
		body = marshalEnvelope(orders.NewErrorEnvelope(err))
	}

	if h.metrics != nil {
		h.metrics.RecordIntent(pattern, err == nil)
		h.metrics.RecordIntentDuration(pattern, time.Since(started))
		h.metrics.RecordIntentFinished()
	}
	return body
}

func (h *Handler) dispatch(pattern string, payload []byte) ([]byte, error) {
	switch pattern {
	case kafka.PatternCreateOrder:
		return h.createOrder(payload)
	case kafka.PatternFindAllOrders:
		return h.findAllOrders(payload)
	case kafka.PatternFindAllOrdersByStatus:
		return h.findAllOrdersByStatus(payload)
	case kafka.PatternFindOneOrder:
		return h.findOneOrder(payload)
	case kafka.PatternChangeStatus:
		return h.changeStatus(payload)
	case kafka.PatternMarkOrderPaid:
		return h.markOrderPaid(payload)
	case kafka.PatternRemoveOrder:
		return h.removeOrder(payload)
	default:
		return nil, domain.NewValidationError(fmt.Sprintf("unknown intent %q", pattern))
	}
}

func (h *Handler) createOrder(payload []byte) ([]byte, error) {
	var request createOrderRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return nil, domain.NewValidationError("malformed createOrder payload")
	}

	items := make([]orders.NewOrderItem, 0, len(request.Items))
	for _, item := range request.Items {
		items = append(items, orders.NewOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	envelope, err := h.orchestrator.Create(items)
	if err != nil {
		return nil, err
	}
	return marshalEnvelope(envelope), nil
}

func (h *Handler) findAllOrders(payload []byte) ([]byte, error) {
	var request paginationRequest
	if err := unmarshalOptional(payload, &request); err != nil {
		return nil, domain.NewValidationError("malformed pagination payload")
	}

	envelope, err := h.orchestrator.FindAll(request.Page, request.Limit)
	if err != nil {
		return nil, err
	}
	return marshalEnvelope(envelope), nil
}

func (h *Handler) findAllOrdersByStatus(payload []byte) ([]byte, error) {
	var request statusPaginationRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return nil, domain.NewValidationError("malformed pagination payload")
	}

	status, ok := domain.ParseOrderStatus(request.Status)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid order status %q", request.Status))
	}

	envelope, err := h.orchestrator.FindAllByStatus(request.Page, request.Limit, status)
	if err != nil {
		return nil, err
	}
	return marshalEnvelope(envelope), nil
}

func (h *Handler) findOneOrder(payload []byte) ([]byte, error) {
	id, err := decodeOrderID(payload)
	if err != nil {
		return nil, err
	}

	envelope, err := h.orchestrator.FindOne(id)
	if err != nil {
		return nil, err
	}
	return marshalEnvelope(envelope), nil
}

func (h *Handler) changeStatus(payload []byte) ([]byte, error) {
	var request changeStatusRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return nil, domain.NewValidationError("malformed changeStatus payload")
	}
	if err := validateUUID(request.ID); err != nil {
		return nil, err
	}
	status, ok := domain.ParseOrderStatus(request.Status)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid order status %q", request.Status))
	}

	envelope, err := h.orchestrator.ChangeStatus(request.ID, status)
	if err != nil {
		return nil, err
	}
	return marshalEnvelope(envelope), nil
}

func (h *Handler) markOrderPaid(payload []byte) ([]byte, error) {
	var request paidOrderRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return nil, domain.NewValidationError("malformed markOrderPaid payload")
	}
	if err := validateUUID(request.OrderID); err != nil {
		return nil, err
	}
	if request.StripePaymentID == "" {
		return nil, domain.NewValidationError("stripePaymentId is required")
	}

	envelope, err := h.orchestrator.MarkPaid(orders.PaidOrder{
		OrderID:        request.OrderID,
		StripeChargeID: request.StripePaymentID,
		ReceiptURL:     request.ReceiptURL,
	})
	if err != nil {
		return nil, err
	}
	return marshalEnvelope(envelope), nil
}

func (h *Handler) removeOrder(payload []byte) ([]byte, error) {
	id, err := decodeOrderID(payload)
	if err != nil {
		return nil, err
	}

	envelope, err := h.orchestrator.Remove(id)
	if err != nil {
		return nil, err
	}
	return marshalEnvelope(envelope), nil
}

// decodeOrderID принимает id заказа как JSON-строку либо объект {"id": "..."}.
func decodeOrderID(payload []byte) (string, error) {
	var id string
	if err := json.Unmarshal(payload, &id); err != nil {
		var wrapped struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(payload, &wrapped); err != nil {
			return "", domain.NewValidationError("malformed order id payload")
		}
		id = wrapped.ID
	}
	if err := validateUUID(id); err != nil {
		return "", err
	}
	return id, nil
}

func validateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.NewValidationError("Validation failed (uuid is expected)")
	}
	return nil
}

// unmarshalOptional трактует пустую полезную нагрузку как значение по умолчанию.
func unmarshalOptional(payload []byte, target any) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, target)
}

func marshalEnvelope(envelope any) []byte {
	body, err := json.Marshal(envelope)
	if err != nil {
		// Конверты — plain-структуры, сериализация не может упасть.
		return []byte(`{"ok":false,"message":"Unexpected error occurred","error":"Internal Server Error","code":500}`)
	}
	return body
}

var _ kafka.RequestHandler = (*Handler)(nil).HandleRequest
