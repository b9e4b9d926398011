package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("total_amount must be non-negative")
	// Ошибка отрицательного количества позиций заказа.
	ErrTotalItemsNegative = errors.New("total_items must be non-negative")
	// Ошибка при некорректном количестве товара (< 1).
	ErrItemQtyInvalid = errors.New("item quantity must be at least 1")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order amount does not match items sum")
	// Ошибка несоответствия количества позиций и суммы quantity.
	ErrTotalItemsMismatch = errors.New("order total_items does not match items sum")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrNoOrdersFound возвращается, если страница выборки пуста.
	ErrNoOrdersFound = errors.New("no orders found for the given criteria")
	// ErrCatalogUnavailable — транспортная ошибка при обращении к каталогу.
	ErrCatalogUnavailable = errors.New("catalog service is unavailable")
)

// Коды и reason phrases нормализованного конверта ошибок.
const (
	ReasonBadRequest  = "Bad Request"
	ReasonNotFound    = "Not Found"
	ReasonUnavailable = "Service Unavailable"
	ReasonInternal    = "Internal Server Error"

	CodeBadRequest  = 400
	CodeNotFound    = 404
	CodeUnavailable = 503
	CodeInternal    = 500
)

// Error — единая нормализованная форма ошибки, которую получает вызывающая
// сторона: {message, reasonPhrase, code}.
type Error struct {
	Message string `json:"message"`
	Reason  string `json:"error"`
	Code    int    `json:"code"`
}

// Error реализует стандартный интерфейс error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d %s)", e.Message, e.Code, e.Reason)
}

// NewValidationError возвращает ошибку некорректного запроса (400).
func NewValidationError(message string) *Error {
	return &Error{Message: message, Reason: ReasonBadRequest, Code: CodeBadRequest}
}

// NewNotFoundError возвращает ошибку отсутствующего ресурса (404).
func NewNotFoundError(message string) *Error {
	return &Error{Message: message, Reason: ReasonNotFound, Code: CodeNotFound}
}

// NewTransportError возвращает ошибку недоступности коллаборатора (503).
func NewTransportError(message string) *Error {
	return &Error{Message: message, Reason: ReasonUnavailable, Code: CodeUnavailable}
}

// NewProductNotFoundError возвращает ошибку отсутствующего в каталоге товара.
func NewProductNotFoundError(productID int64) *Error {
	return NewNotFoundError(fmt.Sprintf("product %d was not found in catalog", productID))
}

// NormalizeError приводит любую ошибку к нормализованной форме.
// Уже нормализованные ошибки проходят без изменений; известные sentinel-ошибки
// получают соответствующий код; всё остальное заворачивается в 500.
func NormalizeError(err error) *Error {
	if err == nil {
		return nil
	}

	var normalized *Error
	if errors.As(err, &normalized) {
		return normalized
	}

	switch {
	case errors.Is(err, ErrOrderNotFound):
		return NewNotFoundError("no order found for the given criteria")
	case errors.Is(err, ErrNoOrdersFound):
		return NewNotFoundError("no orders found for the given criteria")
	case errors.Is(err, ErrCatalogUnavailable):
		return NewTransportError(ErrCatalogUnavailable.Error())
	}

	message := err.Error()
	if message == "" {
		message = "Unexpected error occurred"
	}
	return &Error{Message: message, Reason: ReasonInternal, Code: CodeInternal}
}
