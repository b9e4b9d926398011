package catalog

import "github.com/vladislavdragonenkov/orders/internal/domain"

// MockClient — конфигурируемая заглушка CatalogClient для тестов
// и локальной разработки без шины.
type MockClient struct {
	Products []domain.Product
	Err      error

	LookupCalls int
	LastIDs     []int64
}

// NewMockClient возвращает mock, отвечающий заданным набором товаров.
func NewMockClient(products ...domain.Product) *MockClient {
	return &MockClient{Products: products}
}

// LookupProducts возвращает только запрошенные товары из настроенного набора,
// считая вызовы.
func (m *MockClient) LookupProducts(ids []int64) ([]domain.Product, error) {
	m.LookupCalls++
	m.LastIDs = ids
	if m.Err != nil {
		return nil, m.Err
	}

	requested := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}

	found := make([]domain.Product, 0, len(ids))
	for _, product := range m.Products {
		if _, ok := requested[product.ID]; ok {
			found = append(found, product)
		}
	}
	return found, nil
}

var _ domain.CatalogClient = (*MockClient)(nil)
