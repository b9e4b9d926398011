package catalog_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/catalog"
)

func TestMockClient_ReturnsOnlyRequested(t *testing.T) {
	client := catalog.NewMockClient(
		domain.Product{ID: 1, Name: "Teclado", Price: decimal.NewFromInt(10)},
		domain.Product{ID: 2, Name: "Mouse", Price: decimal.NewFromInt(5)},
		domain.Product{ID: 3, Name: "Monitor", Price: decimal.NewFromInt(100)},
	)

	products, err := client.LookupProducts([]int64{1, 3, 999})
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	// Отсутствующий id молча опускается, это не ошибка транспорта.
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if client.LookupCalls != 1 {
		t.Fatalf("expected 1 call recorded, got %d", client.LookupCalls)
	}
	if len(client.LastIDs) != 3 {
		t.Fatalf("expected requested ids recorded, got %v", client.LastIDs)
	}
}

func TestMockClient_Err(t *testing.T) {
	client := catalog.NewMockClient()
	client.Err = errors.New("bus down")

	if _, err := client.LookupProducts([]int64{1}); err == nil {
		t.Fatal("expected configured error")
	}
}
