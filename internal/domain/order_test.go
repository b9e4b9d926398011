package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// helper для создания базового заказа с двумя позициями.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:          "7b8d0e5e-8a5f-4f69-9d7c-111111111111",
		TotalAmount: decimal.NewFromInt(25),
		TotalItems:  3,
		Status:      domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(10)},
			{ProductID: 2, Quantity: 1, Price: decimal.NewFromInt(5)},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no items",
			mut: func(o *domain.Order) {
				o.Items = nil
				o.TotalAmount = decimal.Zero
				o.TotalItems = 0
			},
		},
		{
			name: "negative amount",
			mut: func(o *domain.Order) {
				o.TotalAmount = decimal.NewFromInt(-1)
			},
		},
		{
			name: "qty invalid",
			mut: func(o *domain.Order) {
				o.Items[0].Quantity = 0
			},
		},
		{
			name: "price invalid",
			mut: func(o *domain.Order) {
				o.Items[0].Price = decimal.NewFromInt(-5)
			},
		},
		{
			name: "amount mismatch",
			mut: func(o *domain.Order) {
				o.TotalAmount = decimal.NewFromInt(999)
			},
		},
		{
			name: "total items mismatch",
			mut: func(o *domain.Order) {
				o.TotalItems = 42
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			// Изменяем состояние согласно сценарию.
			tc.mut(&order)

			if len(order.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "PAID", "DELIVERED", "CANCELLED"} {
		status, ok := domain.ParseOrderStatus(valid)
		if !ok {
			t.Fatalf("expected %q to be valid", valid)
		}
		if string(status) != valid {
			t.Fatalf("expected %q, got %q", valid, status)
		}
	}

	for _, invalid := range []string{"", "pending", "SHIPPED", "PAID "} {
		if _, ok := domain.ParseOrderStatus(invalid); ok {
			t.Fatalf("expected %q to be invalid", invalid)
		}
	}
}

func TestDistinctProductIDs(t *testing.T) {
	items := []domain.OrderItem{
		{ProductID: 3, Quantity: 1},
		{ProductID: 1, Quantity: 1},
		{ProductID: 3, Quantity: 2},
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 5},
	}

	ids := domain.DistinctProductIDs(items)
	expected := []int64{3, 1, 2}
	if len(ids) != len(expected) {
		t.Fatalf("expected %d ids, got %d", len(expected), len(ids))
	}
	for i, id := range expected {
		if ids[i] != id {
			t.Fatalf("expected ids %v, got %v", expected, ids)
		}
	}
}
