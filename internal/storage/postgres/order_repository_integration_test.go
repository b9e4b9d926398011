package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

func seedOrder(createdAt time.Time) domain.Order {
	return domain.Order{
		ID:          uuid.NewString(),
		TotalAmount: decimal.NewFromInt(25),
		TotalItems:  3,
		Status:      domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(10)},
			{ProductID: 2, Quantity: 1, Price: decimal.NewFromInt(5)},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestOrderRepositoryIntegration_CreateGet(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	order := seedOrder(time.Now().UTC())
	if err := repo.Create(order); err != nil {
		t.Fatalf("create: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ID != order.ID {
		t.Fatalf("expected id %s, got %s", order.ID, stored.ID)
	}
	if !stored.TotalAmount.Equal(order.TotalAmount) {
		t.Fatalf("expected amount %s, got %s", order.TotalAmount, stored.TotalAmount)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(stored.Items))
	}
	if !stored.Items[0].Price.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected item price 10, got %s", stored.Items[0].Price)
	}
}

func TestOrderRepositoryIntegration_GetNotFound(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	if _, err := repo.Get(uuid.NewString()); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepositoryIntegration_ListPagination(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	base := time.Now().UTC().Truncate(time.Millisecond)
	ids := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		order := seedOrder(base.Add(time.Duration(i) * time.Second))
		if err := repo.Create(order); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, order.ID)
	}

	total, err := repo.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 8 {
		t.Fatalf("expected 8 orders, got %d", total)
	}

	first, err := repo.List(6, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 6 {
		t.Fatalf("expected 6 orders on first page, got %d", len(first))
	}
	// Новые первыми.
	if first[0].ID != ids[7] {
		t.Fatalf("expected newest order first, got %s", first[0].ID)
	}
	if first[0].Items != nil {
		t.Fatal("expected list results without items")
	}

	second, err := repo.List(6, 6)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("expected 2 orders on second page, got %d", len(second))
	}

	empty, err := repo.List(6, 100)
	if err != nil {
		t.Fatalf("list beyond end: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %d", len(empty))
	}
}

func TestOrderRepositoryIntegration_ListByStatus(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	base := time.Now().UTC()
	pending := seedOrder(base)
	cancelled := seedOrder(base.Add(time.Second))
	cancelled.Status = domain.OrderStatusCancelled
	for i, order := range []domain.Order{pending, cancelled} {
		if err := repo.Create(order); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	orders, err := repo.ListByStatus(domain.OrderStatusCancelled, 10, 0)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != cancelled.ID {
		t.Fatalf("expected only cancelled order, got %d rows", len(orders))
	}

	count, err := repo.CountByStatus(domain.OrderStatusPending)
	if err != nil {
		t.Fatalf("count by status: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 pending order, got %d", count)
	}
}

func TestOrderRepositoryIntegration_UpdateStatus(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	order := seedOrder(time.Now().UTC())
	if err := repo.Create(order); err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := repo.UpdateStatus(order.ID, domain.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.OrderStatusDelivered {
		t.Fatalf("expected DELIVERED, got %s", updated.Status)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != domain.OrderStatusDelivered {
		t.Fatalf("status not persisted, got %s", stored.Status)
	}

	if _, err := repo.UpdateStatus(uuid.NewString(), domain.OrderStatusPaid); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepositoryIntegration_MarkPaid(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	order := seedOrder(time.Now().UTC())
	if err := repo.Create(order); err != nil {
		t.Fatalf("create: %v", err)
	}

	paidAt := time.Now().UTC().Truncate(time.Microsecond)
	updated, err := repo.MarkPaid(order.ID, domain.PaymentReceipt{
		StripeChargeID: "ch_integration_1",
		ReceiptURL:     "https://pay.example/r/1",
		PaidAt:         paidAt,
	})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	if updated.Status != domain.OrderStatusPaid || !updated.Paid {
		t.Fatalf("expected paid order, got status=%s paid=%v", updated.Status, updated.Paid)
	}
	if updated.PaidAt == nil || !updated.PaidAt.Equal(paidAt) {
		t.Fatalf("expected paidAt %v, got %v", paidAt, updated.PaidAt)
	}
	if updated.StripeChargeID != "ch_integration_1" {
		t.Fatalf("expected charge id persisted, got %q", updated.StripeChargeID)
	}

	// Реквизиты читаются обратно вместе с заказом.
	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ReceiptURL != "https://pay.example/r/1" {
		t.Fatalf("expected receipt url persisted, got %q", stored.ReceiptURL)
	}
}

func TestOrderRepositoryIntegration_DeleteCascades(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	order := seedOrder(time.Now().UTC())
	if err := repo.Create(order); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(order.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound after delete, got %v", err)
	}

	// Позиции удалены каскадно.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var itemCount int
	if err := store.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_items WHERE order_id = $1`, order.ID).Scan(&itemCount); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if itemCount != 0 {
		t.Fatalf("expected cascade delete of items, got %d rows", itemCount)
	}

	if err := repo.Delete(order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for repeated delete, got %v", err)
	}
}

func TestOrderRepositoryIntegration_CreateRollsBackOnBadItem(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	order := seedOrder(time.Now().UTC())
	// Нарушение CHECK (quantity >= 1) валит транзакцию целиком.
	order.Items[1].Quantity = 0

	if err := repo.Create(order); err == nil {
		t.Fatal("expected constraint violation")
	}

	if _, err := repo.Get(order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected no partial order row, got %v", err)
	}
}

func TestMigratorIntegration_UpDownUp(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.MigrateUp(ctx); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if count == 0 {
		t.Fatal("expected applied migrations")
	}

	if err := store.MigrateDown(ctx); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	_, downCount, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("status after down: %v", err)
	}
	if downCount != count-1 {
		t.Fatalf("expected %d applied after down, got %d", count-1, downCount)
	}

	if err := store.MigrateUp(ctx); err != nil {
		t.Fatalf("re-apply up: %v", err)
	}
	reVersion, reCount, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("status after re-up: %v", err)
	}
	if reVersion != version || reCount != count {
		t.Fatalf("expected version=%d count=%d, got version=%d count=%d", version, count, reVersion, reCount)
	}
}
