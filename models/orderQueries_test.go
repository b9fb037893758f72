package models_test

import (
	"context"
	"testing"

	"github.com/mmdatafocus/ordermirror_backend/models"
)

func seedOrders(t *testing.T, store *models.Store) {
	t.Helper()
	ctx := context.Background()

	a := baseInput(1, "ORD-1")
	a.CustomerName = "Bianchi S.p.A."
	b := baseInput(2, "ORD-2")
	b.CustomerName = "Rossi S.r.l."
	b.Status = "Spedito"
	c := baseInput(3, "ORD-3")
	c.CustomerName = "Verdi & C."
	c.Reference = "PRJ-ALPHA"

	for _, input := range []*models.NewOrder{a, b, c} {
		if _, err := store.UpsertOrder(ctx, "tenant-a", input); err != nil {
			t.Fatalf("seed %d: %v", input.ID, err)
		}
	}
}

func TestPaginateOrdersFilters(t *testing.T) {
	store := newTestStore(t)
	seedOrders(t, store)
	ctx := context.Background()

	status := "Spedito"
	connection, err := store.PaginateOrders(ctx, "tenant-a", 10, nil, &models.OrderFilter{Status: &status})
	if err != nil {
		t.Fatalf("paginate by status: %v", err)
	}
	if len(connection.Edges) != 1 || connection.Edges[0].Node.ID != 2 {
		t.Fatalf("status filter returned %d edges", len(connection.Edges))
	}

	customer := "rossi"
	connection, err = store.PaginateOrders(ctx, "tenant-a", 10, nil, &models.OrderFilter{Customer: &customer})
	if err != nil {
		t.Fatalf("paginate by customer: %v", err)
	}
	if len(connection.Edges) != 1 {
		t.Fatalf("customer filter returned %d edges", len(connection.Edges))
	}

	freeText := "PRJ-ALPHA"
	connection, err = store.PaginateOrders(ctx, "tenant-a", 10, nil, &models.OrderFilter{FreeText: &freeText})
	if err != nil {
		t.Fatalf("paginate by free text: %v", err)
	}
	if len(connection.Edges) != 1 || connection.Edges[0].Node.ID != 3 {
		t.Fatalf("free text filter returned %d edges", len(connection.Edges))
	}
}

func TestPaginateOrdersDefaultLimit(t *testing.T) {
	store := newTestStore(t)
	seedOrders(t, store)

	connection, err := store.PaginateOrders(context.Background(), "tenant-a", 0, nil, nil)
	if err != nil {
		t.Fatalf("paginate with zero limit: %v", err)
	}
	if len(connection.Edges) != 3 {
		t.Fatalf("zero limit must fall back to the default page size, got %d edges", len(connection.Edges))
	}
}

func TestPaginateOrdersUnknownTenantIsEmpty(t *testing.T) {
	store := newTestStore(t)
	seedOrders(t, store)

	connection, err := store.PaginateOrders(context.Background(), "tenant-z", 10, nil, nil)
	if err != nil {
		t.Fatalf("unknown tenant must not error: %v", err)
	}
	if len(connection.Edges) != 0 {
		t.Fatalf("unknown tenant returned %d edges", len(connection.Edges))
	}
}

func TestGetOrderByNumber(t *testing.T) {
	store := newTestStore(t)
	seedOrders(t, store)
	ctx := context.Background()

	order, err := store.GetOrderByNumber(ctx, "tenant-a", "ORD-2")
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if order == nil || order.ID != 2 {
		t.Fatalf("lookup by number failed: %+v", order)
	}

	missing, err := store.GetOrderByNumber(ctx, "tenant-a", "ORD-404")
	if err != nil {
		t.Fatalf("unknown number must not error: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown number returned a row")
	}
}

func TestLastSyncAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	latest, err := store.LastSyncAt(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("empty tenant: %v", err)
	}
	if latest != nil {
		t.Fatalf("empty tenant must have nil last sync, got %v", latest)
	}

	seedOrders(t, store)
	latest, err = store.LastSyncAt(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("seeded tenant: %v", err)
	}
	if latest == nil {
		t.Fatalf("last sync missing after upserts")
	}
}
