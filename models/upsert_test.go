package models_test

import (
	"context"
	"testing"

	"github.com/mmdatafocus/ordermirror_backend/models"
	"github.com/shopspring/decimal"
)

func baseInput(id int, number string) *models.NewOrder {
	return &models.NewOrder{
		ID:           id,
		OrderNumber:  number,
		CustomerCode: "C001",
		CustomerName: "Rossi S.r.l.",
		Status:       "Ordine aperto",
		TotalAmount:  decimal.NewFromFloat(1250.50),
	}
}

func TestUpsertOrderIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	input := baseInput(1, "ORD-2026-001")

	first, err := store.UpsertOrder(ctx, "tenant-a", input)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.Action != models.UpsertActionInserted {
		t.Fatalf("first upsert action = %s, want inserted", first.Action)
	}

	inserted, err := store.GetOrder(ctx, 1)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	firstSync := inserted.LastSyncAt

	second, err := store.UpsertOrder(ctx, "tenant-a", input)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.Action != models.UpsertActionSkipped {
		t.Fatalf("second upsert action = %s, want skipped", second.Action)
	}
	if second.Renumbered != nil {
		t.Fatalf("unexpected renumbering: %+v", second.Renumbered)
	}

	after, err := store.GetOrder(ctx, 1)
	if err != nil {
		t.Fatalf("get order after skip: %v", err)
	}
	if after.Fingerprint != inserted.Fingerprint {
		t.Fatalf("fingerprint changed on skipped upsert")
	}
	if after.LastSyncAt == nil || firstSync == nil {
		t.Fatalf("last_sync_at not populated")
	}
	if after.LastSyncAt.Before(*firstSync) {
		t.Fatalf("last_sync_at went backwards on skipped upsert")
	}
}

func TestUpsertOrderRenumbering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.UpsertOrder(ctx, "tenant-a", baseInput(7, "PENDING-7")); err != nil {
		t.Fatalf("insert placeholder: %v", err)
	}

	result, err := store.UpsertOrder(ctx, "tenant-a", baseInput(7, "ORD-2026-099"))
	if err != nil {
		t.Fatalf("renumbering upsert: %v", err)
	}
	if result.Renumbered == nil {
		t.Fatalf("renumbering not reported")
	}
	if result.Renumbered.From != "PENDING-7" || result.Renumbered.To != "ORD-2026-099" {
		t.Fatalf("renumbering = %+v", result.Renumbered)
	}

	var count int64
	if err := store.DB().Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 1 {
		t.Fatalf("renumbering duplicated the row: %d orders", count)
	}

	stored, err := store.GetOrder(ctx, 7)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if stored.OrderNumber != "ORD-2026-099" {
		t.Fatalf("stored order number = %s", stored.OrderNumber)
	}
}

func TestUpsertOrderUpdateOnChange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.UpsertOrder(ctx, "tenant-a", baseInput(3, "ORD-3")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	changed := baseInput(3, "ORD-3")
	changed.Status = "Spedito"
	changed.TotalAmount = decimal.NewFromFloat(1400)

	result, err := store.UpsertOrder(ctx, "tenant-a", changed)
	if err != nil {
		t.Fatalf("update upsert: %v", err)
	}
	if result.Action != models.UpsertActionUpdated {
		t.Fatalf("action = %s, want updated", result.Action)
	}

	stored, err := store.GetOrder(ctx, 3)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if stored.Status != "Spedito" {
		t.Fatalf("status not updated: %s", stored.Status)
	}
	if !stored.TotalAmount.Equal(decimal.NewFromFloat(1400)) {
		t.Fatalf("total amount not updated: %s", stored.TotalAmount)
	}
	if stored.Version == 0 {
		t.Fatalf("version not bumped on update")
	}
}

func TestUpsertOrdersBatchIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.UpsertOrder(ctx, "tenant-a", baseInput(10, "ORD-10")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	batch, err := store.UpsertOrders(ctx, "tenant-a", []*models.NewOrder{
		baseInput(11, "ORD-10"), // collides with the unique tenant+number index
		baseInput(12, "ORD-12"),
	})
	if err != nil {
		t.Fatalf("batch upsert: %v", err)
	}
	if len(batch.Failed) != 1 || batch.Failed[0].OrderId != 11 {
		t.Fatalf("failed = %+v, want order 11 only", batch.Failed)
	}
	if batch.Inserted != 1 {
		t.Fatalf("inserted = %d, want 1", batch.Inserted)
	}

	stored, err := store.GetOrder(ctx, 12)
	if err != nil {
		t.Fatalf("get order 12: %v", err)
	}
	if stored == nil {
		t.Fatalf("order 12 missing: one bad row corrupted the batch")
	}
}
