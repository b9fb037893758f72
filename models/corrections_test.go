package models_test

import (
	"context"
	"testing"

	"github.com/mmdatafocus/ordermirror_backend/models"
	"github.com/shopspring/decimal"
)

func TestApplyShippingTaxCorrection(t *testing.T) {
	items := []models.OrderLineItem{
		{ArticleCode: "TRASP01", Description: "Spese di trasporto", LineAmount: decimal.NewFromInt(100)},
		{ArticleCode: "ART-9", Description: "Vite inox", LineAmount: decimal.NewFromInt(50)},
		{ArticleCode: "TRASP02", LineAmount: decimal.NewFromInt(80), VatRate: decimal.NewFromInt(10), VatAmount: decimal.NewFromInt(8)},
	}

	corrected := models.ApplyShippingTaxCorrection(items)
	if corrected != 1 {
		t.Fatalf("corrected = %d, want 1", corrected)
	}

	if !items[0].VatRate.Equal(decimal.NewFromInt(22)) {
		t.Fatalf("vat rate = %s, want 22", items[0].VatRate)
	}
	if !items[0].VatAmount.Equal(decimal.NewFromInt(22)) {
		t.Fatalf("vat amount = %s, want 22", items[0].VatAmount)
	}
	if !items[0].LineAmountWithVat.Equal(decimal.NewFromInt(122)) {
		t.Fatalf("line with vat = %s, want 122", items[0].LineAmountWithVat)
	}

	// regular article untouched
	if !items[1].VatAmount.IsZero() {
		t.Fatalf("non-shipping item was corrected")
	}
	// pre-existing tax never overwritten
	if !items[2].VatRate.Equal(decimal.NewFromInt(10)) || !items[2].VatAmount.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("existing tax overwritten: rate=%s amount=%s", items[2].VatRate, items[2].VatAmount)
	}
}

func TestApplyShippingTaxCorrectionIdempotent(t *testing.T) {
	items := []models.OrderLineItem{
		{ArticleCode: "TRASP01", LineAmount: decimal.NewFromFloat(35.90)},
	}

	models.ApplyShippingTaxCorrection(items)
	firstAmount := items[0].VatAmount
	firstTotal := items[0].LineAmountWithVat

	again := models.ApplyShippingTaxCorrection(items)
	if again != 0 {
		t.Fatalf("second run corrected %d items, want 0", again)
	}
	if !items[0].VatAmount.Equal(firstAmount) || !items[0].LineAmountWithVat.Equal(firstTotal) {
		t.Fatalf("tax double-applied: amount=%s total=%s", items[0].VatAmount, items[0].LineAmountWithVat)
	}
}

func TestCorrectShippingTaxOnStoredItems(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.UpsertOrder(ctx, "tenant-a", baseInput(1, "ORD-1")); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	// Insert rows directly so the automatic correction in ReplaceLineItems
	// does not pre-empt the standalone entry point.
	raw := []models.OrderLineItem{
		{OrderId: 1, ArticleCode: "TRASP01", LineAmount: decimal.NewFromInt(100)},
		{OrderId: 1, ArticleCode: "ART-1", LineAmount: decimal.NewFromInt(10)},
	}
	if err := store.DB().Create(&raw).Error; err != nil {
		t.Fatalf("seed raw items: %v", err)
	}

	corrected, err := store.CorrectShippingTax(ctx, 1)
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if corrected != 1 {
		t.Fatalf("corrected = %d, want 1", corrected)
	}

	items, err := store.GetLineItems(ctx, 1)
	if err != nil {
		t.Fatalf("get items: %v", err)
	}
	if !items[0].VatAmount.Equal(decimal.NewFromInt(22)) {
		t.Fatalf("stored vat amount = %s, want 22", items[0].VatAmount)
	}
}

func TestCorrectShippingTaxMissingOrder(t *testing.T) {
	store := newTestStore(t)

	corrected, err := store.CorrectShippingTax(context.Background(), 999)
	if err != nil {
		t.Fatalf("missing order must not error: %v", err)
	}
	if corrected != 0 {
		t.Fatalf("corrected = %d, want 0", corrected)
	}
}
