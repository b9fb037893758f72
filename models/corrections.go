package models

import (
	"context"
	"errors"
	"regexp"

	"github.com/mmdatafocus/ordermirror_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// The upstream system occasionally syncs shipping surcharge lines with no tax
// computed. Those articles carry a TRASP* code (or a "spese trasporto"
// description) and are always taxed at the standard rate.
var (
	shippingArticlePattern     = regexp.MustCompile(`(?i)^TRASP`)
	shippingDescriptionPattern = regexp.MustCompile(`(?i)spese\s+(di\s+)?trasporto`)

	shippingVatRate = decimal.NewFromInt(22)
	oneHundred      = decimal.NewFromInt(100)
)

func isShippingSurcharge(item *OrderLineItem) bool {
	return shippingArticlePattern.MatchString(item.ArticleCode) ||
		shippingDescriptionPattern.MatchString(item.Description)
}

// ApplyShippingTaxCorrection backfills VAT on shipping surcharge lines synced
// without tax. It never overwrites a non-zero tax value, which makes it
// idempotent: a second run finds the VAT already recorded and does nothing.
// Returns the number of corrected items.
func ApplyShippingTaxCorrection(items []OrderLineItem) int {
	corrected := 0
	for i := range items {
		item := &items[i]
		if !isShippingSurcharge(item) {
			continue
		}
		if !item.VatAmount.IsZero() || !item.VatRate.IsZero() {
			continue
		}
		item.VatRate = shippingVatRate
		item.VatAmount = item.LineAmount.Mul(shippingVatRate).DivRound(oneHundred, 2)
		item.LineAmountWithVat = item.LineAmount.Add(item.VatAmount)
		corrected++
	}
	return corrected
}

// CorrectShippingTax re-runs the shipping tax correction over the stored line
// items of one order, independently of any replace. Zero-effect with a warning
// when the order does not exist.
func (s *Store) CorrectShippingTax(ctx context.Context, orderId int) (int, error) {
	db := s.db.WithContext(ctx)

	var order Order
	if err := db.First(&order, orderId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			config.LogWarn(s.logger, "models", "CorrectShippingTax", "order lookup", "order not found, nothing to correct")
			return 0, nil
		}
		return 0, err
	}

	var items []OrderLineItem
	if err := db.Where("order_id = ?", orderId).Find(&items).Error; err != nil {
		return 0, err
	}

	corrected := ApplyShippingTaxCorrection(items)
	if corrected == 0 {
		return 0, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range items {
			if err := tx.Model(&OrderLineItem{}).Where("id = ?", items[i].ID).Updates(map[string]interface{}{
				"vat_rate":             items[i].VatRate,
				"vat_amount":           items[i].VatAmount,
				"line_amount_with_vat": items[i].LineAmountWithVat,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return corrected, nil
}
