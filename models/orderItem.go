package models

import (
	"context"
	"errors"

	"github.com/mmdatafocus/ordermirror_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderLineItem is a child row of Order. Line items are created/replaced in
// bulk whenever a sync delivers a fresh set for an order; they are never
// patched field-by-field except by the shipping tax correction.
type OrderLineItem struct {
	ID          int    `gorm:"primary_key" json:"id"`
	OrderId     int    `gorm:"index;not null" json:"order_id"`
	ArticleCode string `gorm:"size:64" json:"article_code"`
	Description string `gorm:"size:255" json:"description"`

	Quantity   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Discount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount"`
	LineAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"line_amount"`

	// VAT columns are zero until the upstream system (or the shipping tax
	// correction) fills them in.
	VatRate           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_rate"`
	VatAmount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_amount"`
	LineAmountWithVat decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"line_amount_with_vat"`

	WarehouseCode string `gorm:"size:64" json:"warehouse_code"`
	WarehouseRow  string `gorm:"size:64" json:"warehouse_row"`
}

type NewOrderLineItem struct {
	ArticleCode       string          `json:"article_code" validate:"required"`
	Description       string          `json:"description"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Discount          decimal.Decimal `json:"discount"`
	LineAmount        decimal.Decimal `json:"line_amount"`
	VatRate           decimal.Decimal `json:"vat_rate"`
	VatAmount         decimal.Decimal `json:"vat_amount"`
	LineAmountWithVat decimal.Decimal `json:"line_amount_with_vat"`
	WarehouseCode     string          `json:"warehouse_code"`
	WarehouseRow      string          `json:"warehouse_row"`
}

func (input NewOrderLineItem) mapInput(orderId int) OrderLineItem {
	return OrderLineItem{
		OrderId:           orderId,
		ArticleCode:       input.ArticleCode,
		Description:       input.Description,
		Quantity:          input.Quantity,
		UnitPrice:         input.UnitPrice,
		Discount:          input.Discount,
		LineAmount:        input.LineAmount,
		VatRate:           input.VatRate,
		VatAmount:         input.VatAmount,
		LineAmountWithVat: input.LineAmountWithVat,
		WarehouseCode:     input.WarehouseCode,
		WarehouseRow:      input.WarehouseRow,
	}
}

func (li OrderLineItem) GetId() int {
	return li.ID
}

// ReplaceLineItems swaps the full line-item set of an order inside one
// transaction (delete-then-insert, never a partial patch) so stale rows cannot
// survive an upstream item-count shrink. The shipping tax correction runs on
// the fresh set before it is written. Zero-effect with a warning when the
// order does not exist.
func (s *Store) ReplaceLineItems(ctx context.Context, orderId int, inputs []NewOrderLineItem) (int, error) {
	db := s.db.WithContext(ctx)

	var order Order
	if err := db.First(&order, orderId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			config.LogWarn(s.logger, "models", "ReplaceLineItems", "order lookup", "order not found, line items not replaced")
			return 0, nil
		}
		return 0, err
	}

	items := make([]OrderLineItem, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, input.mapInput(orderId))
	}
	ApplyShippingTaxCorrection(items)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderId).Delete(&OrderLineItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// GetLineItems lists the stored line items of one order. Unknown order ids
// yield an empty slice, not an error.
func (s *Store) GetLineItems(ctx context.Context, orderId int) ([]*OrderLineItem, error) {
	var items []*OrderLineItem
	err := s.db.WithContext(ctx).Where("order_id = ?", orderId).Order("id").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
