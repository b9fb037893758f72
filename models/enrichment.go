package models

import (
	"context"
	"errors"

	"github.com/mmdatafocus/ordermirror_backend/config"
	"gorm.io/gorm"
)

// UpdateShipmentFields applies the DDT enrichment block onto an order. Only
// non-nil fields are written. Zero-effect with a warning when the order does
// not exist.
func (s *Store) UpdateShipmentFields(ctx context.Context, orderId int, update *ShipmentUpdate) error {
	db := s.db.WithContext(ctx)

	var order Order
	if err := db.First(&order, orderId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			config.LogWarn(s.logger, "models", "UpdateShipmentFields", "order lookup", "order not found, shipment fields not updated")
			return nil
		}
		return err
	}

	fields := map[string]interface{}{}
	if update.DdtNumber != nil {
		fields["ddt_number"] = *update.DdtNumber
	}
	if update.DdtDate != nil {
		fields["ddt_date"] = *update.DdtDate
	}
	if update.DeliveryDate != nil {
		fields["delivery_date"] = *update.DeliveryDate
	}
	if update.TrackingNumber != nil {
		fields["tracking_number"] = *update.TrackingNumber
	}
	if update.Courier != nil {
		fields["courier"] = *update.Courier
	}
	if update.ShipToName != nil {
		fields["ship_to_name"] = *update.ShipToName
	}
	if update.ShipToAddress != nil {
		fields["ship_to_address"] = *update.ShipToAddress
	}
	if len(fields) == 0 {
		return nil
	}

	if err := db.Model(&order).Updates(fields).Error; err != nil {
		return err
	}
	s.cacheEvictOrder(ctx, orderId)
	return nil
}

// UpdateInvoiceFields applies the invoice enrichment block onto an order.
func (s *Store) UpdateInvoiceFields(ctx context.Context, orderId int, update *InvoiceUpdate) error {
	db := s.db.WithContext(ctx)

	var order Order
	if err := db.First(&order, orderId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			config.LogWarn(s.logger, "models", "UpdateInvoiceFields", "order lookup", "order not found, invoice fields not updated")
			return nil
		}
		return err
	}

	fields := map[string]interface{}{}
	if update.InvoiceNumber != nil {
		fields["invoice_number"] = *update.InvoiceNumber
	}
	if update.InvoiceDate != nil {
		fields["invoice_date"] = *update.InvoiceDate
	}
	if update.InvoiceAmount != nil {
		fields["invoice_amount"] = *update.InvoiceAmount
	}
	if update.InvoiceDueDate != nil {
		fields["invoice_due_date"] = *update.InvoiceDueDate
	}
	if update.InvoiceSettledDate != nil {
		fields["invoice_settled_date"] = *update.InvoiceSettledDate
	}
	if update.InvoiceClosed != nil {
		fields["invoice_closed"] = *update.InvoiceClosed
	}
	if len(fields) == 0 {
		return nil
	}

	if err := db.Model(&order).Updates(fields).Error; err != nil {
		return err
	}
	s.cacheEvictOrder(ctx, orderId)
	return nil
}
