package ordersync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/ordermirror_backend/config"
	"github.com/mmdatafocus/ordermirror_backend/models"
	"github.com/mmdatafocus/ordermirror_backend/utils"
)

// ActorSync is recorded on transitions produced by sync-driven detection.
const ActorSync = "sync"

func (c *Coordinator) runPass(ctx context.Context, run *models.SyncRun, tenant string, payload *SyncPayload) PassStats {
	var stats PassStats
	touched := make([]int, 0, len(payload.Orders))

	for i := range payload.Orders {
		row := &payload.Orders[i]
		if err := c.applyOrderRow(ctx, tenant, row); err != nil {
			config.LogError(c.logger, "ordersync", "runPass", "apply order row", row.ID, err)
			c.recordSyncError(ctx, run, tenant, "order", fmt.Sprint(row.ID), err)
			stats.ErrorCount++
			continue
		}
		touched = append(touched, row.ID)
		stats.RecordsSynced++
	}

	for i := range payload.Shipments {
		row := &payload.Shipments[i]
		if err := c.applyShipmentRow(ctx, row); err != nil {
			config.LogError(c.logger, "ordersync", "runPass", "apply shipment row", row.OrderId, err)
			c.recordSyncError(ctx, run, tenant, "ddt", row.DdtNumber, err)
			stats.ErrorCount++
			continue
		}
		touched = append(touched, row.OrderId)
		stats.RecordsSynced++
	}

	for i := range payload.Invoices {
		row := &payload.Invoices[i]
		if err := c.applyInvoiceRow(ctx, row); err != nil {
			config.LogError(c.logger, "ordersync", "runPass", "apply invoice row", row.OrderId, err)
			c.recordSyncError(ctx, run, tenant, "invoice", row.InvoiceNumber, err)
			stats.ErrorCount++
			continue
		}
		touched = append(touched, row.OrderId)
		stats.RecordsSynced++
	}

	if len(payload.AuthoritativeKeys) > 0 {
		deleted, err := c.store.ReconcileDeletions(ctx, tenant, payload.AuthoritativeKeys)
		if err != nil {
			config.LogError(c.logger, "ordersync", "runPass", "reconcile deletions", tenant, err)
			c.recordSyncError(ctx, run, tenant, "reconcile", "", err)
			stats.ErrorCount++
		}
		stats.DeletedCount = deleted
	}

	c.detectAndRecord(ctx, touched)
	return stats
}

func (c *Coordinator) applyOrderRow(ctx context.Context, tenant string, row *OrderRow) error {
	input := &models.NewOrder{
		ID:              row.ID,
		OrderNumber:     row.OrderNumber,
		CustomerCode:    row.CustomerCode,
		CustomerName:    row.CustomerName,
		DeliveryName:    row.DeliveryName,
		DeliveryAddress: row.DeliveryAddress,
		Reference:       row.Reference,
		OrderDate:       utils.ParseItalianDate(row.OrderDate),
		Status:          row.Status,
		DeliveryStatus:  row.DeliveryStatus,
		InvoiceStatus:   row.InvoiceStatus,
		TotalAmount:     utils.ParseAmount(row.TotalAmount),
		TotalTaxAmount:  utils.ParseAmount(row.TotalTaxAmount),
		TotalWithTax:    utils.ParseAmount(row.TotalWithTax),
		ForwardedAt:     utils.ParseItalianDate(row.ForwardedAt),
		ExternalRef:     row.ExternalRef,
	}

	result, err := c.store.UpsertOrder(ctx, tenant, input)
	if err != nil {
		return err
	}
	if result.Renumbered != nil {
		// Renumbering is reported, never hidden: leave a trace in the audit
		// log so reference fixups elsewhere can be reconciled later.
		message := fmt.Sprintf("order renumbered from %s to %s", result.Renumbered.From, result.Renumbered.To)
		if _, auditErr := c.store.RecordAuditEvent(ctx, row.ID, message); auditErr != nil {
			config.LogError(c.logger, "ordersync", "applyOrderRow", "audit renumbering", row.ID, auditErr)
		}
	}

	if row.Items != nil {
		items := make([]models.NewOrderLineItem, 0, len(row.Items))
		for _, item := range row.Items {
			items = append(items, models.NewOrderLineItem{
				ArticleCode:       item.ArticleCode,
				Description:       item.Description,
				Quantity:          utils.ParseAmount(item.Quantity),
				UnitPrice:         utils.ParseAmount(item.UnitPrice),
				Discount:          utils.ParseAmount(item.Discount),
				LineAmount:        utils.ParseAmount(item.LineAmount),
				VatRate:           utils.ParseAmount(item.VatRate),
				VatAmount:         utils.ParseAmount(item.VatAmount),
				LineAmountWithVat: utils.ParseAmount(item.LineAmountWithVat),
				WarehouseCode:     item.WarehouseCode,
				WarehouseRow:      item.WarehouseRow,
			})
		}
		if _, err := c.store.ReplaceLineItems(ctx, row.ID, items); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) applyShipmentRow(ctx context.Context, row *ShipmentRow) error {
	return c.store.UpdateShipmentFields(ctx, row.OrderId, &models.ShipmentUpdate{
		DdtNumber:      &row.DdtNumber,
		DdtDate:        utils.ParseItalianDate(row.DdtDate),
		DeliveryDate:   utils.ParseItalianDate(row.DeliveryDate),
		TrackingNumber: &row.TrackingNumber,
		Courier:        &row.Courier,
		ShipToName:     &row.ShipToName,
		ShipToAddress:  &row.ShipToAddress,
	})
}

func (c *Coordinator) applyInvoiceRow(ctx context.Context, row *InvoiceRow) error {
	amount := utils.ParseAmount(row.InvoiceAmount)
	return c.store.UpdateInvoiceFields(ctx, row.OrderId, &models.InvoiceUpdate{
		InvoiceNumber:      &row.InvoiceNumber,
		InvoiceDate:        utils.ParseItalianDate(row.InvoiceDate),
		InvoiceAmount:      &amount,
		InvoiceDueDate:     utils.ParseItalianDate(row.InvoiceDueDate),
		InvoiceSettledDate: utils.ParseItalianDate(row.InvoiceSettledDate),
		InvoiceClosed:      &row.InvoiceClosed,
	})
}

// detectAndRecord runs the state engine over every order touched by the pass.
// Forward motion becomes a recorded transition; anything else that disagrees
// with the cached phase is flagged as an anomaly in the audit log.
func (c *Coordinator) detectAndRecord(ctx context.Context, orderIds []int) {
	seen := make(map[int]bool, len(orderIds))
	now := time.Now()

	for _, id := range orderIds {
		if seen[id] {
			continue
		}
		seen[id] = true

		order, err := c.store.GetOrder(ctx, id)
		if err != nil {
			config.LogError(c.logger, "ordersync", "detectAndRecord", "order lookup", id, err)
			continue
		}
		if order == nil {
			continue
		}

		detection := models.DetectPhase(order, now)
		if detection.Phase == order.Phase {
			continue
		}

		if models.Progressed(order.Phase, detection.Phase) {
			_, err = c.store.RecordTransition(ctx, id, detection.Phase, ActorSync,
				detection.Notes, detection.Confidence, detection.Provenance)
			if err != nil {
				config.LogError(c.logger, "ordersync", "detectAndRecord", "record transition", id, err)
			}
			continue
		}

		message := fmt.Sprintf("phase regression detected: %s -> %s (confidence=%s, provenance=%s), keeping %s",
			order.Phase, detection.Phase, detection.Confidence, detection.Provenance, order.Phase)
		if _, err := c.store.RecordAuditEvent(ctx, id, message); err != nil {
			config.LogError(c.logger, "ordersync", "detectAndRecord", "audit regression", id, err)
		}
	}
}

func (c *Coordinator) recordSyncError(ctx context.Context, run *models.SyncRun, tenant, entityType, externalId string, cause error) {
	record := models.SyncError{
		SyncRunId:  run.ID,
		TenantId:   tenant,
		EntityType: entityType,
		ExternalId: externalId,
		Message:    cause.Error(),
		// Lost version races resolve themselves on the next pass; everything
		// else needs the row (or the code) fixed first.
		Retryable: errors.Is(cause, utils.ErrorConflictRetryExhausted),
	}
	if err := c.store.DB().WithContext(ctx).Create(&record).Error; err != nil {
		config.LogError(c.logger, "ordersync", "recordSyncError", "persist sync error", entityType, err)
	}
}
