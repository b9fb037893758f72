package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/ordermirror_backend/config"
	"github.com/mmdatafocus/ordermirror_backend/utils"
	"gorm.io/gorm"
)

// Renumbering reports the one-time placeholder -> canonical order number
// replacement so callers can fix references elsewhere without re-deriving it.
type Renumbering struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type UpsertResult struct {
	Action     UpsertAction `json:"action"`
	Renumbered *Renumbering `json:"renumbered,omitempty"`
}

type BatchFailure struct {
	OrderId int    `json:"order_id"`
	Error   string `json:"error"`
}

type BatchResult struct {
	Inserted   int            `json:"inserted"`
	Updated    int            `json:"updated"`
	Skipped    int            `json:"skipped"`
	Renumbered []Renumbering  `json:"renumbered,omitempty"`
	Failed     []BatchFailure `json:"failed,omitempty"`
}

const maxUpsertRetries = 3

// UpsertOrder applies one order delivered by a sync job. The existing row is
// looked up by internal id, never by order number: the number may have just
// changed from placeholder to canonical and a number lookup would duplicate
// the row. Writes are guarded by the version column; a lost version check is
// retried up to maxUpsertRetries times.
func (s *Store) UpsertOrder(ctx context.Context, tenant string, input *NewOrder) (*UpsertResult, error) {
	for attempt := 0; attempt < maxUpsertRetries; attempt++ {
		result, conflicted, err := s.upsertOnce(ctx, tenant, input)
		if err != nil {
			return nil, err
		}
		if conflicted {
			continue
		}
		return result, nil
	}
	return nil, utils.ErrorConflictRetryExhausted
}

func (s *Store) upsertOnce(ctx context.Context, tenant string, input *NewOrder) (*UpsertResult, bool, error) {
	db := s.db.WithContext(ctx)

	var existing Order
	err := db.Where("id = ? AND tenant_id = ?", input.ID, tenant).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		order := Order{
			ID:              input.ID,
			TenantId:        tenant,
			OrderNumber:     input.OrderNumber,
			CustomerCode:    input.CustomerCode,
			CustomerName:    input.CustomerName,
			DeliveryName:    input.DeliveryName,
			DeliveryAddress: input.DeliveryAddress,
			Reference:       input.Reference,
			OrderDate:       input.OrderDate,
			Status:          input.Status,
			DeliveryStatus:  input.DeliveryStatus,
			InvoiceStatus:   input.InvoiceStatus,
			TotalAmount:     input.TotalAmount,
			TotalTaxAmount:  input.TotalTaxAmount,
			TotalWithTax:    input.TotalWithTax,
			Phase:           PhaseCreated,
			ForwardedAt:     input.ForwardedAt,
			ExternalRef:     input.ExternalRef,
			Fingerprint:     input.Fingerprint(),
			LastSyncAt:      &now,
		}
		if createErr := db.Create(&order).Error; createErr != nil {
			return nil, false, createErr
		}
		return &UpsertResult{Action: UpsertActionInserted}, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var renumbered *Renumbering
	if existing.OrderNumber != input.OrderNumber {
		renumbered = &Renumbering{From: existing.OrderNumber, To: input.OrderNumber}
	}

	now := time.Now()
	newFingerprint := input.Fingerprint()

	guarded := db.Model(&Order{}).
		Where("id = ? AND tenant_id = ? AND version = ?", existing.ID, tenant, existing.Version)

	if existing.Fingerprint == newFingerprint {
		// Unchanged record. Still refresh last_sync and the order number so a
		// placeholder -> canonical rename is captured even when nothing else
		// changed.
		res := guarded.Updates(map[string]interface{}{
			"order_number": input.OrderNumber,
			"last_sync_at": &now,
			"version":      gorm.Expr("version + 1"),
		})
		if res.Error != nil {
			return nil, false, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, true, nil
		}
		s.cacheEvictOrder(ctx, existing.ID)
		return &UpsertResult{Action: UpsertActionSkipped, Renumbered: renumbered}, false, nil
	}

	res := guarded.Updates(map[string]interface{}{
		"order_number":     input.OrderNumber,
		"customer_code":    input.CustomerCode,
		"customer_name":    input.CustomerName,
		"delivery_name":    input.DeliveryName,
		"delivery_address": input.DeliveryAddress,
		"reference":        input.Reference,
		"order_date":       input.OrderDate,
		"status":           input.Status,
		"delivery_status":  input.DeliveryStatus,
		"invoice_status":   input.InvoiceStatus,
		"total_amount":     input.TotalAmount,
		"total_tax_amount": input.TotalTaxAmount,
		"total_with_tax":   input.TotalWithTax,
		"forwarded_at":     input.ForwardedAt,
		"external_ref":     input.ExternalRef,
		"fingerprint":      newFingerprint,
		"last_sync_at":     &now,
		"version":          gorm.Expr("version + 1"),
	})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, true, nil
	}
	s.cacheEvictOrder(ctx, existing.ID)
	return &UpsertResult{Action: UpsertActionUpdated, Renumbered: renumbered}, false, nil
}

// UpsertOrders processes a batch by iterating the single-row upsert. Each row
// is an independent unit of work: one row's failure is recorded and does not
// corrupt the fingerprints of the others.
func (s *Store) UpsertOrders(ctx context.Context, tenant string, inputs []*NewOrder) (*BatchResult, error) {
	batch := &BatchResult{}
	for _, input := range inputs {
		result, err := s.UpsertOrder(ctx, tenant, input)
		if err != nil {
			config.LogError(s.logger, "models", "UpsertOrders", "upsert order", input.ID, err)
			batch.Failed = append(batch.Failed, BatchFailure{OrderId: input.ID, Error: err.Error()})
			continue
		}
		switch result.Action {
		case UpsertActionInserted:
			batch.Inserted++
		case UpsertActionUpdated:
			batch.Updated++
		case UpsertActionSkipped:
			batch.Skipped++
		}
		if result.Renumbered != nil {
			batch.Renumbered = append(batch.Renumbered, *result.Renumbered)
		}
	}
	return batch, nil
}
