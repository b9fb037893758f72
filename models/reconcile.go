package models

import (
	"context"

	"github.com/mmdatafocus/ordermirror_backend/config"
	"gorm.io/gorm"
)

// ReconcileDeletions removes local orders whose order number is absent from
// the authoritative key set for the tenant, cascading over line items and
// transition history in one transaction.
//
// An empty authoritative set is refused outright: it almost always means the
// upstream fetch failed, and deleting everything on that signal would be
// catastrophic. This guard is a first-class invariant, not an edge case.
//
// Orders still carrying a PENDING- placeholder number were never assigned a
// key upstream and are exempt from reconciliation.
func (s *Store) ReconcileDeletions(ctx context.Context, tenant string, authoritativeKeys []string) (int, error) {
	if len(authoritativeKeys) == 0 {
		config.LogWarn(s.logger, "models", "ReconcileDeletions", "precondition",
			"empty authoritative key set, refusing to reconcile deletions")
		return 0, nil
	}

	db := s.db.WithContext(ctx)

	var staleIds []int
	err := db.Model(&Order{}).
		Where("tenant_id = ?", tenant).
		Where("order_number NOT IN ?", authoritativeKeys).
		Where("order_number NOT LIKE ?", PendingNumberPrefix+"%").
		Pluck("id", &staleIds).Error
	if err != nil {
		return 0, err
	}
	if len(staleIds) == 0 {
		return 0, nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id IN ?", staleIds).Delete(&OrderLineItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id IN ?", staleIds).Delete(&StateTransition{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", staleIds).Delete(&Order{}).Error
	})
	if err != nil {
		return 0, err
	}

	for _, id := range staleIds {
		s.cacheEvictOrder(ctx, id)
	}
	s.logger.WithField("module", "models").
		WithField("tenant", tenant).
		WithField("deleted", len(staleIds)).
		Info("reconciled stale orders against authoritative key set")
	return len(staleIds), nil
}

// LocalKeys returns the order numbers currently mirrored for a tenant.
func (s *Store) LocalKeys(ctx context.Context, tenant string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).Model(&Order{}).
		Where("tenant_id = ?", tenant).
		Where("order_number NOT LIKE ?", PendingNumberPrefix+"%").
		Pluck("order_number", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}
