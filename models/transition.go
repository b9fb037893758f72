package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/ordermirror_backend/config"
	"github.com/mmdatafocus/ordermirror_backend/utils"
	"gorm.io/gorm"
)

// StateTransition is one append-only audit record. Rows are never updated or
// deleted; the phase cached on the order row is a projection of the latest
// transition.
type StateTransition struct {
	ID            int        `gorm:"primary_key" json:"id"`
	OrderId       int        `gorm:"index;not null" json:"order_id"`
	FromPhase     *Phase     `gorm:"size:32" json:"from_phase"`
	ToPhase       Phase      `gorm:"size:32;not null" json:"to_phase"`
	Actor         string     `gorm:"size:100;not null" json:"actor"`
	Notes         string     `gorm:"type:text" json:"notes"`
	Confidence    Confidence `gorm:"size:10" json:"confidence"`
	Provenance    Provenance `gorm:"size:10" json:"provenance"`
	CorrelationId string     `gorm:"size:64" json:"correlation_id"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

type TransitionsConnection struct {
	Edges    []*TransitionsEdge `json:"edges"`
	PageInfo *PageInfo          `json:"pageInfo"`
}

type TransitionsEdge Edge[StateTransition]

func (t StateTransition) GetCursor() string {
	return t.CreatedAt.String()
}

func (t StateTransition) GetId() int {
	return t.ID
}

// RecordTransition writes the new phase onto the order row and appends one
// immutable history row, atomically. A missing order no-ops loudly: it logs a
// warning and returns nil, nil, because callers treat "nothing to do" as
// success.
func (s *Store) RecordTransition(ctx context.Context, orderId int, newPhase Phase, actor string,
	notes string, confidence Confidence, provenance Provenance) (*StateTransition, error) {

	db := s.db.WithContext(ctx)

	var order Order
	if err := db.First(&order, orderId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			config.LogWarn(s.logger, "models", "RecordTransition", "order lookup", "order not found, transition not recorded")
			return nil, nil
		}
		return nil, err
	}

	var fromPhase *Phase
	if order.Phase != "" {
		prev := order.Phase
		fromPhase = &prev
	}

	transition := StateTransition{
		OrderId:       orderId,
		FromPhase:     fromPhase,
		ToPhase:       newPhase,
		Actor:         actor,
		Notes:         notes,
		Confidence:    confidence,
		Provenance:    provenance,
		CorrelationId: utils.CorrelationIdFromContextOrNew(ctx),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&transition).Error; err != nil {
			return err
		}
		return tx.Model(&Order{}).Where("id = ?", orderId).
			Update("phase", newPhase).Error
	})
	if err != nil {
		return nil, err
	}

	s.cacheEvictOrder(ctx, orderId)
	return &transition, nil
}

// RecordAuditEvent reuses the transition log as a generic structured audit
// sink: phase unchanged, the composed message in notes. The actor comes from
// the context when the caller set one, "system" otherwise.
func (s *Store) RecordAuditEvent(ctx context.Context, orderId int, message string) (*StateTransition, error) {
	var order Order
	if err := s.db.WithContext(ctx).First(&order, orderId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			config.LogWarn(s.logger, "models", "RecordAuditEvent", "order lookup", "order not found, audit event not recorded")
			return nil, nil
		}
		return nil, err
	}
	actor := ActorSystem
	if a, ok := utils.GetActorFromContext(ctx); ok && a != "" {
		actor = a
	}
	return s.RecordTransition(ctx, orderId, order.Phase, actor, message, ConfidenceHigh, ProvenanceLocal)
}

// GetTransitions lists an order's history, newest first.
func (s *Store) GetTransitions(ctx context.Context, orderId int) ([]*StateTransition, error) {
	var results []*StateTransition
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderId).
		Order("created_at DESC, id DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) PaginateTransitions(ctx context.Context, orderId int, limit int, after *string) (*TransitionsConnection, error) {
	if limit <= 0 {
		limit = config.SearchLimit
	}
	dbCtx := s.db.WithContext(ctx).Where("order_id = ?", orderId)

	edges, pageInfo, err := FetchPageCompositeCursor[StateTransition](dbCtx, limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var connection TransitionsConnection
	connection.PageInfo = pageInfo
	for _, edge := range edges {
		transitionsEdge := TransitionsEdge(edge)
		connection.Edges = append(connection.Edges, &transitionsEdge)
	}
	return &connection, nil
}
