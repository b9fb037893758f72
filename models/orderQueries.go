package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/ordermirror_backend/config"
	"gorm.io/gorm"
)

// GetOrder looks one order up by internal id, read-through cached when redis
// is configured. Unknown ids return (nil, nil) so read callers can treat
// "not mirrored yet" as empty rather than an error.
func (s *Store) GetOrder(ctx context.Context, id int) (*Order, error) {
	if cached := s.cacheGetOrder(ctx, id); cached != nil {
		return cached, nil
	}

	var order Order
	err := s.db.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.cacheSetOrder(ctx, &order)
	return &order, nil
}

func (s *Store) GetOrderByNumber(ctx context.Context, tenant string, orderNumber string) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND order_number = ?", tenant, orderNumber).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderFilter narrows listings. FreeText searches across order number,
// customer, amount, tracking, DDT, invoice, address and reference columns.
type OrderFilter struct {
	Status   *string
	Customer *string
	DateFrom *time.Time
	DateTo   *time.Time
	FreeText *string
}

func (f *OrderFilter) apply(dbCtx *gorm.DB) *gorm.DB {
	if f == nil {
		return dbCtx
	}
	if f.Status != nil && *f.Status != "" {
		dbCtx = dbCtx.Where("status = ?", *f.Status)
	}
	if f.Customer != nil && *f.Customer != "" {
		dbCtx = dbCtx.Where("customer_name LIKE ?", "%"+*f.Customer+"%")
	}
	if f.DateFrom != nil {
		dbCtx = dbCtx.Where("order_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		dbCtx = dbCtx.Where("order_date <= ?", *f.DateTo)
	}
	if f.FreeText != nil && *f.FreeText != "" {
		like := "%" + *f.FreeText + "%"
		dbCtx = dbCtx.Where(
			"order_number LIKE ? OR customer_name LIKE ? OR customer_code LIKE ? OR total_amount LIKE ?"+
				" OR tracking_number LIKE ? OR ddt_number LIKE ? OR invoice_number LIKE ?"+
				" OR delivery_address LIKE ? OR ship_to_address LIKE ? OR reference LIKE ?",
			like, like, like, like, like, like, like, like, like, like)
	}
	return dbCtx
}

// PaginateOrders lists a tenant's orders newest first. Unknown tenants yield
// an empty connection, not an error.
func (s *Store) PaginateOrders(ctx context.Context, tenant string, limit int, after *string, filter *OrderFilter) (*OrdersConnection, error) {
	if limit <= 0 {
		limit = config.SearchLimit
	}
	dbCtx := s.db.WithContext(ctx).Where("tenant_id = ?", tenant)
	dbCtx = filter.apply(dbCtx)

	edges, pageInfo, err := FetchPageCompositeCursor[Order](dbCtx, limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var connection OrdersConnection
	connection.PageInfo = pageInfo
	for _, edge := range edges {
		ordersEdge := OrdersEdge(edge)
		connection.Edges = append(connection.Edges, &ordersEdge)
	}
	return &connection, nil
}

func (s *Store) CountOrders(ctx context.Context, tenant string, filter *OrderFilter) (int64, error) {
	var count int64
	dbCtx := s.db.WithContext(ctx).Model(&Order{}).Where("tenant_id = ?", tenant)
	dbCtx = filter.apply(dbCtx)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// LastSyncAt reports the most recent sync timestamp across a tenant's orders,
// nil when the tenant has never synced (or does not exist).
func (s *Store) LastSyncAt(ctx context.Context, tenant string) (*time.Time, error) {
	var latest *time.Time
	err := s.db.WithContext(ctx).Model(&Order{}).
		Where("tenant_id = ?", tenant).
		Select("MAX(last_sync_at)").
		Scan(&latest).Error
	if err != nil {
		return nil, err
	}
	return latest, nil
}
