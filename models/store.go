package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmdatafocus/ordermirror_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store is the single shared handle over the mirror tables. It is constructed
// once by the composition root and passed to every collaborator; no package
// global. All multi-statement writes go through db.Transaction so a crash
// mid-operation never leaves partially-applied state.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
	cache  *redis.Client
}

func NewStore(db *gorm.DB, logger *logrus.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// WithCache enables the redis read-through cache for single-order lookups.
// A nil client is tolerated and simply leaves caching off.
func (s *Store) WithCache(cache *redis.Client) *Store {
	s.cache = cache
	return s
}

// DB exposes the underlying handle for migration and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

const orderCacheLifespan = time.Hour

func orderCacheKey(id int) string {
	return fmt.Sprintf("%s:%d", utils.GetTypeName[Order](), id)
}

func (s *Store) cacheGetOrder(ctx context.Context, id int) *Order {
	if s.cache == nil {
		return nil
	}
	val, err := s.cache.Get(ctx, orderCacheKey(id)).Result()
	if err != nil {
		return nil
	}
	var order Order
	if err := json.Unmarshal([]byte(val), &order); err != nil {
		return nil
	}
	return &order
}

func (s *Store) cacheSetOrder(ctx context.Context, order *Order) {
	if s.cache == nil || order == nil {
		return
	}
	b, err := json.Marshal(order)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, orderCacheKey(order.ID), b, orderCacheLifespan).Err()
}

func (s *Store) cacheEvictOrder(ctx context.Context, id int) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, orderCacheKey(id)).Err()
}
