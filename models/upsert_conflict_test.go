package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mmdatafocus/ordermirror_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openConflictStore mirrors the black-box helper. It lives in this package
// because the version-guard tests register callbacks on the raw handle, and it
// skips gorm's default write transaction so the interfering update below can
// run on the single shared connection.
func openConflictStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	MigrateTable(db)

	logg := logrus.New()
	logg.SetOutput(io.Discard)
	return NewStore(db, logg)
}

// stealVersion simulates a concurrent writer landing between the upsert's read
// and its guarded write: right before each of the next *times order updates,
// it bumps the stored version so the guard's WHERE matches zero rows.
func stealVersion(t *testing.T, store *Store, orderId int, times *int) {
	t.Helper()

	raw := store.DB().Session(&gorm.Session{NewDB: true})
	err := store.DB().Callback().Update().Before("gorm:update").Register("steal_version", func(tx *gorm.DB) {
		if *times == 0 {
			return
		}
		*times--
		if execErr := raw.Exec("UPDATE orders SET version = version + 1 WHERE id = ?", orderId).Error; execErr != nil {
			t.Errorf("interfering version bump: %v", execErr)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func conflictInput(id int, status string) *NewOrder {
	return &NewOrder{
		ID:          id,
		OrderNumber: fmt.Sprintf("ORD-%d", id),
		Status:      status,
		TotalAmount: decimal.NewFromInt(100),
	}
}

func TestUpsertOrderRetriesLostVersionCheck(t *testing.T) {
	store := openConflictStore(t)
	ctx := context.Background()

	if _, err := store.UpsertOrder(ctx, "tenant-a", conflictInput(1, "Ordine aperto")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	times := 1
	stealVersion(t, store, 1, &times)

	result, err := store.UpsertOrder(ctx, "tenant-a", conflictInput(1, "Spedito"))
	if err != nil {
		t.Fatalf("upsert with one lost version check: %v", err)
	}
	if result.Action != UpsertActionUpdated {
		t.Fatalf("action = %s, want updated", result.Action)
	}
	if times != 0 {
		t.Fatalf("concurrent writer never interfered")
	}

	var order Order
	if err := store.DB().First(&order, 1).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if order.Status != "Spedito" {
		t.Fatalf("status = %s, retried write was lost", order.Status)
	}
	// one bump from the interfering writer, one from the retried update
	if order.Version != 2 {
		t.Fatalf("version = %d, want 2", order.Version)
	}
}

func TestUpsertOrderConflictRetriesExhausted(t *testing.T) {
	store := openConflictStore(t)
	ctx := context.Background()

	if _, err := store.UpsertOrder(ctx, "tenant-a", conflictInput(2, "Ordine aperto")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	times := maxUpsertRetries
	stealVersion(t, store, 2, &times)

	_, err := store.UpsertOrder(ctx, "tenant-a", conflictInput(2, "Spedito"))
	if !errors.Is(err, utils.ErrorConflictRetryExhausted) {
		t.Fatalf("err = %v, want ErrorConflictRetryExhausted", err)
	}
	if times != 0 {
		t.Fatalf("guard gave up after %d interferences, want %d", maxUpsertRetries-times, maxUpsertRetries)
	}

	var order Order
	if err := store.DB().First(&order, 2).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if order.Status != "Ordine aperto" {
		t.Fatalf("status = %s, exhausted upsert must not half-apply", order.Status)
	}
}
