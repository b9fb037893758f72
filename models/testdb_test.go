package models_test

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mmdatafocus/ordermirror_backend/models"
	"github.com/sirupsen/logrus"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestStore opens a private in-memory sqlite database per test. The store
// semantics under test (transactions, cascades, version guards) are all
// portable SQL; MySQL-only behavior stays behind the config package.
func newTestStore(t *testing.T) *models.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// a shared-cache in-memory db must not outlive the test
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	models.MigrateTable(db)

	logg := logrus.New()
	logg.SetOutput(io.Discard)
	return models.NewStore(db, logg)
}
