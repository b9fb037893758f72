package models

import (
	"log"

	"gorm.io/gorm"
)

// MigrateTable applies additive schema evolution: AutoMigrate only ever adds
// columns/indexes, never drops or rewrites, so all readers must tolerate
// missing/null values on new optional columns.
func MigrateTable(db *gorm.DB) {
	err := db.AutoMigrate(
		&Order{}, &OrderLineItem{},
		&StateTransition{},
		&SyncRun{}, &SyncError{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
