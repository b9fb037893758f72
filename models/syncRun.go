package models

import "time"

// SyncRun tracks one pass of the companion sync job for a tenant/source.
type SyncRun struct {
	ID            int        `gorm:"primary_key" json:"id"`
	TenantId      string     `gorm:"index;size:64;not null" json:"tenant_id"`
	Source        string     `gorm:"index;size:50;not null" json:"source"`
	Status        string     `gorm:"size:20;not null" json:"status"`
	TriggeredBy   string     `gorm:"size:20" json:"triggered_by"`
	RecordsSynced int        `json:"records_synced"`
	ErrorCount    int        `json:"error_count"`
	DeletedCount  int        `json:"deleted_count"`
	CorrelationId string     `gorm:"size:64" json:"correlation_id"`
	StartedAt     *time.Time `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	DurationMs    int64      `json:"duration_ms"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// SyncError records one row the pass could not apply.
type SyncError struct {
	ID         int       `gorm:"primary_key" json:"id"`
	SyncRunId  int       `gorm:"index;not null" json:"sync_run_id"`
	TenantId   string    `gorm:"index;size:64;not null" json:"tenant_id"`
	EntityType string    `gorm:"size:50" json:"entity_type"`
	ExternalId string    `gorm:"size:128" json:"external_id"`
	Message    string    `gorm:"type:text" json:"message"`
	Retryable  bool      `gorm:"default:false" json:"retryable"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
