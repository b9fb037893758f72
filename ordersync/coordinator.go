package ordersync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/ordermirror_backend/config"
	"github.com/mmdatafocus/ordermirror_backend/models"
	"github.com/mmdatafocus/ordermirror_backend/utils"
	"github.com/sirupsen/logrus"
)

// Coordinator enforces the single-flight invariant: at most one sync pass per
// tenant/source runs at a time. A new attempt while one is in flight or while
// paused fails fast instead of queuing; Pause sets the flag and then polls
// until the in-flight pass completes before returning.
type Coordinator struct {
	store    *models.Store
	logger   *logrus.Logger
	validate *validator.Validate

	// locker guards against a second service instance syncing the same
	// tenant/source. Nil when redis is not configured.
	locker       *redislock.Client
	lockTTL      time.Duration
	pollInterval time.Duration

	mu      sync.Mutex
	flights map[string]*flight
}

type flight struct {
	running bool
	paused  bool
}

func NewCoordinator(store *models.Store, logger *logrus.Logger) *Coordinator {
	return &Coordinator{
		store:        store,
		logger:       logger,
		validate:     validator.New(),
		lockTTL:      10 * time.Minute,
		pollInterval: 250 * time.Millisecond,
		flights:      map[string]*flight{},
	}
}

// WithLocker enables the cross-instance redis guard.
func (c *Coordinator) WithLocker(locker *redislock.Client) *Coordinator {
	c.locker = locker
	return c
}

func (c *Coordinator) WithPollInterval(d time.Duration) *Coordinator {
	c.pollInterval = d
	return c
}

func flightKey(tenant, source string) string {
	return tenant + "|" + source
}

func (c *Coordinator) acquire(tenant, source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := flightKey(tenant, source)
	fl, ok := c.flights[key]
	if !ok {
		fl = &flight{}
		c.flights[key] = fl
	}
	if fl.paused {
		return utils.ErrorSyncPaused
	}
	if fl.running {
		return utils.ErrorSyncInFlight
	}
	fl.running = true
	return nil
}

func (c *Coordinator) release(tenant, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fl, ok := c.flights[flightKey(tenant, source)]; ok {
		fl.running = false
	}
}

func (c *Coordinator) isRunning(tenant, source string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	fl, ok := c.flights[flightKey(tenant, source)]
	return ok && fl.running
}

// Pause blocks new passes for the tenant/source, then waits for any in-flight
// pass to finish before returning.
func (c *Coordinator) Pause(ctx context.Context, tenant, source string) error {
	c.mu.Lock()
	key := flightKey(tenant, source)
	fl, ok := c.flights[key]
	if !ok {
		fl = &flight{}
		c.flights[key] = fl
	}
	fl.paused = true
	c.mu.Unlock()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for c.isRunning(tenant, source) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (c *Coordinator) Resume(tenant, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fl, ok := c.flights[flightKey(tenant, source)]; ok {
		fl.paused = false
	}
}

func (c *Coordinator) Paused(tenant, source string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	fl, ok := c.flights[flightKey(tenant, source)]
	return ok && fl.paused
}

// Run executes one sync pass for a tenant/source and records a SyncRun row
// with its outcome. Fails fast with ErrorSyncInFlight/ErrorSyncPaused instead
// of queuing.
func (c *Coordinator) Run(ctx context.Context, tenant, source string, payload *SyncPayload) (*models.SyncRun, error) {
	if payload == nil {
		return nil, errors.New("nil sync payload")
	}
	if err := c.validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("invalid sync payload: %w", err)
	}

	if err := c.acquire(tenant, source); err != nil {
		return nil, err
	}
	defer c.release(tenant, source)

	if c.locker != nil {
		lock, err := c.locker.Obtain(ctx, "ordersync:"+flightKey(tenant, source), c.lockTTL, nil)
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				return nil, utils.ErrorSyncInFlight
			}
			return nil, err
		}
		defer lock.Release(context.WithoutCancel(ctx))
	}

	ctx = utils.SetTenantIdInContext(ctx, tenant)
	ctx = utils.SetActorInContext(ctx, ActorSync)
	correlationId := utils.CorrelationIdFromContextOrNew(ctx)
	ctx = utils.SetCorrelationIdInContext(ctx, correlationId)

	now := time.Now()
	run := models.SyncRun{
		TenantId:      tenant,
		Source:        source,
		Status:        models.SyncRunStatusRunning,
		TriggeredBy:   models.SyncTriggeredManual,
		CorrelationId: correlationId,
		StartedAt:     &now,
	}
	if err := c.store.DB().WithContext(ctx).Create(&run).Error; err != nil {
		return nil, err
	}

	stats := c.runPass(ctx, &run, tenant, payload)

	finished := time.Now()
	status := models.SyncRunStatusSuccess
	if stats.ErrorCount > 0 && stats.RecordsSynced > 0 {
		status = models.SyncRunStatusPartial
	} else if stats.ErrorCount > 0 {
		status = models.SyncRunStatusFailed
	}

	err := c.store.DB().WithContext(ctx).Model(&run).Updates(map[string]interface{}{
		"status":         status,
		"records_synced": stats.RecordsSynced,
		"error_count":    stats.ErrorCount,
		"deleted_count":  stats.DeletedCount,
		"finished_at":    &finished,
		"duration_ms":    finished.Sub(now).Milliseconds(),
	}).Error
	if err != nil {
		config.LogError(c.logger, "ordersync", "Run", "finalize sync run", run.ID, err)
	}
	run.Status = status
	run.RecordsSynced = stats.RecordsSynced
	run.ErrorCount = stats.ErrorCount
	run.DeletedCount = stats.DeletedCount
	run.FinishedAt = &finished
	return &run, nil
}
