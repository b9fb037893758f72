package utils

import "errors"

// ErrorConflictRetryExhausted is returned when an optimistic-concurrency write
// kept losing the version check after the maximum number of retries.
var ErrorConflictRetryExhausted = errors.New("concurrent update conflict, retries exhausted")

var ErrorSyncInFlight = errors.New("sync already in flight for tenant/source")

var ErrorSyncPaused = errors.New("sync is paused for tenant/source")
