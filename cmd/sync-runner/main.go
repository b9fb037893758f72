package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/ordermirror_backend/config"
	"github.com/mmdatafocus/ordermirror_backend/models"
	"github.com/mmdatafocus/ordermirror_backend/ordersync"
)

// sync-runner applies one extractor payload (orders, DDT rows or invoice
// rows, as JSON) to the mirror for a tenant. The extractors themselves run
// outside this repo; this binary is their hand-off point.
func main() {
	tenant := flag.String("tenant", "", "Required: tenant id")
	source := flag.String("source", ordersync.SourceOrders, "Payload source: orders|ddt|invoices")
	payloadPath := flag.String("payload", "", "Required: path to the payload JSON file")
	flag.Parse()

	if strings.TrimSpace(*tenant) == "" || strings.TrimSpace(*payloadPath) == "" {
		fmt.Fprintln(os.Stderr, "--tenant and --payload are required")
		os.Exit(1)
	}

	raw, err := os.ReadFile(*payloadPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read payload: %v\n", err)
		os.Exit(1)
	}
	var payload ordersync.SyncPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		fmt.Fprintf(os.Stderr, "decode payload: %v\n", err)
		os.Exit(1)
	}

	logger := config.GetLogger()
	db := config.ConnectDatabaseWithRetry()
	models.MigrateTable(db)

	store := models.NewStore(db, logger)
	coordinator := ordersync.NewCoordinator(store, logger)
	if rdb, locker := config.ConnectRedis(); rdb != nil {
		store.WithCache(rdb)
		coordinator.WithLocker(locker)
	}

	run, err := coordinator.Run(context.Background(), *tenant, *source, &payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("run %d finished: status=%s synced=%d errors=%d deleted=%d\n",
		run.ID, run.Status, run.RecordsSynced, run.ErrorCount, run.DeletedCount)
}
