package main

import (
	"log"

	"github.com/mmdatafocus/ordermirror_backend/config"
	"github.com/mmdatafocus/ordermirror_backend/models"
)

func main() {
	db := config.ConnectDatabaseWithRetry()
	models.MigrateTable(db)
	log.Println("schema migration complete")
}
