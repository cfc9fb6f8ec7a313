// Command reconcile recounts denormalized project counters and repairs any
// drift found. Safe to run at any time; a clean database is a no-op.
package main

import (
	"context"
	"log"

	"shipits/internal/config"
	"shipits/internal/database"
	"shipits/internal/reconcile"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	report, err := reconcile.Run(context.Background(), db)
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	log.Printf("Checked %d projects: repaired %d comment counters, %d like counters",
		report.ProjectsChecked, report.CommentsFixed, report.LikesFixed)
}
