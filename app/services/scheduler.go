package services

import (
	"database/sql"
	"log"
	"time"
)

// StartScheduler starts the background task scheduler
func StartScheduler(db *sql.DB) {
	go func() {
		log.Println("Scheduler started...")
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			now := time.Now()

			// Trigger at 2:10 AM, outside office hours
			if now.Hour() == 2 && now.Minute() == 10 {
				log.Println("Triggering scheduled tasks [02:10]...")

				if err := ReconcileBalances(db); err != nil {
					log.Printf("Error reconciling balances: %v", err)
				}
			}
		}
	}()
}
