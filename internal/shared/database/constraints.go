package database

import (
	"gorm.io/gorm"
)

// constraintDDL holds the idempotent statements MigrateConstraints runs
// after AutoMigrate. PostgreSQL has no ADD CONSTRAINT IF NOT EXISTS, so
// every statement here must use a form that tolerates reruns.
var constraintDDL = []string{
	// At most one occupant per seat per show. The hold engine checks
	// inside a transaction; this unique index is the storage-level
	// backstop.
	`CREATE UNIQUE INDEX IF NOT EXISTS unique_seat_per_show
	 ON booked_seats (show_id, seat_number);`,

	// Expiration sweeps filter on (show, pending, held_at).
	`CREATE INDEX IF NOT EXISTS idx_booked_seats_pending_held_at
	 ON booked_seats (show_id, is_pending, held_at);`,

	// Screen timeline conflict checks scan a screen's slots by time.
	`CREATE INDEX IF NOT EXISTS idx_filled_times_screen_start
	 ON filled_times (screen_id, start_time);`,
}

// MigrateConstraints adds the indexes concurrency control relies on.
func MigrateConstraints(db *gorm.DB) error {
	for _, ddl := range constraintDDL {
		if err := db.Exec(ddl).Error; err != nil {
			return err
		}
	}
	return nil
}
