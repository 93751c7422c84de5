package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the database constraints that concurrency control
// depends on. The unique index over (event_id, section_id, seat_id) is the
// seat-exclusivity guarantee: no two commits can both insert the same seat,
// regardless of how many server instances share the store.
func MigrateConstraints(db *gorm.DB) error {
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_seat_reserved_once
		ON seat_reservations (event_id, section_id, seat_id);
	`).Error
	if err != nil {
		return err
	}

	// Index for seat-map reads and ledger lookups by event
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_seat_reservations_event_id
		ON seat_reservations (event_id);
	`).Error
	if err != nil {
		return err
	}

	// Index for booking history by purchaser
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_user_created
		ON bookings (user_id, created_at DESC);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
