package database

import (
	"stagepass/internal/bookings"
	"stagepass/internal/events"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&events.Event{},
		&events.Section{},
		&bookings.Booking{},
		&bookings.Ticket{},
		&bookings.SeatReservation{},
	)
}
