package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSeatConflict is returned when a concurrent booking won the race for one
// of the requested seats. The coordinator re-validates and retries once
// before surfacing SeatUnavailable.
var ErrSeatConflict = errors.New("seat reservation conflict")

type Repository interface {
	// CreateBookingWithReservations commits the booking, its tickets, the
	// ledger rows and the event sold-count bump as one transaction. Either
	// everything is applied or nothing is.
	CreateBookingWithReservations(ctx context.Context, booking *Booking, reservations []SeatReservation) error

	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int64, error)

	// AttachTicketCode sets the QR payload after initial persistence.
	AttachTicketCode(ctx context.Context, id uuid.UUID, code string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBookingWithReservations(ctx context.Context, booking *Booking, reservations []SeatReservation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the event row so the sold-count bump serializes against
		// concurrent commits for the same event.
		var event struct {
			ID        uuid.UUID `gorm:"column:id"`
			Status    string    `gorm:"column:status"`
			SoldCount int       `gorm:"column:sold_count"`
		}

		err := tx.Table("events").
			Select("id, status, sold_count").
			Where("id = ?", booking.EventID).
			Set("gorm:query_option", "FOR UPDATE").
			First(&event).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("event not found")
			}
			return fmt.Errorf("failed to lock event: %w", err)
		}

		if event.Status == "COMPLETED" || event.Status == "CANCELLED" {
			return errors.New("event is not accepting reservations")
		}

		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		// The unique index over (event_id, section_id, seat_id) rejects any
		// seat that a concurrent commit already took, aborting the whole
		// batch including the booking row above.
		for i := range reservations {
			reservations[i].BookingID = booking.ID
		}
		if err := tx.Create(&reservations).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSeatConflict
			}
			return fmt.Errorf("failed to reserve seats: %w", err)
		}

		err = tx.Table("events").
			Where("id = ?", booking.EventID).
			Updates(map[string]interface{}{
				"sold_count": event.SoldCount + len(reservations),
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update event sold count: %w", err)
		}

		return nil
	})

	if err != nil && errors.Is(err, ErrSeatConflict) {
		return ErrSeatConflict
	}
	return err
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Tickets").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("user_id = ?", userID)

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	err := baseQuery.
		Preload("Tickets").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}

func (r *repository) AttachTicketCode(ctx context.Context, id uuid.UUID, code string) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"ticket_code": code,
			"updated_at":  time.Now(),
		}).Error
}
