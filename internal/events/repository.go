package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	List(ctx context.Context) ([]Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetByID loads the event with its sections in display order and attaches
// each section's booked-seat set from the reservation ledger.
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}

	if err := r.loadBookedSeats(ctx, &event); err != nil {
		return nil, fmt.Errorf("failed to load booked seats: %w", err)
	}

	return &event, nil
}

func (r *repository) List(ctx context.Context) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("date ASC").
		Find(&events).Error
	return events, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Event{}, "id = ?", id).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// loadBookedSeats fills Section.BookedSeats from the seat_reservations table.
// The ledger rows are the source of truth for availability; the section
// structs only carry the grid shape and price.
func (r *repository) loadBookedSeats(ctx context.Context, event *Event) error {
	var rows []struct {
		SectionID uuid.UUID `gorm:"column:section_id"`
		SeatID    string    `gorm:"column:seat_id"`
	}

	err := r.db.WithContext(ctx).
		Table("seat_reservations").
		Select("section_id, seat_id").
		Where("event_id = ?", event.ID).
		Order("seat_id ASC").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	bySection := make(map[uuid.UUID][]string, len(event.Sections))
	for _, row := range rows {
		bySection[row.SectionID] = append(bySection[row.SectionID], row.SeatID)
	}

	for i := range event.Sections {
		section := &event.Sections[i]
		if seats, ok := bySection[section.ID]; ok {
			section.BookedSeats = seats
		} else {
			section.BookedSeats = []string{}
		}
	}

	return nil
}
