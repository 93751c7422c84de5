package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the main event aggregate. Sections are owned by the event and
// carry the seat grids; the booked-seat sets live in the seat_reservations
// table and are attached to sections on read.
type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:255"`
	Description string    `json:"description" gorm:"type:text"`
	Category    string    `json:"category" gorm:"size:100;default:'General'"`
	Location    string    `json:"location" gorm:"size:255"`

	// Date holds the calendar date; Time optionally holds "HH:MM". The two
	// are merged into the effective start, see EffectiveStart.
	Date time.Time `json:"date" gorm:"not null;index"`
	Time string    `json:"time" gorm:"size:5"`

	Status     Status `json:"status" gorm:"type:varchar(20);default:'UPCOMING'"`
	SoldCount  int    `json:"sold_count" gorm:"default:0;check:sold_count >= 0"`
	IsFeatured bool   `json:"is_featured" gorm:"default:false"`

	Sections []Section `json:"sections" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Section is a named seating block inside an event with its own grid shape
// and base price. Position preserves insertion order for display.
type Section struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID   uuid.UUID `json:"event_id" gorm:"type:uuid;index;not null"`
	Name      string    `json:"name" gorm:"not null;size:100"`
	RowCount  int       `json:"rows" gorm:"column:row_count;not null;check:row_count > 0"`
	ColCount  int       `json:"cols" gorm:"column:col_count;not null;check:col_count > 0"`
	BasePrice float64   `json:"base_price" gorm:"not null;check:base_price >= 0"`
	Position  int       `json:"position" gorm:"not null;default:0"`

	// BookedSeats is derived from seat_reservations, not a column.
	BookedSeats []string `json:"booked_seats" gorm:"-"`
}

func (Event) TableName() string {
	return "events"
}

func (Section) TableName() string {
	return "sections"
}

// SectionRequest describes one section in an event-creation payload.
type SectionRequest struct {
	Name      string  `json:"name" binding:"required,min=1,max=100"`
	Rows      int     `json:"rows" binding:"required,min=1,max=26"`
	Cols      int     `json:"cols" binding:"required,min=1,max=200"`
	BasePrice float64 `json:"base_price" binding:"required,min=0"`
}

// CreateEventRequest is the admin event-creation payload.
type CreateEventRequest struct {
	Title       string           `json:"title" binding:"required,min=3,max=255"`
	Description string           `json:"description" binding:"max=2000"`
	Category    string           `json:"category" binding:"max=100"`
	Location    string           `json:"location" binding:"max=255"`
	Date        string           `json:"date" binding:"required,datetime=2006-01-02"`
	Time        string           `json:"time" binding:"omitempty,datetime=15:04"`
	IsFeatured  bool             `json:"is_featured"`
	Sections    []SectionRequest `json:"sections" binding:"required,min=1,dive"`
}

// EventResponse is the public read model for a single event.
type EventResponse struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Category          string            `json:"category"`
	Location          string            `json:"location"`
	Date              time.Time         `json:"date"`
	Time              string            `json:"time,omitempty"`
	Status            Status            `json:"status"`
	SoldCount         int               `json:"sold_count"`
	TotalCapacity     int               `json:"total_capacity"`
	IsFeatured        bool              `json:"is_featured"`
	CurrentMultiplier float64           `json:"current_multiplier"`
	Sections          []SectionResponse `json:"sections"`
	CreatedAt         time.Time         `json:"created_at"`
}

// SectionResponse is the per-section read model including the booked-seat set.
type SectionResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Rows        int      `json:"rows"`
	Cols        int      `json:"cols"`
	BasePrice   float64  `json:"base_price"`
	BookedSeats []string `json:"booked_seats"`
}

// SeatMapResponse is the initial state fed to seat-map subscribers; live
// updates arrive as deltas over the realtime channel.
type SeatMapResponse struct {
	EventID  string            `json:"event_id"`
	Sections []SectionResponse `json:"sections"`
}

func (e *Event) ToResponse(multiplier float64) *EventResponse {
	resp := &EventResponse{
		ID:                e.ID.String(),
		Title:             e.Title,
		Description:       e.Description,
		Category:          e.Category,
		Location:          e.Location,
		Date:              e.Date,
		Time:              e.Time,
		Status:            e.Status,
		SoldCount:         e.SoldCount,
		TotalCapacity:     e.TotalCapacity(),
		IsFeatured:        e.IsFeatured,
		CurrentMultiplier: multiplier,
		Sections:          make([]SectionResponse, 0, len(e.Sections)),
		CreatedAt:         e.CreatedAt,
	}
	for _, sec := range e.Sections {
		resp.Sections = append(resp.Sections, sec.ToResponse())
	}
	return resp
}

func (s *Section) ToResponse() SectionResponse {
	booked := s.BookedSeats
	if booked == nil {
		booked = []string{}
	}
	return SectionResponse{
		ID:          s.ID.String(),
		Name:        s.Name,
		Rows:        s.RowCount,
		Cols:        s.ColCount,
		BasePrice:   s.BasePrice,
		BookedSeats: booked,
	}
}
