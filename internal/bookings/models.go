package bookings

import (
	"time"

	"stagepass/internal/payments"

	"github.com/google/uuid"
)

// Booking is created atomically with its tickets and the corresponding seat
// reservations. It is never mutated after commit except to attach the ticket
// code, and never deleted by this subsystem.
type Booking struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	EventID     uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`
	TotalAmount float64   `gorm:"not null" json:"total_amount"`
	Multiplier  float64   `gorm:"column:demand_multiplier;not null;default:1.0" json:"demand_multiplier"`
	Status      Status    `gorm:"type:varchar(20);check:status IN ('PENDING', 'CONFIRMED', 'CANCELLED');default:'CONFIRMED'" json:"status"`
	BookingRef  string    `gorm:"unique;not null" json:"booking_ref"`
	PaymentRef  string    `gorm:"size:255" json:"payment_ref,omitempty"`

	// TicketCode is the base64 QR artifact, attached asynchronously after the
	// booking is persisted. The booking is valid and readable without it.
	TicketCode string `gorm:"type:text" json:"ticket_code,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tickets []Ticket `json:"tickets,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// Ticket is one seat line item. SectionName is a denormalized snapshot taken
// at commit time so later section renames do not rewrite history.
type Ticket struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID   uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	SectionID   uuid.UUID `gorm:"type:uuid;not null" json:"section_id"`
	SectionName string    `gorm:"size:100" json:"section_name"`
	SeatID      string    `gorm:"size:5;not null" json:"seat_id"`
	Price       float64   `gorm:"not null" json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

// SeatReservation is the ledger row. The unique index over (event_id,
// section_id, seat_id) is what makes seat exclusivity hold across server
// instances; see MigrateConstraints.
type SeatReservation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_seat_reserved_once,priority:1" json:"event_id"`
	SectionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_seat_reserved_once,priority:2" json:"section_id"`
	SeatID    string    `gorm:"size:5;not null;uniqueIndex:idx_seat_reserved_once,priority:3" json:"seat_id"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (Ticket) TableName() string {
	return "tickets"
}

func (SeatReservation) TableName() string {
	return "seat_reservations"
}

// TicketRequest names one requested seat.
type TicketRequest struct {
	SectionID string `json:"section_id" binding:"required,uuid"`
	SeatID    string `json:"seat_id" binding:"required,seatid"`
}

// SubmitBookingRequest is the booking submission payload. Payment is
// optional; when absent the coordinator proceeds in trusted mode unless
// strict payments are configured.
type SubmitBookingRequest struct {
	EventID string          `json:"event_id" binding:"required,uuid"`
	Tickets []TicketRequest `json:"tickets" binding:"required,min=1,dive"`
	Payment *payments.Proof `json:"payment,omitempty"`
}

// Purchaser is the caller identity supplied by the identity collaborator.
type Purchaser struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// TicketResponse is one priced seat in a successful booking response.
type TicketResponse struct {
	SectionID   string  `json:"section_id"`
	SectionName string  `json:"section_name"`
	SeatID      string  `json:"seat_id"`
	Price       float64 `json:"price"`
}

// BookingResponse is the success payload for a committed booking.
type BookingResponse struct {
	BookingID   string           `json:"booking_id"`
	BookingRef  string           `json:"booking_ref"`
	EventID     string           `json:"event_id"`
	Status      Status           `json:"status"`
	Tickets     []TicketResponse `json:"tickets"`
	TotalAmount float64          `json:"total_amount"`
	Multiplier  float64          `json:"multiplier"`
	TicketCode  string           `json:"ticket_code,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// BookingListResponse is a paginated booking history page.
type BookingListResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"total_count"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
}

func (b *Booking) ToResponse() *BookingResponse {
	resp := &BookingResponse{
		BookingID:   b.ID.String(),
		BookingRef:  b.BookingRef,
		EventID:     b.EventID.String(),
		Status:      b.Status,
		Tickets:     make([]TicketResponse, 0, len(b.Tickets)),
		TotalAmount: b.TotalAmount,
		Multiplier:  b.Multiplier,
		TicketCode:  b.TicketCode,
		CreatedAt:   b.CreatedAt,
	}
	for _, t := range b.Tickets {
		resp.Tickets = append(resp.Tickets, TicketResponse{
			SectionID:   t.SectionID.String(),
			SectionName: t.SectionName,
			SeatID:      t.SeatID,
			Price:       t.Price,
		})
	}
	return resp
}
