package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliveryStatusQueued  DeliveryStatus = "QUEUED"
	DeliveryStatusSending DeliveryStatus = "SENDING"
	DeliveryStatusSent    DeliveryStatus = "SENT"
	DeliveryStatusFailed  DeliveryStatus = "FAILED"
)

// BookingEmail is the receipt payload queued for asynchronous delivery.
// It carries everything the email worker needs so the worker never has to
// read the database.
type BookingEmail struct {
	ID             uuid.UUID      `json:"id"`
	BookingID      uuid.UUID      `json:"booking_id"`
	BookingRef     string         `json:"booking_ref"`
	RecipientEmail string         `json:"recipient_email"`
	RecipientName  string         `json:"recipient_name"`
	EventTitle     string         `json:"event_title"`
	Seats          []SeatLine     `json:"seats"`
	TotalAmount    float64        `json:"total_amount"`
	TicketCode     string         `json:"ticket_code,omitempty"`
	Status         DeliveryStatus `json:"status"`
	Attempts       int            `json:"attempts"`
	LastError      string         `json:"last_error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// SeatLine is one ticket line on the receipt.
type SeatLine struct {
	Section string  `json:"section"`
	SeatID  string  `json:"seat_id"`
	Price   float64 `json:"price"`
}

func (e *BookingEmail) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all mail for one recipient to the same partition so
// their receipts arrive in order.
func (e *BookingEmail) PartitionKey() string {
	if e.RecipientEmail != "" {
		return e.RecipientEmail
	}
	return e.BookingID.String()
}

func (e *BookingEmail) MarkSent() {
	e.Status = DeliveryStatusSent
	e.UpdatedAt = time.Now()
}

func (e *BookingEmail) MarkFailed(err error) {
	e.Status = DeliveryStatusFailed
	e.Attempts++
	if err != nil {
		e.LastError = err.Error()
	}
	e.UpdatedAt = time.Now()
}

// SeatUpdate is the realtime message pushed to seat-map subscribers after a
// booking commits. Seats lists the newly reserved seat IDs per section.
type SeatUpdate struct {
	EventID   uuid.UUID           `json:"event_id"`
	Seats     map[string][]string `json:"seats"`
	Timestamp time.Time           `json:"timestamp"`
}

// DashboardSummary is the aggregate pushed to the admin dashboard stream.
type DashboardSummary struct {
	EventID     uuid.UUID `json:"event_id"`
	EventTitle  string    `json:"event_title"`
	BookingRef  string    `json:"booking_ref"`
	SeatCount   int       `json:"seat_count"`
	TotalAmount float64   `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventTopic names the hub topic carrying seat updates for one event.
func EventTopic(eventID uuid.UUID) string {
	return fmt.Sprintf("event:%s", eventID)
}

// DashboardTopic is the hub topic carrying booking summaries for admins.
const DashboardTopic = "dashboard"

// ApplySeatUpdate merges a SeatUpdate into a seat snapshot keyed by section
// ID. Applying the same update twice leaves the snapshot unchanged, so
// clients may replay deltas after a reconnect.
func ApplySeatUpdate(snapshot map[string][]string, update *SeatUpdate) map[string][]string {
	if snapshot == nil {
		snapshot = make(map[string][]string)
	}
	for section, seats := range update.Seats {
		existing := make(map[string]struct{}, len(snapshot[section]))
		for _, s := range snapshot[section] {
			existing[s] = struct{}{}
		}
		for _, s := range seats {
			if _, ok := existing[s]; !ok {
				snapshot[section] = append(snapshot[section], s)
				existing[s] = struct{}{}
			}
		}
	}
	return snapshot
}
