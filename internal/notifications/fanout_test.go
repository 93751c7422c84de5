package notifications

import (
	"context"
	"testing"
	"time"

	"stagepass/internal/bookings"
	"stagepass/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBookingRepo struct {
	bookings.Repository
	attached chan string
}

func (r *stubBookingRepo) AttachTicketCode(ctx context.Context, id uuid.UUID, code string) error {
	r.attached <- code
	return nil
}

type stubEventService struct{ events.Service }

func (stubEventService) InvalidateEvent(ctx context.Context, id uuid.UUID) {}

type captureEmailService struct{ sent chan *BookingEmail }

func (s *captureEmailService) SendBookingReceipt(ctx context.Context, email *BookingEmail) error {
	s.sent <- email
	return nil
}

func confirmedFixture() *bookings.ConfirmedBooking {
	booking := &bookings.Booking{
		ID:          uuid.New(),
		EventID:     uuid.New(),
		BookingRef:  "EVT-20260831-KQZHXM",
		TotalAmount: 625,
		Tickets: []bookings.Ticket{
			{SectionID: uuid.New(), SectionName: "Gold", SeatID: "A1", Price: 625},
		},
	}
	return &bookings.ConfirmedBooking{
		Booking:    booking,
		EventTitle: "Midnight Orchestra Live",
		Purchaser:  bookings.Purchaser{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"},
	}
}

// The fan-out runs concurrently with the coordinator returning its response
// from the same booking struct, so the dispatch must leave the hand-off
// payload untouched and route the ticket code to the receipt directly.
func TestBookingConfirmedLeavesHandoffUntouched(t *testing.T) {
	repo := &stubBookingRepo{attached: make(chan string, 1)}
	emails := &captureEmailService{sent: make(chan *BookingEmail, 1)}
	fanout := NewFanout(nil, nil, emails, repo, stubEventService{})

	confirmed := confirmedFixture()
	fanout.BookingConfirmed(confirmed)

	var email *BookingEmail
	select {
	case email = <-emails.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("receipt was never sent")
	}

	attached := <-repo.attached
	require.NotEmpty(t, attached)
	assert.Equal(t, attached, email.TicketCode, "receipt carries the attached ticket code")
	assert.Empty(t, confirmed.Booking.TicketCode, "hand-off booking must not be mutated")
	assert.Equal(t, "EVT-20260831-KQZHXM", email.BookingRef)
}
