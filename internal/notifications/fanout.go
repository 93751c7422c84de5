package notifications

import (
	"context"
	"time"

	"stagepass/internal/bookings"
	"stagepass/internal/events"
	"stagepass/pkg/logger"

	"github.com/google/uuid"
)

const fanoutTimeout = 30 * time.Second

// Fanout dispatches the side effects of a committed booking: realtime seat
// deltas, the admin dashboard summary, the ticket QR artifact and the email
// receipt. Every step is best-effort; failures are logged and never surface
// to the purchaser.
type Fanout struct {
	hub         *Hub
	producer    Producer
	email       EmailService
	bookingRepo bookings.Repository
	eventSvc    events.Service
	log         *logger.Logger
}

var _ bookings.Fanout = (*Fanout)(nil)

// NewFanout wires the fan-out. producer may be nil, in which case receipts
// go straight to email instead of through Kafka. email may also be nil.
func NewFanout(
	hub *Hub,
	producer Producer,
	email EmailService,
	bookingRepo bookings.Repository,
	eventSvc events.Service,
) *Fanout {
	return &Fanout{
		hub:         hub,
		producer:    producer,
		email:       email,
		bookingRepo: bookingRepo,
		eventSvc:    eventSvc,
		log:         logger.GetDefault(),
	}
}

// BookingConfirmed runs the fan-out off the request path. The booking is
// already durable when this is called.
func (f *Fanout) BookingConfirmed(confirmed *bookings.ConfirmedBooking) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fanoutTimeout)
		defer cancel()
		f.dispatch(ctx, confirmed)
	}()
}

func (f *Fanout) dispatch(ctx context.Context, confirmed *bookings.ConfirmedBooking) {
	booking := confirmed.Booking
	bookingID := booking.ID.String()

	// Cached seat maps are stale the moment the ledger changed.
	f.eventSvc.InvalidateEvent(ctx, booking.EventID)

	if f.hub != nil {
		f.hub.Publish(EventTopic(booking.EventID), f.seatUpdate(booking))
		f.hub.Publish(DashboardTopic, &DashboardSummary{
			EventID:     booking.EventID,
			EventTitle:  confirmed.EventTitle,
			BookingRef:  booking.BookingRef,
			SeatCount:   len(booking.Tickets),
			TotalAmount: booking.TotalAmount,
			Timestamp:   time.Now(),
		})
	}

	// The hand-off payload is shared with the coordinator, which may still
	// be building its response. The code travels to the receipt directly
	// instead of through the booking struct.
	ticketCode := ""
	if code, err := GenerateTicketCode(confirmed); err != nil {
		f.log.LogFanoutFailure(ctx, "generate_ticket_code", bookingID, err)
	} else if err := f.bookingRepo.AttachTicketCode(ctx, booking.ID, code); err != nil {
		f.log.LogFanoutFailure(ctx, "attach_ticket_code", bookingID, err)
	} else {
		ticketCode = code
	}

	f.sendReceipt(ctx, confirmed, ticketCode)
}

func (f *Fanout) seatUpdate(booking *bookings.Booking) *SeatUpdate {
	seats := make(map[string][]string, len(booking.Tickets))
	for _, t := range booking.Tickets {
		key := t.SectionID.String()
		seats[key] = append(seats[key], t.SeatID)
	}
	return &SeatUpdate{
		EventID:   booking.EventID,
		Seats:     seats,
		Timestamp: time.Now(),
	}
}

func (f *Fanout) sendReceipt(ctx context.Context, confirmed *bookings.ConfirmedBooking, ticketCode string) {
	booking := confirmed.Booking
	bookingID := booking.ID.String()

	seats := make([]SeatLine, 0, len(booking.Tickets))
	for _, t := range booking.Tickets {
		seats = append(seats, SeatLine{
			Section: t.SectionName,
			SeatID:  t.SeatID,
			Price:   t.Price,
		})
	}

	now := time.Now()
	email := &BookingEmail{
		ID:             uuid.New(),
		BookingID:      booking.ID,
		BookingRef:     booking.BookingRef,
		RecipientEmail: confirmed.Purchaser.Email,
		RecipientName:  confirmed.Purchaser.Name,
		EventTitle:     confirmed.EventTitle,
		Seats:          seats,
		TotalAmount:    booking.TotalAmount,
		TicketCode:     ticketCode,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	switch {
	case f.producer != nil:
		if err := f.producer.PublishBookingEmail(ctx, email); err != nil {
			f.log.LogFanoutFailure(ctx, "publish_receipt", bookingID, err)
		}
	case f.email != nil:
		if err := f.email.SendBookingReceipt(ctx, email); err != nil {
			f.log.LogFanoutFailure(ctx, "send_receipt", bookingID, err)
		}
	}
}
