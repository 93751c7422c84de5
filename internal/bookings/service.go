package bookings

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"stagepass/internal/events"
	"stagepass/internal/payments"
	"stagepass/internal/pricing"
	"stagepass/internal/shared/config"
	"stagepass/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fanout receives a committed booking and dispatches the best-effort side
// effects (realtime deltas, dashboard summary, QR artifact, email receipt).
// Implementations must never block the booking response or fail it;
// declared here to avoid a circular dependency on the notifications package.
type Fanout interface {
	BookingConfirmed(confirmed *ConfirmedBooking)
}

// ConfirmedBooking is the hand-off payload from the coordinator to the
// notification fan-out after a durable commit. The fan-out runs concurrently
// with the coordinator's response and must treat the payload as read-only.
type ConfirmedBooking struct {
	Booking    *Booking
	EventTitle string
	Purchaser  Purchaser
}

// Service is the booking transaction coordinator: the single entry point
// that turns a seat request into either a committed booking or a rejection,
// with no partial state ever observable.
type Service interface {
	SubmitBooking(ctx context.Context, purchaser Purchaser, req SubmitBookingRequest) (*BookingResponse, error)
	GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*BookingResponse, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) (*BookingListResponse, error)
}

type service struct {
	repo       Repository
	eventRepo  events.Repository
	verifier   payments.Verifier
	multiplier events.MultiplierSource
	fanout     Fanout
	cfg        config.BookingConfig
	strictPay  bool
	log        *logger.Logger
}

// NewService creates a booking coordinator. multiplier and fanout may be
// nil: pricing then uses the default multiplier and no side effects are
// dispatched.
func NewService(
	repo Repository,
	eventRepo events.Repository,
	verifier payments.Verifier,
	multiplier events.MultiplierSource,
	fanout Fanout,
	cfg *config.Config,
) Service {
	return &service{
		repo:       repo,
		eventRepo:  eventRepo,
		verifier:   verifier,
		multiplier: multiplier,
		fanout:     fanout,
		cfg:        cfg.Booking,
		strictPay:  cfg.Payments.Required,
		log:        logger.GetDefault(),
	}
}

// SubmitBooking validates the requested seats against fresh event state,
// commits them atomically and hands the result to the fan-out. Validation
// failures return a typed error with zero side effects; a write conflict
// during commit triggers exactly one re-validation and retry against fresh
// state before surfacing SeatUnavailable.
func (s *service) SubmitBooking(ctx context.Context, purchaser Purchaser, req SubmitBookingRequest) (*BookingResponse, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, ErrEventNotFound()
	}

	booking, confirmed, err := s.validateAndCommit(ctx, eventID, purchaser, req)
	if err != nil {
		if bookingErr, ok := AsBookingError(err); ok {
			s.log.LogBookingRejected(ctx, req.EventID, purchaser.ID.String(), string(bookingErr.Kind))
		}
		return nil, err
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), req.EventID, purchaser.ID.String())

	// Snapshot the response before dispatching side effects: the fan-out
	// overlaps with returning to the caller and must not observe or race
	// this read.
	resp := booking.ToResponse()

	if s.fanout != nil {
		s.fanout.BookingConfirmed(confirmed)
	}

	return resp, nil
}

func (s *service) validateAndCommit(ctx context.Context, eventID uuid.UUID, purchaser Purchaser, req SubmitBookingRequest) (*Booking, *ConfirmedBooking, error) {
	// First attempt plus one retry after a commit-time conflict.
	for attempt := 0; ; attempt++ {
		event, err := s.loadAndValidate(ctx, eventID, req)
		if err != nil {
			return nil, nil, err
		}

		booking, reservations := s.buildBooking(ctx, event, purchaser, req)

		err = s.repo.CreateBookingWithReservations(ctx, booking, reservations)
		if err == nil {
			confirmed := &ConfirmedBooking{
				Booking:    booking,
				EventTitle: event.Title,
				Purchaser:  purchaser,
			}
			return booking, confirmed, nil
		}

		if errors.Is(err, ErrSeatConflict) {
			if attempt == 0 {
				s.log.Info("seat reservation conflict, retrying against fresh state",
					"event_id", eventID.String())
				continue
			}
			// Second conflict: a concurrent booking holds at least one of
			// the requested seats.
			return nil, nil, s.conflictingSeatError(ctx, eventID, req)
		}

		return nil, nil, ErrTransient(fmt.Errorf("booking commit failed: %w", err))
	}
}

// conflictingSeatError rereads the ledger after a repeated commit conflict
// so the rejection names the seat that was actually lost, not an arbitrary
// one from the request.
func (s *service) conflictingSeatError(ctx context.Context, eventID uuid.UUID, req SubmitBookingRequest) *Error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err == nil {
		for _, ticket := range req.Tickets {
			sectionID, err := uuid.Parse(ticket.SectionID)
			if err != nil {
				continue
			}
			section := event.SectionByID(sectionID)
			if section != nil && !section.IsSeatAvailable(ticket.SeatID) {
				return ErrSeatUnavailable(ticket.SeatID)
			}
		}
	}
	// The winning reservation may not be visible in this read yet.
	return ErrSeatUnavailable(req.Tickets[0].SeatID)
}

// loadAndValidate performs the pre-commit validation sequence against fresh
// authoritative state: event exists, payment verifies, event is bookable,
// sections resolve, seats are free. First failure wins; nothing is mutated.
func (s *service) loadAndValidate(ctx context.Context, eventID uuid.UUID, req SubmitBookingRequest) (*events.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound()
		}
		return nil, ErrTransient(fmt.Errorf("failed to load event: %w", err))
	}

	if err := s.verifyPayment(req.Payment); err != nil {
		return nil, err
	}

	if !event.Status.IsBookable() {
		return nil, ErrBookingClosed(fmt.Sprintf("event is %s", event.Status))
	}
	if event.HasStarted(time.Now(), s.cfg.DayBoundary) {
		return nil, ErrBookingClosed("event has already started")
	}

	seen := make(map[string]struct{}, len(req.Tickets))
	for _, ticket := range req.Tickets {
		sectionID, err := uuid.Parse(ticket.SectionID)
		if err != nil {
			return nil, ErrInvalidSection(ticket.SectionID)
		}
		section := event.SectionByID(sectionID)
		if section == nil {
			return nil, ErrInvalidSection(ticket.SectionID)
		}
		// A seat repeated within the same request collides with itself.
		key := ticket.SectionID + "/" + ticket.SeatID
		if _, dup := seen[key]; dup {
			return nil, ErrSeatUnavailable(ticket.SeatID)
		}
		seen[key] = struct{}{}
		if !section.IsSeatAvailable(ticket.SeatID) {
			return nil, ErrSeatUnavailable(ticket.SeatID)
		}
	}

	return event, nil
}

func (s *service) verifyPayment(proof *payments.Proof) error {
	if proof == nil {
		if s.strictPay {
			return ErrPaymentRejected("payment proof required")
		}
		// Trusted mode: deliberate relaxed path for environments without a
		// payment gateway.
		s.log.Warn("booking submitted without payment proof, proceeding in trusted mode")
		return nil
	}

	if !s.verifier.Verify(proof.OrderID, proof.PaymentID, proof.Signature) {
		return ErrPaymentRejected("payment signature verification failed")
	}
	return nil
}

// buildBooking prices every requested seat with the event's current demand
// multiplier and assembles the booking, tickets and ledger rows for commit.
func (s *service) buildBooking(ctx context.Context, event *events.Event, purchaser Purchaser, req SubmitBookingRequest) (*Booking, []SeatReservation) {
	multiplier := pricing.DefaultMultiplier
	if s.multiplier != nil {
		multiplier = s.multiplier.EstimateMultiplier(ctx, event)
	}

	booking := &Booking{
		ID:         uuid.New(),
		UserID:     purchaser.ID,
		EventID:    event.ID,
		Multiplier: multiplier,
		Status:     StatusConfirmed,
		BookingRef: generateBookingReference(),
	}
	if req.Payment != nil {
		booking.PaymentRef = req.Payment.PaymentID
	}

	reservations := make([]SeatReservation, 0, len(req.Tickets))
	for _, ticket := range req.Tickets {
		sectionID, _ := uuid.Parse(ticket.SectionID)
		section := event.SectionByID(sectionID)

		price := pricing.PriceSeat(section.BasePrice, multiplier)
		booking.TotalAmount += price
		booking.Tickets = append(booking.Tickets, Ticket{
			BookingID:   booking.ID,
			SectionID:   section.ID,
			SectionName: section.Name,
			SeatID:      ticket.SeatID,
			Price:       price,
		})
		reservations = append(reservations, SeatReservation{
			EventID:   event.ID,
			SectionID: section.ID,
			SeatID:    ticket.SeatID,
			BookingID: booking.ID,
		})
	}

	return booking, reservations
}

func (s *service) GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*BookingResponse, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrKindNotFound, "booking not found")
		}
		return nil, ErrTransient(fmt.Errorf("failed to load booking: %w", err))
	}

	if booking.UserID != userID {
		return nil, newError(ErrKindNotFound, "booking not found")
	}

	return booking.ToResponse(), nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) (*BookingListResponse, error) {
	bookings, total, err := s.repo.GetUserBookings(ctx, userID, limit, offset)
	if err != nil {
		return nil, ErrTransient(fmt.Errorf("failed to list bookings: %w", err))
	}

	resp := &BookingListResponse{
		Bookings:   make([]BookingResponse, 0, len(bookings)),
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	}
	for i := range bookings {
		resp.Bookings = append(resp.Bookings, *bookings[i].ToResponse())
	}
	return resp, nil
}

// generateBookingReference builds a human-readable unique reference like
// EVT-20260115-KQZHXM.
func generateBookingReference() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			// crypto/rand failing is not survivable in any useful way;
			// fall back to a time-derived index.
			num = big.NewInt(time.Now().UnixNano() % int64(len(letters)))
		}
		randomPart[i] = letters[num.Int64()]
	}
	return fmt.Sprintf("EVT-%s-%s", time.Now().Format("20060102"), string(randomPart))
}
