package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"stagepass/internal/events"
	"stagepass/internal/payments"
	"stagepass/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeEventRepo serves one event, optionally mutating it between loads to
// simulate concurrent bookings.
type fakeEventRepo struct {
	event     *events.Event
	onGetByID func(call int, event *events.Event)
	getCalls  int
}

func (f *fakeEventRepo) Create(ctx context.Context, event *events.Event) error { return nil }
func (f *fakeEventRepo) List(ctx context.Context) ([]events.Event, error)      { return nil, nil }
func (f *fakeEventRepo) Delete(ctx context.Context, id uuid.UUID) error        { return nil }
func (f *fakeEventRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status events.Status) error {
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	if f.event == nil || f.event.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	f.getCalls++
	if f.onGetByID != nil {
		f.onGetByID(f.getCalls, f.event)
	}
	return f.event, nil
}

// fakeBookingRepo records commits and can fail with a scripted error per call.
type fakeBookingRepo struct {
	commitErrs       []error
	commits          int
	lastBooking      *Booking
	lastReservations []SeatReservation
}

func (f *fakeBookingRepo) CreateBookingWithReservations(ctx context.Context, booking *Booking, reservations []SeatReservation) error {
	call := f.commits
	f.commits++
	if call < len(f.commitErrs) && f.commitErrs[call] != nil {
		return f.commitErrs[call]
	}
	f.lastBooking = booking
	f.lastReservations = reservations
	return nil
}

func (f *fakeBookingRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	if f.lastBooking != nil && f.lastBooking.ID == id {
		return f.lastBooking, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBookingRepo) GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int64, error) {
	if f.lastBooking != nil && f.lastBooking.UserID == userID {
		return []Booking{*f.lastBooking}, 1, nil
	}
	return nil, 0, nil
}

func (f *fakeBookingRepo) AttachTicketCode(ctx context.Context, id uuid.UUID, code string) error {
	return nil
}

type fakeVerifier struct{ valid bool }

func (f *fakeVerifier) Verify(orderID, paymentID, signature string) bool { return f.valid }

type fakeMultiplier struct{ value float64 }

func (f *fakeMultiplier) EstimateMultiplier(ctx context.Context, event *events.Event) float64 {
	return f.value
}

type fakeFanout struct{ confirmed []*ConfirmedBooking }

func (f *fakeFanout) BookingConfirmed(c *ConfirmedBooking) { f.confirmed = append(f.confirmed, c) }

type fixture struct {
	service   Service
	eventRepo *fakeEventRepo
	repo      *fakeBookingRepo
	verifier  *fakeVerifier
	fanout    *fakeFanout
	event     *events.Event
	goldID    uuid.UUID
	purchaser Purchaser
}

func newFixture(t *testing.T, multiplier float64) *fixture {
	t.Helper()

	goldID := uuid.New()
	event := &events.Event{
		ID:     uuid.New(),
		Title:  "Midnight Orchestra Live",
		Date:   time.Now().AddDate(0, 0, 7),
		Time:   "19:30",
		Status: events.StatusUpcoming,
		Sections: []events.Section{
			{ID: goldID, Name: "Gold", RowCount: 5, ColCount: 10, BasePrice: 500},
		},
	}

	eventRepo := &fakeEventRepo{event: event}
	repo := &fakeBookingRepo{}
	verifier := &fakeVerifier{valid: true}
	fanout := &fakeFanout{}

	cfg := &config.Config{
		Payments: config.PaymentsConfig{Required: false},
		Booking:  config.BookingConfig{DayBoundary: config.DayBoundaryStart},
	}

	return &fixture{
		service:   NewService(repo, eventRepo, verifier, &fakeMultiplier{value: multiplier}, fanout, cfg),
		eventRepo: eventRepo,
		repo:      repo,
		verifier:  verifier,
		fanout:    fanout,
		event:     event,
		goldID:    goldID,
		purchaser: Purchaser{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"},
	}
}

func (f *fixture) request(seats ...string) SubmitBookingRequest {
	req := SubmitBookingRequest{EventID: f.event.ID.String()}
	for _, seat := range seats {
		req.Tickets = append(req.Tickets, TicketRequest{
			SectionID: f.goldID.String(),
			SeatID:    seat,
		})
	}
	return req
}

func payProof() *payments.Proof {
	return &payments.Proof{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	require.Error(t, err)
	bookingErr, ok := AsBookingError(err)
	require.True(t, ok, "expected a booking error, got %v", err)
	assert.Equal(t, kind, bookingErr.Kind)
	return bookingErr
}

func TestSubmitBookingPricesSeatsWithMultiplier(t *testing.T) {
	f := newFixture(t, 1.25)

	resp, err := f.service.SubmitBooking(context.Background(), f.purchaser, f.request("A1", "B3"))
	require.NoError(t, err)

	assert.Equal(t, 1250.0, resp.TotalAmount)
	assert.Equal(t, 1.25, resp.Multiplier)
	require.Len(t, resp.Tickets, 2)
	assert.Equal(t, 625.0, resp.Tickets[0].Price)
	assert.Equal(t, 625.0, resp.Tickets[1].Price)
	assert.Equal(t, string(StatusConfirmed), string(resp.Status))
	assert.Regexp(t, `^EVT-\d{8}-[A-Z]{6}$`, resp.BookingRef)

	// Ledger rows mirror the priced tickets.
	require.Len(t, f.repo.lastReservations, 2)
	assert.Equal(t, "A1", f.repo.lastReservations[0].SeatID)
	assert.Equal(t, f.goldID, f.repo.lastReservations[0].SectionID)

	// Fan-out fires after commit with the purchaser attached.
	require.Len(t, f.fanout.confirmed, 1)
	assert.Equal(t, "Midnight Orchestra Live", f.fanout.confirmed[0].EventTitle)
	assert.Equal(t, f.purchaser.Email, f.fanout.confirmed[0].Purchaser.Email)
}

func TestSubmitBookingRejectsBookedSeat(t *testing.T) {
	f := newFixture(t, 1.0)
	f.event.Sections[0].BookedSeats = []string{"A1"}

	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, f.request("A1"))

	bookingErr := requireKind(t, err, ErrKindSeatUnavailable)
	assert.Equal(t, "A1", bookingErr.Seat)
	assert.Zero(t, f.repo.commits, "no commit may be attempted")
	assert.Empty(t, f.fanout.confirmed)
}

func TestSubmitBookingRejectsSeatOutsideGrid(t *testing.T) {
	f := newFixture(t, 1.0)

	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, f.request("F1"))

	requireKind(t, err, ErrKindSeatUnavailable)
	assert.Zero(t, f.repo.commits)
}

func TestSubmitBookingRejectsDuplicateSeatsInRequest(t *testing.T) {
	f := newFixture(t, 1.0)

	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, f.request("A1", "A1"))

	bookingErr := requireKind(t, err, ErrKindSeatUnavailable)
	assert.Equal(t, "A1", bookingErr.Seat)
	assert.Zero(t, f.repo.commits, "no commit may be attempted")
}

func TestSubmitBookingDuplicateSeatsOnUnknownEventIsNotFound(t *testing.T) {
	f := newFixture(t, 1.0)

	req := f.request("A1", "A1")
	req.EventID = uuid.New().String()
	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, req)

	requireKind(t, err, ErrKindNotFound)
}

func TestSubmitBookingUnknownEvent(t *testing.T) {
	f := newFixture(t, 1.0)

	req := f.request("A1")
	req.EventID = uuid.New().String()
	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, req)

	requireKind(t, err, ErrKindNotFound)
}

func TestSubmitBookingMalformedEventID(t *testing.T) {
	f := newFixture(t, 1.0)

	req := f.request("A1")
	req.EventID = "not-a-uuid"
	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, req)

	requireKind(t, err, ErrKindNotFound)
}

func TestSubmitBookingUnknownSection(t *testing.T) {
	f := newFixture(t, 1.0)

	req := SubmitBookingRequest{
		EventID: f.event.ID.String(),
		Tickets: []TicketRequest{{SectionID: uuid.New().String(), SeatID: "A1"}},
	}
	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, req)

	requireKind(t, err, ErrKindInvalidSection)
	assert.Zero(t, f.repo.commits)
}

func TestSubmitBookingCompletedEvent(t *testing.T) {
	f := newFixture(t, 1.0)
	f.event.Status = events.StatusCompleted

	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, f.request("A1"))

	requireKind(t, err, ErrKindBookingClosed)
}

func TestSubmitBookingStartedEvent(t *testing.T) {
	f := newFixture(t, 1.0)
	f.event.Date = time.Now().AddDate(0, 0, -1)

	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, f.request("A1"))

	requireKind(t, err, ErrKindBookingClosed)
}

func TestSubmitBookingInvalidPaymentSignature(t *testing.T) {
	f := newFixture(t, 1.0)
	f.verifier.valid = false

	req := f.request("A1")
	req.Payment = payProof()
	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, req)

	requireKind(t, err, ErrKindPaymentRejected)
	assert.Zero(t, f.repo.commits)
}

func TestPaymentCheckedBeforeEventState(t *testing.T) {
	f := newFixture(t, 1.0)
	f.verifier.valid = false
	f.event.Status = events.StatusCompleted

	req := f.request("A1")
	req.Payment = payProof()
	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, req)

	requireKind(t, err, ErrKindPaymentRejected)
}

func TestSubmitBookingRetriesOnceAfterConflict(t *testing.T) {
	f := newFixture(t, 1.0)
	f.repo.commitErrs = []error{ErrSeatConflict}

	resp, err := f.service.SubmitBooking(context.Background(), f.purchaser, f.request("A2"))
	require.NoError(t, err)

	assert.Equal(t, 2, f.repo.commits, "one retry after the conflict")
	assert.Equal(t, 2, f.eventRepo.getCalls, "retry re-validates against fresh state")
	assert.Equal(t, 500.0, resp.TotalAmount)
}

func TestSubmitBookingSecondConflictSurfacesSeatUnavailable(t *testing.T) {
	f := newFixture(t, 1.0)
	f.repo.commitErrs = []error{ErrSeatConflict, ErrSeatConflict}

	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, f.request("A2"))

	requireKind(t, err, ErrKindSeatUnavailable)
	assert.Equal(t, 2, f.repo.commits)
	assert.Empty(t, f.fanout.confirmed)
}

func TestSubmitBookingSecondConflictNamesLostSeat(t *testing.T) {
	f := newFixture(t, 1.0)
	f.repo.commitErrs = []error{ErrSeatConflict, ErrSeatConflict}
	// The winning reservation of B3 becomes visible only on the read after
	// the second conflict; the rejection must name B3, not the request's
	// first seat.
	f.eventRepo.onGetByID = func(call int, event *events.Event) {
		if call == 3 {
			event.Sections[0].BookedSeats = []string{"B3"}
		}
	}

	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, f.request("A2", "B3"))

	bookingErr := requireKind(t, err, ErrKindSeatUnavailable)
	assert.Equal(t, "B3", bookingErr.Seat)
	assert.Equal(t, 3, f.eventRepo.getCalls, "conflict rejection rereads the ledger")
}

func TestSubmitBookingRetrySeesFreshState(t *testing.T) {
	f := newFixture(t, 1.0)
	f.repo.commitErrs = []error{ErrSeatConflict}
	// The conflicting booking shows up in the ledger before the retry loads
	// fresh state, so re-validation rejects instead of retrying the commit.
	f.eventRepo.onGetByID = func(call int, event *events.Event) {
		if call == 2 {
			event.Sections[0].BookedSeats = []string{"A2"}
		}
	}

	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, f.request("A2"))

	bookingErr := requireKind(t, err, ErrKindSeatUnavailable)
	assert.Equal(t, "A2", bookingErr.Seat)
	assert.Equal(t, 1, f.repo.commits, "second commit never attempted")
}

func TestSubmitBookingInfrastructureFailureIsTransient(t *testing.T) {
	f := newFixture(t, 1.0)
	f.repo.commitErrs = []error{errors.New("connection reset")}

	_, err := f.service.SubmitBooking(context.Background(), f.purchaser, f.request("A2"))

	requireKind(t, err, ErrKindTransient)
	assert.Equal(t, 1, f.repo.commits, "non-conflict failures are not retried")
}

func TestSubmitBookingUsesDefaultMultiplierWithoutSource(t *testing.T) {
	f := newFixture(t, 1.0)
	cfg := &config.Config{
		Payments: config.PaymentsConfig{Required: false},
		Booking:  config.BookingConfig{DayBoundary: config.DayBoundaryStart},
	}
	svc := NewService(f.repo, f.eventRepo, f.verifier, nil, nil, cfg)

	resp, err := svc.SubmitBooking(context.Background(), f.purchaser, f.request("A1"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.Multiplier)
	assert.Equal(t, 500.0, resp.TotalAmount)
}

func TestSubmitBookingStrictModeRequiresProof(t *testing.T) {
	f := newFixture(t, 1.0)
	cfg := &config.Config{
		Payments: config.PaymentsConfig{Required: true},
		Booking:  config.BookingConfig{DayBoundary: config.DayBoundaryStart},
	}
	svc := NewService(f.repo, f.eventRepo, f.verifier, nil, nil, cfg)

	_, err := svc.SubmitBooking(context.Background(), f.purchaser, f.request("A1"))

	requireKind(t, err, ErrKindPaymentRejected)
}

func TestGetBookingEnforcesOwnership(t *testing.T) {
	f := newFixture(t, 1.0)

	resp, err := f.service.SubmitBooking(context.Background(), f.purchaser, f.request("A1"))
	require.NoError(t, err)
	bookingID := uuid.MustParse(resp.BookingID)

	got, err := f.service.GetBooking(context.Background(), bookingID, f.purchaser.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.BookingID, got.BookingID)

	_, err = f.service.GetBooking(context.Background(), bookingID, uuid.New())
	requireKind(t, err, ErrKindNotFound)
}

func TestSubmitBookingAllowsSameSeatIDAcrossSections(t *testing.T) {
	f := newFixture(t, 1.0)
	silverID := uuid.New()
	f.event.Sections = append(f.event.Sections, events.Section{
		ID: silverID, Name: "Silver", RowCount: 5, ColCount: 10, BasePrice: 300,
	})

	req := SubmitBookingRequest{
		EventID: f.event.ID.String(),
		Tickets: []TicketRequest{
			{SectionID: f.goldID.String(), SeatID: "A1"},
			{SectionID: silverID.String(), SeatID: "A1"},
		},
	}
	resp, err := f.service.SubmitBooking(context.Background(), f.purchaser, req)

	require.NoError(t, err)
	assert.Equal(t, 800.0, resp.TotalAmount)
	require.Len(t, f.repo.lastReservations, 2)
}
