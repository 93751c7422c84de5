package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stagepass/internal/shared/config"
	"stagepass/pkg/cache"
	"stagepass/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrEventNotFound is returned when the referenced event does not exist.
var ErrEventNotFound = errors.New("event not found")

// MultiplierSource supplies the current demand multiplier for an event.
// Implemented by the pricing package; declared here to avoid a circular
// dependency. Implementations must fall back to 1.0 internally and never
// return an invalid value.
type MultiplierSource interface {
	EstimateMultiplier(ctx context.Context, event *Event) float64
}

type Service interface {
	CreateEvent(ctx context.Context, createdBy uuid.UUID, req CreateEventRequest) (*EventResponse, error)
	ListEvents(ctx context.Context) ([]EventResponse, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetSeatMap(ctx context.Context, id uuid.UUID) (*SeatMapResponse, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	// InvalidateEvent drops cached read models after a ledger mutation.
	InvalidateEvent(ctx context.Context, id uuid.UUID)
}

type service struct {
	repo       Repository
	multiplier MultiplierSource
	cache      cache.Service
	cacheTTL   time.Duration
	boundary   config.DayBoundary
	log        *logger.Logger
}

// NewService creates a new event service. multiplier and cacheService may be
// nil; the service then serves uncached responses with a 1.0 multiplier.
func NewService(repo Repository, multiplier MultiplierSource, cacheService cache.Service, cfg *config.Config) Service {
	return &service{
		repo:       repo,
		multiplier: multiplier,
		cache:      cacheService,
		cacheTTL:   cfg.Redis.EventCacheTTL,
		boundary:   cfg.Booking.DayBoundary,
		log:        logger.GetDefault(),
	}
}

func (s *service) CreateEvent(ctx context.Context, createdBy uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid event date: %w", err)
	}

	category := req.Category
	if category == "" {
		category = "General"
	}

	event := &Event{
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		Location:    req.Location,
		Date:        date,
		Time:        req.Time,
		Status:      StatusUpcoming,
		IsFeatured:  req.IsFeatured,
		CreatedBy:   createdBy,
		Sections:    make([]Section, 0, len(req.Sections)),
	}

	for i, sec := range req.Sections {
		event.Sections = append(event.Sections, Section{
			Name:      sec.Name,
			RowCount:  sec.Rows,
			ColCount:  sec.Cols,
			BasePrice: sec.BasePrice,
			Position:  i,
		})
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	for i := range event.Sections {
		event.Sections[i].BookedSeats = []string{}
	}

	return event.ToResponse(1.0), nil
}

// ListEvents returns all events ordered by date. Events whose effective start
// has passed are transitioned to COMPLETED on the way out; the transition is
// one-way and failures only affect the stored status, not the response.
func (s *service) ListEvents(ctx context.Context) ([]EventResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	now := time.Now()
	responses := make([]EventResponse, 0, len(list))
	for i := range list {
		event := &list[i]
		if event.Status.IsBookable() && event.HasStarted(now, s.boundary) {
			event.Status = StatusCompleted
			if err := s.repo.UpdateStatus(ctx, event.ID, StatusCompleted); err != nil {
				s.log.Warn("failed to auto-complete event",
					"event_id", event.ID.String(), "error", err)
			}
		}
		responses = append(responses, *event.ToResponse(1.0))
	}

	return responses, nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	if s.cache != nil {
		var cached EventResponse
		err := s.cache.GetOrSet(ctx, eventCacheKey(id), s.cacheTTL, func() (interface{}, error) {
			return s.buildEventResponse(ctx, id)
		}, &cached)
		if err == nil {
			return &cached, nil
		}
		if errors.Is(err, ErrEventNotFound) {
			return nil, err
		}
		s.log.Warn("event cache lookup failed, serving from database", "error", err)
	}

	return s.buildEventResponse(ctx, id)
}

func (s *service) buildEventResponse(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	multiplier := 1.0
	if s.multiplier != nil {
		multiplier = s.multiplier.EstimateMultiplier(ctx, event)
	}

	return event.ToResponse(multiplier), nil
}

// GetSeatMap returns the current booked-seat state per section, the initial
// view for seat-map subscribers before live deltas take over.
func (s *service) GetSeatMap(ctx context.Context, id uuid.UUID) (*SeatMapResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	resp := &SeatMapResponse{
		EventID:  event.ID.String(),
		Sections: make([]SectionResponse, 0, len(event.Sections)),
	}
	for i := range event.Sections {
		resp.Sections = append(resp.Sections, event.Sections[i].ToResponse())
	}
	return resp, nil
}

func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.InvalidateEvent(ctx, id)
	return nil
}

func (s *service) InvalidateEvent(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, eventCacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate event cache", "event_id", id.String(), "error", err)
	}
}

func eventCacheKey(id uuid.UUID) string {
	return "event:" + id.String()
}
