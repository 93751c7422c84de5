package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes the read-side aggregates over the booking ledger.
type Repository interface {
	GetDashboardAnalytics(ctx context.Context) (*DashboardAnalytics, error)
	GetOverviewMetrics(ctx context.Context) (*OverviewMetrics, error)
	GetEventOccupancy(ctx context.Context, limit int) ([]EventOccupancy, error)
	GetRecentBookings(ctx context.Context, limit int) ([]RecentBooking, error)
	GetDailyRevenue(ctx context.Context, days int) ([]DailyMetric, error)
	GetEventAnalytics(ctx context.Context, eventID uuid.UUID) (*EventAnalytics, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetDashboardAnalytics(ctx context.Context) (*DashboardAnalytics, error) {
	overview, err := r.GetOverviewMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get overview metrics: %w", err)
	}

	occupancy, err := r.GetEventOccupancy(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to get event occupancy: %w", err)
	}

	recent, err := r.GetRecentBookings(ctx, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent bookings: %w", err)
	}

	daily, err := r.GetDailyRevenue(ctx, 30)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily revenue: %w", err)
	}

	return &DashboardAnalytics{
		Overview:       *overview,
		EventOccupancy: occupancy,
		RecentBookings: recent,
		DailyRevenue:   daily,
	}, nil
}

func (r *repository) GetOverviewMetrics(ctx context.Context) (*OverviewMetrics, error) {
	var metrics OverviewMetrics
	db := r.db.WithContext(ctx)

	var totalEvents, activeEvents, totalBookings, seatsSold int64
	if err := db.Table("events").Count(&totalEvents).Error; err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	if err := db.Table("events").
		Where("status IN ?", []string{"UPCOMING", "ONGOING"}).
		Count(&activeEvents).Error; err != nil {
		return nil, fmt.Errorf("failed to count active events: %w", err)
	}
	if err := db.Table("bookings").
		Where("status = ?", "CONFIRMED").
		Count(&totalBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if err := db.Table("seat_reservations").Count(&seatsSold).Error; err != nil {
		return nil, fmt.Errorf("failed to count reserved seats: %w", err)
	}

	if err := db.Table("bookings").
		Where("status = ?", "CONFIRMED").
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&metrics.TotalRevenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	// Occupancy across events with at least one section.
	var capacity int64
	if err := db.Table("sections").
		Select("COALESCE(SUM(row_count * col_count), 0)").
		Scan(&capacity).Error; err != nil {
		return nil, fmt.Errorf("failed to sum capacity: %w", err)
	}
	if capacity > 0 {
		metrics.AvgOccupancy = float64(seatsSold) / float64(capacity)
	}

	metrics.TotalEvents = int(totalEvents)
	metrics.ActiveEvents = int(activeEvents)
	metrics.TotalBookings = int(totalBookings)
	metrics.TotalSeatsSold = int(seatsSold)
	return &metrics, nil
}

func (r *repository) GetEventOccupancy(ctx context.Context, limit int) ([]EventOccupancy, error) {
	var rows []EventOccupancy

	err := r.db.WithContext(ctx).Table("events e").
		Select(`e.id as event_id, e.title as event_title, e.status,
			COALESCE(SUM(s.row_count * s.col_count), 0) as capacity,
			e.sold_count as seats_sold,
			COALESCE((SELECT SUM(b.total_amount) FROM bookings b WHERE b.event_id = e.id AND b.status = 'CONFIRMED'), 0) as revenue`).
		Joins("LEFT JOIN sections s ON s.event_id = e.id").
		Group("e.id, e.title, e.status, e.sold_count").
		Order("e.sold_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get event occupancy: %w", err)
	}

	for i := range rows {
		if rows[i].Capacity > 0 {
			rows[i].OccupancyRate = float64(rows[i].SeatsSold) / float64(rows[i].Capacity)
		}
	}
	return rows, nil
}

func (r *repository) GetRecentBookings(ctx context.Context, limit int) ([]RecentBooking, error) {
	var rows []RecentBooking

	err := r.db.WithContext(ctx).Table("bookings b").
		Select(`b.booking_ref, e.title as event_title, b.total_amount, b.created_at,
			(SELECT COUNT(*) FROM tickets t WHERE t.booking_id = b.id) as seat_count`).
		Joins("JOIN events e ON e.id = b.event_id").
		Where("b.status = ?", "CONFIRMED").
		Order("b.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent bookings: %w", err)
	}
	return rows, nil
}

func (r *repository) GetDailyRevenue(ctx context.Context, days int) ([]DailyMetric, error) {
	var rows []DailyMetric

	err := r.db.WithContext(ctx).Table("bookings").
		Select(`TO_CHAR(created_at, 'YYYY-MM-DD') as date,
			COUNT(*) as bookings,
			COALESCE(SUM(total_amount), 0) as revenue`).
		Where("status = ? AND created_at >= CURRENT_DATE - ?::interval", "CONFIRMED", fmt.Sprintf("%d days", days)).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily revenue: %w", err)
	}
	return rows, nil
}

func (r *repository) GetEventAnalytics(ctx context.Context, eventID uuid.UUID) (*EventAnalytics, error) {
	db := r.db.WithContext(ctx)

	var header struct {
		EventTitle string
		Status     string
		SeatsSold  int
	}
	err := db.Table("events").
		Select("title as event_title, status, sold_count as seats_sold").
		Where("id = ?", eventID).
		Take(&header).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	analytics := &EventAnalytics{
		EventID:    eventID.String(),
		EventTitle: header.EventTitle,
		Status:     header.Status,
		SeatsSold:  header.SeatsSold,
	}

	err = db.Table("bookings").
		Where("event_id = ? AND status = ?", eventID, "CONFIRMED").
		Select(`COUNT(*) as total_bookings,
			COALESCE(SUM(total_amount), 0) as total_revenue,
			COALESCE(AVG(demand_multiplier), 0) as avg_multiplier`).
		Scan(analytics).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}

	err = db.Table("sections s").
		Select(`s.id as section_id, s.name as section_name,
			s.row_count * s.col_count as capacity,
			(SELECT COUNT(*) FROM seat_reservations sr WHERE sr.section_id = s.id) as seats_sold,
			COALESCE((SELECT SUM(t.price) FROM tickets t
				JOIN bookings b ON b.id = t.booking_id
				WHERE t.section_id = s.id AND b.status = 'CONFIRMED'), 0) as revenue`).
		Where("s.event_id = ?", eventID).
		Order("s.position").
		Scan(&analytics.Sections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sections: %w", err)
	}

	for _, section := range analytics.Sections {
		analytics.Capacity += section.Capacity
	}
	if analytics.Capacity > 0 {
		analytics.OccupancyRate = float64(analytics.SeatsSold) / float64(analytics.Capacity)
	}

	err = db.Table("bookings").
		Select(`TO_CHAR(created_at, 'YYYY-MM-DD') as date,
			COUNT(*) as bookings,
			COALESCE(SUM(total_amount), 0) as revenue`).
		Where("event_id = ? AND status = ?", eventID, "CONFIRMED").
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date").
		Scan(&analytics.DailyBookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily bookings: %w", err)
	}

	return analytics, nil
}
