package analytics

import (
	"time"
)

// DashboardAnalytics is the admin dashboard read model.
type DashboardAnalytics struct {
	Overview       OverviewMetrics  `json:"overview"`
	EventOccupancy []EventOccupancy `json:"event_occupancy"`
	RecentBookings []RecentBooking  `json:"recent_bookings"`
	DailyRevenue   []DailyMetric    `json:"daily_revenue"`
}

type OverviewMetrics struct {
	TotalEvents    int     `json:"total_events"`
	ActiveEvents   int     `json:"active_events"`
	TotalBookings  int     `json:"total_bookings"`
	TotalSeatsSold int     `json:"total_seats_sold"`
	TotalRevenue   float64 `json:"total_revenue"`
	AvgOccupancy   float64 `json:"avg_occupancy"`
}

// EventOccupancy summarizes how full one event is.
type EventOccupancy struct {
	EventID       string  `json:"event_id"`
	EventTitle    string  `json:"event_title"`
	Status        string  `json:"status"`
	Capacity      int     `json:"capacity"`
	SeatsSold     int     `json:"seats_sold"`
	OccupancyRate float64 `json:"occupancy_rate"`
	Revenue       float64 `json:"revenue"`
}

type RecentBooking struct {
	BookingRef  string    `json:"booking_ref"`
	EventTitle  string    `json:"event_title"`
	SeatCount   int       `json:"seat_count"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

type DailyMetric struct {
	Date     string  `json:"date"`
	Bookings int     `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

// EventAnalytics is the per-event drill-down.
type EventAnalytics struct {
	EventID       string         `json:"event_id"`
	EventTitle    string         `json:"event_title"`
	Status        string         `json:"status"`
	Capacity      int            `json:"capacity"`
	SeatsSold     int            `json:"seats_sold"`
	OccupancyRate float64        `json:"occupancy_rate"`
	TotalBookings int            `json:"total_bookings"`
	TotalRevenue  float64        `json:"total_revenue"`
	AvgMultiplier float64        `json:"avg_multiplier"`
	Sections      []SectionStats `json:"sections"`
	DailyBookings []DailyMetric  `json:"daily_bookings"`
}

type SectionStats struct {
	SectionID   string  `json:"section_id"`
	SectionName string  `json:"section_name"`
	Capacity    int     `json:"capacity"`
	SeatsSold   int     `json:"seats_sold"`
	Revenue     float64 `json:"revenue"`
}
