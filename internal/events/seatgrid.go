package events

import (
	"strconv"
	"strings"
	"time"

	"stagepass/internal/shared/config"

	"github.com/google/uuid"
)

// Seat identifiers are a row letter followed by a 1-based column number
// ("A1", "C12"). Row letters are limited to A..Z, so a section can have at
// most 26 rows.
const MaxSectionRows = 26

// ParseSeatID splits a seat identifier into its 0-based row index and
// 1-based column number. Returns false for anything that is not a
// well-formed identifier.
func ParseSeatID(seatID string) (row int, col int, ok bool) {
	if len(seatID) < 2 {
		return 0, 0, false
	}
	letter := seatID[0]
	if letter < 'A' || letter > 'Z' {
		return 0, 0, false
	}
	col, err := strconv.Atoi(seatID[1:])
	if err != nil || col < 1 {
		return 0, 0, false
	}
	// Reject forms like "A01" so every seat has exactly one spelling.
	if strings.HasPrefix(seatID[1:], "0") {
		return 0, 0, false
	}
	return int(letter - 'A'), col, true
}

// SeatInGrid reports whether seatID names a valid slot in this section's
// rows × cols grid.
func (s *Section) SeatInGrid(seatID string) bool {
	row, col, ok := ParseSeatID(seatID)
	if !ok {
		return false
	}
	return row < s.RowCount && col <= s.ColCount
}

// IsSeatAvailable reports whether seatID is a valid grid slot that is not in
// the booked set. Callers that need an authoritative answer must have loaded
// BookedSeats from fresh state first.
func (s *Section) IsSeatAvailable(seatID string) bool {
	if !s.SeatInGrid(seatID) {
		return false
	}
	for _, booked := range s.BookedSeats {
		if booked == seatID {
			return false
		}
	}
	return true
}

// TotalSeats returns the number of slots in the section grid.
func (s *Section) TotalSeats() int {
	return s.RowCount * s.ColCount
}

// SectionByID resolves a section belonging to this event, or nil.
func (e *Event) SectionByID(id uuid.UUID) *Section {
	for i := range e.Sections {
		if e.Sections[i].ID == id {
			return &e.Sections[i]
		}
	}
	return nil
}

// TotalCapacity is the seat count across all sections.
func (e *Event) TotalCapacity() int {
	total := 0
	for i := range e.Sections {
		total += e.Sections[i].TotalSeats()
	}
	return total
}

// BookedCount is the size of the union of all sections' booked-seat sets.
func (e *Event) BookedCount() int {
	total := 0
	for i := range e.Sections {
		total += len(e.Sections[i].BookedSeats)
	}
	return total
}

// OccupancyRate returns booked/capacity in [0,1], 0 for an empty grid.
func (e *Event) OccupancyRate() float64 {
	capacity := e.TotalCapacity()
	if capacity == 0 {
		return 0
	}
	return float64(e.BookedCount()) / float64(capacity)
}

// EffectiveStart merges the event date with its "HH:MM" time-of-day. When the
// time-of-day is absent the boundary is a configuration choice: start-of-day
// closes bookings at midnight of the event date, end-of-day keeps them open
// until 23:59:59.
func (e *Event) EffectiveStart(boundary config.DayBoundary) time.Time {
	year, month, day := e.Date.Date()
	loc := e.Date.Location()

	if hh, mm, ok := parseTimeOfDay(e.Time); ok {
		return time.Date(year, month, day, hh, mm, 0, 0, loc)
	}

	if boundary == config.DayBoundaryEnd {
		return time.Date(year, month, day, 23, 59, 59, 0, loc)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// HasStarted reports whether the event's effective start is at or before now.
func (e *Event) HasStarted(now time.Time, boundary config.DayBoundary) bool {
	return !now.Before(e.EffectiveStart(boundary))
}

func parseTimeOfDay(value string) (hh, mm int, ok bool) {
	if !strings.Contains(value, ":") {
		return 0, 0, false
	}
	parts := strings.SplitN(value, ":", 2)
	hh, errH := strconv.Atoi(parts[0])
	mm, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, 0, false
	}
	return hh, mm, true
}
