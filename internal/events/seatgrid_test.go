package events

import (
	"testing"
	"time"

	"stagepass/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseSeatID(t *testing.T) {
	tests := []struct {
		seatID string
		row    int
		col    int
		ok     bool
	}{
		{seatID: "A1", row: 0, col: 1, ok: true},
		{seatID: "C12", row: 2, col: 12, ok: true},
		{seatID: "Z99", row: 25, col: 99, ok: true},
		{seatID: "A01", ok: false}, // leading zero: one spelling per seat
		{seatID: "A0", ok: false},
		{seatID: "a1", ok: false},
		{seatID: "A", ok: false},
		{seatID: "1A", ok: false},
		{seatID: "AA1", ok: false},
		{seatID: "A-1", ok: false},
		{seatID: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.seatID, func(t *testing.T) {
			row, col, ok := ParseSeatID(tt.seatID)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.row, row)
				assert.Equal(t, tt.col, col)
			}
		})
	}
}

func TestSeatInGrid(t *testing.T) {
	section := Section{RowCount: 5, ColCount: 10}

	assert.True(t, section.SeatInGrid("A1"))
	assert.True(t, section.SeatInGrid("E10"))
	assert.False(t, section.SeatInGrid("F1"), "row beyond grid")
	assert.False(t, section.SeatInGrid("A11"), "column beyond grid")
	assert.False(t, section.SeatInGrid("E11"))
}

func TestIsSeatAvailable(t *testing.T) {
	section := Section{
		RowCount:    5,
		ColCount:    10,
		BookedSeats: []string{"A1", "B7"},
	}

	assert.False(t, section.IsSeatAvailable("A1"), "booked seat")
	assert.False(t, section.IsSeatAvailable("B7"), "booked seat")
	assert.True(t, section.IsSeatAvailable("A2"))
	assert.False(t, section.IsSeatAvailable("F1"), "outside grid")
}

func TestSectionByID(t *testing.T) {
	gold := Section{ID: uuid.New(), Name: "Gold"}
	silver := Section{ID: uuid.New(), Name: "Silver"}
	event := Event{Sections: []Section{gold, silver}}

	found := event.SectionByID(silver.ID)
	assert.NotNil(t, found)
	assert.Equal(t, "Silver", found.Name)

	assert.Nil(t, event.SectionByID(uuid.New()))
}

func TestOccupancyRate(t *testing.T) {
	event := Event{
		Sections: []Section{
			{RowCount: 5, ColCount: 10, BookedSeats: []string{"A1", "A2", "A3", "A4", "A5"}},
			{RowCount: 5, ColCount: 10},
		},
	}

	assert.Equal(t, 100, event.TotalCapacity())
	assert.Equal(t, 5, event.BookedCount())
	assert.Equal(t, 0.05, event.OccupancyRate())

	empty := Event{}
	assert.Equal(t, 0.0, empty.OccupancyRate())
}

func TestEffectiveStart(t *testing.T) {
	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	t.Run("merges time of day", func(t *testing.T) {
		event := Event{Date: date, Time: "19:30"}
		start := event.EffectiveStart(config.DayBoundaryStart)
		assert.Equal(t, time.Date(2026, 9, 12, 19, 30, 0, 0, time.UTC), start)
	})

	t.Run("missing time with start boundary", func(t *testing.T) {
		event := Event{Date: date}
		start := event.EffectiveStart(config.DayBoundaryStart)
		assert.Equal(t, time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), start)
	})

	t.Run("missing time with end boundary", func(t *testing.T) {
		event := Event{Date: date}
		start := event.EffectiveStart(config.DayBoundaryEnd)
		assert.Equal(t, time.Date(2026, 9, 12, 23, 59, 59, 0, time.UTC), start)
	})

	t.Run("malformed time behaves like missing", func(t *testing.T) {
		event := Event{Date: date, Time: "25:99"}
		start := event.EffectiveStart(config.DayBoundaryStart)
		assert.Equal(t, time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), start)
	})
}

func TestHasStarted(t *testing.T) {
	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	event := Event{Date: date, Time: "19:30"}

	before := time.Date(2026, 9, 12, 19, 29, 59, 0, time.UTC)
	atStart := time.Date(2026, 9, 12, 19, 30, 0, 0, time.UTC)
	after := time.Date(2026, 9, 12, 19, 30, 1, 0, time.UTC)

	assert.False(t, event.HasStarted(before, config.DayBoundaryStart))
	assert.True(t, event.HasStarted(atStart, config.DayBoundaryStart), "start instant closes bookings")
	assert.True(t, event.HasStarted(after, config.DayBoundaryStart))
}

func TestStatusIsBookable(t *testing.T) {
	assert.True(t, StatusUpcoming.IsBookable())
	assert.True(t, StatusOngoing.IsBookable())
	assert.False(t, StatusCompleted.IsBookable())
	assert.False(t, StatusCancelled.IsBookable())
}
