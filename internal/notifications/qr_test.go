package notifications

import (
	"strings"
	"testing"

	"stagepass/internal/bookings"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTicketCode(t *testing.T) {
	bookingID := uuid.New()
	confirmed := &bookings.ConfirmedBooking{
		Booking: &bookings.Booking{
			ID:         bookingID,
			BookingRef: "EVT-20260912-ABCDEF",
			Tickets: []bookings.Ticket{
				{SectionName: "Gold", SeatID: "A1", Price: 625},
				{SectionName: "Gold", SeatID: "B3", Price: 625},
			},
		},
		EventTitle: "Midnight Orchestra Live",
		Purchaser:  bookings.Purchaser{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"},
	}

	code, err := GenerateTicketCode(confirmed)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(code, "data:image/jpeg;base64,"))
	assert.Greater(t, len(code), len("data:image/jpeg;base64,"))
}
