package notifications

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"stagepass/internal/bookings"

	"github.com/yeqown/go-qrcode"
)

// ticketPayload is the machine-readable content embedded in the ticket QR
// code, scanned at the venue entrance.
type ticketPayload struct {
	BookingID  string   `json:"booking_id"`
	BookingRef string   `json:"booking_ref"`
	Event      string   `json:"event"`
	Seats      []string `json:"seats"`
	User       string   `json:"user"`
}

// GenerateTicketCode renders the booking's ticket QR code and returns it as
// an image data URI suitable for storage and inline display.
func GenerateTicketCode(confirmed *bookings.ConfirmedBooking) (string, error) {
	seats := make([]string, 0, len(confirmed.Booking.Tickets))
	for _, t := range confirmed.Booking.Tickets {
		seats = append(seats, fmt.Sprintf("%s %s", t.SectionName, t.SeatID))
	}

	payload, err := json.Marshal(ticketPayload{
		BookingID:  confirmed.Booking.ID.String(),
		BookingRef: confirmed.Booking.BookingRef,
		Event:      confirmed.EventTitle,
		Seats:      seats,
		User:       confirmed.Purchaser.Name,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ticket payload: %w", err)
	}

	qrc, err := qrcode.New(string(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
