package events

type Status string

const (
	StatusUpcoming  Status = "UPCOMING"
	StatusOngoing   Status = "ONGOING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsBookable reports whether new reservations may still be accepted for an
// event in this status. The time-based expiry check is separate, see
// Event.EffectiveStart.
func (s Status) IsBookable() bool {
	return s != StatusCompleted && s != StatusCancelled
}
