package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stagepass/internal/events"
	"stagepass/internal/shared/config"
	"stagepass/pkg/logger"
)

// DemandClient calls the external demand-estimation service for the current
// multiplier of an event. Any failure falls back to DefaultMultiplier;
// callers never see an error from this collaborator.
type DemandClient struct {
	serviceURL string
	httpClient *http.Client
	log        *logger.Logger
}

// compile-time check that DemandClient satisfies the events consumer contract
var _ events.MultiplierSource = (*DemandClient)(nil)

func NewDemandClient(cfg config.PricingConfig) *DemandClient {
	return &DemandClient{
		serviceURL: cfg.ServiceURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.GetDefault(),
	}
}

// demandRequest carries the features the estimation model expects.
type demandRequest struct {
	Hour           int     `json:"hour"`
	IsWeekend      int     `json:"isWeekend"`
	DaysUntilEvent int     `json:"daysUntilEvent"`
	OccupancyRate  float64 `json:"occupancyRate"`
}

type demandResponse struct {
	Multiplier float64 `json:"multiplier"`
}

// EstimateMultiplier returns the demand multiplier for an event. The result
// is always a sane positive value; an unreachable service, a non-2xx reply
// or a malformed payload yield DefaultMultiplier.
func (c *DemandClient) EstimateMultiplier(ctx context.Context, event *events.Event) float64 {
	if c.serviceURL == "" {
		return DefaultMultiplier
	}

	multiplier, err := c.fetchMultiplier(ctx, event)
	if err != nil {
		c.log.Warn("demand estimation unavailable, using default multiplier",
			"event_id", event.ID.String(), "error", err)
		return DefaultMultiplier
	}

	return SanitizeMultiplier(multiplier)
}

func (c *DemandClient) fetchMultiplier(ctx context.Context, event *events.Event) (float64, error) {
	payload := demandRequest{
		Hour:           eventHour(event),
		IsWeekend:      boolToInt(isWeekend(event.Date)),
		DaysUntilEvent: daysUntil(event.Date, time.Now()),
		OccupancyRate:  event.OccupancyRate(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode demand request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build demand request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("demand service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("demand service returned status %d", resp.StatusCode)
	}

	var result demandResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode demand response: %w", err)
	}

	if result.Multiplier == 0 {
		return 0, fmt.Errorf("demand service returned no multiplier")
	}

	return result.Multiplier, nil
}

// eventHour extracts the hour-of-day feature, defaulting to 18 when the
// event carries no usable time-of-day.
func eventHour(event *events.Event) int {
	start := event.EffectiveStart(config.DayBoundaryStart)
	if event.Time != "" {
		return start.Hour()
	}
	return 18
}

func isWeekend(date time.Time) bool {
	day := date.Weekday()
	return day == time.Saturday || day == time.Sunday
}

func daysUntil(date time.Time, now time.Time) int {
	diff := date.Sub(now)
	if diff <= 0 {
		return 0
	}
	return int(diff.Hours()/24) + 1
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
