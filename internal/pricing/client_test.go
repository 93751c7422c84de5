package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stagepass/internal/events"
	"stagepass/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() *events.Event {
	return &events.Event{
		ID:     uuid.New(),
		Title:  "Test Concert",
		Date:   time.Now().AddDate(0, 0, 5),
		Time:   "19:00",
		Status: events.StatusUpcoming,
		Sections: []events.Section{
			{ID: uuid.New(), Name: "Gold", RowCount: 5, ColCount: 10, BasePrice: 500},
		},
	}
}

func newTestClient(url string) *DemandClient {
	return NewDemandClient(config.PricingConfig{
		ServiceURL: url,
		Timeout:    2 * time.Second,
	})
}

func TestEstimateMultiplierFromService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req, "hour")
		assert.Contains(t, req, "isWeekend")
		assert.Contains(t, req, "daysUntilEvent")
		assert.Contains(t, req, "occupancyRate")

		json.NewEncoder(w).Encode(map[string]float64{"multiplier": 1.25})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got := client.EstimateMultiplier(context.Background(), testEvent())
	assert.Equal(t, 1.25, got)
}

func TestEstimateMultiplierFallsBackWhenUnreachable(t *testing.T) {
	// Point at a server that is already closed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	got := client.EstimateMultiplier(context.Background(), testEvent())
	assert.Equal(t, DefaultMultiplier, got)
}

func TestEstimateMultiplierFallsBackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got := client.EstimateMultiplier(context.Background(), testEvent())
	assert.Equal(t, DefaultMultiplier, got)
}

func TestEstimateMultiplierFallsBackOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got := client.EstimateMultiplier(context.Background(), testEvent())
	assert.Equal(t, DefaultMultiplier, got)
}

func TestEstimateMultiplierSanitizesServiceValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]float64{"multiplier": -2.0})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got := client.EstimateMultiplier(context.Background(), testEvent())
	assert.Equal(t, DefaultMultiplier, got)
}

func TestEstimateMultiplierWithoutServiceURL(t *testing.T) {
	client := newTestClient("")
	got := client.EstimateMultiplier(context.Background(), testEvent())
	assert.Equal(t, DefaultMultiplier, got)
}
