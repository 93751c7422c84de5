package notifications

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *Hub, topic string) *websocket.Conn {
	t.Helper()

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/ws", func(c *gin.Context) {
		hub.ServeWS(c, topic)
	})

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Wait for the subscription to register.
	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount(topic) == 0 {
		require.True(t, time.Now().Before(deadline), "subscription never registered")
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func TestHubPublishReachesSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	eventID := uuid.New()
	topic := EventTopic(eventID)
	conn := dialHub(t, hub, topic)

	update := &SeatUpdate{
		EventID:   eventID,
		Seats:     map[string][]string{"gold": {"A1", "B3"}},
		Timestamp: time.Now(),
	}
	hub.Publish(topic, update)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var got SeatUpdate
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, eventID, got.EventID)
	assert.Equal(t, []string{"A1", "B3"}, got.Seats["gold"])
}

func TestHubPublishToOtherTopicIsNotDelivered(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	topic := EventTopic(uuid.New())
	conn := dialHub(t, hub, topic)

	hub.Publish(EventTopic(uuid.New()), &SeatUpdate{})

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "nothing should arrive on an unrelated topic")
}

func TestHubCloseRejectsNewSubscribers(t *testing.T) {
	hub := NewHub()
	hub.Close()

	assert.Equal(t, 0, hub.SubscriberCount("anything"))
	// Publishing into a closed hub is a no-op, not a panic.
	hub.Publish("anything", &SeatUpdate{})
}

func TestApplySeatUpdateIsIdempotent(t *testing.T) {
	eventID := uuid.New()
	update := &SeatUpdate{
		EventID: eventID,
		Seats:   map[string][]string{"gold": {"A1", "B3"}},
	}

	snapshot := ApplySeatUpdate(nil, update)
	assert.ElementsMatch(t, []string{"A1", "B3"}, snapshot["gold"])

	// Replaying the same delta leaves the snapshot unchanged.
	snapshot = ApplySeatUpdate(snapshot, update)
	assert.ElementsMatch(t, []string{"A1", "B3"}, snapshot["gold"])

	// A later delta only adds the genuinely new seats.
	snapshot = ApplySeatUpdate(snapshot, &SeatUpdate{
		EventID: eventID,
		Seats:   map[string][]string{"gold": {"B3", "C5"}, "silver": {"A1"}},
	})
	assert.ElementsMatch(t, []string{"A1", "B3", "C5"}, snapshot["gold"])
	assert.ElementsMatch(t, []string{"A1"}, snapshot["silver"])
}

func TestBookingEmailPartitionKey(t *testing.T) {
	email := &BookingEmail{BookingID: uuid.New(), RecipientEmail: "ada@example.com"}
	assert.Equal(t, "ada@example.com", email.PartitionKey())

	anonymous := &BookingEmail{BookingID: uuid.New()}
	assert.Equal(t, anonymous.BookingID.String(), anonymous.PartitionKey())
}
