package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/models"
)

func dialHub(t *testing.T, hub *Hub, identity models.Identity) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, identity)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readNotification(t *testing.T, conn *websocket.Conn) (models.Notification, error) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, b, err := conn.ReadMessage()
	if err != nil {
		return models.Notification{}, err
	}
	var n models.Notification
	require.NoError(t, json.Unmarshal(b, &n))
	return n, nil
}

func TestHubRoutesByAudience(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	defer hub.Close()

	customer := dialHub(t, hub, models.Identity{ID: "U1", Role: models.RoleCustomer})
	admin := dialHub(t, hub, models.Identity{ID: "A1", Role: models.RoleAdmin})
	stranger := dialHub(t, hub, models.Identity{ID: "U2", Role: models.RoleCustomer})
	require.Eventually(t, func() bool { return hub.Connected() == 3 }, time.Second, 10*time.Millisecond)

	hub.Publish(models.Notification{ID: "N1", UserID: "U1", Audience: models.AudienceUser, Title: "Booking approved"})
	hub.Publish(models.Notification{ID: "N2", Audience: models.AudienceAdmin, Title: "New booking"})

	n, err := readNotification(t, customer)
	require.NoError(t, err)
	assert.Equal(t, "N1", n.ID)

	n, err = readNotification(t, admin)
	require.NoError(t, err)
	assert.Equal(t, "N2", n.ID)

	_, err = readNotification(t, stranger)
	assert.Error(t, err, "other customers see nothing")
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub, models.Identity{ID: "U1", Role: models.RoleCustomer})
	require.Eventually(t, func() bool { return hub.Connected() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Connected())

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// publishing after close is harmless
	hub.Publish(models.Notification{ID: "N1", UserID: "U1", Audience: models.AudienceUser})
}

func TestHealthCheck(t *testing.T) {
	rr := httptest.NewRecorder()
	New(nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"alive": true}`, rr.Body.String())
}

type downDB struct{}

func (downDB) Ping(context.Context) error { return errors.New("server selection timeout") }

func TestHealthCheckReportsDatabaseDown(t *testing.T) {
	rr := httptest.NewRecorder()
	New(downDB{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "server selection timeout")
}
