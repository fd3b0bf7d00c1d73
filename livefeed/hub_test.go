package livefeed

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jan112121/attendance-backend/attendance"
)

const feedSecret = "feed-secret"

func staffToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  uint(1),
		"role": "teacher",
		"name": "Tester",
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(feedSecret))
	require.NoError(t, err)
	return tok
}

func newFeedServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(feedSecret)
	e := echo.New()
	e.GET("/ws/feed", hub.Handle)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dialFeed(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/feed?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHandleRejectsMissingOrBadToken(t *testing.T) {
	_, srv := newFeedServer(t)

	resp, err := http.Get(srv.URL + "/ws/feed")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ws/feed?token=not-a-token")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublishScanReachesClient(t *testing.T) {
	hub, srv := newFeedServer(t)
	conn := dialFeed(t, srv, staffToken(t))

	hub.PublishScan(&attendance.Result{Ref: "ref-1", Message: "Time-in recorded"})

	var ev Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "SCAN", ev.Event)

	data, ok := ev.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ref-1", data["ref"])
}

func TestConcurrentPublishesDeliverEveryFrame(t *testing.T) {
	hub, srv := newFeedServer(t)
	conn := dialFeed(t, srv, staffToken(t))

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hub.PublishScan(&attendance.Result{Ref: fmt.Sprintf("ref-%d", i)})
		}(i)
	}
	wg.Wait()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		var ev Event
		require.NoError(t, conn.ReadJSON(&ev))
		data, ok := ev.Data.(map[string]any)
		require.True(t, ok)
		ref, _ := data["ref"].(string)
		seen[ref] = struct{}{}
	}
	assert.Len(t, seen, n, "every publish arrives exactly once, no interleaved frames")
}
