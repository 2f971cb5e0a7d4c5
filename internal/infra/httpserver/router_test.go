package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"planetary_hour_notifier/internal/app"
	"planetary_hour_notifier/internal/domain/planetary"
	"planetary_hour_notifier/internal/infra/foreground"
	"planetary_hour_notifier/internal/infra/logger"
	"planetary_hour_notifier/internal/infra/scheduler"

	cws "github.com/coder/websocket"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 18, 10, 15, 0, 0, time.UTC)

type stubStatus struct {
	st  *app.Status
	err error
}

func (s stubStatus) Status(context.Context, time.Time) (*app.Status, error) { return s.st, s.err }

type stubTicker struct {
	state scheduler.State
	out   *app.TickOutcome
	ran   bool
	ticks []time.Time
}

func (s *stubTicker) Tick(now time.Time) (*app.TickOutcome, bool) {
	s.ticks = append(s.ticks, now)
	return s.out, s.ran
}

func (s *stubTicker) State() scheduler.State { return s.state }

func newDeps() Deps {
	slot := planetary.HourSlot{Date: "2026-10-18", Bucket: 10}
	return Deps{
		Contexts: func() int { return 2 },
		Status: stubStatus{st: &app.Status{
			Label:             planetary.Mars,
			Slot:              slot,
			LastDelivered:     slot,
			PermissionWarning: true,
			DeniedCount:       3,
		}},
		Scheduler: &stubTicker{state: scheduler.StateArmed},
		Logger:    logger.Discard(),
		Now:       func() time.Time { return testNow },
	}
}

func TestRouter_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(newDeps()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_Status(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(newDeps()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, statusResponse{
		Label:             "Mars",
		Slot:              "2026-10-18#10",
		LastDelivered:     "2026-10-18#10",
		SchedulerState:    "armed",
		ConnectedContexts: 2,
		PermissionWarning: true,
		DeniedCount:       3,
	}, got)
}

func TestRouter_StatusError(t *testing.T) {
	deps := newDeps()
	deps.Status = stubStatus{err: errors.New("db down")}
	rec := httptest.NewRecorder()
	NewRouter(deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "status unavailable")
}

func TestRouter_Wake(t *testing.T) {
	deps := newDeps()
	ticker := &stubTicker{
		state: scheduler.StateArmed,
		ran:   true,
		out: &app.TickOutcome{
			ID:      "tick-1",
			Reading: planetary.Reading{Label: planetary.Mars, Slot: planetary.HourSlot{Date: "2026-10-18", Bucket: 10}},
			Due:     true,
			Audio:   app.PlayResult{Path: app.PathForeground},
		},
	}
	deps.Scheduler = ticker
	rec := httptest.NewRecorder()
	NewRouter(deps).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/wake", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got wakeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, wakeResponse{Ran: true, TickID: "tick-1", Label: "Mars", Slot: "2026-10-18#10", Due: true, Audio: "foreground"}, got)
	assert.Equal(t, []time.Time{testNow}, ticker.ticks)
}

func TestRouter_WakeIgnoredWhenSuspended(t *testing.T) {
	deps := newDeps()
	deps.Scheduler = &stubTicker{state: scheduler.StateSuspended}
	rec := httptest.NewRecorder()
	NewRouter(deps).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/wake", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_WakeRequiresPost(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(newDeps()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/wake", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_ServesAssets(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/sounds/Sun.wav", []byte("RIFF"), 0o644))
	deps := newDeps()
	deps.Assets = fs

	rec := httptest.NewRecorder()
	NewRouter(deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/sounds/Sun.wav", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "RIFF", rec.Body.String())

	rec = httptest.NewRecorder()
	NewRouter(deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/sounds/Pluto.wav", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(newDeps()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRouter_ForegroundWebSocket(t *testing.T) {
	hub := foreground.NewHub(nil, nil, logger.Discard())
	deps := newDeps()
	deps.Foreground = hub
	srv := httptest.NewServer(NewRouter(deps))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := cws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
}
