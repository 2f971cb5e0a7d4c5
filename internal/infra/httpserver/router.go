// Package httpserver exposes the notifier over HTTP: the foreground
// WebSocket endpoint, status, an opportunistic wake-up hook, metrics and
// the static audio assets.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"planetary_hour_notifier/internal/app"
	"planetary_hour_notifier/internal/infra/scheduler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// StatusProvider reports the current hour and delivery state.
type StatusProvider interface {
	Status(ctx context.Context, now time.Time) (*app.Status, error)
}

// Ticker is the scheduler surface the HTTP layer drives.
type Ticker interface {
	Tick(now time.Time) (*app.TickOutcome, bool)
	State() scheduler.State
}

// Deps are the handlers' collaborators. Nil Foreground or Assets disables that route.
type Deps struct {
	Foreground http.Handler
	Contexts   func() int
	Status     StatusProvider
	Scheduler  Ticker
	Assets     afero.Fs
	Logger     *logrus.Entry
	Now        func() time.Time
}

type statusResponse struct {
	Label             string `json:"label"`
	Slot              string `json:"slot"`
	LastDelivered     string `json:"last_delivered"`
	SchedulerState    string `json:"scheduler_state"`
	ConnectedContexts int    `json:"connected_contexts"`
	PermissionWarning bool   `json:"permission_warning"`
	DeniedCount       int    `json:"denied_count"`
}

type wakeResponse struct {
	Ran      bool   `json:"ran"`
	TickID   string `json:"tick_id,omitempty"`
	Label    string `json:"label,omitempty"`
	Slot     string `json:"slot,omitempty"`
	Due      bool   `json:"due"`
	Audio    string `json:"audio,omitempty"`
	AlertErr string `json:"alert_error,omitempty"`
}

type handler struct {
	deps Deps
}

// NewRouter builds the chi router.
func NewRouter(deps Deps) http.Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Contexts == nil {
		deps.Contexts = func() int { return 0 }
	}
	h := &handler{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Handle("/metrics", promhttp.Handler())
	if deps.Foreground != nil {
		r.Handle("/ws", deps.Foreground)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Post("/wake", h.wake)
	})

	if deps.Assets != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(afero.NewHttpFs(deps.Assets).Dir("/"))))
	}
	return r
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.Status.Status(r.Context(), h.deps.Now())
	if err != nil {
		h.deps.Logger.WithError(err).Error("Could not read status")
		writeError(w, http.StatusServiceUnavailable, "status unavailable")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Label:             st.Label.String(),
		Slot:              st.Slot.String(),
		LastDelivered:     st.LastDelivered.String(),
		SchedulerState:    string(h.deps.Scheduler.State()),
		ConnectedContexts: h.deps.Contexts(),
		PermissionWarning: st.PermissionWarning,
		DeniedCount:       st.DeniedCount,
	})
}

// wake lets a host that has no timers of its own nudge the scheduler when
// it happens to be running. The tick goes through the same path as the cron trigger.
func (h *handler) wake(w http.ResponseWriter, _ *http.Request) {
	out, ran := h.deps.Scheduler.Tick(h.deps.Now())
	resp := wakeResponse{Ran: ran}
	if ran && out != nil {
		resp.TickID = out.ID
		resp.Label = out.Reading.Label.String()
		resp.Slot = out.Reading.Slot.String()
		resp.Due = out.Due
		resp.Audio = out.Audio.Path
		if out.AlertErr != nil {
			resp.AlertErr = out.AlertErr.Error()
		}
	}
	status := http.StatusOK
	if !ran {
		status = http.StatusConflict
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logrus.WithError(err).Error("failed to encode response")
		}
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]interface{}{
		"error": map[string]string{"message": message},
	})
}

func requestLogger(base *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			base.WithFields(logrus.Fields{
				"request_id":  middleware.GetReqID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			}).Debug("http request")
		})
	}
}
