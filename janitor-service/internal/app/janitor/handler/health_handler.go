package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"storefront/janitor-service/internal/app/janitor/entity"
	"storefront/janitor-service/internal/app/janitor/repository"
	"storefront/janitor-service/internal/app/janitor/service"
	"storefront/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger - зависимость, доступность которой проверяет healthcheck
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthCheckHandler struct {
	db         Pinger
	redis      Pinger
	sweeper    service.SweeperInterface
	staleAfter time.Duration
	now        func() time.Time
}

// NewHealthCheckHandler; отчет старше staleAfter помечается предупреждением, но не роняет статус
func NewHealthCheckHandler(db, redis Pinger, sweeper service.SweeperInterface, staleAfter time.Duration) *HealthCheckHandler {
	return &HealthCheckHandler{
		db:         db,
		redis:      redis,
		sweeper:    sweeper,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

type HealthResponse struct {
	Status    string              `json:"status"`
	Checks    map[string]string   `json:"checks"`
	LastSweep *entity.SweepReport `json:"last_sweep,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

func (h *HealthCheckHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "healthy"

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	if err := h.redis.Ping(ctx); err != nil {
		checks["redis"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["redis"] = "healthy"
	}

	report, err := h.sweeper.LastReport(ctx)
	switch {
	case errors.Is(err, repository.ErrNoReport):
		checks["last_sweep"] = "warning: no sweep yet"
	case err != nil:
		checks["last_sweep"] = "warning: " + err.Error()
	case h.staleAfter > 0 && h.now().Sub(report.FinishedAt) > h.staleAfter:
		age := h.now().Sub(report.FinishedAt).Round(time.Second)
		logger.Warn().Dur("age", age).Msg("Last sweep report is outdated")
		checks["last_sweep"] = "warning: outdated (" + age.String() + ")"
	default:
		checks["last_sweep"] = "healthy"
	}

	writeJSON(w, overallStatus, HealthResponse{
		Status:    overallStatus,
		Checks:    checks,
		LastSweep: report,
		Timestamp: h.now(),
	})
}

func (h *HealthCheckHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	if err := h.redis.Ping(ctx); err != nil {
		http.Error(w, "redis not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (h *HealthCheckHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

func (h *HealthCheckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/health/readiness", h.Readiness)
	mux.HandleFunc("/health/liveness", h.Liveness)
	mux.Handle("/metrics", promhttp.Handler())
}

func writeJSON(w http.ResponseWriter, status string, body HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	if status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn().Err(err).Msg("Failed to write health response")
	}
}
