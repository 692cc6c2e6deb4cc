package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/segyhp/rental-engine/pkg/response"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]Check
	timeout time.Duration
}

func NewHealthHandler(db *sqlx.DB, redisClient *redis.Client, timeout time.Duration) *HealthHandler {
	return &HealthHandler{
		checks: map[string]Check{
			"database": db.PingContext,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
		timeout: timeout,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health performs a basic health check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	response.Success(w, status)
}

// Ready performs readiness check including database and redis connectivity
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		err := check(ctx)
		cancel()

		if err != nil {
			status.Status = "error"
			status.Checks[name] = "failed: " + err.Error()
		} else {
			status.Checks[name] = "ok"
		}
	}

	if status.Status == "error" {
		response.JSON(w, http.StatusServiceUnavailable, status)
		return
	}

	response.Success(w, status)
}
