// Package handler provides HTTP handlers for the SkyDial API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/skydial/skydial/internal/api/models"
	"github.com/skydial/skydial/internal/api/response"
	"github.com/skydial/skydial/internal/database"
	"github.com/skydial/skydial/internal/provider/resilience"
)

// OpsConfig wires the operational endpoints.
type OpsConfig struct {
	Version   string
	BuildTime string

	// Registry reports upstream circuit breakers. Optional.
	Registry *resilience.Registry

	// DB is pinged by the readiness probe. Nil means in-memory storage.
	DB database.Pinger
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
	now func() time.Time
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg, now: time.Now}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:  models.HealthStatusOK,
		Time:    models.Timestamp(h.now()),
		Version: h.cfg.Version,
	})
}

// ReadinessCheck handles GET /v1/ops/ready. It fails when the database is
// configured but unreachable.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	db := h.databaseStatus(r.Context())
	health := models.Health{
		Status: db.Status,
		Time:   models.Timestamp(h.now()),
	}
	if db.Detail != nil {
		health.Details = map[string]any{"database": *db.Detail}
	}

	status := http.StatusOK
	if db.Status == models.HealthStatusFail {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, r, status, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	db := h.databaseStatus(r.Context())

	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(h.now()),
		Version:    h.cfg.Version,
		BuildTime:  h.cfg.BuildTime,
		Subsystems: []models.SubsystemStatus{db},
		Providers:  []models.ProviderStatus{},
	}
	if db.Status == models.HealthStatusFail {
		status.Status = models.HealthStatusFail
	}

	if h.cfg.Registry != nil {
		for _, ph := range h.cfg.Registry.GetAllHealth() {
			ps := providerStatus(ph)
			if ps.Status != models.HealthStatusOK && status.Status == models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
			status.Providers = append(status.Providers, ps)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) databaseStatus(ctx context.Context) models.SubsystemStatus {
	s := models.SubsystemStatus{Name: "database", Status: models.HealthStatusOK}
	if h.cfg.DB == nil {
		detail := "in-memory"
		s.Detail = &detail
		return s
	}
	if err := database.Check(ctx, h.cfg.DB); err != nil {
		detail := err.Error()
		s.Status = models.HealthStatusFail
		s.Detail = &detail
	}
	return s
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:     ph.Name,
		Status:       models.HealthStatusOK,
		CircuitState: ph.State,
	}
	switch {
	case ph.IsUnhealthy():
		ps.Status = models.HealthStatusFail
	case ph.IsDegraded():
		ps.Status = models.HealthStatusDegraded
	}
	if ph.LastSuccessAt != nil {
		ts := models.Timestamp(*ph.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if ph.LastFailureAt != nil {
		ts := models.Timestamp(*ph.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}
