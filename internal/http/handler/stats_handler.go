package handler

import (
	"net/http"

	"github.com/straye-as/attendance-api/internal/service"
	"go.uber.org/zap"
)

type StatsHandler struct {
	statsService *service.StatsService
	logger       *zap.Logger
}

func NewStatsHandler(statsService *service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		logger:       logger,
	}
}

// Departments godoc
// @Summary Per-department stats for today
// @Tags Stats
// @Produce json
// @Success 200 {array} domain.DepartmentStatsDTO
// @Security BearerAuth
// @Router /stats/departments [get]
func (h *StatsHandler) Departments(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.GetDepartmentStats(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get department stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Overview godoc
// @Summary Dashboard totals for today
// @Tags Stats
// @Produce json
// @Success 200 {object} domain.OverviewDTO
// @Security BearerAuth
// @Router /stats/overview [get]
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.statsService.GetOverview(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get overview")
		return
	}

	respondJSON(w, http.StatusOK, overview)
}
