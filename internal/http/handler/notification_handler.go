package handler

import (
	"net/http"

	"github.com/straye-as/attendance-api/internal/service"
	"go.uber.org/zap"
)

// NotificationHandler handles HTTP requests for the admin notification log
type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// List godoc
// @Summary List notifications
// @Description Newest first. The log keeps a bounded number of entries.
// @Tags Notifications
// @Produce json
// @Param limit query int false "Maximum entries to return"
// @Success 200 {object} domain.NotificationListDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimitParam(r, h.notificationService.Limit())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.notificationService.List(r.Context(), limit)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list notifications")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Clear godoc
// @Summary Clear notifications
// @Tags Notifications
// @Success 204
// @Security BearerAuth
// @Router /notifications [delete]
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.Clear(r.Context()); err != nil {
		handleServiceError(w, h.logger, err, "Failed to clear notifications")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
