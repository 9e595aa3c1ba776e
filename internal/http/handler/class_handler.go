package handler

import (
	"net/http"

	"github.com/straye-as/attendance-api/internal/auth"
	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/service"
	"go.uber.org/zap"
)

type ClassHandler struct {
	rosterService *service.RosterService
	logger        *zap.Logger
}

func NewClassHandler(rosterService *service.RosterService, logger *zap.Logger) *ClassHandler {
	return &ClassHandler{
		rosterService: rosterService,
		logger:        logger,
	}
}

// Create godoc
// @Summary Add class
// @Description Add a class to a department. Names are unique per department, ignoring case.
// @Tags Classes
// @Accept json
// @Produce json
// @Param request body domain.CreateClassRequest true "Class data"
// @Success 201 {object} domain.ClassDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /classes [post]
func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClassRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	class, err := h.rosterService.AddClass(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to add class")
		return
	}

	respondJSON(w, http.StatusCreated, class)
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param department query string false "Department" Enums(CSE, ISE, EC, EEE, CSBS, EI)
// @Success 200 {array} domain.ClassDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /classes [get]
func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	department, err := parseDepartmentParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	classes, err := h.rosterService.ListClasses(r.Context(), department)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list classes")
		return
	}

	respondJSON(w, http.StatusOK, classes)
}

// MyClasses godoc
// @Summary List classes of the current student's department
// @Tags Me
// @Produce json
// @Success 200 {array} domain.ClassDTO
// @Security BearerAuth
// @Router /me/classes [get]
func (h *ClassHandler) MyClasses(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	classes, err := h.rosterService.GetClassesByDepartment(r.Context(), userCtx.Department)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list classes")
		return
	}

	respondJSON(w, http.StatusOK, classes)
}
