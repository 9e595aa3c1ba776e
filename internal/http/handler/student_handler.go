package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/service"
	"go.uber.org/zap"
)

// StudentHandler serves the admin roster endpoints
type StudentHandler struct {
	rosterService     *service.RosterService
	attendanceService *service.AttendanceService
	statsService      *service.StatsService
	logger            *zap.Logger
}

func NewStudentHandler(
	rosterService *service.RosterService,
	attendanceService *service.AttendanceService,
	statsService *service.StatsService,
	logger *zap.Logger,
) *StudentHandler {
	return &StudentHandler{
		rosterService:     rosterService,
		attendanceService: attendanceService,
		statsService:      statsService,
		logger:            logger,
	}
}

// Create godoc
// @Summary Add student
// @Description Add a student to the roster; the id is assigned sequentially (ST001, ST002, ...)
// @Tags Students
// @Accept json
// @Produce json
// @Param request body domain.CreateStudentRequest true "Student data"
// @Success 201 {object} domain.StudentDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /students [post]
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateStudentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	student, err := h.rosterService.AddStudent(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to add student")
		return
	}

	w.Header().Set("Location", "/api/v1/students/"+student.ID)
	respondJSON(w, http.StatusCreated, student)
}

// List godoc
// @Summary List students
// @Description List the roster, optionally filtered by name/id substring and department
// @Tags Students
// @Produce json
// @Param search query string false "Case-insensitive match on name or id"
// @Param department query string false "Department" Enums(CSE, ISE, EC, EEE, CSBS, EI)
// @Success 200 {array} domain.StudentDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /students [get]
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	department, err := parseDepartmentParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	students, err := h.rosterService.ListStudents(r.Context(), r.URL.Query().Get("search"), department)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list students")
		return
	}

	respondJSON(w, http.StatusOK, students)
}

// GetByID godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID" example(ST001)
// @Success 200 {object} domain.StudentDTO
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /students/{id} [get]
func (h *StudentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	student, err := h.rosterService.GetStudent(r.Context(), studentIDParam(r))
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get student")
		return
	}

	respondJSON(w, http.StatusOK, student)
}

// GetAttendance godoc
// @Summary Get a student's attendance history
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {array} domain.AttendanceRecordDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /students/{id}/attendance [get]
func (h *StudentHandler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	records, err := h.attendanceService.GetStudentAttendance(r.Context(), studentIDParam(r))
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get attendance")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// GetWeekly godoc
// @Summary Get a student's last seven days
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {array} domain.WeeklyDayDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /students/{id}/weekly [get]
func (h *StudentHandler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	days, err := h.attendanceService.GetWeeklyAttendance(r.Context(), studentIDParam(r))
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get weekly attendance")
		return
	}

	respondJSON(w, http.StatusOK, days)
}

// GetSummary godoc
// @Summary Get a student's monthly and weekly summary
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} domain.StudentSummaryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /students/{id}/summary [get]
func (h *StudentHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.statsService.GetStudentSummary(r.Context(), studentIDParam(r))
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func studentIDParam(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "id")))
}
