package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/straye-as/attendance-api/internal/auth"
	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/service"
	"go.uber.org/zap"
)

// maxMarkBodyBytes bounds the optional mark body (class name plus location)
const maxMarkBodyBytes = 4 << 10

// AttendanceHandler serves attendance marking for students and the admin attendance views
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
	statsService      *service.StatsService
	logger            *zap.Logger
}

func NewAttendanceHandler(
	attendanceService *service.AttendanceService,
	statsService *service.StatsService,
	logger *zap.Logger,
) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
		statsService:      statsService,
		logger:            logger,
	}
}

// Mark godoc
// @Summary Mark attendance
// @Description Mark the current student present for today. Only one mark per day is accepted.
// @Tags Me
// @Accept json
// @Produce json
// @Param request body domain.MarkAttendanceRequest false "Optional class and location"
// @Success 201 {object} domain.AttendanceRecordDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Attendance already marked for today"
// @Failure 413 {object} domain.APIError
// @Security BearerAuth
// @Router /me/attendance [post]
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	// The body is optional; an empty one marks without class or location
	var req domain.MarkAttendanceRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMarkBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(body))
		if !decodeAndValidate(w, r, &req) {
			return
		}
	}

	record, err := h.attendanceService.Mark(r.Context(), userCtx.UserID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to mark attendance")
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

// MyAttendance godoc
// @Summary Get own attendance history
// @Tags Me
// @Produce json
// @Success 200 {array} domain.AttendanceRecordDTO
// @Security BearerAuth
// @Router /me/attendance [get]
func (h *AttendanceHandler) MyAttendance(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	records, err := h.attendanceService.GetStudentAttendance(r.Context(), userCtx.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get attendance")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// MyToday godoc
// @Summary Check whether attendance is already marked today
// @Tags Me
// @Produce json
// @Success 200 {object} domain.TodayStatusDTO
// @Security BearerAuth
// @Router /me/attendance/today [get]
func (h *AttendanceHandler) MyToday(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	status, err := h.attendanceService.GetTodayStatus(r.Context(), userCtx.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get today's status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// MyWeekly godoc
// @Summary Get own last seven days
// @Tags Me
// @Produce json
// @Success 200 {array} domain.WeeklyDayDTO
// @Security BearerAuth
// @Router /me/attendance/weekly [get]
func (h *AttendanceHandler) MyWeekly(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	days, err := h.attendanceService.GetWeeklyAttendance(r.Context(), userCtx.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get weekly attendance")
		return
	}

	respondJSON(w, http.StatusOK, days)
}

// MySummary godoc
// @Summary Get own monthly and weekly summary
// @Tags Me
// @Produce json
// @Success 200 {object} domain.StudentSummaryDTO
// @Security BearerAuth
// @Router /me/summary [get]
func (h *AttendanceHandler) MySummary(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	summary, err := h.statsService.GetStudentSummary(r.Context(), userCtx.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// List godoc
// @Summary Search attendance records
// @Description Newest first. Filters combine.
// @Tags Attendance
// @Produce json
// @Param search query string false "Case-insensitive match on student name or id"
// @Param date query string false "Day (YYYY-MM-DD)"
// @Param department query string false "Department" Enums(CSE, ISE, EC, EEE, CSBS, EI)
// @Success 200 {array} domain.AttendanceRecordDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /attendance [get]
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	department, err := parseDepartmentParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.attendanceService.Search(r.Context(), service.AttendanceQuery{
		Search:     r.URL.Query().Get("search"),
		Date:       r.URL.Query().Get("date"),
		Department: department,
	})
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to search attendance")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// Today godoc
// @Summary List today's attendance
// @Tags Attendance
// @Produce json
// @Success 200 {array} domain.AttendanceRecordDTO
// @Security BearerAuth
// @Router /attendance/today [get]
func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	records, err := h.attendanceService.GetTodayAttendance(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get today's attendance")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// Export godoc
// @Summary Export attendance as CSV
// @Tags Attendance
// @Produce text/csv
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	var buf bytes.Buffer
	count, err := h.attendanceService.ExportCSV(r.Context(), &buf, from, to)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to export attendance")
		return
	}

	filename := "attendance"
	if from != "" {
		filename += "_" + from
	}
	if to != "" {
		filename += "_" + to
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".csv"))
	w.Header().Set("X-Record-Count", strconv.Itoa(count))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
