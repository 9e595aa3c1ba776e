package handler

import (
	"net/http"

	"github.com/straye-as/attendance-api/internal/service"
	"go.uber.org/zap"
)

type DailyCodeHandler struct {
	codeService *service.DailyCodeService
	logger      *zap.Logger
}

func NewDailyCodeHandler(codeService *service.DailyCodeService, logger *zap.Logger) *DailyCodeHandler {
	return &DailyCodeHandler{
		codeService: codeService,
		logger:      logger,
	}
}

// Generate godoc
// @Summary Generate daily code
// @Description Issue a new student login code valid until the next local midnight. Replaces the current code.
// @Tags Daily Code
// @Produce json
// @Success 201 {object} domain.DailyCodeDTO
// @Security BearerAuth
// @Router /daily-code [post]
func (h *DailyCodeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	code, err := h.codeService.Generate(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to generate daily code")
		return
	}

	respondJSON(w, http.StatusCreated, code)
}

// Get godoc
// @Summary Get current daily code
// @Description Returns the latest issued code; active is false once it has expired
// @Tags Daily Code
// @Produce json
// @Success 200 {object} domain.DailyCodeDTO
// @Failure 404 {object} domain.APIError "No code issued yet"
// @Security BearerAuth
// @Router /daily-code [get]
func (h *DailyCodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	code, err := h.codeService.Current(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get daily code")
		return
	}

	respondJSON(w, http.StatusOK, code)
}
