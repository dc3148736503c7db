package http

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/aurahq/aura_service/internal/repository"
	"github.com/aurahq/aura_service/internal/service"
	"github.com/aurahq/aura_service/pkg/response"
)

// ReportHandler handles report email delivery and the report archive.
type ReportHandler struct {
	log          zerolog.Logger
	emailService *service.EmailService
	reports      repository.ReportRepository
}

// NewReportHandler creates a new ReportHandler. reports may be nil
// when no archive database is configured.
func NewReportHandler(log zerolog.Logger, emailService *service.EmailService, reports repository.ReportRepository) *ReportHandler {
	return &ReportHandler{
		log:          log,
		emailService: emailService,
		reports:      reports,
	}
}

// SendEmail handles POST /api/v1/reports/email
//
// The result is always 200 with a success flag; delivery problems are
// reported in the body, not as transport errors.
func (h *ReportHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string `json:"email"`
		Title  string `json:"title"`
		Report string `json:"report"`
		Score  int    `json:"score"`
		Grade  string `json:"grade"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, err)
		return
	}

	result := h.emailService.SendReport(req.Email, req.Title, req.Report, req.Score, req.Grade)
	response.JSON(w, http.StatusOK, result)
}

// ListRecent handles GET /api/v1/reports/recent
func (h *ReportHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		response.Error(w, http.StatusServiceUnavailable, &response.ErrorBody{
			Code:    "NOT_CONFIGURED",
			Message: "report archive is not configured",
		})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	records, err := h.reports.ListRecent(r.Context(), limit)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, records)
}
