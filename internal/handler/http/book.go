package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aurahq/aura_service/internal/service"
	"github.com/aurahq/aura_service/pkg/response"
)

// BookHandler handles the book-summary assessment endpoints.
type BookHandler struct {
	log         zerolog.Logger
	bookService *service.BookService
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(log zerolog.Logger, bookService *service.BookService) *BookHandler {
	return &BookHandler{
		log:         log,
		bookService: bookService,
	}
}

// Create handles POST /api/v1/assessments/book
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	snap := h.bookService.Create(r.Context())
	response.Created(w, snap)
}

// Get handles GET /api/v1/assessments/book/{sessionID}
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.bookService.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// Spin handles POST /api/v1/assessments/book/{sessionID}/spin
func (h *BookHandler) Spin(w http.ResponseWriter, r *http.Request) {
	snap, err := h.bookService.Spin(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// SelectBook handles POST /api/v1/assessments/book/{sessionID}/title
func (h *BookHandler) SelectBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, err)
		return
	}

	snap, err := h.bookService.SelectBook(r.Context(), chi.URLParam(r, "sessionID"), req.Title)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// Confirm handles POST /api/v1/assessments/book/{sessionID}/confirm
//
// Confirming starts summary generation in the background.
func (h *BookHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	snap, err := h.bookService.Confirm(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusAccepted, snap)
}

// ChangeBook handles POST /api/v1/assessments/book/{sessionID}/change
func (h *BookHandler) ChangeBook(w http.ResponseWriter, r *http.Request) {
	snap, err := h.bookService.ChangeBook(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// SelectTimer handles POST /api/v1/assessments/book/{sessionID}/timer
func (h *BookHandler) SelectTimer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds int `json:"seconds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, err)
		return
	}

	snap, err := h.bookService.SelectReadingWindow(r.Context(), chi.URLParam(r, "sessionID"), req.Seconds)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// FinishReading handles POST /api/v1/assessments/book/{sessionID}/reading/finish
//
// Called when the reading timer runs out or the user moves on early.
// Starts question generation in the background.
func (h *BookHandler) FinishReading(w http.ResponseWriter, r *http.Request) {
	snap, err := h.bookService.FinishReading(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusAccepted, snap)
}

// SubmitRapidFire handles POST /api/v1/assessments/book/{sessionID}/answers/rapid
func (h *BookHandler) SubmitRapidFire(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers []string `json:"answers"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, err)
		return
	}

	snap, err := h.bookService.SubmitRapidFireAnswers(r.Context(), chi.URLParam(r, "sessionID"), req.Answers)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// SubmitFollowUp handles POST /api/v1/assessments/book/{sessionID}/answers/followup
//
// Accepting the follow-up answers starts report generation.
func (h *BookHandler) SubmitFollowUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers []string `json:"answers"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, err)
		return
	}

	snap, err := h.bookService.SubmitFollowUpAnswers(r.Context(), chi.URLParam(r, "sessionID"), req.Answers)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusAccepted, snap)
}

// Continue handles POST /api/v1/assessments/book/{sessionID}/continue
func (h *BookHandler) Continue(w http.ResponseWriter, r *http.Request) {
	snap, err := h.bookService.Continue(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// Reset handles POST /api/v1/assessments/book/{sessionID}/reset
func (h *BookHandler) Reset(w http.ResponseWriter, r *http.Request) {
	snap, err := h.bookService.Reset(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// Events handles GET /api/v1/assessments/book/{sessionID}/events
func (h *BookHandler) Events(w http.ResponseWriter, r *http.Request) {
	timeout := parseEventWait(r)
	ev, err := h.bookService.WaitEvent(r.Context(), chi.URLParam(r, "sessionID"), timeout)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	if ev == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	response.JSON(w, http.StatusOK, ev)
}
