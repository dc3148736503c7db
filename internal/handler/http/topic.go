package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aurahq/aura_service/internal/service"
	"github.com/aurahq/aura_service/pkg/response"
)

// defaultEventWait bounds how long an events poll may block.
const defaultEventWait = 25 * time.Second

// TopicHandler handles the speech-on-topic assessment endpoints.
type TopicHandler struct {
	log          zerolog.Logger
	topicService *service.TopicService
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(log zerolog.Logger, topicService *service.TopicService) *TopicHandler {
	return &TopicHandler{
		log:          log,
		topicService: topicService,
	}
}

// Create handles POST /api/v1/assessments/topic
func (h *TopicHandler) Create(w http.ResponseWriter, r *http.Request) {
	snap := h.topicService.Create(r.Context())
	response.Created(w, snap)
}

// Get handles GET /api/v1/assessments/topic/{sessionID}
func (h *TopicHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.topicService.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// Spin handles POST /api/v1/assessments/topic/{sessionID}/spin
func (h *TopicHandler) Spin(w http.ResponseWriter, r *http.Request) {
	snap, err := h.topicService.Spin(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// SelectTopic handles POST /api/v1/assessments/topic/{sessionID}/topic
func (h *TopicHandler) SelectTopic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, err)
		return
	}

	snap, err := h.topicService.SelectTopic(r.Context(), chi.URLParam(r, "sessionID"), req.Topic)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// Confirm handles POST /api/v1/assessments/topic/{sessionID}/confirm
func (h *TopicHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	snap, err := h.topicService.Confirm(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// ChangeTopic handles POST /api/v1/assessments/topic/{sessionID}/change
func (h *TopicHandler) ChangeTopic(w http.ResponseWriter, r *http.Request) {
	snap, err := h.topicService.ChangeTopic(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// SubmitSpeech handles POST /api/v1/assessments/topic/{sessionID}/speech
func (h *TopicHandler) SubmitSpeech(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transcript string `json:"transcript"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, err)
		return
	}

	snap, err := h.topicService.SubmitSpeech(r.Context(), chi.URLParam(r, "sessionID"), req.Transcript)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusAccepted, snap)
}

// StartAnswers handles POST /api/v1/assessments/topic/{sessionID}/answers/start
func (h *TopicHandler) StartAnswers(w http.ResponseWriter, r *http.Request) {
	snap, err := h.topicService.StartAnswers(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// SubmitAnswers handles POST /api/v1/assessments/topic/{sessionID}/answers
func (h *TopicHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers []string `json:"answers"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(h.log, w, err)
		return
	}

	snap, err := h.topicService.SubmitAnswers(r.Context(), chi.URLParam(r, "sessionID"), req.Answers)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusAccepted, snap)
}

// Continue handles POST /api/v1/assessments/topic/{sessionID}/continue
func (h *TopicHandler) Continue(w http.ResponseWriter, r *http.Request) {
	snap, err := h.topicService.Continue(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// Reset handles POST /api/v1/assessments/topic/{sessionID}/reset
func (h *TopicHandler) Reset(w http.ResponseWriter, r *http.Request) {
	snap, err := h.topicService.Reset(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// Events handles GET /api/v1/assessments/topic/{sessionID}/events
//
// The call blocks until background generation settles or the wait
// times out. A timed-out poll returns 204.
func (h *TopicHandler) Events(w http.ResponseWriter, r *http.Request) {
	timeout := parseEventWait(r)
	ev, err := h.topicService.WaitEvent(r.Context(), chi.URLParam(r, "sessionID"), timeout)
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

func parseEventWait(r *http.Request) time.Duration {
	timeout := defaultEventWait
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 && d <= defaultEventWait {
			timeout = d
		}
	}
	return timeout
}
