package http

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aurahq/aura_service/internal/service"
	"github.com/aurahq/aura_service/pkg/response"
)

// SpeechHandler handles audio transcription.
type SpeechHandler struct {
	log           zerolog.Logger
	speechService *service.SpeechService
}

// NewSpeechHandler creates a new SpeechHandler.
func NewSpeechHandler(log zerolog.Logger, speechService *service.SpeechService) *SpeechHandler {
	return &SpeechHandler{
		log:           log,
		speechService: speechService,
	}
}

// Transcribe handles POST /api/v1/transcribe
// Accepts multipart form with an "audio" file field and an optional
// "session_id" field.
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 20MB for audio
	const maxAudioSize = 20 << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioSize)

	if err := r.ParseMultipartForm(maxAudioSize); err != nil {
		response.BadRequest(w, "file too large, maximum size is 20MB")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		response.BadRequest(w, "audio file is required (field: 'audio')")
		return
	}
	defer file.Close()

	audioData, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "failed to read audio file")
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = "adhoc"
	}

	result, err := h.speechService.Transcribe(r.Context(), sessionID, audioData, header.Header.Get("Content-Type"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}
