package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aurahq/aura_service/internal/capture"
	"github.com/aurahq/aura_service/internal/client"
	"github.com/aurahq/aura_service/internal/errors"
)

// TranscriptionResult is returned after transcribing a recording.
type TranscriptionResult struct {
	Transcript string `json:"transcript"`
	AudioURL   string `json:"audio_url,omitempty"`
}

// SpeechService turns uploaded recordings into transcripts and
// archives the audio.
type SpeechService struct {
	transcriber capture.Transcriber
	r2Client    *client.CloudflareClient
	log         zerolog.Logger
}

// NewSpeechService creates a new SpeechService. r2Client may be nil
// when no archive bucket is configured.
func NewSpeechService(transcriber capture.Transcriber, r2Client *client.CloudflareClient, log zerolog.Logger) *SpeechService {
	return &SpeechService{
		transcriber: transcriber,
		r2Client:    r2Client,
		log:         log.With().Str("component", "speech_service").Logger(),
	}
}

// Transcribe sends the recording to the transcription provider and
// archives the audio. Archive failures are non-fatal; transcription
// failures are not.
func (s *SpeechService) Transcribe(ctx context.Context, sessionID string, audioData []byte, contentType string) (*TranscriptionResult, error) {
	if len(audioData) == 0 {
		return nil, errors.Validation("audio payload is empty")
	}

	var audioURL string
	if s.r2Client != nil {
		key := fmt.Sprintf("recordings/%s/%s.webm", sessionID, uuid.New().String())
		url, err := s.r2Client.UploadR2Object(ctx, key, audioData, contentType)
		if err != nil {
			s.log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to archive recording")
		} else {
			audioURL = url
		}
	}

	transcript, err := s.transcriber.Transcribe(ctx, audioData, contentType)
	if err != nil {
		return nil, errors.TranscriptionFailed("failed to transcribe audio", err)
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, errors.Validation("could not detect any speech in the audio")
	}

	s.log.Info().
		Str("session_id", sessionID).
		Int("audio_bytes", len(audioData)).
		Int("transcript_chars", len(transcript)).
		Msg("Transcription completed")

	return &TranscriptionResult{
		Transcript: transcript,
		AudioURL:   audioURL,
	}, nil
}
