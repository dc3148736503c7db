// Package capture drives one microphone capture cycle: acquire the
// device, record until stopped or the answer window expires, then hand
// the audio to a transcription collaborator.
package capture

import (
	"context"
	"sync"
	"time"

	"github.com/aurahq/aura_service/internal/countdown"
	"github.com/aurahq/aura_service/internal/errors"
)

// Device abstracts the recording hardware. Acquire may fail with
// ErrPermissionDenied or ErrDeviceUnavailable; Release must always be
// safe to call after a successful Acquire.
type Device interface {
	Acquire(ctx context.Context) error
	// Drain returns the audio recorded so far and its content type.
	Drain() (data []byte, contentType string, err error)
	Release()
}

// Transcriber converts recorded audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// Recorder runs capture cycles against a device and a transcriber. One
// cycle at a time; the device is held only between Start and Stop.
type Recorder struct {
	dev    Device
	tr     Transcriber
	window time.Duration

	mu        sync.Mutex
	capturing bool
	timer     *countdown.Countdown

	// OnAutoStop, when set, receives the transcription result if the
	// answer window expires before an explicit Stop.
	OnAutoStop func(transcript string, err error)
}

// NewRecorder creates a recorder with the given answer window. A zero
// window disables auto-stop.
func NewRecorder(dev Device, tr Transcriber, window time.Duration) *Recorder {
	return &Recorder{dev: dev, tr: tr, window: window}
}

// Start acquires the device and begins recording. Acquisition failures
// surface as recoverable errors the caller can retry.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.capturing {
		r.mu.Unlock()
		return errors.Conflict("capture already in progress")
	}
	r.capturing = true
	r.mu.Unlock()

	if err := r.dev.Acquire(ctx); err != nil {
		r.mu.Lock()
		r.capturing = false
		r.mu.Unlock()
		if appErr, ok := err.(*errors.AppError); ok {
			return appErr
		}
		return errors.Wrap(errors.ErrDeviceUnavailable, "could not acquire microphone", err)
	}

	if r.window > 0 {
		timer := countdown.New()
		r.mu.Lock()
		r.timer = timer
		r.mu.Unlock()
		timer.Start(int(r.window/time.Second), countdown.Callbacks{
			OnComplete: func() {
				transcript, err := r.Stop(context.Background())
				if r.OnAutoStop != nil {
					r.OnAutoStop(transcript, err)
				}
			},
		})
	}

	return nil
}

// Stop finalizes the recording and transcribes it. The device is
// released before transcription so a failed remote call never leaks the
// microphone. A failed or empty transcription returns "" with a
// TRANSCRIPTION_FAILED error.
func (r *Recorder) Stop(ctx context.Context) (string, error) {
	r.mu.Lock()
	if !r.capturing {
		r.mu.Unlock()
		return "", errors.Conflict("no capture in progress")
	}
	r.capturing = false
	timer := r.timer
	r.timer = nil
	r.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}

	audio, contentType, drainErr := r.dev.Drain()
	r.dev.Release()
	if drainErr != nil {
		return "", errors.Wrap(errors.ErrDeviceUnavailable, "failed to read recorded audio", drainErr)
	}

	transcript, err := r.tr.Transcribe(ctx, audio, contentType)
	if err != nil {
		return "", errors.TranscriptionFailed("transcription failed", err)
	}
	return transcript, nil
}

// Capturing reports whether a cycle is in progress.
func (r *Recorder) Capturing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.capturing
}
