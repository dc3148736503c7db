package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aurahq/aura_service/internal/client"
	"github.com/aurahq/aura_service/internal/flow"
)

// FlowEvent announces that background generation for a session has
// finished, successfully or not. Clients poll for these instead of
// re-fetching the whole session.
type FlowEvent struct {
	SessionID string    `json:"session_id"`
	Step      flow.Step `json:"step"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// EventQueue delivers flow events over a per-session Redis list.
//
// Producer: the generation goroutine RPUSHes the event to
// "flow:events:{session_id}" when it settles. Consumer: the events
// endpoint BLPOPs the same key, so a waiting poll returns the moment
// generation finishes.
type EventQueue struct {
	redis *client.RedisClient
	ttl   time.Duration
	log   zerolog.Logger
}

// NewEventQueue creates an event queue. A nil Redis client disables
// delivery; Publish becomes a no-op and Wait reports unavailability.
func NewEventQueue(redisClient *client.RedisClient, ttl time.Duration, log zerolog.Logger) *EventQueue {
	return &EventQueue{
		redis: redisClient,
		ttl:   ttl,
		log:   log.With().Str("component", "event_queue").Logger(),
	}
}

func eventKey(sessionID string) string {
	return fmt.Sprintf("flow:events:%s", sessionID)
}

// Enabled reports whether event delivery is configured.
func (q *EventQueue) Enabled() bool {
	return q != nil && q.redis != nil
}

// Publish pushes an event for the session. Delivery failures are
// logged, never propagated; generation results land in session state
// regardless.
func (q *EventQueue) Publish(ctx context.Context, ev FlowEvent) {
	if !q.Enabled() {
		return
	}
	ev.At = time.Now()
	key := eventKey(ev.SessionID)
	if err := q.redis.RPush(ctx, key, ev); err != nil {
		q.log.Error().Err(err).Str("session_id", ev.SessionID).Msg("Failed to publish flow event")
		return
	}
	if err := q.redis.SetExpiry(ctx, key, q.ttl); err != nil {
		q.log.Warn().Err(err).Str("session_id", ev.SessionID).Msg("Failed to set event queue TTL")
	}
}

// Wait blocks until an event arrives for the session or timeout
// passes. A nil event with nil error means the wait timed out.
func (q *EventQueue) Wait(ctx context.Context, sessionID string, timeout time.Duration) (*FlowEvent, error) {
	if !q.Enabled() {
		return nil, fmt.Errorf("event delivery not configured")
	}
	data, err := q.redis.BLPop(ctx, timeout, eventKey(sessionID))
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to wait for flow event: %w", err)
	}

	var ev FlowEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode flow event: %w", err)
	}
	return &ev, nil
}

// Drop discards any queued events for the session. Called on reset so
// a fresh run does not see stale completions.
func (q *EventQueue) Drop(ctx context.Context, sessionID string) {
	if !q.Enabled() {
		return
	}
	if err := q.redis.Del(ctx, eventKey(sessionID)); err != nil {
		q.log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to drop event queue")
	}
}
