package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurahq/aura_service/internal/catalog"
	"github.com/aurahq/aura_service/internal/countdown"
	"github.com/aurahq/aura_service/internal/flow"
	"github.com/aurahq/aura_service/internal/repository"
	"github.com/aurahq/aura_service/internal/score"
	"github.com/aurahq/aura_service/internal/session"
	"github.com/aurahq/aura_service/internal/spin"
)

// TopicGenerator is the slice of the AI service the topic flow needs.
type TopicGenerator interface {
	GenerateTopicQuestions(ctx context.Context, topic, initialSpeech string) ([]string, error)
	GenerateTopicReport(ctx context.Context, topic, initialSpeech string, questions, answers []string) (flow.Report, error)
}

// TopicSnapshot is the client-facing view of a topic session.
type TopicSnapshot struct {
	SessionID string           `json:"session_id"`
	State     *flow.TopicState `json:"state"`
	Score     *score.Result    `json:"score,omitempty"`
}

// TopicService orchestrates the speech-on-topic assessment: session
// lifecycle, the spinner, and background question and report
// generation.
type TopicService struct {
	store        *session.Store
	ai           TopicGenerator
	events       *EventQueue
	reports      repository.ReportRepository
	genTimeout   time.Duration
	answerWindow time.Duration
	spinOpts     []spin.Option
	log          zerolog.Logger

	windowMu sync.Mutex
	windows  map[string]*countdown.Countdown
}

// NewTopicService creates a new TopicService. reports may be nil when
// no archive database is configured. answerWindow is the per-question
// capture window; zero disables the deadline.
func NewTopicService(
	store *session.Store,
	ai TopicGenerator,
	events *EventQueue,
	reports repository.ReportRepository,
	genTimeout time.Duration,
	answerWindow time.Duration,
	spinOpts []spin.Option,
	log zerolog.Logger,
) *TopicService {
	return &TopicService{
		store:        store,
		ai:           ai,
		events:       events,
		reports:      reports,
		genTimeout:   genTimeout,
		answerWindow: answerWindow,
		spinOpts:     spinOpts,
		log:          log.With().Str("component", "topic_service").Logger(),
		windows:      make(map[string]*countdown.Countdown),
	}
}

// Create starts a new topic session at topic selection.
func (s *TopicService) Create(ctx context.Context) *TopicSnapshot {
	sess := s.store.CreateTopic()
	s.log.Info().Str("session_id", sess.ID).Msg("Topic session created")
	return s.snapshot(sess)
}

// Get returns the current session view.
func (s *TopicService) Get(ctx context.Context, sessionID string) (*TopicSnapshot, error) {
	sess, err := s.store.GetTopic(sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(sess), nil
}

// Spin runs the spinner over the built-in topic catalog and settles on
// a topic. The call blocks for the spin duration, mirroring the wheel
// the client renders.
func (s *TopicService) Spin(ctx context.Context, sessionID string) (*TopicSnapshot, error) {
	sess, err := s.store.GetTopic(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	err = sess.Topic.StartSpin()
	sess.Unlock()
	if err != nil {
		return nil, err
	}

	spinner := spin.New(catalog.Topics(), s.spinOpts...)
	selected, err := spinner.Spin(spin.Callbacks{})
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Topic.SettleSpin(selected); err != nil {
		return nil, err
	}
	s.log.Info().Str("session_id", sess.ID).Str("topic", selected).Msg("Spinner settled")
	return s.snapshotLocked(sess), nil
}

// SelectTopic records a user-typed custom topic.
func (s *TopicService) SelectTopic(ctx context.Context, sessionID, topic string) (*TopicSnapshot, error) {
	sess, err := s.store.GetTopic(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Topic.SelectCustomTopic(topic); err != nil {
		return nil, err
	}
	return s.snapshotLocked(sess), nil
}

// Confirm accepts the selected topic and opens the initial speech.
func (s *TopicService) Confirm(ctx context.Context, sessionID string) (*TopicSnapshot, error) {
	sess, err := s.store.GetTopic(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Topic.Confirm(); err != nil {
		return nil, err
	}
	return s.snapshotLocked(sess), nil
}

// ChangeTopic discards the selection and returns to topic selection.
func (s *TopicService) ChangeTopic(ctx context.Context, sessionID string) (*TopicSnapshot, error) {
	sess, err := s.store.GetTopic(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Topic.ChangeTopic(); err != nil {
		return nil, err
	}
	return s.snapshotLocked(sess), nil
}

// SubmitSpeech stores the initial speech transcript and kicks off
// question generation in the background.
func (s *TopicService) SubmitSpeech(ctx context.Context, sessionID, transcript string) (*TopicSnapshot, error) {
	sess, err := s.store.GetTopic(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Topic.SubmitInitialSpeech(transcript); err != nil {
		return nil, err
	}

	workCtx, epoch := sess.StartWork(context.Background())
	topic := sess.Topic.Topic
	go s.generateQuestions(workCtx, sess, epoch, topic, transcript)

	return s.snapshotLocked(sess), nil
}

func (s *TopicService) generateQuestions(ctx context.Context, sess *session.Session, epoch int, topic, transcript string) {
	ctx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	questions, genErr := s.ai.GenerateTopicQuestions(ctx, topic, transcript)

	sess.Lock()
	defer sess.Unlock()
	if !sess.Current(epoch) {
		s.log.Debug().Str("session_id", sess.ID).Msg("Discarding stale question generation")
		return
	}

	if genErr != nil {
		s.log.Error().Err(genErr).Str("session_id", sess.ID).Msg("Question generation failed")
		_ = sess.Topic.FailGeneration(genErr.Error())
	} else if err := sess.Topic.QuestionsReady(questions); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to deliver questions")
		_ = sess.Topic.FailGeneration(err.Error())
	}

	s.events.Publish(context.Background(), FlowEvent{
		SessionID: sess.ID,
		Step:      sess.Topic.Step,
		Error:     sess.Topic.LastError,
	})
}

// StartAnswers opens the final speech once the questions are read and
// arms the answer-window deadline.
func (s *TopicService) StartAnswers(ctx context.Context, sessionID string) (*TopicSnapshot, error) {
	sess, err := s.store.GetTopic(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Topic.BeginAnswering(); err != nil {
		return nil, err
	}
	s.startAnswerWindow(sess)
	return s.snapshotLocked(sess), nil
}

// startAnswerWindow runs one capture window per question. If the whole
// window elapses before the answers arrive, the flow falls back to the
// question display.
func (s *TopicService) startAnswerWindow(sess *session.Session) {
	if s.answerWindow <= 0 {
		return
	}
	cd := countdown.New()
	s.windowMu.Lock()
	if prev := s.windows[sess.ID]; prev != nil {
		prev.Stop()
	}
	s.windows[sess.ID] = cd
	s.windowMu.Unlock()

	ticks := int(s.answerWindow.Seconds()) * flow.TopicQuestionCount
	cd.Start(ticks, countdown.Callbacks{OnComplete: func() {
		s.expireAnswerWindow(sess)
	}})
}

func (s *TopicService) expireAnswerWindow(sess *session.Session) {
	s.stopAnswerWindow(sess.ID)

	sess.Lock()
	if err := sess.Topic.ExpireAnswers(); err != nil {
		sess.Unlock()
		return
	}
	step := sess.Topic.Step
	lastErr := sess.Topic.LastError
	sess.Unlock()

	s.log.Info().Str("session_id", sess.ID).Msg("Answer window elapsed")
	s.events.Publish(context.Background(), FlowEvent{
		SessionID: sess.ID,
		Step:      step,
		Error:     lastErr,
	})
}

func (s *TopicService) stopAnswerWindow(sessionID string) {
	s.windowMu.Lock()
	if cd := s.windows[sessionID]; cd != nil {
		cd.Stop()
		delete(s.windows, sessionID)
	}
	s.windowMu.Unlock()
}

// SubmitAnswers records one spoken answer per question and kicks off
// report generation in the background.
func (s *TopicService) SubmitAnswers(ctx context.Context, sessionID string, answers []string) (*TopicSnapshot, error) {
	sess, err := s.store.GetTopic(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Topic.SubmitAnswers(answers); err != nil {
		return nil, err
	}
	s.stopAnswerWindow(sess.ID)

	workCtx, epoch := sess.StartWork(context.Background())
	state := *sess.Topic
	go s.generateReport(workCtx, sess, epoch, state)

	return s.snapshotLocked(sess), nil
}

func (s *TopicService) generateReport(ctx context.Context, sess *session.Session, epoch int, state flow.TopicState) {
	ctx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	report, genErr := s.ai.GenerateTopicReport(ctx, state.Topic, state.InitialTranscript, state.Questions, state.Answers)

	sess.Lock()
	if !sess.Current(epoch) {
		sess.Unlock()
		s.log.Debug().Str("session_id", sess.ID).Msg("Discarding stale report generation")
		return
	}

	if genErr != nil {
		s.log.Error().Err(genErr).Str("session_id", sess.ID).Msg("Report generation failed")
		_ = sess.Topic.FailGeneration(genErr.Error())
	} else if err := sess.Topic.ReportReady(report); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to deliver report")
		_ = sess.Topic.FailGeneration(err.Error())
	}
	step := sess.Topic.Step
	lastErr := sess.Topic.LastError
	sess.Unlock()

	if genErr == nil && step == flow.StepScoreDisplay {
		s.archive(sess.ID, state.Topic, report)
	}

	s.events.Publish(context.Background(), FlowEvent{
		SessionID: sess.ID,
		Step:      step,
		Error:     lastErr,
	})
}

func (s *TopicService) archive(sessionID, topic string, report flow.Report) {
	if s.reports == nil {
		return
	}
	result := score.Aggregate(report.ChartData)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rec := &repository.ReportRecord{
		SessionID: sessionID,
		Kind:      string(session.KindTopic),
		Subject:   topic,
		Score:     result.Score,
		Grade:     result.Grade,
		Narrative: report.Narrative,
		ChartData: report.ChartData,
	}
	if err := s.reports.Create(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to archive report")
	}
}

// Continue advances from the score summary to the full report.
func (s *TopicService) Continue(ctx context.Context, sessionID string) (*TopicSnapshot, error) {
	sess, err := s.store.GetTopic(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Topic.Continue(); err != nil {
		return nil, err
	}
	return s.snapshotLocked(sess), nil
}

// Reset abandons the run: in-flight generation is cancelled, queued
// events are dropped, and the flow returns to topic selection.
func (s *TopicService) Reset(ctx context.Context, sessionID string) (*TopicSnapshot, error) {
	sess, err := s.store.GetTopic(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	sess.CancelWork()
	sess.Topic.Reset()
	sess.Unlock()

	s.stopAnswerWindow(sessionID)
	s.events.Drop(ctx, sessionID)
	s.log.Info().Str("session_id", sessionID).Msg("Topic session reset")
	return s.snapshot(sess), nil
}

// WaitEvent blocks until background generation for the session settles
// or timeout passes. A nil event means the wait timed out.
func (s *TopicService) WaitEvent(ctx context.Context, sessionID string, timeout time.Duration) (*FlowEvent, error) {
	if _, err := s.store.GetTopic(sessionID); err != nil {
		return nil, err
	}
	return s.events.Wait(ctx, sessionID, timeout)
}

func (s *TopicService) snapshot(sess *session.Session) *TopicSnapshot {
	sess.Lock()
	defer sess.Unlock()
	return s.snapshotLocked(sess)
}

func (s *TopicService) snapshotLocked(sess *session.Session) *TopicSnapshot {
	state := *sess.Topic
	snap := &TopicSnapshot{
		SessionID: sess.ID,
		State:     &state,
	}
	if state.Report != nil {
		result := score.Aggregate(state.Report.ChartData)
		snap.Score = &result
	}
	return snap
}
