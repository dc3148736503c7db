package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurahq/aura_service/internal/catalog"
	"github.com/aurahq/aura_service/internal/flow"
	"github.com/aurahq/aura_service/internal/repository"
	"github.com/aurahq/aura_service/internal/score"
	"github.com/aurahq/aura_service/internal/session"
	"github.com/aurahq/aura_service/internal/spin"
)

// BookGenerator is the slice of the AI service the book flow needs.
type BookGenerator interface {
	GenerateBookSummary(ctx context.Context, title string) (string, error)
	GenerateBookQuestions(ctx context.Context, title, summary string) (flow.BookQuestions, error)
	GenerateBookReport(ctx context.Context, title, summary string, q flow.BookQuestions, rapidAnswers, followAnswers []string) (flow.Report, error)
}

// BookSnapshot is the client-facing view of a book session.
type BookSnapshot struct {
	SessionID string          `json:"session_id"`
	State     *flow.BookState `json:"state"`
	Score     *score.Result   `json:"score,omitempty"`
}

// BookService orchestrates the book-summary assessment: session
// lifecycle, the spinner, the reading timer bounds, and background
// summary, question and report generation.
type BookService struct {
	store      *session.Store
	ai         BookGenerator
	events     *EventQueue
	reports    repository.ReportRepository
	genTimeout time.Duration
	spinOpts   []spin.Option
	log        zerolog.Logger
}

// NewBookService creates a new BookService. reports may be nil when no
// archive database is configured.
func NewBookService(
	store *session.Store,
	ai BookGenerator,
	events *EventQueue,
	reports repository.ReportRepository,
	genTimeout time.Duration,
	spinOpts []spin.Option,
	log zerolog.Logger,
) *BookService {
	return &BookService{
		store:      store,
		ai:         ai,
		events:     events,
		reports:    reports,
		genTimeout: genTimeout,
		spinOpts:   spinOpts,
		log:        log.With().Str("component", "book_service").Logger(),
	}
}

// Create starts a new book session at book selection.
func (s *BookService) Create(ctx context.Context) *BookSnapshot {
	sess := s.store.CreateBook()
	s.log.Info().Str("session_id", sess.ID).Msg("Book session created")
	return s.snapshot(sess)
}

// Get returns the current session view.
func (s *BookService) Get(ctx context.Context, sessionID string) (*BookSnapshot, error) {
	sess, err := s.store.GetBook(sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(sess), nil
}

// Spin runs the spinner over the built-in book catalog and settles on
// a book.
func (s *BookService) Spin(ctx context.Context, sessionID string) (*BookSnapshot, error) {
	sess, err := s.store.GetBook(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	err = sess.Book.StartSpin()
	sess.Unlock()
	if err != nil {
		return nil, err
	}

	spinner := spin.New(catalog.Books(), s.spinOpts...)
	selected, err := spinner.Spin(spin.Callbacks{})
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Book.SettleSpin(selected); err != nil {
		return nil, err
	}
	s.log.Info().Str("session_id", sess.ID).Str("book", selected).Msg("Spinner settled")
	return s.snapshotLocked(sess), nil
}

// SelectBook records a user-typed book title instead of a spin.
func (s *BookService) SelectBook(ctx context.Context, sessionID, title string) (*BookSnapshot, error) {
	sess, err := s.store.GetBook(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Book.SelectCustomBook(title); err != nil {
		return nil, err
	}
	return s.snapshotLocked(sess), nil
}

// Confirm accepts the selected book and kicks off summary generation
// in the background.
func (s *BookService) Confirm(ctx context.Context, sessionID string) (*BookSnapshot, error) {
	sess, err := s.store.GetBook(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Book.Confirm(); err != nil {
		return nil, err
	}

	workCtx, epoch := sess.StartWork(context.Background())
	title := sess.Book.Book
	go s.generateSummary(workCtx, sess, epoch, title)

	return s.snapshotLocked(sess), nil
}

func (s *BookService) generateSummary(ctx context.Context, sess *session.Session, epoch int, title string) {
	ctx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	summary, genErr := s.ai.GenerateBookSummary(ctx, title)

	sess.Lock()
	defer sess.Unlock()
	if !sess.Current(epoch) {
		s.log.Debug().Str("session_id", sess.ID).Msg("Discarding stale summary generation")
		return
	}

	if genErr != nil {
		s.log.Error().Err(genErr).Str("session_id", sess.ID).Msg("Summary generation failed")
		_ = sess.Book.FailGeneration(genErr.Error())
	} else if err := sess.Book.SummaryGenerated(summary); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to deliver summary")
		_ = sess.Book.FailGeneration(err.Error())
	}

	s.events.Publish(context.Background(), FlowEvent{
		SessionID: sess.ID,
		Step:      sess.Book.Step,
		Error:     sess.Book.LastError,
	})
}

// ChangeBook discards the selection and returns to book selection.
func (s *BookService) ChangeBook(ctx context.Context, sessionID string) (*BookSnapshot, error) {
	sess, err := s.store.GetBook(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Book.ChangeBook(); err != nil {
		return nil, err
	}
	return s.snapshotLocked(sess), nil
}

// SelectReadingWindow fixes the reading duration and reveals the
// summary.
func (s *BookService) SelectReadingWindow(ctx context.Context, sessionID string, seconds int) (*BookSnapshot, error) {
	sess, err := s.store.GetBook(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Book.SelectReadingWindow(seconds); err != nil {
		return nil, err
	}
	return s.snapshotLocked(sess), nil
}

// FinishReading ends the reading window and kicks off question
// generation in the background.
func (s *BookService) FinishReading(ctx context.Context, sessionID string) (*BookSnapshot, error) {
	sess, err := s.store.GetBook(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Book.FinishReading(); err != nil {
		return nil, err
	}

	workCtx, epoch := sess.StartWork(context.Background())
	title, summary := sess.Book.Book, sess.Book.Summary
	go s.generateQuestions(workCtx, sess, epoch, title, summary)

	return s.snapshotLocked(sess), nil
}

func (s *BookService) generateQuestions(ctx context.Context, sess *session.Session, epoch int, title, summary string) {
	ctx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	questions, genErr := s.ai.GenerateBookQuestions(ctx, title, summary)

	sess.Lock()
	defer sess.Unlock()
	if !sess.Current(epoch) {
		s.log.Debug().Str("session_id", sess.ID).Msg("Discarding stale question generation")
		return
	}

	if genErr != nil {
		s.log.Error().Err(genErr).Str("session_id", sess.ID).Msg("Question generation failed")
		_ = sess.Book.FailGeneration(genErr.Error())
	} else if err := sess.Book.QuestionsReady(questions); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to deliver questions")
		_ = sess.Book.FailGeneration(err.Error())
	}

	s.events.Publish(context.Background(), FlowEvent{
		SessionID: sess.ID,
		Step:      sess.Book.Step,
		Error:     sess.Book.LastError,
	})
}

// SubmitRapidFireAnswers records the rapid-fire answers and advances
// to the follow-ups.
func (s *BookService) SubmitRapidFireAnswers(ctx context.Context, sessionID string, answers []string) (*BookSnapshot, error) {
	sess, err := s.store.GetBook(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Book.SubmitRapidFireAnswers(answers); err != nil {
		return nil, err
	}
	return s.snapshotLocked(sess), nil
}

// SubmitFollowUpAnswers records the follow-up answers and kicks off
// report generation in the background.
func (s *BookService) SubmitFollowUpAnswers(ctx context.Context, sessionID string, answers []string) (*BookSnapshot, error) {
	sess, err := s.store.GetBook(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Book.SubmitFollowUpAnswers(answers); err != nil {
		return nil, err
	}

	workCtx, epoch := sess.StartWork(context.Background())
	state := *sess.Book
	go s.generateReport(workCtx, sess, epoch, state)

	return s.snapshotLocked(sess), nil
}

func (s *BookService) generateReport(ctx context.Context, sess *session.Session, epoch int, state flow.BookState) {
	ctx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	report, genErr := s.ai.GenerateBookReport(ctx, state.Book, state.Summary, *state.Questions, state.RapidFireAnswers, state.FollowUpAnswers)

	sess.Lock()
	if !sess.Current(epoch) {
		sess.Unlock()
		s.log.Debug().Str("session_id", sess.ID).Msg("Discarding stale report generation")
		return
	}

	if genErr != nil {
		s.log.Error().Err(genErr).Str("session_id", sess.ID).Msg("Report generation failed")
		_ = sess.Book.FailGeneration(genErr.Error())
	} else if err := sess.Book.ReportReady(report); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to deliver report")
		_ = sess.Book.FailGeneration(err.Error())
	}
	step := sess.Book.Step
	lastErr := sess.Book.LastError
	sess.Unlock()

	if genErr == nil && step == flow.StepScoreDisplay {
		s.archive(sess.ID, state.Book, report)
	}

	s.events.Publish(context.Background(), FlowEvent{
		SessionID: sess.ID,
		Step:      step,
		Error:     lastErr,
	})
}

func (s *BookService) archive(sessionID, title string, report flow.Report) {
	if s.reports == nil {
		return
	}
	result := score.Aggregate(report.ChartData)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rec := &repository.ReportRecord{
		SessionID: sessionID,
		Kind:      string(session.KindBook),
		Subject:   title,
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
func (s *BookService) Continue(ctx context.Context, sessionID string) (*BookSnapshot, error) {
	sess, err := s.store.GetBook(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Book.Continue(); err != nil {
		return nil, err
	}
	return s.snapshotLocked(sess), nil
}

// Reset abandons the run: in-flight generation is cancelled, queued
// events are dropped, and the flow returns to book selection.
func (s *BookService) Reset(ctx context.Context, sessionID string) (*BookSnapshot, error) {
	sess, err := s.store.GetBook(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	sess.CancelWork()
	sess.Book.Reset()
	sess.Unlock()

	s.events.Drop(ctx, sessionID)
	s.log.Info().Str("session_id", sessionID).Msg("Book session reset")
	return s.snapshot(sess), nil
}

// WaitEvent blocks until background generation for the session settles
// or timeout passes. A nil event means the wait timed out.
func (s *BookService) WaitEvent(ctx context.Context, sessionID string, timeout time.Duration) (*FlowEvent, error) {
	if _, err := s.store.GetBook(sessionID); err != nil {
		return nil, err
	}
	return s.events.Wait(ctx, sessionID, timeout)
}

func (s *BookService) snapshot(sess *session.Session) *BookSnapshot {
	sess.Lock()
	defer sess.Unlock()
	return s.snapshotLocked(sess)
}

func (s *BookService) snapshotLocked(sess *session.Session) *BookSnapshot {
	state := *sess.Book
	snap := &BookSnapshot{
		SessionID: sess.ID,
		State:     &state,
	}
	if state.Report != nil {
		result := score.Aggregate(state.Report.ChartData)
		snap.Score = &result
	}
	return snap
}
