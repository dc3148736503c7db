package flow

import (
	"fmt"
	"strings"

	apperrors "github.com/aurahq/aura_service/internal/errors"
)

// BookQuestions is the two-stage question set for the book flow: short
// rapid-fire questions answered from memory, then open follow-ups.
type BookQuestions struct {
	RapidFire []string `json:"rapid_fire"`
	FollowUp  []string `json:"follow_up"`
}

// BookState is the book-summary assessment flow. The zero value is not
// usable; construct with NewBookState.
type BookState struct {
	Step Step `json:"step"`

	Book             string         `json:"book,omitempty"`
	Summary          string         `json:"summary,omitempty"`
	ReadingWindowSec int            `json:"reading_window_sec,omitempty"`
	Questions        *BookQuestions `json:"questions,omitempty"`
	RapidFireAnswers []string       `json:"rapid_fire_answers,omitempty"`
	FollowUpAnswers  []string       `json:"follow_up_answers,omitempty"`
	Report           *Report        `json:"report,omitempty"`
	LastError        string         `json:"last_error,omitempty"`
}

// NewBookState returns a flow positioned at book selection.
func NewBookState() *BookState {
	return &BookState{Step: StepBookSelection}
}

func (s *BookState) require(step Step, event string) error {
	if s.Step != step {
		return apperrors.Conflict(fmt.Sprintf("cannot %s while in step %s", event, s.Step))
	}
	return nil
}

// SelectCustomBook records a user-typed book title and moves to
// book_selected. The title must be at least MinCustomTopicLen
// characters after trimming.
func (s *BookState) SelectCustomBook(title string) error {
	if err := s.require(StepBookSelection, "select a book"); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if len(title) < MinCustomTopicLen {
		return apperrors.Validation(fmt.Sprintf("book title must be at least %d characters", MinCustomTopicLen))
	}
	s.Book = title
	s.LastError = ""
	s.Step = StepBookSelected
	return nil
}

// StartSpin moves from book selection into the spinning step.
func (s *BookState) StartSpin() error {
	if err := s.require(StepBookSelection, "start the spinner"); err != nil {
		return err
	}
	s.LastError = ""
	s.Step = StepBookSpinning
	return nil
}

// SettleSpin records the book the spinner landed on.
func (s *BookState) SettleSpin(book string) error {
	if err := s.require(StepBookSpinning, "settle the spinner"); err != nil {
		return err
	}
	if strings.TrimSpace(book) == "" {
		return apperrors.Validation("spun book is empty")
	}
	s.Book = book
	s.Step = StepBookSelected
	return nil
}

// Confirm accepts the selected book and starts summary generation.
func (s *BookState) Confirm() error {
	if err := s.require(StepBookSelected, "confirm the book"); err != nil {
		return err
	}
	s.LastError = ""
	s.Step = StepGeneratingSummary
	return nil
}

// ChangeBook discards the selected book and returns to selection.
func (s *BookState) ChangeBook() error {
	if err := s.require(StepBookSelected, "change the book"); err != nil {
		return err
	}
	s.Book = ""
	s.Step = StepBookSelection
	return nil
}

// SummaryGenerated delivers the summary and opens timer selection.
func (s *BookState) SummaryGenerated(summary string) error {
	if err := s.require(StepGeneratingSummary, "deliver the summary"); err != nil {
		return err
	}
	if strings.TrimSpace(summary) == "" {
		return apperrors.Validation("summary is empty")
	}
	s.Summary = summary
	s.Step = StepTimerSelection
	return nil
}

// SelectReadingWindow fixes the reading duration and reveals the
// summary. Only the durations in ReadingWindows are accepted.
func (s *BookState) SelectReadingWindow(seconds int) error {
	if err := s.require(StepTimerSelection, "select a reading window"); err != nil {
		return err
	}
	if !validReadingWindow(seconds) {
		return apperrors.Validation(fmt.Sprintf("invalid reading window %ds", seconds))
	}
	s.ReadingWindowSec = seconds
	s.Step = StepSummaryDisplay
	return nil
}

// FinishReading ends the reading window, either because the timer ran
// out or the user moved on, and starts question generation.
func (s *BookState) FinishReading() error {
	if err := s.require(StepSummaryDisplay, "finish reading"); err != nil {
		return err
	}
	s.LastError = ""
	s.Step = StepGeneratingQuestions
	return nil
}

// QuestionsReady delivers both question stages and opens rapid fire.
func (s *BookState) QuestionsReady(q BookQuestions) error {
	if err := s.require(StepGeneratingQuestions, "deliver questions"); err != nil {
		return err
	}
	if len(q.RapidFire) != RapidFireCount {
		return apperrors.Validation(fmt.Sprintf("expected %d rapid-fire questions, got %d", RapidFireCount, len(q.RapidFire)))
	}
	if len(q.FollowUp) != FollowUpCount {
		return apperrors.Validation(fmt.Sprintf("expected %d follow-up questions, got %d", FollowUpCount, len(q.FollowUp)))
	}
	s.Questions = &q
	s.Step = StepRapidFireQuestions
	return nil
}

// SubmitRapidFireAnswers records one answer per rapid-fire question and
// advances to the follow-ups. Every answer must be non-blank.
func (s *BookState) SubmitRapidFireAnswers(answers []string) error {
	if err := s.require(StepRapidFireQuestions, "submit rapid-fire answers"); err != nil {
		return err
	}
	if err := checkAnswers(answers, RapidFireCount); err != nil {
		return err
	}
	s.RapidFireAnswers = answers
	s.Step = StepFollowUpQuestions
	return nil
}

// SubmitFollowUpAnswers records the follow-up answers and moves into
// report generation.
func (s *BookState) SubmitFollowUpAnswers(answers []string) error {
	if err := s.require(StepFollowUpQuestions, "submit follow-up answers"); err != nil {
		return err
	}
	if err := checkAnswers(answers, FollowUpCount); err != nil {
		return err
	}
	s.FollowUpAnswers = answers
	s.LastError = ""
	s.Step = StepGeneratingReport
	return nil
}

func checkAnswers(answers []string, want int) error {
	if len(answers) != want {
		return apperrors.Validation(fmt.Sprintf("expected %d answers, got %d", want, len(answers)))
	}
	for i, a := range answers {
		if strings.TrimSpace(a) == "" {
			return apperrors.Validation(fmt.Sprintf("answer %d is blank", i+1))
		}
	}
	return nil
}

// ReportReady delivers the generated report and shows the score.
func (s *BookState) ReportReady(report Report) error {
	if err := s.require(StepGeneratingReport, "deliver the report"); err != nil {
		return err
	}
	s.Report = &report
	s.Step = StepScoreDisplay
	return nil
}

// FailGeneration rolls a generating step back to the step that entered
// it, recording the reason.
func (s *BookState) FailGeneration(reason string) error {
	switch s.Step {
	case StepGeneratingSummary:
		s.Step = StepBookSelection
	case StepGeneratingQuestions:
		s.Step = StepSummaryDisplay
	case StepGeneratingReport:
		s.Step = StepFollowUpQuestions
	default:
		return apperrors.Conflict(fmt.Sprintf("no generation in progress in step %s", s.Step))
	}
	s.LastError = reason
	return nil
}

// Continue advances from the score summary to the full report.
func (s *BookState) Continue() error {
	if err := s.require(StepScoreDisplay, "continue"); err != nil {
		return err
	}
	s.Step = StepReportDisplay
	return nil
}

// Reset clears every accumulated entity and returns to book selection.
// It is valid from any step.
func (s *BookState) Reset() {
	*s = BookState{Step: StepBookSelection}
}
