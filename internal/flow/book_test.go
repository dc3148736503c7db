package flow

import (
	"testing"

	apperrors "github.com/aurahq/aura_service/internal/errors"
)

func bookQuestions() BookQuestions {
	return BookQuestions{
		RapidFire: []string{
			"Who narrates the story?",
			"Where is it set?",
			"What year does it open?",
			"Who is the antagonist?",
			"What is the central object?",
		},
		FollowUp: []string{
			"What theme stood out to you and why?",
			"How does the ending change the meaning of the opening?",
		},
	}
}

func advanceBookToRapidFire(t *testing.T) *BookState {
	t.Helper()
	s := NewBookState()
	if err := s.StartSpin(); err != nil {
		t.Fatal(err)
	}
	if err := s.SettleSpin("Animal Farm"); err != nil {
		t.Fatal(err)
	}
	if err := s.Confirm(); err != nil {
		t.Fatal(err)
	}
	if err := s.SummaryGenerated("a farm falls to its pigs"); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectReadingWindow(300); err != nil {
		t.Fatal(err)
	}
	if err := s.FinishReading(); err != nil {
		t.Fatal(err)
	}
	if err := s.QuestionsReady(bookQuestions()); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSelectCustomBook(t *testing.T) {
	s := NewBookState()
	if err := s.SelectCustomBook("  ab "); err == nil {
		t.Fatal("expected short title to be rejected")
	} else if code := apperrors.GetCode(err); code != apperrors.ErrValidation {
		t.Fatalf("code = %s, want %s", code, apperrors.ErrValidation)
	}
	if err := s.SelectCustomBook("  The Hobbit "); err != nil {
		t.Fatal(err)
	}
	if s.Book != "The Hobbit" {
		t.Fatalf("book = %q, want trimmed title", s.Book)
	}
	if s.Step != StepBookSelected {
		t.Fatalf("step = %s, want %s", s.Step, StepBookSelected)
	}
	if err := s.SelectCustomBook("1984"); err == nil {
		t.Fatal("expected selection to be rejected outside book_selection")
	}
}

func TestBookHappyPath(t *testing.T) {
	s := advanceBookToRapidFire(t)
	if s.Step != StepRapidFireQuestions {
		t.Fatalf("step = %s, want %s", s.Step, StepRapidFireQuestions)
	}
	rapid := []string{"Orwell's narrator", "a farm", "unstated", "Napoleon", "the farmhouse"}
	if err := s.SubmitRapidFireAnswers(rapid); err != nil {
		t.Fatal(err)
	}
	if s.Step != StepFollowUpQuestions {
		t.Fatalf("step = %s, want %s", s.Step, StepFollowUpQuestions)
	}
	if err := s.SubmitFollowUpAnswers([]string{"power corrupts", "it closes the circle"}); err != nil {
		t.Fatal(err)
	}
	if err := s.ReportReady(Report{Narrative: "good recall", ChartData: "[]"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Continue(); err != nil {
		t.Fatal(err)
	}
	if s.Step != StepReportDisplay {
		t.Fatalf("step = %s, want %s", s.Step, StepReportDisplay)
	}
}

func TestBookReadingWindowValidation(t *testing.T) {
	s := NewBookState()
	if err := s.StartSpin(); err != nil {
		t.Fatal(err)
	}
	if err := s.SettleSpin("1984"); err != nil {
		t.Fatal(err)
	}
	if err := s.Confirm(); err != nil {
		t.Fatal(err)
	}
	if err := s.SummaryGenerated("a man fights the party"); err != nil {
		t.Fatal(err)
	}

	err := s.SelectReadingWindow(90)
	if code := apperrors.GetCode(err); code != apperrors.ErrValidation {
		t.Fatalf("code = %s, want %s", code, apperrors.ErrValidation)
	}
	if s.Step != StepTimerSelection {
		t.Fatalf("step moved on invalid window: %s", s.Step)
	}

	for _, w := range ReadingWindows {
		c := *s
		if err := c.SelectReadingWindow(w); err != nil {
			t.Errorf("window %ds rejected: %v", w, err)
		}
	}
}

func TestBookAnswerGates(t *testing.T) {
	s := advanceBookToRapidFire(t)

	err := s.SubmitRapidFireAnswers([]string{"a", "b", "c"})
	if code := apperrors.GetCode(err); code != apperrors.ErrValidation {
		t.Fatalf("short set: code = %s, want %s", code, apperrors.ErrValidation)
	}
	err = s.SubmitRapidFireAnswers([]string{"a", "b", "  ", "d", "e"})
	if code := apperrors.GetCode(err); code != apperrors.ErrValidation {
		t.Fatalf("blank answer: code = %s, want %s", code, apperrors.ErrValidation)
	}
	if s.Step != StepRapidFireQuestions {
		t.Fatalf("step moved on invalid answers: %s", s.Step)
	}

	if err := s.SubmitRapidFireAnswers([]string{"a", "b", "c", "d", "e"}); err != nil {
		t.Fatal(err)
	}
	err = s.SubmitFollowUpAnswers([]string{"only one"})
	if code := apperrors.GetCode(err); code != apperrors.ErrValidation {
		t.Fatalf("follow-up count: code = %s, want %s", code, apperrors.ErrValidation)
	}
}

func TestBookQuestionCardinalityEnforced(t *testing.T) {
	s := NewBookState()
	if err := s.StartSpin(); err != nil {
		t.Fatal(err)
	}
	if err := s.SettleSpin("Educated"); err != nil {
		t.Fatal(err)
	}
	if err := s.Confirm(); err != nil {
		t.Fatal(err)
	}
	if err := s.SummaryGenerated("a memoir of self-invention"); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectReadingWindow(180); err != nil {
		t.Fatal(err)
	}
	if err := s.FinishReading(); err != nil {
		t.Fatal(err)
	}

	q := bookQuestions()
	q.RapidFire = q.RapidFire[:4]
	err := s.QuestionsReady(q)
	if code := apperrors.GetCode(err); code != apperrors.ErrValidation {
		t.Fatalf("code = %s, want %s", code, apperrors.ErrValidation)
	}

	q = bookQuestions()
	q.FollowUp = append(q.FollowUp, "a third?")
	err = s.QuestionsReady(q)
	if code := apperrors.GetCode(err); code != apperrors.ErrValidation {
		t.Fatalf("code = %s, want %s", code, apperrors.ErrValidation)
	}
}

func TestBookFailGenerationRollsBack(t *testing.T) {
	s := NewBookState()
	if err := s.StartSpin(); err != nil {
		t.Fatal(err)
	}
	if err := s.SettleSpin("The Alchemist"); err != nil {
		t.Fatal(err)
	}
	if err := s.Confirm(); err != nil {
		t.Fatal(err)
	}
	if err := s.FailGeneration("model unavailable"); err != nil {
		t.Fatal(err)
	}
	if s.Step != StepBookSelection {
		t.Fatalf("step = %s, want %s", s.Step, StepBookSelection)
	}
	if s.LastError != "model unavailable" {
		t.Fatalf("last error = %q", s.LastError)
	}

	s2 := advanceBookToRapidFire(t)
	if err := s2.SubmitRapidFireAnswers([]string{"a", "b", "c", "d", "e"}); err != nil {
		t.Fatal(err)
	}
	if err := s2.SubmitFollowUpAnswers([]string{"x", "y"}); err != nil {
		t.Fatal(err)
	}
	if err := s2.FailGeneration("timeout"); err != nil {
		t.Fatal(err)
	}
	if s2.Step != StepFollowUpQuestions {
		t.Fatalf("step = %s, want %s", s2.Step, StepFollowUpQuestions)
	}
}

func TestBookResetFromAnyStep(t *testing.T) {
	s := advanceBookToRapidFire(t)
	s.Reset()
	if s.Step != StepBookSelection {
		t.Fatalf("step = %s, want %s", s.Step, StepBookSelection)
	}
	if s.Book != "" || s.Summary != "" || s.Questions != nil || s.ReadingWindowSec != 0 {
		t.Fatalf("entities survived reset: %+v", s)
	}
	if err := s.StartSpin(); err != nil {
		t.Fatalf("flow unusable after reset: %v", err)
	}
}
