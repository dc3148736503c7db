package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/aurahq/aura_service/internal/errors"
	"github.com/aurahq/aura_service/internal/flow"
	"github.com/aurahq/aura_service/internal/logger"
)

type fakeModel struct {
	response string
	err      error
	prompts  []string
}

func (m *fakeModel) Chat(_ context.Context, message string) (string, error) {
	m.prompts = append(m.prompts, message)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestGenerateTopicQuestions(t *testing.T) {
	model := &fakeModel{response: "```json\n{\"questions\": [\"a?\", \"b?\", \"c?\"]}\n```"}
	svc := NewAIService(model, logger.NewNop())

	questions, err := svc.GenerateTopicQuestions(context.Background(), "The Power of Habit", "habits run our lives")
	if err != nil {
		t.Fatal(err)
	}
	if len(questions) != flow.TopicQuestionCount {
		t.Fatalf("got %d questions, want %d", len(questions), flow.TopicQuestionCount)
	}
	if questions[2] != "c?" {
		t.Fatalf("questions = %v", questions)
	}
	if len(model.prompts) != 1 || !strings.Contains(model.prompts[0], "The Power of Habit") {
		t.Fatal("topic missing from prompt")
	}
	if !strings.Contains(model.prompts[0], "habits run our lives") {
		t.Fatal("initial speech missing from prompt")
	}
}

func TestGenerateTopicQuestionsWrongCount(t *testing.T) {
	model := &fakeModel{response: `{"questions": ["only one?"]}`}
	svc := NewAIService(model, logger.NewNop())

	_, err := svc.GenerateTopicQuestions(context.Background(), "t", "s")
	if code := apperrors.GetCode(err); code != apperrors.ErrGenerationFailed {
		t.Fatalf("code = %s, want %s", code, apperrors.ErrGenerationFailed)
	}
}

func TestGenerateTopicQuestionsModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("quota exceeded")}
	svc := NewAIService(model, logger.NewNop())

	_, err := svc.GenerateTopicQuestions(context.Background(), "t", "s")
	if code := apperrors.GetCode(err); code != apperrors.ErrGenerationFailed {
		t.Fatalf("code = %s, want %s", code, apperrors.ErrGenerationFailed)
	}
}

func TestGenerateBookSummary(t *testing.T) {
	model := &fakeModel{response: `{"summary": "a farm falls to its pigs"}`}
	svc := NewAIService(model, logger.NewNop())

	summary, err := svc.GenerateBookSummary(context.Background(), "Animal Farm")
	if err != nil {
		t.Fatal(err)
	}
	if summary != "a farm falls to its pigs" {
		t.Fatalf("summary = %q", summary)
	}
	if !strings.Contains(model.prompts[0], `"Animal Farm"`) {
		t.Fatal("title missing from prompt")
	}
}

func TestGenerateBookSummaryEmpty(t *testing.T) {
	model := &fakeModel{response: `{"summary": "  "}`}
	svc := NewAIService(model, logger.NewNop())

	_, err := svc.GenerateBookSummary(context.Background(), "1984")
	if code := apperrors.GetCode(err); code != apperrors.ErrGenerationFailed {
		t.Fatalf("code = %s, want %s", code, apperrors.ErrGenerationFailed)
	}
}

func TestGenerateBookQuestions(t *testing.T) {
	model := &fakeModel{response: `{
		"rapid_fire_questions": ["q1?", "q2?", "q3?", "q4?", "q5?"],
		"follow_up_questions": ["f1?", "f2?"]
	}`}
	svc := NewAIService(model, logger.NewNop())

	q, err := svc.GenerateBookQuestions(context.Background(), "1984", "a man fights the party")
	if err != nil {
		t.Fatal(err)
	}
	if len(q.RapidFire) != flow.RapidFireCount || len(q.FollowUp) != flow.FollowUpCount {
		t.Fatalf("counts = %d/%d", len(q.RapidFire), len(q.FollowUp))
	}
}

func TestGenerateBookQuestionsBadCardinality(t *testing.T) {
	model := &fakeModel{response: `{
		"rapid_fire_questions": ["q1?", "q2?"],
		"follow_up_questions": ["f1?", "f2?"]
	}`}
	svc := NewAIService(model, logger.NewNop())

	_, err := svc.GenerateBookQuestions(context.Background(), "1984", "summary")
	if code := apperrors.GetCode(err); code != apperrors.ErrGenerationFailed {
		t.Fatalf("code = %s, want %s", code, apperrors.ErrGenerationFailed)
	}
}

func TestGenerateTopicReport(t *testing.T) {
	model := &fakeModel{response: `{
		"report": "clear and confident delivery",
		"charts_data": "[{\"type\":\"bar\",\"title\":\"Skills\",\"data\":[{\"name\":\"Clarity\",\"score\":80}],\"config\":{}}]"
	}`}
	svc := NewAIService(model, logger.NewNop())

	report, err := svc.GenerateTopicReport(context.Background(), "t", "initial", []string{"q1?", "q2?", "q3?"}, []string{"a1", "a2", "a3"})
	if err != nil {
		t.Fatal(err)
	}
	if report.Narrative != "clear and confident delivery" {
		t.Fatalf("narrative = %q", report.Narrative)
	}
	if !strings.Contains(report.ChartData, `"score":80`) {
		t.Fatalf("chart data = %q", report.ChartData)
	}
	p := model.prompts[0]
	for _, want := range []string{"initial", "q2?", "a2"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateReportMalformed(t *testing.T) {
	model := &fakeModel{response: "I cannot respond in JSON today."}
	svc := NewAIService(model, logger.NewNop())

	_, err := svc.GenerateTopicReport(context.Background(), "t", "i", nil, nil)
	if code := apperrors.GetCode(err); code != apperrors.ErrGenerationFailed {
		t.Fatalf("code = %s, want %s", code, apperrors.ErrGenerationFailed)
	}
}

func TestGenerateBookReportPromptContainsAnswers(t *testing.T) {
	model := &fakeModel{response: `{"report": "good recall", "charts_data": "[]"}`}
	svc := NewAIService(model, logger.NewNop())

	q := flow.BookQuestions{
		RapidFire: []string{"r1?", "r2?", "r3?", "r4?", "r5?"},
		FollowUp:  []string{"f1?", "f2?"},
	}
	_, err := svc.GenerateBookReport(context.Background(), "1984", "summary", q,
		[]string{"a1", "a2", "a3", "a4", "a5"}, []string{"b1", "b2"})
	if err != nil {
		t.Fatal(err)
	}
	p := model.prompts[0]
	for _, want := range []string{"r3?", "a3", "f2?", "b2", "summary"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n[]\n```", "[]"},
		{"  {\"a\":1}  ", `{"a":1}`},
		{"[]", "[]"},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
