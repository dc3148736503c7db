package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aurahq/aura_service/internal/flow"
	"github.com/aurahq/aura_service/internal/logger"
	"github.com/aurahq/aura_service/internal/session"
)

type fakeBookAI struct {
	summary   string
	questions flow.BookQuestions
	report    flow.Report
	sErr      error
	qErr      error
	rErr      error
}

func (f *fakeBookAI) GenerateBookSummary(ctx context.Context, title string) (string, error) {
	return f.summary, f.sErr
}

func (f *fakeBookAI) GenerateBookQuestions(ctx context.Context, title, summary string) (flow.BookQuestions, error) {
	return f.questions, f.qErr
}

func (f *fakeBookAI) GenerateBookReport(ctx context.Context, title, summary string, q flow.BookQuestions, rapidAnswers, followAnswers []string) (flow.Report, error) {
	return f.report, f.rErr
}

func newBookService(ai BookGenerator) *BookService {
	store := session.NewStore(time.Hour, logger.NewNop())
	return NewBookService(store, ai, nil, nil, 5*time.Second, fastSpin(), logger.NewNop())
}

func waitForBookStep(t *testing.T, svc *BookService, id string, step flow.Step) *BookSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := svc.Get(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if snap.State.Step == step {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	snap, _ := svc.Get(context.Background(), id)
	t.Fatalf("timed out waiting for step %s, at %s", step, snap.State.Step)
	return nil
}

func TestBookServiceFullRun(t *testing.T) {
	ai := &fakeBookAI{
		summary: "a farm falls to its pigs",
		questions: flow.BookQuestions{
			RapidFire: []string{"r1?", "r2?", "r3?", "r4?", "r5?"},
			FollowUp:  []string{"f1?", "f2?"},
		},
		report: flow.Report{
			Narrative: "strong recall, thoughtful analysis",
			ChartData: `[{"type":"bar","title":"Performance","data":[{"name":"Comprehension","score":90},{"name":"Critical Thinking","score":80}],"config":{}}]`,
		},
	}
	svc := newBookService(ai)
	ctx := context.Background()

	snap := svc.Create(ctx)
	id := snap.SessionID

	if _, err := svc.Spin(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Confirm(ctx, id); err != nil {
		t.Fatal(err)
	}

	snap = waitForBookStep(t, svc, id, flow.StepTimerSelection)
	if snap.State.Summary != "a farm falls to its pigs" {
		t.Fatalf("summary = %q", snap.State.Summary)
	}

	if _, err := svc.SelectReadingWindow(ctx, id, 300); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.FinishReading(ctx, id); err != nil {
		t.Fatal(err)
	}

	snap = waitForBookStep(t, svc, id, flow.StepRapidFireQuestions)
	if len(snap.State.Questions.RapidFire) != 5 {
		t.Fatalf("rapid fire = %v", snap.State.Questions.RapidFire)
	}

	if _, err := svc.SubmitRapidFireAnswers(ctx, id, []string{"a", "b", "c", "d", "e"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitFollowUpAnswers(ctx, id, []string{"x", "y"}); err != nil {
		t.Fatal(err)
	}

	snap = waitForBookStep(t, svc, id, flow.StepScoreDisplay)
	if snap.Score == nil || snap.Score.Score != 85 {
		t.Fatalf("score = %+v, want 85", snap.Score)
	}

	got, err := svc.Continue(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.State.Step != flow.StepReportDisplay {
		t.Fatalf("step = %s", got.State.Step)
	}
}

func TestBookServiceSummaryFailureRollsBack(t *testing.T) {
	ai := &fakeBookAI{sErr: errors.New("model down")}
	svc := newBookService(ai)
	ctx := context.Background()

	snap := svc.Create(ctx)
	id := snap.SessionID
	if _, err := svc.Spin(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Confirm(ctx, id); err != nil {
		t.Fatal(err)
	}

	got := waitForBookStep(t, svc, id, flow.StepBookSelection)
	if got.State.LastError == "" {
		t.Fatal("last error not recorded")
	}
}

func TestBookServiceResetFromMidFlow(t *testing.T) {
	ai := &fakeBookAI{summary: "summary"}
	svc := newBookService(ai)
	ctx := context.Background()

	snap := svc.Create(ctx)
	id := snap.SessionID
	if _, err := svc.Spin(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Confirm(ctx, id); err != nil {
		t.Fatal(err)
	}
	waitForBookStep(t, svc, id, flow.StepTimerSelection)

	got, err := svc.Reset(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.State.Step != flow.StepBookSelection {
		t.Fatalf("step = %s", got.State.Step)
	}
	if got.State.Summary != "" {
		t.Fatal("summary survived reset")
	}
}
