package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/aurahq/aura_service/internal/errors"
	"github.com/aurahq/aura_service/internal/flow"
	"github.com/aurahq/aura_service/internal/logger"
	"github.com/aurahq/aura_service/internal/session"
	"github.com/aurahq/aura_service/internal/spin"
)

type fakeTopicAI struct {
	questions []string
	report    flow.Report
	qErr      error
	rErr      error
	gate      chan struct{}
}

func (f *fakeTopicAI) GenerateTopicQuestions(ctx context.Context, topic, initialSpeech string) ([]string, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.questions, f.qErr
}

func (f *fakeTopicAI) GenerateTopicReport(ctx context.Context, topic, initialSpeech string, questions, answers []string) (flow.Report, error) {
	return f.report, f.rErr
}

func fastSpin() []spin.Option {
	return []spin.Option{spin.WithTiming(20*time.Millisecond, 5*time.Millisecond, 10*time.Millisecond)}
}

func newTopicService(ai TopicGenerator) *TopicService {
	store := session.NewStore(time.Hour, logger.NewNop())
	return NewTopicService(store, ai, nil, nil, 5*time.Second, 0, fastSpin(), logger.NewNop())
}

func waitForTopicStep(t *testing.T, svc *TopicService, id string, step flow.Step) *TopicSnapshot {
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

func TestTopicServiceFullRun(t *testing.T) {
	ai := &fakeTopicAI{
		questions: []string{"a?", "b?", "c?"},
		report: flow.Report{
			Narrative: "fluent and organized",
			ChartData: `[{"type":"bar","title":"Skills","data":[{"name":"Clarity","score":80},{"name":"Depth","score":60}],"config":{}}]`,
		},
	}
	svc := newTopicService(ai)
	ctx := context.Background()

	snap := svc.Create(ctx)
	id := snap.SessionID

	if _, err := svc.SelectTopic(ctx, id, "The Value of Travel"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Confirm(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitSpeech(ctx, id, "travel widens the mind"); err != nil {
		t.Fatal(err)
	}

	snap = waitForTopicStep(t, svc, id, flow.StepQuestionDisplay)
	if len(snap.State.Questions) != 3 {
		t.Fatalf("questions = %v", snap.State.Questions)
	}

	if _, err := svc.StartAnswers(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitAnswers(ctx, id, []string{"one answer"}); err == nil {
		t.Fatal("expected short answer sequence to be rejected")
	}
	if _, err := svc.SubmitAnswers(ctx, id, []string{"first", "second", "third"}); err != nil {
		t.Fatal(err)
	}

	snap = waitForTopicStep(t, svc, id, flow.StepScoreDisplay)
	if snap.Score == nil {
		t.Fatal("score missing from snapshot")
	}
	if snap.Score.Score != 70 {
		t.Fatalf("score = %d, want 70", snap.Score.Score)
	}

	snap2, err := svc.Continue(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if snap2.State.Step != flow.StepReportDisplay {
		t.Fatalf("step = %s", snap2.State.Step)
	}
}

func TestTopicServiceSpinSelectsCatalogTopic(t *testing.T) {
	svc := newTopicService(&fakeTopicAI{})
	ctx := context.Background()

	snap := svc.Create(ctx)
	got, err := svc.Spin(ctx, snap.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if got.State.Step != flow.StepTopicSelected {
		t.Fatalf("step = %s", got.State.Step)
	}
	if got.State.Topic == "" || got.State.CustomTopic {
		t.Fatalf("spin result off: %+v", got.State)
	}
}

func TestTopicServiceGenerationFailureRollsBack(t *testing.T) {
	ai := &fakeTopicAI{qErr: errors.New("model down")}
	svc := newTopicService(ai)
	ctx := context.Background()

	snap := svc.Create(ctx)
	id := snap.SessionID
	if _, err := svc.SelectTopic(ctx, id, "Money and Happiness"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Confirm(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitSpeech(ctx, id, "money buys comfort"); err != nil {
		t.Fatal(err)
	}

	snap = waitForTopicStep(t, svc, id, flow.StepTopicSelected)
	if snap.State.LastError == "" {
		t.Fatal("last error not recorded")
	}
}

func TestTopicServiceResetDiscardsLateResult(t *testing.T) {
	ai := &fakeTopicAI{
		questions: []string{"a?", "b?", "c?"},
		gate:      make(chan struct{}),
	}
	svc := newTopicService(ai)
	ctx := context.Background()

	snap := svc.Create(ctx)
	id := snap.SessionID
	if _, err := svc.SelectTopic(ctx, id, "The Power of Habit"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Confirm(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitSpeech(ctx, id, "habits compound"); err != nil {
		t.Fatal(err)
	}

	// Reset while generation is blocked, then release it.
	if _, err := svc.Reset(ctx, id); err != nil {
		t.Fatal(err)
	}
	close(ai.gate)

	time.Sleep(50 * time.Millisecond)
	got, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.State.Step != flow.StepTopicSelection {
		t.Fatalf("step = %s, want %s", got.State.Step, flow.StepTopicSelection)
	}
	if got.State.Questions != nil {
		t.Fatalf("stale questions landed: %v", got.State.Questions)
	}
}

func TestTopicServiceAnswerWindowExpires(t *testing.T) {
	ai := &fakeTopicAI{questions: []string{"a?", "b?", "c?"}}
	store := session.NewStore(time.Hour, logger.NewNop())
	svc := NewTopicService(store, ai, nil, nil, 5*time.Second, 10*time.Millisecond, fastSpin(), logger.NewNop())
	ctx := context.Background()

	snap := svc.Create(ctx)
	id := snap.SessionID
	if _, err := svc.SelectTopic(ctx, id, "The Value of Travel"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Confirm(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitSpeech(ctx, id, "travel widens the mind"); err != nil {
		t.Fatal(err)
	}
	waitForTopicStep(t, svc, id, flow.StepQuestionDisplay)

	started, err := svc.StartAnswers(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if started.State.Step != flow.StepFinalSpeech {
		t.Fatalf("step = %s, want %s", started.State.Step, flow.StepFinalSpeech)
	}

	snap = waitForTopicStep(t, svc, id, flow.StepQuestionDisplay)
	if snap.State.LastError == "" {
		t.Fatal("window expiry left no error on the state")
	}
}

func TestTopicServiceRejectsWrongKind(t *testing.T) {
	store := session.NewStore(time.Hour, logger.NewNop())
	topicSvc := NewTopicService(store, &fakeTopicAI{}, nil, nil, time.Second, 0, fastSpin(), logger.NewNop())

	book := store.CreateBook()
	_, err := topicSvc.Get(context.Background(), book.ID)
	if code := apperrors.GetCode(err); code != apperrors.ErrConflict {
		t.Fatalf("code = %s, want %s", code, apperrors.ErrConflict)
	}
}
