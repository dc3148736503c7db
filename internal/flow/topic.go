package flow

import (
	"fmt"
	"strings"

	apperrors "github.com/aurahq/aura_service/internal/errors"
)

// MinCustomTopicLen is the minimum length of a custom topic after
// trimming surrounding whitespace.
const MinCustomTopicLen = 3

// TopicState is the speech-on-topic assessment flow. The zero value is
// not usable; construct with NewTopicState.
type TopicState struct {
	Step Step `json:"step"`

	Topic             string   `json:"topic,omitempty"`
	CustomTopic       bool     `json:"custom_topic,omitempty"`
	InitialTranscript string   `json:"initial_transcript,omitempty"`
	Questions         []string `json:"questions,omitempty"`
	Answers           []string `json:"answers,omitempty"`
	Report            *Report  `json:"report,omitempty"`
	LastError         string   `json:"last_error,omitempty"`
}

// NewTopicState returns a flow positioned at topic selection.
func NewTopicState() *TopicState {
	return &TopicState{Step: StepTopicSelection}
}

func (s *TopicState) require(step Step, event string) error {
	if s.Step != step {
		return apperrors.Conflict(fmt.Sprintf("cannot %s while in step %s", event, s.Step))
	}
	return nil
}

// SelectCustomTopic records a user-typed topic and moves to
// topic_selected. The topic must be at least MinCustomTopicLen
// characters after trimming.
func (s *TopicState) SelectCustomTopic(topic string) error {
	if err := s.require(StepTopicSelection, "select a topic"); err != nil {
		return err
	}
	topic = strings.TrimSpace(topic)
	if len(topic) < MinCustomTopicLen {
		return apperrors.Validation(fmt.Sprintf("custom topic must be at least %d characters", MinCustomTopicLen))
	}
	s.Topic = topic
	s.CustomTopic = true
	s.LastError = ""
	s.Step = StepTopicSelected
	return nil
}

// StartSpin moves from topic selection into the spinning step.
func (s *TopicState) StartSpin() error {
	if err := s.require(StepTopicSelection, "start the spinner"); err != nil {
		return err
	}
	s.LastError = ""
	s.Step = StepTopicSpinning
	return nil
}

// SettleSpin records the topic the spinner landed on.
func (s *TopicState) SettleSpin(topic string) error {
	if err := s.require(StepTopicSpinning, "settle the spinner"); err != nil {
		return err
	}
	if strings.TrimSpace(topic) == "" {
		return apperrors.Validation("spun topic is empty")
	}
	s.Topic = topic
	s.CustomTopic = false
	s.Step = StepTopicSelected
	return nil
}

// Confirm accepts the selected topic and opens the initial speech.
func (s *TopicState) Confirm() error {
	if err := s.require(StepTopicSelected, "confirm the topic"); err != nil {
		return err
	}
	s.Step = StepInitialSpeech
	return nil
}

// ChangeTopic discards the selected topic and returns to selection.
func (s *TopicState) ChangeTopic() error {
	if err := s.require(StepTopicSelected, "change the topic"); err != nil {
		return err
	}
	s.Topic = ""
	s.CustomTopic = false
	s.Step = StepTopicSelection
	return nil
}

// SubmitInitialSpeech stores the transcript of the opening speech and
// moves into question generation.
func (s *TopicState) SubmitInitialSpeech(transcript string) error {
	if err := s.require(StepInitialSpeech, "submit the initial speech"); err != nil {
		return err
	}
	if strings.TrimSpace(transcript) == "" {
		return apperrors.Validation("transcript is empty")
	}
	s.InitialTranscript = transcript
	s.LastError = ""
	s.Step = StepGeneratingQuestions
	return nil
}

// QuestionsReady delivers the generated questions and moves to display.
func (s *TopicState) QuestionsReady(questions []string) error {
	if err := s.require(StepGeneratingQuestions, "deliver questions"); err != nil {
		return err
	}
	if len(questions) != TopicQuestionCount {
		return apperrors.Validation(fmt.Sprintf("expected %d questions, got %d", TopicQuestionCount, len(questions)))
	}
	s.Questions = questions
	s.Step = StepQuestionDisplay
	return nil
}

// BeginAnswering opens the final speech after the user has read the
// questions.
func (s *TopicState) BeginAnswering() error {
	if err := s.require(StepQuestionDisplay, "begin answering"); err != nil {
		return err
	}
	s.Step = StepFinalSpeech
	return nil
}

// SubmitAnswers records one spoken answer per question and moves into
// report generation. The sequence must match the question count and
// every answer must be non-blank.
func (s *TopicState) SubmitAnswers(answers []string) error {
	if err := s.require(StepFinalSpeech, "submit answers"); err != nil {
		return err
	}
	if err := checkAnswers(answers, TopicQuestionCount); err != nil {
		return err
	}
	s.Answers = answers
	s.LastError = ""
	s.Step = StepGeneratingReport
	return nil
}

// ExpireAnswers ends the answer window without a submission, returning
// to the question display so the user can start over.
func (s *TopicState) ExpireAnswers() error {
	if err := s.require(StepFinalSpeech, "expire the answer window"); err != nil {
		return err
	}
	s.LastError = "answer window elapsed"
	s.Step = StepQuestionDisplay
	return nil
}

// ReportReady delivers the generated report and shows the score.
func (s *TopicState) ReportReady(report Report) error {
	if err := s.require(StepGeneratingReport, "deliver the report"); err != nil {
		return err
	}
	s.Report = &report
	s.Step = StepScoreDisplay
	return nil
}

// FailGeneration rolls a generating step back to the step that entered
// it, recording the reason. It is a no-op error in any other step.
func (s *TopicState) FailGeneration(reason string) error {
	switch s.Step {
	case StepGeneratingQuestions:
		s.Step = StepTopicSelected
	case StepGeneratingReport:
		s.Step = StepQuestionDisplay
	default:
		return apperrors.Conflict(fmt.Sprintf("no generation in progress in step %s", s.Step))
	}
	s.LastError = reason
	return nil
}

// Continue advances from the score summary to the full report.
func (s *TopicState) Continue() error {
	if err := s.require(StepScoreDisplay, "continue"); err != nil {
		return err
	}
	s.Step = StepReportDisplay
	return nil
}

// Reset clears every accumulated entity and returns to topic selection.
// It is valid from any step.
func (s *TopicState) Reset() {
	*s = TopicState{Step: StepTopicSelection}
}
