package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aurahq/aura_service/internal/errors"
	"github.com/aurahq/aura_service/internal/flow"
)

// ChatModel is the generation interface both the Gemini and OpenAI
// clients satisfy.
type ChatModel interface {
	Chat(ctx context.Context, message string) (string, error)
}

const topicQuestionsPrompt = `You are an AI assistant designed to generate thought-provoking questions based on a given topic and an initial speech by the user.

Generate exactly three questions that encourage the user to elaborate further on the topic, taking into account their initial speech. The questions should be clear, concise, and relevant to both the topic and the user's initial input. Ensure that questions are open ended, so that maximum relevant information is collected from the user's answers.

Respond ONLY with valid JSON in this exact format:
{
  "questions": ["first question", "second question", "third question"]
}`

const bookSummaryPrompt = `You are a professional book summarizer.
Summarize the book "%s" in 120-140 words.
Focus on key plot elements, main characters, and central themes.
Avoid spoilers and ensure it reads naturally, engagingly, and concisely.

Respond ONLY with valid JSON in this exact format:
{
  "summary": "the summary text"
}`

const bookQuestionsPrompt = `You are an AI assistant who creates questions based on a book summary.

Based on the summary, generate two sets of questions:
1. Rapid-Fire Questions: create exactly five short questions to test factual recall from the summary. Each question MUST be 10 words or less.
2. Follow-Up Questions: create exactly two open-ended questions that encourage the user to think more deeply about the book's themes, implications, or characters.

Respond ONLY with valid JSON in this exact format:
{
  "rapid_fire_questions": ["q1", "q2", "q3", "q4", "q5"],
  "follow_up_questions": ["q1", "q2"]
}`

const topicReportPrompt = `You are an AI assistant designed to analyze user speech responses to questions based on a given topic and generate a detailed personality report.

Analyze the speech responses, identify strengths and weaknesses, and generate a report with insights about the user's personality. The report should be comprehensive and provide actionable feedback.

Also, create data for charts to visualize the user's personality traits. The charts data must be a raw JSON string of an array of objects. Each object should represent a chart and have 'type' ('bar' or 'pie'), 'title', 'data', and 'config' properties.

For bar charts, the 'data' should be an array of objects with 'name' and 'score' properties. The 'config' should define the 'score' with a label and a color.
For pie charts, the 'data' should be an array of objects with 'name', 'value', and 'fill' properties.

Respond ONLY with valid JSON in this exact format, where charts_data is itself a JSON string:
{
  "report": "the report text",
  "charts_data": "[{\"type\":\"bar\",\"title\":\"Communication Skills\",\"data\":[{\"name\":\"Clarity\",\"score\":85}],\"config\":{\"score\":{\"label\":\"Score\",\"color\":\"hsl(var(--chart-1))\"}}}]"
}`

const bookReportPrompt = `You are an AI assistant designed to analyze a user's reading comprehension, critical thinking, and communication skills based on their answers to questions about a book summary.

Analyze the user's answers on the following parameters:
1. Reading Comprehension: how well did the user understand and recall details from the summary? (Assessed from rapid-fire answers).
2. Critical Thinking: how well did the user analyze the themes and concepts of the book? (Assessed from follow-up answers).
3. Clarity of Expression: how clear and articulate were the user's spoken responses? (Assessed from follow-up answers).

Generate a detailed personality report highlighting strengths and weaknesses across these parameters. Provide actionable feedback.

Also, create data for charts to visualize the user's skills. The charts data must be a raw JSON string of an array of objects. Each object should represent a chart and have 'type' ('bar' or 'pie'), 'title', 'data', and 'config' properties.

Respond ONLY with valid JSON in this exact format, where charts_data is itself a JSON string:
{
  "report": "the report text",
  "charts_data": "[{\"type\":\"bar\",\"title\":\"Overall Performance\",\"data\":[{\"name\":\"Comprehension\",\"score\":85}],\"config\":{\"score\":{\"label\":\"Score\",\"color\":\"hsl(var(--chart-1))\"}}}]"
}`

// AIService generates summaries, questions and assessment reports.
type AIService struct {
	model ChatModel
	log   zerolog.Logger
}

// NewAIService creates a new AIService backed by the given model.
func NewAIService(model ChatModel, log zerolog.Logger) *AIService {
	return &AIService{
		model: model,
		log:   log.With().Str("component", "ai_service").Logger(),
	}
}

// GenerateTopicQuestions returns exactly three follow-up questions for
// the spoken-topic flow.
func (s *AIService) GenerateTopicQuestions(ctx context.Context, topic, initialSpeech string) ([]string, error) {
	var b strings.Builder
	b.WriteString(topicQuestionsPrompt)
	b.WriteString("\n\nTopic: ")
	b.WriteString(topic)
	b.WriteString("\n\nInitial speech:\n\"\"\"")
	b.WriteString(initialSpeech)
	b.WriteString("\"\"\"")

	raw, err := s.model.Chat(ctx, b.String())
	if err != nil {
		return nil, errors.GenerationFailed("question generation failed", err)
	}

	var out struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		s.log.Error().Err(err).Str("raw_response", raw).Msg("Failed to parse question response")
		return nil, errors.GenerationFailed("model returned malformed questions", err)
	}
	if len(out.Questions) != flow.TopicQuestionCount {
		return nil, errors.GenerationFailed(
			fmt.Sprintf("model returned %d questions, want %d", len(out.Questions), flow.TopicQuestionCount), nil)
	}
	return out.Questions, nil
}

// GenerateBookSummary returns a 120-140 word summary of the book.
func (s *AIService) GenerateBookSummary(ctx context.Context, title string) (string, error) {
	raw, err := s.model.Chat(ctx, fmt.Sprintf(bookSummaryPrompt, title))
	if err != nil {
		return "", errors.GenerationFailed("summary generation failed", err)
	}

	var out struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		s.log.Error().Err(err).Str("raw_response", raw).Msg("Failed to parse summary response")
		return "", errors.GenerationFailed("model returned malformed summary", err)
	}
	if strings.TrimSpace(out.Summary) == "" {
		return "", errors.GenerationFailed("model returned empty summary", nil)
	}
	return out.Summary, nil
}

// GenerateBookQuestions returns the two-stage question set for the
// book flow: five rapid-fire questions and two follow-ups.
func (s *AIService) GenerateBookQuestions(ctx context.Context, title, summary string) (flow.BookQuestions, error) {
	var b strings.Builder
	b.WriteString(bookQuestionsPrompt)
	b.WriteString("\n\nBook Title: ")
	b.WriteString(title)
	b.WriteString("\nSummary:\n\"\"\"")
	b.WriteString(summary)
	b.WriteString("\"\"\"")

	raw, err := s.model.Chat(ctx, b.String())
	if err != nil {
		return flow.BookQuestions{}, errors.GenerationFailed("question generation failed", err)
	}

	var out struct {
		RapidFire []string `json:"rapid_fire_questions"`
		FollowUp  []string `json:"follow_up_questions"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		s.log.Error().Err(err).Str("raw_response", raw).Msg("Failed to parse book question response")
		return flow.BookQuestions{}, errors.GenerationFailed("model returned malformed questions", err)
	}
	if len(out.RapidFire) != flow.RapidFireCount || len(out.FollowUp) != flow.FollowUpCount {
		return flow.BookQuestions{}, errors.GenerationFailed(
			fmt.Sprintf("model returned %d rapid-fire and %d follow-up questions, want %d and %d",
				len(out.RapidFire), len(out.FollowUp), flow.RapidFireCount, flow.FollowUpCount), nil)
	}
	return flow.BookQuestions{RapidFire: out.RapidFire, FollowUp: out.FollowUp}, nil
}

// GenerateTopicReport analyzes the initial speech and the per-question
// spoken answers and returns the assessment report.
func (s *AIService) GenerateTopicReport(ctx context.Context, topic, initialSpeech string, questions, answers []string) (flow.Report, error) {
	var b strings.Builder
	b.WriteString(topicReportPrompt)
	b.WriteString("\n\nTopic: ")
	b.WriteString(topic)
	b.WriteString("\n\nInitial speech:\n\"\"\"")
	b.WriteString(initialSpeech)
	b.WriteString("\"\"\"\n\nQuestions and the user's spoken responses:\n")
	writeQA(&b, questions, answers)

	return s.generateReport(ctx, b.String())
}

// GenerateBookReport analyzes the rapid-fire and follow-up answers and
// returns the assessment report.
func (s *AIService) GenerateBookReport(ctx context.Context, title, summary string, q flow.BookQuestions, rapidAnswers, followAnswers []string) (flow.Report, error) {
	var b strings.Builder
	b.WriteString(bookReportPrompt)
	b.WriteString("\n\nBook Title: ")
	b.WriteString(title)
	b.WriteString("\nBook Summary:\n\"\"\"")
	b.WriteString(summary)
	b.WriteString("\"\"\"\n\nRapid-Fire Questions and Answers (text-based):\n")
	writeQA(&b, q.RapidFire, rapidAnswers)
	b.WriteString("\nFollow-Up Questions and Answers (speech-based):\n")
	writeQA(&b, q.FollowUp, followAnswers)

	return s.generateReport(ctx, b.String())
}

func (s *AIService) generateReport(ctx context.Context, prompt string) (flow.Report, error) {
	raw, err := s.model.Chat(ctx, prompt)
	if err != nil {
		return flow.Report{}, errors.GenerationFailed("report generation failed", err)
	}

	var out struct {
		Report     string `json:"report"`
		ChartsData string `json:"charts_data"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		s.log.Error().Err(err).Str("raw_response", raw).Msg("Failed to parse report response")
		return flow.Report{}, errors.GenerationFailed("model returned malformed report", err)
	}
	if strings.TrimSpace(out.Report) == "" {
		return flow.Report{}, errors.GenerationFailed("model returned empty report", nil)
	}

	// ChartsData is passed through as-is. The score aggregator copes
	// with malformed chart payloads.
	return flow.Report{
		Narrative: out.Report,
		ChartData: stripFences(out.ChartsData),
	}, nil
}

func writeQA(b *strings.Builder, questions, answers []string) {
	for i, q := range questions {
		b.WriteString("- Question: ")
		b.WriteString(q)
		b.WriteString("\n  Answer: ")
		if i < len(answers) {
			b.WriteString(answers[i])
		}
		b.WriteString("\n")
	}
}

// stripFences removes a surrounding markdown code fence from a model
// response.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
