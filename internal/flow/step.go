// Package flow implements the assessment state machines. A state struct
// holds everything accumulated during one run and advances through a
// fixed set of steps in response to events. All methods are pure with
// respect to I/O; callers perform transcription, generation and
// persistence around them.
package flow

// Step identifies a position in an assessment flow.
type Step string

// Speech-on-topic steps.
const (
	StepTopicSelection      Step = "topic_selection"
	StepTopicSpinning       Step = "topic_spinning"
	StepTopicSelected       Step = "topic_selected"
	StepInitialSpeech       Step = "initial_speech"
	StepGeneratingQuestions Step = "generating_questions"
	StepQuestionDisplay     Step = "question_display"
	StepFinalSpeech         Step = "final_speech"
	StepGeneratingReport    Step = "generating_report"
	StepScoreDisplay        Step = "score_display"
	StepReportDisplay       Step = "report_display"
)

// Book-summary steps. Generation and report steps are shared with the
// topic flow where the names coincide.
const (
	StepBookSelection      Step = "book_selection"
	StepBookSpinning       Step = "book_spinning"
	StepBookSelected       Step = "book_selected"
	StepGeneratingSummary  Step = "generating_summary"
	StepTimerSelection     Step = "timer_selection"
	StepSummaryDisplay     Step = "summary_display"
	StepRapidFireQuestions Step = "rapid_fire_questions"
	StepFollowUpQuestions  Step = "follow_up_questions"
)

// TopicQuestionCount is the number of questions generated for the
// speech-on-topic flow.
const TopicQuestionCount = 3

// Book flow question counts.
const (
	RapidFireCount = 5
	FollowUpCount  = 2
)

// ReadingWindows lists the selectable reading durations in seconds.
var ReadingWindows = []int{180, 300, 420, 600}

func validReadingWindow(seconds int) bool {
	for _, w := range ReadingWindows {
		if w == seconds {
			return true
		}
	}
	return false
}

// Report is the outcome of an assessment: a narrative section and the
// raw chart payload the score aggregator consumes.
type Report struct {
	Narrative string `json:"narrative"`
	ChartData string `json:"chart_data"`
}
