// Package score turns a report's chart payload into a single 0-100
// cumulative score and a qualitative grade. It never fails: malformed
// payloads degrade to a zero score instead of propagating an error.
package score

import (
	"encoding/json"
	"math"
)

// Grade labels, mapped from the cumulative score via fixed thresholds.
const (
	GradeExcellent        = "Excellent"
	GradeVeryGood         = "Very Good"
	GradeGood             = "Good"
	GradeNeedsImprovement = "Needs Improvement"
	GradeNotAvailable     = "Not Available"
	GradeError            = "Error"
)

// Chart is one visualizable chart extracted from a report payload.
type Chart struct {
	Type   string                   `json:"type"`
	Title  string                   `json:"title"`
	Data   []map[string]interface{} `json:"data"`
	Config json.RawMessage          `json:"config,omitempty"`
}

// Result is the aggregated outcome for one report.
type Result struct {
	Score int    `json:"score"`
	Grade string `json:"grade"`
}

// Aggregate parses a JSON-encoded chart payload and averages every
// numeric "score" field across all bar-chart records. Invalid JSON
// yields {0, Error}; valid JSON with no usable bar data yields
// {0, Not Available}.
func Aggregate(payload string) Result {
	var charts []Chart
	if err := json.Unmarshal([]byte(payload), &charts); err != nil {
		return Result{Score: 0, Grade: GradeError}
	}
	return AggregateCharts(charts)
}

// AggregateCharts aggregates already-parsed charts.
func AggregateCharts(charts []Chart) Result {
	var scores []float64
	for _, c := range charts {
		if c.Type != "bar" || c.Data == nil {
			continue
		}
		for _, rec := range c.Data {
			v, ok := rec["score"].(float64)
			if !ok || math.IsNaN(v) {
				continue
			}
			scores = append(scores, v)
		}
	}

	if len(scores) == 0 {
		return Result{Score: 0, Grade: GradeNotAvailable}
	}

	var total float64
	for _, v := range scores {
		total += v
	}
	s := int(math.Round(total / float64(len(scores))))

	return Result{Score: s, Grade: GradeFor(s)}
}

// GradeFor maps a 0-100 score to its grade. Thresholds are exclusive:
// 86 is Excellent, 85 sits at the top of Very Good, and so on.
func GradeFor(s int) string {
	switch {
	case s > 85:
		return GradeExcellent
	case s > 70:
		return GradeVeryGood
	case s > 50:
		return GradeGood
	default:
		return GradeNeedsImprovement
	}
}

// ParseCharts parses a chart payload for display. A malformed payload
// or a non-array yields an empty slice rather than an error.
func ParseCharts(payload string) []Chart {
	var charts []Chart
	if err := json.Unmarshal([]byte(payload), &charts); err != nil {
		return nil
	}
	return charts
}
