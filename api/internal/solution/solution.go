// Package solution turns raw model text into the solve response.
package solution

import (
	"strings"
	"time"
)

// PlaceholderConfidence is returned on every result. It is not derived from the model output.
const PlaceholderConfidence = 0.85

const stepSeparator = "\n\n"

// Result is what /solve-math-problem returns.
type Result struct {
	Solution       string   `json:"solution"`
	Steps          []string `json:"steps"`
	Answer         string   `json:"answer"`
	Confidence     float64  `json:"confidence"`
	ProcessingTime float64  `json:"processing_time"` // seconds
}

// Parse splits model output into blank-line separated steps; the last step is the answer.
// Without a blank line the whole text is the single step and the answer.
func Parse(text string) (steps []string, answer string) {
	if !strings.Contains(text, stepSeparator) {
		return []string{text}, text
	}
	steps = strings.Split(text, stepSeparator)
	return steps, steps[len(steps)-1]
}

// NewResult parses text and stamps the elapsed time and the fixed confidence.
func NewResult(text string, elapsed time.Duration) Result {
	steps, answer := Parse(text)
	return Result{
		Solution:       text,
		Steps:          steps,
		Answer:         answer,
		Confidence:     PlaceholderConfidence,
		ProcessingTime: elapsed.Seconds(),
	}
}
