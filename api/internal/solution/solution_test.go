package solution

import (
	"reflect"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantSteps  []string
		wantAnswer string
	}{
		{
			name:       "no blank line",
			text:       "x = 4",
			wantSteps:  []string{"x = 4"},
			wantAnswer: "x = 4",
		},
		{
			name:       "three paragraphs",
			text:       "A\n\nB\n\nC",
			wantSteps:  []string{"A", "B", "C"},
			wantAnswer: "C",
		},
		{
			name:       "single newlines stay inside a step",
			text:       "2x + 1 = 9\n2x = 8\n\nx = 4",
			wantSteps:  []string{"2x + 1 = 9\n2x = 8", "x = 4"},
			wantAnswer: "x = 4",
		},
		{
			name:       "empty text",
			text:       "",
			wantSteps:  []string{""},
			wantAnswer: "",
		},
		{
			name:       "trailing blank line yields empty answer",
			text:       "A\n\n",
			wantSteps:  []string{"A", ""},
			wantAnswer: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, answer := Parse(tt.text)
			if !reflect.DeepEqual(steps, tt.wantSteps) {
				t.Errorf("steps = %q, want %q", steps, tt.wantSteps)
			}
			if answer != tt.wantAnswer {
				t.Errorf("answer = %q, want %q", answer, tt.wantAnswer)
			}
			if len(steps) == 0 {
				t.Error("steps must never be empty")
			}
		})
	}
}

func TestNewResult(t *testing.T) {
	r := NewResult("A\n\nB", 1500*time.Millisecond)
	if r.Solution != "A\n\nB" {
		t.Errorf("solution = %q", r.Solution)
	}
	if r.Answer != "B" {
		t.Errorf("answer = %q", r.Answer)
	}
	if r.Confidence != PlaceholderConfidence {
		t.Errorf("confidence = %v", r.Confidence)
	}
	if r.ProcessingTime != 1.5 {
		t.Errorf("processing time = %v", r.ProcessingTime)
	}
}
