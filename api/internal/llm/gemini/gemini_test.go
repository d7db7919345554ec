package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestCollectText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{
			name: "skips empty candidate",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: nil},
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("A\n\n"), genai.Text("B")}}},
			}},
			want: "A\n\nB",
		},
		{
			name: "ignores non text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.ImageData("png", []byte{1}), genai.Text("x = 4")}}},
			}},
			want: "x = 4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := collectText(tt.resp); got != tt.want {
				t.Errorf("collectText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New(context.Background(), "  ", "gemini-2.5-flash"); err == nil {
		t.Fatal("expected error for empty key")
	}
}
