package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
)

const messageJSON = `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-sonnet-4-5-20250929",
  "content": [
    {"type": "text", "text": "Divide by 2"},
    {"type": "text", "text": "\n\nx = 4"}
  ],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 10, "output_tokens": 5}
}`

func TestSolve_SendsImageBlock(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &body); err != nil {
			t.Errorf("bad request json: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, messageJSON)
	}))
	defer srv.Close()

	e := New("test-key", "claude-sonnet-4-5-20250929", option.WithBaseURL(srv.URL))
	out, err := e.Solve(context.Background(), "iVBORw0KGgo=")
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if out != "Divide by 2\n\nx = 4" {
		t.Errorf("out = %q", out)
	}

	if body["max_tokens"] != float64(1000) || body["temperature"] != 0.3 {
		t.Errorf("sampling = %v / %v", body["max_tokens"], body["temperature"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("messages = %v", body["messages"])
	}
	content, _ := msgs[0].(map[string]any)["content"].([]any)
	if len(content) != 2 {
		t.Fatalf("content = %v", content)
	}
	img, _ := content[1].(map[string]any)
	src, _ := img["source"].(map[string]any)
	if img["type"] != "image" || src["media_type"] != "image/png" || src["data"] != "iVBORw0KGgo=" {
		t.Errorf("image block = %v", img)
	}
}

func TestSolve_NoRetryOnError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"overloaded_error","message":"busy"}}`)
	}))
	defer srv.Close()

	e := New("test-key", "m", option.WithBaseURL(srv.URL))
	if _, err := e.Solve(context.Background(), "iVBORw0KGgo="); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSolve_MissingKey(t *testing.T) {
	if _, err := New("", "m").Solve(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty key")
	}
}
