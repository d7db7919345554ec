package solver

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"math-solver/api/internal/llm"
	"math-solver/api/internal/metrics"
	"math-solver/api/internal/store"
)

type fakeEngine struct {
	reply string
	err   error
	got   string
}

func (f *fakeEngine) Name() string     { return "gpt" }
func (f *fakeEngine) GetModel() string { return "fake-model" }
func (f *fakeEngine) Solve(_ context.Context, pngBase64 string) (string, error) {
	f.got = pngBase64
	return f.reply, f.err
}

type fakeStore struct {
	mu    sync.Mutex
	saved []store.Record
	err   error
}

func (f *fakeStore) Save(_ context.Context, rec store.Record) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, rec)
	return "id-1", nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string, limit int) ([]store.Record, error) {
	return f.saved, f.err
}

func (f *fakeStore) Close() error { return nil }

func pngBase64(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 2))); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func strPtr(s string) *string { return &s }

func newSolver(eng llm.Engine, hist store.Optional) *Solver {
	return New(&llm.Engines{Default: "openai", OpenAI: eng}, hist)
}

func TestSolve_ParsesReplyAndSaves(t *testing.T) {
	eng := &fakeEngine{reply: "Step 1\n\nx = 4"}
	st := &fakeStore{}
	s := newSolver(eng, store.Enabled(st))

	res, err := s.Solve(context.Background(), Request{
		ImageBase64:        pngBase64(t),
		UserID:             strPtr("u1"),
		ProblemDescription: strPtr("linear equation"),
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Answer != "x = 4" || len(res.Steps) != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Confidence != 0.85 {
		t.Errorf("confidence = %v", res.Confidence)
	}
	if _, err := base64.StdEncoding.DecodeString(eng.got); err != nil || eng.got == "" {
		t.Errorf("engine did not get png base64: %q", eng.got)
	}

	if len(st.saved) != 1 {
		t.Fatalf("saved %d records, want 1", len(st.saved))
	}
	rec := st.saved[0]
	if rec.UserID != "u1" || rec.Answer != "x = 4" || rec.Engine != "gpt" || *rec.ProblemDescription != "linear equation" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestSolve_NoUserIDNeverWrites(t *testing.T) {
	for _, uid := range []*string{nil, strPtr("")} {
		st := &fakeStore{}
		s := newSolver(&fakeEngine{reply: "42"}, store.Enabled(st))
		if _, err := s.Solve(context.Background(), Request{ImageBase64: pngBase64(t), UserID: uid}); err != nil {
			t.Fatalf("Solve: %v", err)
		}
		if len(st.saved) != 0 {
			t.Errorf("history written without user id: %+v", st.saved)
		}
	}
}

func TestSolve_StoreFailureIsSwallowed(t *testing.T) {
	st := &fakeStore{err: errors.New("quota exceeded")}
	s := newSolver(&fakeEngine{reply: "42"}, store.Enabled(st))
	res, err := s.Solve(context.Background(), Request{ImageBase64: pngBase64(t), UserID: strPtr("u1")})
	if err != nil {
		t.Fatalf("store failure surfaced: %v", err)
	}
	if res.Answer != "42" {
		t.Errorf("answer = %q", res.Answer)
	}
}

func TestSolve_DisabledStore(t *testing.T) {
	s := newSolver(&fakeEngine{reply: "42"}, store.Disabled("test"))
	if _, err := s.Solve(context.Background(), Request{ImageBase64: pngBase64(t), UserID: strPtr("u1")}); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	recs, enabled, err := s.History(context.Background(), "u1")
	if err != nil || enabled || recs != nil {
		t.Errorf("History on disabled store = %v, %v, %v", recs, enabled, err)
	}
}

func TestSolve_Errors(t *testing.T) {
	tests := []struct {
		name  string
		eng   *fakeEngine
		req   Request
		label string
	}{
		{"bad base64", &fakeEngine{reply: "x"}, Request{ImageBase64: "***"}, "none"},
		{"not an image", &fakeEngine{reply: "x"}, Request{ImageBase64: base64.StdEncoding.EncodeToString([]byte("hello"))}, "none"},
		{"provider failure", &fakeEngine{err: errors.New("401 unauthorized")}, Request{ImageBase64: pngBase64(t)}, "gpt"},
		{"unknown engine", &fakeEngine{reply: "x"}, Request{ImageBase64: pngBase64(t), LLMName: "yandex"}, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeStore{}
			s := newSolver(tt.eng, store.Enabled(st))
			tt.req.UserID = strPtr("u1")
			before := testutil.ToFloat64(metrics.Solves.WithLabelValues(tt.label, "error"))
			if _, err := s.Solve(context.Background(), tt.req); err == nil {
				t.Fatal("expected error")
			}
			if got := testutil.ToFloat64(metrics.Solves.WithLabelValues(tt.label, "error")); got != before+1 {
				t.Errorf("solve_requests_total{engine=%q,status=error} = %v, want %v", tt.label, got, before+1)
			}
			if len(st.saved) != 0 {
				t.Error("failed solve must not write history")
			}
		})
	}
}

func TestSolveImage(t *testing.T) {
	raw, _ := base64.StdEncoding.DecodeString(pngBase64(t))
	st := &fakeStore{}
	s := newSolver(&fakeEngine{reply: "A\n\nB"}, store.Enabled(st))
	res, err := s.SolveImage(context.Background(), raw, "", "tg:7", nil)
	if err != nil {
		t.Fatalf("SolveImage: %v", err)
	}
	if res.Answer != "B" {
		t.Errorf("answer = %q", res.Answer)
	}
	if len(st.saved) != 1 || st.saved[0].UserID != "tg:7" {
		t.Errorf("saved = %+v", st.saved)
	}
}

func TestSolveImage_EngineByName(t *testing.T) {
	raw, _ := base64.StdEncoding.DecodeString(pngBase64(t))
	gem := &fakeEngine{reply: "from gemini"}
	s := New(&llm.Engines{Default: "openai", OpenAI: &fakeEngine{reply: "from gpt"}, Gemini: gem}, store.Disabled("test"))

	res, err := s.SolveImage(context.Background(), raw, "gemini", "tg:7", nil)
	if err != nil {
		t.Fatalf("SolveImage: %v", err)
	}
	if res.Answer != "from gemini" || gem.got == "" {
		t.Errorf("answer = %q, gemini called = %v", res.Answer, gem.got != "")
	}
}
