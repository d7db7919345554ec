// Package solver runs one solve: image normalization, inference, parsing and the
// best-effort history write.
package solver

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"math-solver/api/internal/imagecodec"
	"math-solver/api/internal/llm"
	"math-solver/api/internal/metrics"
	"math-solver/api/internal/solution"
	"math-solver/api/internal/store"
)

// noEngine labels solves that failed before an engine was called.
const noEngine = "none"

type Request struct {
	ImageBase64        string  `json:"image_base64"`
	UserID             *string `json:"user_id,omitempty"`
	ProblemDescription *string `json:"problem_description,omitempty"`
	LLMName            string  `json:"llm_name,omitempty"`
}

type Solver struct {
	engines *llm.Engines
	history store.Optional
	now     func() time.Time
}

func New(engines *llm.Engines, history store.Optional) *Solver {
	return &Solver{engines: engines, history: history, now: time.Now}
}

// Solve decodes the base64 image and runs the chain.
func (s *Solver) Solve(ctx context.Context, req Request) (solution.Result, error) {
	start := s.now()
	raw, err := imagecodec.DecodeBase64(req.ImageBase64)
	if err != nil {
		metrics.Solves.WithLabelValues(noEngine, "error").Inc()
		return solution.Result{}, err
	}
	return s.solve(ctx, start, raw, req.LLMName, deref(req.UserID), req.ProblemDescription)
}

// SolveImage runs the chain on raw image bytes. Empty llmName picks the default engine.
func (s *Solver) SolveImage(ctx context.Context, raw []byte, llmName, userID string, description *string) (solution.Result, error) {
	return s.solve(ctx, s.now(), raw, llmName, userID, description)
}

func (s *Solver) solve(ctx context.Context, start time.Time, raw []byte, llmName, userID string, description *string) (solution.Result, error) {
	img, err := imagecodec.ToPNG(raw)
	if err != nil {
		metrics.Solves.WithLabelValues(noEngine, "error").Inc()
		return solution.Result{}, err
	}

	engine, err := s.engines.GetEngine(llmName)
	if err != nil {
		metrics.Solves.WithLabelValues(noEngine, "error").Inc()
		return solution.Result{}, err
	}

	text, err := engine.Solve(ctx, img.Base64())
	if err != nil {
		metrics.Solves.WithLabelValues(engine.Name(), "error").Inc()
		return solution.Result{}, err
	}
	metrics.Solves.WithLabelValues(engine.Name(), "ok").Inc()

	res := solution.NewResult(text, s.now().Sub(start))

	log.WithFields(log.Fields{
		"engine":     engine.Name(),
		"model":      engine.GetModel(),
		"format":     img.Format,
		"width":      img.Width,
		"height":     img.Height,
		"steps":      len(res.Steps),
		"latency_ms": int64(res.ProcessingTime * 1000),
		"event":      "solved",
	}).Info("math problem solved")

	s.record(ctx, userID, description, res, engine)
	return res, nil
}

// record saves the result when a user id is present and the store is enabled.
// Failures are logged only.
func (s *Solver) record(ctx context.Context, userID string, description *string, res solution.Result, engine llm.Engine) {
	if userID == "" {
		return
	}
	st, ok := s.history.Get()
	if !ok {
		metrics.HistoryWrites.WithLabelValues("skipped").Inc()
		return
	}
	id, err := st.Save(ctx, store.Record{
		UserID:             userID,
		ProblemDescription: description,
		Solution:           res.Solution,
		Steps:              res.Steps,
		Answer:             res.Answer,
		ProcessingTime:     res.ProcessingTime,
		Engine:             engine.Name(),
		Model:              engine.GetModel(),
	})
	if err != nil {
		metrics.HistoryWrites.WithLabelValues("failed").Inc()
		log.WithFields(log.Fields{
			"user_id": userID,
			"error":   err.Error(),
			"event":   "history_write_failed",
		}).Error("history save error")
		return
	}
	metrics.HistoryWrites.WithLabelValues("saved").Inc()
	log.WithFields(log.Fields{"user_id": userID, "id": id, "event": "history_saved"}).Debug("history saved")
}

// History returns the newest records for userID. enabled is false when no store is configured.
func (s *Solver) History(ctx context.Context, userID string) (records []store.Record, enabled bool, err error) {
	st, ok := s.history.Get()
	if !ok {
		return nil, false, nil
	}
	records, err = st.ListByUser(ctx, userID, store.HistoryLimit)
	return records, true, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
