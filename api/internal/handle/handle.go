package handle

import (
	"context"
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"math-solver/api/internal/solution"
	"math-solver/api/internal/solver"
	"math-solver/api/internal/store"
)

// Solver is the part of solver.Solver the handlers need.
type Solver interface {
	Solve(ctx context.Context, req solver.Request) (solution.Result, error)
	History(ctx context.Context, userID string) ([]store.Record, bool, error)
}

type Handle struct {
	solver Solver
}

func New(s Solver) *Handle {
	return &Handle{solver: s}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with {"detail": ...}. 5xx responses are logged.
func writeError(w http.ResponseWriter, r *http.Request, code int, detail string) {
	if code >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"request_id": w.Header().Get("X-Request-ID"),
			"path":       r.URL.Path,
			"error":      detail,
			"event":      "request_failed",
		}).Error("request failed")
	}
	writeJSON(w, code, map[string]string{"detail": detail})
}
