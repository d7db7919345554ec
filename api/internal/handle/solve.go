package handle

import (
	"encoding/json"
	"net/http"

	"math-solver/api/internal/solver"
)

func (h *Handle) SolveMathProblem(w http.ResponseWriter, r *http.Request) {
	var req solver.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusInternalServerError, "Error solving math problem: bad json: "+err.Error())
		return
	}

	out, err := h.solver.Solve(r.Context(), req)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Error solving math problem: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}
