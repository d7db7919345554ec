package handle

import (
	"net/http"

	"math-solver/api/internal/store"
)

type UserProblemsResponse struct {
	Message  string         `json:"message,omitempty"`
	Problems []store.Record `json:"problems"`
}

func (h *Handle) UserProblems(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	recs, enabled, err := h.solver.History(r.Context(), userID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Error retrieving problems: "+err.Error())
		return
	}
	if !enabled {
		writeJSON(w, http.StatusOK, UserProblemsResponse{
			Message:  "History store not configured",
			Problems: []store.Record{},
		})
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, UserProblemsResponse{Problems: recs})
}
