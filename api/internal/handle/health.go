package handle

import (
	"net/http"
	"time"
)

func (h *Handle) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Math Problem Solver API is running!"})
}

func (h *Handle) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339Nano),
	})
}
