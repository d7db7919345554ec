package httpserver

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"math-solver/api/internal/handle"
)

// MaxBodyBytes caps every request body.
const MaxBodyBytes = 20 << 20

// NewRouter wires the public routes behind the middleware chain.
func NewRouter(h *handle.Handle) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /solve-math-problem", h.SolveMathProblem)
	mux.HandleFunc("POST /upload-image", h.UploadImage)
	mux.HandleFunc("GET /user-problems/{user_id}", h.UserProblems)
	mux.Handle("GET /metrics", promhttp.Handler())

	return requestID(cors(logRequests(limitBody(mux))))
}

// New returns a server with header/idle timeouts set. Solve requests have no
// overall write timeout since inference can take arbitrarily long.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// HealthMux serves /healthz for the bot process; extra routes (the webhook) are
// registered by the caller.
func HealthMux(healthzBody string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(healthzBody))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("math solver telegram bot"))
	})
	return mux
}
