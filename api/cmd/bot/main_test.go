package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryDelayFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"nil", nil, 0},
		{"429 with retry after", errors.New("Too Many Requests: retry after 7"), 7 * time.Second},
		{"429 bare", errors.New("too many requests"), 3 * time.Second},
		{"timeout", timeoutErr{}, 2 * time.Second},
		{"other", errors.New("connection refused"), time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryDelayFromError(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClampDelay(t *testing.T) {
	base, max := time.Second, 15*time.Second
	tests := []struct {
		hint, prev, want time.Duration
	}{
		{time.Second, 0, time.Second},
		{time.Second, time.Second, 2 * time.Second},
		{time.Second, 8 * time.Second, 15 * time.Second},
		{7 * time.Second, time.Second, 7 * time.Second},
		{60 * time.Second, 0, 15 * time.Second},
	}
	for _, tt := range tests {
		if got := clampDelay(tt.hint, tt.prev, base, max); got != tt.want {
			t.Errorf("clampDelay(%v, %v) = %v, want %v", tt.hint, tt.prev, got, tt.want)
		}
	}
}

func TestShortHash(t *testing.T) {
	a, b := shortHash("123:abc"), shortHash("123:abd")
	if len(a) != 16 || a == b {
		t.Errorf("shortHash: %q %q", a, b)
	}
	if shortHash("123:abc") != a {
		t.Error("shortHash not stable")
	}
}

func TestServe_WaitsForInFlightHandlers(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	entered := make(chan struct{})
	var finished atomic.Bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		time.Sleep(200 * time.Millisecond)
		finished.Store(true)
	})

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- serve(ctx, &http.Server{Handler: h}, ln) }()

	go func() {
		resp, err := http.Post("http://"+ln.Addr().String()+"/webhook/x", "application/json", nil)
		if err == nil {
			resp.Body.Close()
		}
	}()

	<-entered
	cancel()
	if err := <-served; err != nil {
		t.Fatalf("serve: %v", err)
	}
	if !finished.Load() {
		t.Error("serve returned while a handler was still running")
	}
}
