package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"math-solver/api/internal/config"
	"math-solver/api/internal/httpserver"
	"math-solver/api/internal/llm/registry"
	"math-solver/api/internal/solver"
	"math-solver/api/internal/store"
	"math-solver/api/internal/telegram"
)

func main() {
	cfg := config.Load()
	cfg.SetupLogging()

	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engines, closeEngines := registry.Build(ctx, cfg)
	defer closeEngines()

	history, err := store.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("history store")
	}
	defer history.Close()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.WithError(err).Fatal("telegram")
	}
	bot.Debug = false
	log.WithFields(log.Fields{"bot": bot.Self.UserName, "event": "bot_ready"}).Info("telegram bot authorized")

	r := telegram.NewRouter(bot, solver.New(engines, history), engines)
	mux := httpserver.HealthMux("ok")
	addr := "0.0.0.0:" + cfg.Port

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		startWebhookMode(ctx, addr, mux, bot, r, webhookURL)
		return
	}
	startPollingMode(ctx, addr, mux, bot, r)
}

func startWebhookMode(ctx context.Context, addr string, mux *http.ServeMux, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string) {
	// secret path derived from the token
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.WithError(err).Fatal("webhook")
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.WithError(err).Fatal("set webhook")
	}

	updates := make(chan tgbotapi.Update, bot.Buffer)
	mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		select {
		case updates <- *upd:
		case <-ctx.Done():
		}
	})

	// updates is never closed; both sides stop on ctx
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				r.HandleUpdate(ctx, upd)
			}
		}
	}()

	log.WithFields(log.Fields{"addr": addr, "path": path, "event": "webhook_listening"}).Info("webhook mode")
	listenAndServe(ctx, addr, mux)
}

func startPollingMode(ctx context.Context, addr string, mux *http.ServeMux, bot *tgbotapi.BotAPI, r *telegram.Router) {
	go listenAndServe(ctx, addr, mux)

	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.WithError(err).Warn("delete webhook")
	}
	log.WithFields(log.Fields{"addr": addr, "event": "polling"}).Info("polling mode")
	runPolling(ctx, bot, func(upd tgbotapi.Update) {
		r.HandleUpdate(ctx, upd)
	})
}

// listenAndServe binds addr and runs serve. A bind failure is fatal.
func listenAndServe(ctx context.Context, addr string, h http.Handler) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.WithError(err).Fatal("http listen")
	}
	log.WithField("addr", addr).Info("health server listening on /healthz")
	if err := serve(ctx, httpserver.New(addr, h), ln); err != nil {
		log.WithError(err).Fatal("http server")
	}
}

// serve runs srv on ln until ctx is done. It returns only after Shutdown has
// finished, so no handler is still running when it returns.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownDone
	return nil
}

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

// clampDelay doubles the previous delay on consecutive failures, bounded by
// [base, max] and never shorter than what the error asks for.
func clampDelay(hint, prev, base, max time.Duration) time.Duration {
	d := prev * 2
	if d < base {
		d = base
	}
	if hint > d {
		d = hint
	}
	if d > max {
		d = max
	}
	return d
}

func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, handle func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second
	var delay time.Duration

	for {
		select {
		case <-ctx.Done():
			log.Info("polling stopped")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30

		updates, err := bot.GetUpdates(u)
		if err != nil {
			delay = clampDelay(retryDelayFromError(err), delay, baseDelay, maxDelay)
			log.WithFields(log.Fields{"error": err.Error(), "retry_in": delay.String(), "event": "polling_error"}).Warn("polling error")
			sleep(ctx, delay)
			continue
		}
		delay = 0

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// shortHash is FNV-1a as 16 hex chars, stable per token.
func shortHash(s string) string {
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}
