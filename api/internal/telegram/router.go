package telegram

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"math-solver/api/internal/llm"
	"math-solver/api/internal/solution"
	"math-solver/api/internal/store"
)

// Bot is the subset of *tgbotapi.BotAPI the router uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Solver is the part of solver.Solver the bot needs.
type Solver interface {
	SolveImage(ctx context.Context, raw []byte, llmName, userID string, description *string) (solution.Result, error)
	History(ctx context.Context, userID string) ([]store.Record, bool, error)
}

type Router struct {
	Bot     Bot
	Solver  Solver
	Engines *llm.Engines
	HTTP    *http.Client

	// chatID -> engine name picked with /engine
	chosen sync.Map
}

func NewRouter(bot Bot, s Solver, engines *llm.Engines) *Router {
	return &Router{Bot: bot, Solver: s, Engines: engines, HTTP: &http.Client{Timeout: 60 * time.Second}}
}

// UserID is the history key for a chat.
func UserID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, *upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	msg := upd.Message

	switch {
	case msg.IsCommand():
		r.HandleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		r.acceptPhoto(ctx, msg)
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		r.acceptDocument(ctx, msg)
	default:
		r.send(msg.Chat.ID, textSendPhoto)
	}
}

func (r *Router) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, textStart)
	case "health":
		r.send(cid, "✅ OK")
	case "history":
		r.sendHistory(ctx, cid)
	case "engine":
		r.handleEngineCommand(cid, msg.CommandArguments())
	default:
		r.send(cid, "Unknown command. Try /start")
	}
}

// engineFor returns the chat's chosen engine name, empty for the default.
func (r *Router) engineFor(chatID int64) string {
	if v, ok := r.chosen.Load(chatID); ok {
		return v.(string)
	}
	return ""
}

// handleEngineCommand switches the engine for one chat:
//
//	/engine            show the current engine
//	/engine gpt|gemini|claude
//	/engine default    back to the server default
func (r *Router) handleEngineCommand(chatID int64, args string) {
	name := strings.ToLower(strings.TrimSpace(args))
	switch name {
	case "":
		eng, err := r.Engines.GetEngine(r.engineFor(chatID))
		if err != nil {
			r.send(chatID, "Current engine is unavailable: "+err.Error()+"\n"+textEngineUsage)
			return
		}
		r.send(chatID, "Current engine: "+eng.Name()+" ("+eng.GetModel()+")\n"+textEngineUsage)
	case "default":
		r.chosen.Delete(chatID)
		r.send(chatID, "✅ Engine reset to the server default.")
	default:
		eng, err := r.Engines.GetEngine(name)
		if err != nil {
			r.send(chatID, "❌ "+err.Error())
			return
		}
		r.chosen.Store(chatID, name)
		r.send(chatID, "✅ Engine: "+eng.Name()+" ("+eng.GetModel()+").")
	}
}

func (r *Router) handleCallback(ctx context.Context, cb tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, ""))
	if cb.Message == nil {
		return
	}
	switch cb.Data {
	case callbackHistory:
		r.sendHistory(ctx, cb.Message.Chat.ID)
	}
}

func (r *Router) sendHistory(ctx context.Context, chatID int64) {
	recs, enabled, err := r.Solver.History(ctx, UserID(chatID))
	if err != nil {
		log.WithFields(log.Fields{"chat_id": chatID, "error": err.Error(), "event": "history_failed"}).Warn("telegram history")
		r.send(chatID, textHistoryFailed)
		return
	}
	if !enabled {
		r.send(chatID, "History is not configured on this server.")
		return
	}
	r.send(chatID, FormatHistory(recs))
}

func (r *Router) SendResult(chatID int64, res solution.Result) {
	msg := tgbotapi.NewMessage(chatID, FormatResult(res))
	msg.ReplyMarkup = historyKeyboard()
	if _, err := r.Bot.Send(msg); err != nil {
		log.WithFields(log.Fields{"chat_id": chatID, "error": err.Error(), "event": "send_failed"}).Warn("telegram send")
	}
}

func (r *Router) SendError(chatID int64, err error) {
	log.WithFields(log.Fields{"chat_id": chatID, "error": err.Error(), "event": "solve_failed"}).Warn("telegram solve")
	r.send(chatID, textSolveFailed)
}

func (r *Router) send(chatID int64, text string) {
	if _, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.WithFields(log.Fields{"chat_id": chatID, "error": err.Error(), "event": "send_failed"}).Warn("telegram send")
	}
}
