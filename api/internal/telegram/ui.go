package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"math-solver/api/internal/solution"
	"math-solver/api/internal/store"
)

const (
	textStart = "Send me a photo of a math problem and I will solve it step by step.\n" +
		"Add a caption to describe the problem if it helps.\n" +
		"Commands: /history, /engine, /health"
	textSendPhoto     = "Please send a photo of the problem."
	textWorking       = "📷 Got it, solving..."
	textSolveFailed   = "❌ Could not solve this one. Please try again with a clearer photo."
	textHistoryFailed = "❌ Could not load your history right now."
	textEngineUsage   = "Usage: /engine gpt | gemini | claude | default"

	callbackHistory = "history"

	// maxMessage leaves headroom under Telegram's 4096 character limit.
	maxMessage = 3900
)

func historyKeyboard() tgbotapi.InlineKeyboardMarkup {
	btn := tgbotapi.NewInlineKeyboardButtonData("🕘 My history", callbackHistory)
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(btn))
}

// FormatResult renders numbered steps followed by the answer.
func FormatResult(res solution.Result) string {
	var b strings.Builder
	b.WriteString("📝 Solution:\n\n")
	for i, s := range res.Steps {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, strings.TrimSpace(s))
	}
	b.WriteString("✅ Answer: ")
	b.WriteString(strings.TrimSpace(res.Answer))
	return truncate(b.String(), maxMessage)
}

// FormatHistory lists records newest first as they come from the store.
func FormatHistory(recs []store.Record) string {
	if len(recs) == 0 {
		return "No solved problems yet. Send a photo to start."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🕘 Last %d solved problems:\n", len(recs))
	for i, rec := range recs {
		fmt.Fprintf(&b, "\n%d. %s", i+1, rec.Timestamp.UTC().Format("2006-01-02 15:04"))
		if rec.ProblemDescription != nil && *rec.ProblemDescription != "" {
			fmt.Fprintf(&b, " (%s)", *rec.ProblemDescription)
		}
		fmt.Fprintf(&b, "\n   Answer: %s\n", oneLine(rec.Answer, 200))
	}
	return truncate(b.String(), maxMessage)
}

func oneLine(s string, n int) string {
	return truncate(strings.Join(strings.Fields(s), " "), n)
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "…"
}
