package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxDownload matches the HTTP API body cap.
const maxDownload = 20 << 20

func (r *Router) acceptPhoto(ctx context.Context, msg *tgbotapi.Message) {
	// sizes are ascending; take the largest
	ph := msg.Photo[len(msg.Photo)-1]
	r.solveFile(ctx, msg, ph.FileID)
}

func (r *Router) acceptDocument(ctx context.Context, msg *tgbotapi.Message) {
	r.solveFile(ctx, msg, msg.Document.FileID)
}

func (r *Router) solveFile(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	cid := msg.Chat.ID
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		r.SendError(cid, fmt.Errorf("get file: %w", stripURL(err)))
		return
	}
	raw, err := r.download(ctx, url)
	if err != nil {
		r.SendError(cid, err)
		return
	}

	r.send(cid, textWorking)
	_, _ = r.Bot.Request(tgbotapi.NewChatAction(cid, tgbotapi.ChatTyping))

	var desc *string
	if c := strings.TrimSpace(msg.Caption); c != "" {
		desc = &c
	}
	res, err := r.Solver.SolveImage(ctx, raw, r.engineFor(cid), UserID(cid), desc)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	r.SendResult(cid, res)
}

// stripURL drops the request URL from transport errors. Telegram file and API
// URLs embed the bot token.
func stripURL(err error) error {
	var ue *neturl.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

func (r *Router) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", stripURL(err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download: status %d: %s", resp.StatusCode, string(b))
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("download: %w", stripURL(err))
	}
	if len(b) > maxDownload {
		return nil, fmt.Errorf("download: file larger than %d bytes", maxDownload)
	}
	return b, nil
}
