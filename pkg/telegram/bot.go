// Package telegram is a minimal Bot API transport: send one formatted
// message, long-poll for incoming ones.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultAPIURL = "https://api.telegram.org"

// Handler processes one incoming message text.
type Handler func(ctx context.Context, chatID int64, text string)

// Bot talks to the Telegram Bot API over HTTPS.
type Bot struct {
	token  string
	chatID string
	apiURL string
	client *http.Client
	offset int64
}

func New(token, chatID string) *Bot {
	return &Bot{
		token:  token,
		chatID: chatID,
		apiURL: defaultAPIURL,
		client: &http.Client{Timeout: 50 * time.Second},
	}
}

// Enabled reports whether the bot has credentials to send anything.
func (b *Bot) Enabled() bool {
	return b.token != "" && b.chatID != ""
}

// Send posts a message to the configured report chat.
func (b *Bot) Send(ctx context.Context, text string) error {
	return b.SendTo(ctx, b.chatID, text)
}

// SendTo posts an HTML-formatted message to any chat.
func (b *Bot) SendTo(ctx context.Context, chatID, text string) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	var res struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := b.call(ctx, "sendMessage", payload, &res); err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("sendMessage rejected: %s", res.Description)
	}
	return nil
}

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// Poll long-polls getUpdates and feeds message texts to the handler
// until the context is cancelled. Handler panics do not exist here;
// handlers report their own errors back to the chat as plain text.
func (b *Bot) Poll(ctx context.Context, handle Handler) error {
	log.Info().Msg("📨 telegram bot polling started")
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		updates, err := b.getUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("getUpdates failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= b.offset {
				b.offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			handle(ctx, u.Message.Chat.ID, u.Message.Text)
		}
	}
}

func (b *Bot) getUpdates(ctx context.Context) ([]update, error) {
	payload := map[string]any{
		"offset":          b.offset,
		"timeout":         30,
		"allowed_updates": []string{"message"},
	}
	var res struct {
		OK     bool     `json:"ok"`
		Result []update `json:"result"`
	}
	if err := b.call(ctx, "getUpdates", payload, &res); err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, fmt.Errorf("getUpdates rejected")
	}
	return res.Result, nil
}

func (b *Bot) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/%s", b.apiURL, b.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode > 299 {
		return fmt.Errorf("telegram %s status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return json.Unmarshal(raw, out)
}
