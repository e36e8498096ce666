// Package notify delivers status announcements to the messaging bot and the
// webhook channel. Delivery is fire-and-forget: one attempt, no retry.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"zenith_pc_control/internal/models"
)

const (
	ChannelTelegram = "telegram"
	ChannelWebhook  = "webhook"

	DefaultTelegramBaseURL = "https://api.telegram.org"
)

// Channel is one delivery target. Enabled reports whether the settings carry
// the credentials it needs; a disabled channel is skipped, not failed.
type Channel interface {
	Name() string
	Enabled(s models.Settings) bool
	Send(ctx context.Context, s models.Settings, message string) error
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

var errStatus = errors.New("unexpected status")

type Telegram struct {
	baseURL string
	client  HTTPDoer
}

func NewTelegram(baseURL string, client HTTPDoer) *Telegram {
	if baseURL == "" {
		baseURL = DefaultTelegramBaseURL
	}
	return &Telegram{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (t *Telegram) Name() string { return ChannelTelegram }

func (t *Telegram) Enabled(s models.Settings) bool {
	return s.TelegramToken != "" && s.TelegramChatID != ""
}

func (t *Telegram) Send(ctx context.Context, s models.Settings, message string) error {
	url := t.baseURL + "/bot" + s.TelegramToken + "/sendMessage"
	body := "chat_id=" + s.TelegramChatID + "&text=" + EncodeText(message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t.client, req)
}

type Webhook struct {
	client HTTPDoer
}

func NewWebhook(client HTTPDoer) *Webhook {
	return &Webhook{client: client}
}

func (w *Webhook) Name() string { return ChannelWebhook }

func (w *Webhook) Enabled(s models.Settings) bool {
	return s.DiscordWebhook != ""
}

func (w *Webhook) Send(ctx context.Context, s models.Settings, message string) error {
	body := `{"content":"` + EscapeContent(message) + `"}`

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.DiscordWebhook, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return do(w.client, req)
}

func do(client HTTPDoer, req *http.Request) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", errStatus, resp.StatusCode)
	}
	return nil
}

// EncodeText percent-encodes every byte except ASCII letters, digits and
// "-_.~". Spaces become %20, never "+".
func EncodeText(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	}
	return false
}

// EscapeContent escapes only '"' and '\'. Other control characters pass
// through unchanged.
func EscapeContent(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
