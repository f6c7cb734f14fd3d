// Package telegram wraps the Telegram Bot API for operational alerts.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds the bot token and the chat targets per alert channel.
type Config struct {
	BotToken string
	// ChatIDs maps a logical channel name ("maintenance", "production")
	// to a Telegram chat id.
	ChatIDs map[string]string
}

// Client posts messages to the Telegram Bot API.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client against the public Bot API.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:     cfg,
		baseURL: "https://api.telegram.org",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewClientWithBase constructs a client against a custom endpoint, used in tests.
func NewClientWithBase(cfg Config, baseURL string) *Client {
	c := NewClient(cfg)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// SendMessage delivers text to the chat registered under channel.
func (c *Client) SendMessage(ctx context.Context, channel, text string) error {
	chatID, ok := c.cfg.ChatIDs[channel]
	if !ok {
		return fmt.Errorf("telegram: no chat configured for channel %q", channel)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.cfg.BotToken)
	form := url.Values{
		"chat_id": {chatID},
		"text":    {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("telegram: api returned status %d", resp.StatusCode)
	}
	return nil
}
