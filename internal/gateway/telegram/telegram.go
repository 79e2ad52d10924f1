// Package telegram implements the gateway contract against the
// Telegram Bot API using long polling. No client library is used; the
// surface the bot needs is small enough for a thin hand client.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fedcase/internal/gateway"
)

const defaultBaseURL = "https://api.telegram.org"

// pollTimeout is the long-poll timeout passed to getUpdates, seconds.
const pollTimeout = 50

// Client talks to the Telegram Bot API.
type Client struct {
	http        *http.Client
	baseURL     string
	token       string
	evidenceDir string
	offset      int64
}

// Options configures the Telegram client.
type Options struct {
	Token string

	// EvidenceDir is where fetched media files are stored. Created if
	// missing.
	EvidenceDir string

	// BaseURL overrides the API host, used in tests.
	BaseURL string
}

// New creates a Telegram gateway client.
func New(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("telegram: token is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.EvidenceDir == "" {
		opts.EvidenceDir = "evidence"
	}
	if err := os.MkdirAll(opts.EvidenceDir, 0755); err != nil {
		return nil, fmt.Errorf("telegram: failed to create evidence dir: %w", err)
	}

	return &Client{
		// Long polls block server-side for pollTimeout seconds.
		http:        &http.Client{Timeout: (pollTimeout + 10) * time.Second},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		token:       opts.Token,
		evidenceDir: opts.EvidenceDir,
	}, nil
}

// apiResponse is the Bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// call posts params as JSON to the given method and decodes the result.
func (c *Client) call(ctx context.Context, method string, params, result interface{}) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("telegram: encode %s params: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp.Body, method, result)
}

func decodeResponse(r io.Reader, method string, result interface{}) error {
	var envelope apiResponse
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return fmt.Errorf("telegram: decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram: %s failed: %s", method, envelope.Description)
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("telegram: decode %s result: %w", method, err)
		}
	}
	return nil
}

// inline keyboard wire types
type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

func toKeyboard(buttons [][]gateway.Button) *inlineKeyboard {
	kb := &inlineKeyboard{InlineKeyboard: make([][]inlineButton, 0, len(buttons))}
	for _, row := range buttons {
		wire := make([]inlineButton, 0, len(row))
		for _, b := range row {
			wire = append(wire, inlineButton{Text: b.Label, CallbackData: b.Token})
		}
		kb.InlineKeyboard = append(kb.InlineKeyboard, wire)
	}
	return kb
}

// SendMessage sends an HTML-formatted text message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, html string) error {
	return c.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id":    chatID,
		"text":       html,
		"parse_mode": "HTML",
	}, nil)
}

// SendChoice sends an HTML message with an inline keyboard.
func (c *Client) SendChoice(ctx context.Context, chatID int64, html string, buttons [][]gateway.Button) error {
	return c.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id":      chatID,
		"text":         html,
		"parse_mode":   "HTML",
		"reply_markup": toKeyboard(buttons),
	}, nil)
}

// EditMessage replaces the text of a previously sent message.
func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID int, html string) error {
	return c.call(ctx, "editMessageText", map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       html,
		"parse_mode": "HTML",
	}, nil)
}

// AnswerCallback acknowledges an inline-choice press.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]interface{}{
		"callback_query_id": callbackID,
	}, nil)
}

// SendPhoto uploads a local image file with a caption.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, path, caption string) error {
	return c.sendFile(ctx, "sendPhoto", "photo", chatID, path, caption)
}

// SendVideo uploads a local video file with a caption.
func (c *Client) SendVideo(ctx context.Context, chatID int64, path, caption string) error {
	return c.sendFile(ctx, "sendVideo", "video", chatID, path, caption)
}

func (c *Client) sendFile(ctx context.Context, method, field string, chatID int64, path, caption string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telegram: open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("chat_id", fmt.Sprintf("%d", chatID)); err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	if err := w.WriteField("caption", caption); err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	if err := w.WriteField("parse_mode", "HTML"); err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("telegram: %s: read %s: %w", method, path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("telegram: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp.Body, method, nil)
}

// FetchFile resolves fileID via getFile and downloads it into the
// evidence directory. The returned path is the stored file reference.
func (c *Client) FetchFile(ctx context.Context, fileID string) (string, error) {
	var info struct {
		FilePath string `json:"file_path"`
	}
	if err := c.call(ctx, "getFile", map[string]interface{}{"file_id": fileID}, &info); err != nil {
		return "", err
	}

	ext := filepath.Ext(info.FilePath)
	if ext == "" {
		ext = ".jpg"
	}
	local := filepath.Join(c.evidenceDir, fileID+ext)

	url := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, info.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("telegram: build download request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("telegram: download %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("telegram: download %s: unexpected status %d", fileID, resp.StatusCode)
	}

	out, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("telegram: create %s: %w", local, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(local)
		return "", fmt.Errorf("telegram: write %s: %w", local, err)
	}

	return local, nil
}

// Ensure Client implements the gateway contract at compile time.
var _ gateway.Gateway = (*Client)(nil)
