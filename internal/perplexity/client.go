// Package perplexity реализует клиент провайдера генерации изображений.
// Модель текстовая, поэтому картинка запрашивается как base64-строка в
// ответе чата; если декодировать её не удаётся или запрос падает,
// клиент пытается отдать котика-заглушку из настроенного источника.
package perplexity

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/kittygen-bot/internal/config"
	"github.com/magabrotheeeer/kittygen-bot/internal/lib/sl"
)

const (
	systemPrompt = "You are an AI image generator. Return only a base64-encoded PNG string without any surrounding text."
	userPrompt   = "Generate image of a cute realistic cat in %s, vibrant colors, detailed fur, 1024x1024. Return base64 PNG only."

	temperature = 0.3
)

// ErrNoFallback возвращается, когда генерация не удалась, а источник
// заглушки не настроен.
var ErrNoFallback = errors.New("generation failed and no fallback image source configured")

// Client клиент API генерации изображений.
type Client struct {
	apiKey      string
	apiURL      string
	model       string
	fallbackURL string
	httpClient  *http.Client
	log         *slog.Logger
}

// NewClient создаёт новый клиент провайдера генерации.
func NewClient(cfg config.Perplexity, log *slog.Logger) *Client {
	return &Client{
		apiKey:      cfg.APIKey,
		apiURL:      cfg.APIURL,
		model:       cfg.Model,
		fallbackURL: cfg.FallbackURL,
		httpClient:  &http.Client{Timeout: cfg.TimeoutGen},
		log:         log,
	}
}

// GenerateCatImage запрашивает у провайдера изображение кота по описанию.
// Возвращает PNG-байты; при любой деградации (ошибка сети, не-200,
// не-base64 ответ) пытается отдать заглушку. Ошибка возвращается только
// если и заглушку получить не удалось.
func (c *Client) GenerateCatImage(ctx context.Context, prompt string) ([]byte, error) {
	const op = "perplexity.GenerateCatImage"

	payload := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPrompt, prompt)},
		},
		Temperature: temperature,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("generation request failed", sl.Err(err))
		return c.fetchPlaceholder(ctx)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("generation provider returned non-OK status", slog.String("status", resp.Status))
		return c.fetchPlaceholder(ctx)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		c.log.Error("failed to decode provider response", sl.Err(err))
		return c.fetchPlaceholder(ctx)
	}

	content := chatResp.Content()
	if content == "" {
		c.log.Warn("provider response has no content")
		return c.fetchPlaceholder(ctx)
	}

	img, err := base64.StdEncoding.Strict().DecodeString(content)
	if err != nil {
		// модель текстовая и вместо base64 может прислать обычный текст
		c.log.Warn("provider content is not base64, using placeholder")
		return c.fetchPlaceholder(ctx)
	}
	return img, nil
}

// fetchPlaceholder загружает котика-заглушку из настроенного источника.
func (c *Client) fetchPlaceholder(ctx context.Context) ([]byte, error) {
	const op = "perplexity.fetchPlaceholder"

	if c.fallbackURL == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoFallback)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fallbackURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w", op, errors.New("unexpected status: "+resp.Status))
	}
	return io.ReadAll(resp.Body)
}
