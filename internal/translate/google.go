package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"exile-bot/internal/config"
	"exile-bot/internal/logger"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const defaultEndpoint = "https://translation.googleapis.com/language/translate/v2"

// Google calls the Cloud Translation v2 REST API.
type Google struct {
	endpoint string
	apiKey   string
	target   string
	client   *retryablehttp.Client
	limiter  *rate.Limiter
}

type googleRequest struct {
	Q      string `json:"q"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type googleResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText         string `json:"translatedText"`
			DetectedSourceLanguage string `json:"detectedSourceLanguage"`
		} `json:"translations"`
	} `json:"data"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewGoogle(cfg config.TranslationConfig) *Google {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	target := cfg.Target
	if target == "" {
		target = "en"
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = retryablehttp.LeveledLogger(retryLogger{})
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Google{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		target:   target,
		client:   client,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

func (g *Google) Translate(ctx context.Context, text string) (Result, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("waiting for translation rate limit: %w", err)
	}

	body, err := json.Marshal(googleRequest{Q: text, Target: g.target, Format: "text"})
	if err != nil {
		return Result{}, fmt.Errorf("encoding translation request: %w", err)
	}

	u := g.endpoint + "?key=" + url.QueryEscape(g.apiKey)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("building translation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading translation response: %w", err)
	}

	var out googleResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, fmt.Errorf("decoding translation response (status %d): %w", resp.StatusCode, err)
	}
	if out.Error != nil {
		return Result{}, fmt.Errorf("translation API error %d: %s", out.Error.Code, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("translation API returned status %d", resp.StatusCode)
	}
	if len(out.Data.Translations) == 0 {
		return Result{}, fmt.Errorf("translation API returned no translations")
	}

	tr := out.Data.Translations[0]
	return Result{
		Text:     tr.TranslatedText,
		Original: text,
		Language: languageName(tr.DetectedSourceLanguage),
	}, nil
}

// retryLogger routes retryablehttp output into the bot log. Retries are
// logged as warnings, not errors.
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...any) {
	logger.Warning(formatKV(msg, keysAndValues))
}

func (retryLogger) Warn(msg string, keysAndValues ...any) {
	logger.Warning(formatKV(msg, keysAndValues))
}

func (retryLogger) Info(msg string, keysAndValues ...any) {
	logger.Info(formatKV(msg, keysAndValues))
}

func (retryLogger) Debug(msg string, keysAndValues ...any) {
	logger.Debug(formatKV(msg, keysAndValues))
}

func formatKV(msg string, kv []any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
