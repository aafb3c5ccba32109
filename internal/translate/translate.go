// Package translate turns incoming messages into the monitor's target
// language. Detection is local; only text in another language reaches the
// remote API.
package translate

import (
	"context"
	"strings"

	"exile-bot/internal/config"
	"exile-bot/internal/logger"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageDisabled tags text that passed through because no API key is set.
const LanguageDisabled = "disabled"

// Result is a translated message. Language is the English name of the
// source language.
type Result struct {
	Text     string
	Original string
	Language string
}

// Translator is a remote translation backend.
type Translator interface {
	Translate(ctx context.Context, text string) (Result, error)
}

// Service detects the language of a message and translates it when needed.
// It never fails: a backend error falls back to the original text.
type Service struct {
	target  string
	backend Translator
}

// New builds the service from configuration. Without an API key the
// backend is nil and foreign text passes through untranslated.
func New(cfg config.TranslationConfig) *Service {
	target := cfg.Target
	if target == "" {
		target = "en"
	}
	s := &Service{target: target}
	if cfg.APIKey == "" {
		logger.Info("Translation API key not set, translation disabled")
		return s
	}
	s.backend = NewCached(NewGoogle(cfg), cfg.CacheSize)
	return s
}

// NewWithBackend builds a service around an existing backend.
func NewWithBackend(target string, backend Translator) *Service {
	return &Service{target: target, backend: backend}
}

func (s *Service) Translate(ctx context.Context, text string) Result {
	code, name := Detect(text)
	if code == s.target {
		return Result{Text: text, Original: text, Language: name}
	}
	if s.backend == nil {
		return Result{Text: text, Original: text, Language: LanguageDisabled}
	}

	res, err := s.backend.Translate(ctx, text)
	if err != nil {
		logger.Warningf("Translation failed, using original text: %v", err)
		return Result{Text: text, Original: text, Language: name}
	}
	return res
}

// Detect guesses the language of text locally and returns its ISO 639-1
// code and English name. The code is empty when nothing could be detected.
func Detect(text string) (string, string) {
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return "", info.Lang.String()
	}
	return code, languageName(code)
}

// languageName maps a language code such as "es" or "zh-CN" to its English
// name, falling back to the code itself.
func languageName(code string) string {
	base, _, _ := strings.Cut(code, "-")
	tag, err := language.Parse(base)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}
