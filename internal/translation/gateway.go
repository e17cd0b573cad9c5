package translation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/olegs18/transcriber/internal/record"
)

const sentinelPrefix = "[translation error: "

// legacy files written by the first version of the tool carry this marker
const legacySentinelPrefix = "[ошибка перевода:"

// ErrorSentinel encodes a translation failure as record text
func ErrorSentinel(err error) string {
	reason := strings.ReplaceAll(err.Error(), "\n", " ")
	return sentinelPrefix + reason + "]"
}

// IsSentinel reports whether s is a translation failure marker rather than
// a translation
func IsSentinel(s string) bool {
	return strings.HasPrefix(s, sentinelPrefix) || strings.HasPrefix(s, legacySentinelPrefix)
}

// GatewayConfig tunes the circuit breaker around the backend
type GatewayConfig struct {
	MaxFailures  uint32        // consecutive failures before the breaker opens
	ResetTimeout time.Duration // how long the breaker stays open
}

// DefaultGatewayConfig returns the default breaker settings
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		MaxFailures:  3,
		ResetTimeout: 30 * time.Second,
	}
}

// Gateway calls the translation backend at most once per identity key per
// run and never returns an error to the caller.
type Gateway struct {
	translator Translator
	breaker    *gobreaker.CircuitBreaker
	cache      *TranslationCache
	out        io.Writer
	calls      int
}

// NewGateway wraps translator. Breaker state changes are reported to out.
func NewGateway(translator Translator, config GatewayConfig, out io.Writer) *Gateway {
	if out == nil {
		out = io.Discard
	}
	if config.MaxFailures == 0 {
		config.MaxFailures = DefaultGatewayConfig().MaxFailures
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = DefaultGatewayConfig().ResetTimeout
	}

	g := &Gateway{
		translator: translator,
		cache:      NewTranslationCache(),
		out:        out,
	}

	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        translator.Name(),
		MaxRequests: 1,
		Timeout:     config.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fmt.Fprintf(g.out, "  Warning: translation backend %s circuit %s -> %s\n", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			// A cancelled run says nothing about backend health
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return g
}

// Translate returns the translation of text into key.TargetLang. Failures are
// returned as an ErrorSentinel string. A result obtained after ctx was
// cancelled is not memoized; callers must check ctx before storing it.
func (g *Gateway) Translate(ctx context.Context, key record.Key, text, sourceLang string) string {
	if cached, ok := g.cache.Get(key); ok {
		return cached
	}

	var result string
	if sourceLang == key.TargetLang {
		result = text
	} else {
		translated, err := g.call(ctx, text, sourceLang, key.TargetLang)
		if err != nil {
			result = ErrorSentinel(err)
		} else {
			result = translated
		}
	}

	if ctx.Err() != nil {
		return result
	}
	g.cache.Add(key, result)
	return result
}

// Reverse translates user supplied text from fromLang into toLang. Unlike
// Translate it reports failures, because there is no record to carry them.
func (g *Gateway) Reverse(ctx context.Context, text, fromLang, toLang string) (string, error) {
	if fromLang == toLang {
		return text, nil
	}
	return g.call(ctx, text, fromLang, toLang)
}

func (g *Gateway) call(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	g.calls++
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.translator.Translate(ctx, text, sourceLang, targetLang)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// Calls returns how many times the backend was invoked (or short-circuited)
func (g *Gateway) Calls() int {
	return g.calls
}

// Cache returns the per-run translation memo
func (g *Gateway) Cache() *TranslationCache {
	return g.cache
}

// TranslationCache stores translations in memory for the duration of a run
type TranslationCache struct {
	translations map[record.Key]string
}

// NewTranslationCache creates a new translation cache
func NewTranslationCache() *TranslationCache {
	return &TranslationCache{
		translations: make(map[record.Key]string),
	}
}

// Add adds a translation to the cache
func (tc *TranslationCache) Add(key record.Key, translation string) {
	tc.translations[key] = translation
}

// Get retrieves a translation from the cache
func (tc *TranslationCache) Get(key record.Key) (string, bool) {
	translation, ok := tc.translations[key]
	return translation, ok
}

// Len returns the number of cached translations
func (tc *TranslationCache) Len() int {
	return len(tc.translations)
}
