// Package i18n translates UI strings for the supported locales and remembers
// the chosen locale.
package i18n

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/odyssey-erp/celtis-pos/internal/platform/kv"
)

// Locale is a supported UI language.
type Locale string

const (
	English Locale = "en"
	Arabic  Locale = "ar"

	DefaultLocale = English
)

// Direction is the text direction of a locale.
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// StorageKey is the key-value entry holding the chosen locale.
const StorageKey = "celtis.pos.locale"

// ErrUnsupportedLocale is returned for locales without a message table.
var ErrUnsupportedLocale = errors.New("i18n: unsupported locale")

// Vars are interpolation values keyed by placeholder name.
type Vars map[string]any

var (
	supported   = []Locale{English, Arabic}
	matcher     = language.NewMatcher([]language.Tag{language.English, language.Arabic})
	placeholder = regexp.MustCompile(`\{(\w+)\}`)
)

// Supported lists the available locales.
func Supported() []Locale {
	return append([]Locale(nil), supported...)
}

// Parse validates a locale code.
func Parse(raw string) (Locale, bool) {
	switch Locale(strings.ToLower(strings.TrimSpace(raw))) {
	case English:
		return English, true
	case Arabic:
		return Arabic, true
	}
	return "", false
}

// Match picks the best supported locale for an Accept-Language header.
func Match(acceptLanguage string) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLocale
	}
	return supported[idx]
}

// Dir returns the text direction of l.
func (l Locale) Dir() Direction {
	if l == Arabic {
		return RTL
	}
	return LTR
}

// Lookup resolves key in l, then English, then returns the key itself.
func Lookup(l Locale, key string) string {
	if msg, ok := messages[l][key]; ok {
		return msg
	}
	if msg, ok := messages[English][key]; ok {
		return msg
	}
	return key
}

// Interpolate replaces {name} placeholders with vars. Placeholders without a
// value are left as written.
func Interpolate(template string, vars Vars) string {
	if len(vars) == 0 {
		return template
	}
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		v, ok := vars[m[1:len(m)-1]]
		if !ok || v == nil {
			return m
		}
		return fmt.Sprint(v)
	})
}

// Translate looks up and interpolates key in l.
func Translate(l Locale, key string, vars Vars) string {
	return Interpolate(Lookup(l, key), vars)
}

// Bundle returns every key resolved for l, English filling the gaps.
func Bundle(l Locale) map[string]string {
	out := make(map[string]string, len(messages[English]))
	for key := range messages[English] {
		out[key] = Lookup(l, key)
	}
	return out
}

// Keys returns the English message keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(messages[English]))
	for key := range messages[English] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Options tunes a Translator.
type Options struct {
	Logger  *slog.Logger
	Default Locale
	Timeout time.Duration
}

// Translator holds the active locale. It is safe for concurrent use.
type Translator struct {
	mu      sync.RWMutex
	locale  Locale
	kv      kv.Store
	logger  *slog.Logger
	timeout time.Duration
}

// NewTranslator restores the persisted locale, falling back to opts.Default
// and then DefaultLocale.
func NewTranslator(ctx context.Context, store kv.Store, opts Options) *Translator {
	t := &Translator{kv: store, logger: opts.Logger, timeout: opts.Timeout}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	t.locale = DefaultLocale
	if l, ok := Parse(string(opts.Default)); ok {
		t.locale = l
	}
	if store == nil {
		return t
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()
	raw, err := store.Get(ctx, StorageKey)
	switch {
	case err == nil:
		if l, ok := Parse(string(raw)); ok {
			t.locale = l
		}
	case !errors.Is(err, kv.ErrNotFound):
		t.logger.Warn("locale load failed", slog.Any("error", err))
	}
	return t
}

func (t *Translator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout > 0 {
		return context.WithTimeout(ctx, t.timeout)
	}
	return ctx, func() {}
}

// Locale returns the active locale.
func (t *Translator) Locale() Locale {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.locale
}

// Dir returns the text direction of the active locale.
func (t *Translator) Dir() Direction {
	return t.Locale().Dir()
}

// T translates key in the active locale.
func (t *Translator) T(key string, vars Vars) string {
	return Translate(t.Locale(), key, vars)
}

// SetLocale switches the active locale and remembers it. A failed write is
// logged; the switch still applies.
func (t *Translator) SetLocale(ctx context.Context, l Locale) error {
	parsed, ok := Parse(string(l))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedLocale, l)
	}
	t.mu.Lock()
	t.locale = parsed
	t.mu.Unlock()
	if t.kv == nil {
		return nil
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()
	if err := t.kv.Set(ctx, StorageKey, []byte(parsed)); err != nil {
		t.logger.Error("failed to save locale", slog.Any("error", err))
	}
	return nil
}
