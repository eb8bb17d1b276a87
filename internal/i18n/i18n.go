// Package i18n renders user-facing messages from embedded locale bundles.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// DefaultLang is the fallback language.
const DefaultLang = "en"

//go:embed locales/*.json
var localeFS embed.FS

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
	bundleErr  error
)

// Bundle returns the shared message bundle, loading it on first use.
func Bundle() (*i18n.Bundle, error) {
	bundleOnce.Do(func() {
		bundle, bundleErr = loadBundle()
	})
	return bundle, bundleErr
}

func loadBundle() (*i18n.Bundle, error) {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
	}
	return b, nil
}

// Languages returns the tags of every loaded locale.
func Languages() []language.Tag {
	b, err := Bundle()
	if err != nil {
		return nil
	}
	return b.LanguageTags()
}

// Translator renders messages for one language preference list.
type Translator struct {
	loc *i18n.Localizer
}

// New creates a Translator for the given languages, most preferred first.
// Accept-Language style values are accepted.
func New(langs ...string) *Translator {
	b, err := Bundle()
	if err != nil {
		slog.Error("locale bundle unavailable", "error", err)
		b = i18n.NewBundle(language.English)
	}
	return &Translator{loc: i18n.NewLocalizer(b, append(langs, DefaultLang)...)}
}

// T translates a message by ID.
func (t *Translator) T(msgID string) string {
	return t.localize(&i18n.LocalizeConfig{MessageID: msgID})
}

// Td translates a message by ID with template data.
func (t *Translator) Td(msgID string, data map[string]any) string {
	return t.localize(&i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: data,
	})
}

// Tp translates a pluralized message by ID.
func (t *Translator) Tp(msgID string, count int) string {
	return t.localize(&i18n.LocalizeConfig{
		MessageID:    msgID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func (t *Translator) localize(cfg *i18n.LocalizeConfig) string {
	s, err := t.loc.Localize(cfg)
	if err != nil {
		slog.Warn("missing translation", "id", cfg.MessageID, "error", err)
		return cfg.MessageID
	}
	return s
}

type ctxKey struct{}

// WithTranslator stores a translator in the context.
func WithTranslator(ctx context.Context, tr *Translator) context.Context {
	return context.WithValue(ctx, ctxKey{}, tr)
}

// FromContext returns the context translator, or an English one.
func FromContext(ctx context.Context) *Translator {
	if tr, ok := ctx.Value(ctxKey{}).(*Translator); ok {
		return tr
	}
	return New(DefaultLang)
}
