package i18n

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

type localizerKey struct{}

// Bundle is the loaded message catalog plus the languages it has files for.
type Bundle struct {
	*i18n.Bundle
	Languages   []string
	DefaultLang string
}

// Load parses one TOML file per language; the file name is the language tag (en.toml -> "en").
func Load(filePaths []string, defaultLang string) (*Bundle, error) {
	bundle := i18n.NewBundle(language.MustParse(defaultLang))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	b := &Bundle{Bundle: bundle, DefaultLang: defaultLang}
	for _, filePath := range filePaths {
		file, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}

		if _, err := bundle.ParseMessageFileBytes(file, filePath); err != nil {
			return nil, err
		}
		b.Languages = append(b.Languages, extractLanguageFromPath(filePath))
	}
	return b, nil
}

// Supports reports whether lang has a message file.
func (b *Bundle) Supports(lang string) bool {
	for _, l := range b.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// expects <lang>.toml
func extractLanguageFromPath(filePath string) string {
	baseName := filepath.Base(filePath)
	return strings.TrimSuffix(baseName, filepath.Ext(baseName))
}

func NewContext(ctx context.Context, localizer *i18n.Localizer) context.Context {
	return context.WithValue(ctx, localizerKey{}, localizer)
}

func FromContext(ctx context.Context) (*i18n.Localizer, bool) {
	localizer, ok := ctx.Value(localizerKey{}).(*i18n.Localizer)
	return localizer, ok && localizer != nil
}

// Localize translates messageID for the request language, returning fallback when there is
// no localizer or no translation.
func Localize(ctx context.Context, messageID, fallback string) string {
	if messageID == "" {
		return fallback
	}
	localizer, ok := FromContext(ctx)
	if !ok {
		return fallback
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil || msg == "" {
		return fallback
	}
	return msg
}
