package middleware

import (
	"github.com/gin-gonic/gin"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/AlShabiliBadia/Shorter-links/internal/i18n"
)

// I18nMiddleware stores a localizer for the best supported Accept-Language in the request
// context.
func I18nMiddleware(bundle *i18n.Bundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := bundle.DefaultLang
		tags, _, _ := language.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
		for _, tag := range tags {
			if bundle.Supports(tag.String()) {
				lang = tag.String()
				break
			}
			base, _ := tag.Base()
			if bundle.Supports(base.String()) {
				lang = base.String()
				break
			}
		}

		localizer := goi18n.NewLocalizer(bundle.Bundle, lang)
		c.Request = c.Request.WithContext(i18n.NewContext(c.Request.Context(), localizer))
		c.Next()
	}
}
