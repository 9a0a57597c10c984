package middleware

import (
	"errors"
	"net/http"

	"github.com/AlShabiliBadia/Shorter-links/internal/apperrors"
	"github.com/AlShabiliBadia/Shorter-links/internal/i18n"
	"github.com/AlShabiliBadia/Shorter-links/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GlobalErrorMiddleware renders the first *apperrors.AppError pushed with c.Error. Any other
// error becomes a generic 500; causes are logged, never sent.
func GlobalErrorMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		ctx := c.Request.Context()
		for _, err := range c.Errors {
			var appErr *apperrors.AppError
			if !errors.As(err.Err, &appErr) {
				continue
			}

			if appErr.Code >= http.StatusInternalServerError {
				logger.Error("Request failed",
					zap.String("path", c.Request.URL.Path),
					zap.String("kind", string(appErr.Kind)),
					zap.Error(appErr.Cause))
			}
			if appErr.Code == http.StatusUnauthorized {
				c.Header("WWW-Authenticate", "Bearer")
			}

			msg := i18n.Localize(ctx, appErr.MessageID, appErr.Message)
			c.AbortWithStatusJSON(appErr.Code, response.Error(msg))
			return
		}

		logger.Error("Unhandled request error",
			zap.String("path", c.Request.URL.Path),
			zap.String("errors", c.Errors.String()))
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			response.Error(i18n.Localize(ctx, "error.system", "System error")))
	}
}
