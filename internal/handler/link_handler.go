package handler

import (
	"net/http"
	"strconv"

	"github.com/AlShabiliBadia/Shorter-links/internal/apperrors"
	"github.com/AlShabiliBadia/Shorter-links/internal/dto"
	"github.com/AlShabiliBadia/Shorter-links/internal/i18n"
	"github.com/AlShabiliBadia/Shorter-links/internal/middleware"
	"github.com/AlShabiliBadia/Shorter-links/internal/model"
	"github.com/AlShabiliBadia/Shorter-links/internal/service"
	"github.com/AlShabiliBadia/Shorter-links/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LinkHandler struct {
	links   *service.LinkService
	baseURL string
}

func NewLinkHandler(links *service.LinkService, baseURL string) *LinkHandler {
	return &LinkHandler{links: links, baseURL: baseURL}
}

// publicBaseURL prefers the configured base URL and falls back to the request host.
func (h *LinkHandler) publicBaseURL(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func (h *LinkHandler) Create(c *gin.Context) {
	var req dto.CreateLinkRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	link, err := h.links.CreateLink(c.Request.Context(), req.TargetURL, middleware.CurrentPrincipal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	msg := i18n.Localize(c.Request.Context(), "success.link_created", "Short link created")
	c.JSON(http.StatusCreated, response.OK(dto.NewLinkInfo(link, h.publicBaseURL(c)), msg))
}

// Redirect answers 307 so clients repeat the original method, and forbids caching so every
// visit reaches the counter.
func (h *LinkHandler) Redirect(c *gin.Context) {
	target, err := h.links.ResolveAndCount(c.Request.Context(), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Redirect(http.StatusTemporaryRedirect, target)
}

func (h *LinkHandler) Stats(c *gin.Context) {
	stats, err := h.links.GetStats(c.Request.Context(), c.Param("code"), middleware.CurrentPrincipal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(stats, i18n.Localize(c.Request.Context(), "success.ok", "success")))
}

// ListMine pages through the caller's links.
func (h *LinkHandler) ListMine(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		_ = c.Error(apperrors.WithCode(http.StatusBadRequest, apperrors.KindInvalidRequest,
			"error.page_invalid", "Page must be a positive integer"))
		return
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(service.DefaultPageSize)))
	if err != nil || size < 1 || size > service.MaxPageSize {
		_ = c.Error(apperrors.WithCode(http.StatusBadRequest, apperrors.KindInvalidRequest,
			"error.size_invalid", "Size must be an integer between 1 and 100"))
		return
	}

	pageResp, err := h.links.ListOwnedLinks(c.Request.Context(), middleware.CurrentPrincipal(c), page, size)
	if err != nil {
		_ = c.Error(err)
		return
	}

	baseURL := h.publicBaseURL(c)
	infos := response.MapPage(pageResp, func(l model.ShortLink) dto.LinkInfo {
		return dto.NewLinkInfo(&l, baseURL)
	})
	c.JSON(http.StatusOK, response.OK(infos, i18n.Localize(c.Request.Context(), "success.ok", "success")))
}
