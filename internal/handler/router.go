package handler

import (
	"time"

	"github.com/AlShabiliBadia/Shorter-links/internal/i18n"
	"github.com/AlShabiliBadia/Shorter-links/internal/middleware"
	"github.com/AlShabiliBadia/Shorter-links/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Logger   *zap.Logger
	Bundle   *i18n.Bundle // optional
	Links    *service.LinkService
	Accounts *service.AccountService
	Checks   map[string]HealthCheck
	Gatherer prometheus.Gatherer // optional; /metrics is not mounted without it

	BaseURL        string
	RequestTimeout time.Duration
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middleware.ZapGinLogger(deps.Logger))
	r.Use(middleware.CorsMiddleware())
	if deps.Bundle != nil {
		r.Use(middleware.I18nMiddleware(deps.Bundle))
	}
	r.Use(middleware.GlobalErrorMiddleware(deps.Logger))

	r.GET("/healthz", Health(deps.Checks))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	authenticate := middleware.Authenticate(deps.Accounts)
	requireAuth := middleware.RequireAuth()

	links := NewLinkHandler(deps.Links, deps.BaseURL)
	users := NewUserHandler(deps.Accounts)

	api := r.Group("/", middleware.RequestTimeout(deps.RequestTimeout), authenticate)
	{
		api.POST("/links", links.Create)
		api.GET("/links/:code", links.Redirect)
		api.GET("/links/clicks/:code", requireAuth, links.Stats)

		api.POST("/users/signup", users.Signup)
		api.POST("/users/login", users.Login)
		api.GET("/users/links", requireAuth, links.ListMine)
		api.DELETE("/users/account/delete", requireAuth, users.DeleteAccount)
	}

	return r
}
