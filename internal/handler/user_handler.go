package handler

import (
	"net/http"

	"github.com/AlShabiliBadia/Shorter-links/internal/apperrors"
	"github.com/AlShabiliBadia/Shorter-links/internal/dto"
	"github.com/AlShabiliBadia/Shorter-links/internal/i18n"
	"github.com/AlShabiliBadia/Shorter-links/internal/middleware"
	"github.com/AlShabiliBadia/Shorter-links/internal/service"
	"github.com/AlShabiliBadia/Shorter-links/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	accounts *service.AccountService
}

func NewUserHandler(accounts *service.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		zap.L().Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return false
	}
	return true
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.accounts.Signup(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response.OK(user, i18n.Localize(c.Request.Context(), "success.account_created", "Account created")))
}

func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(token, i18n.Localize(c.Request.Context(), "success.login", "Login successful")))
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if err := h.accounts.DeleteAccount(c.Request.Context(), user); err != nil {
		_ = c.Error(err)
		return
	}

	msg := i18n.Localize(c.Request.Context(), "success.account_deleted", "Account deleted successfully")
	c.JSON(http.StatusOK, response.OK(gin.H{"detail": msg}, msg))
}
