package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AlShabiliBadia/Shorter-links/internal/auth"
	"github.com/AlShabiliBadia/Shorter-links/internal/config"
	"github.com/AlShabiliBadia/Shorter-links/internal/dto"
	"github.com/AlShabiliBadia/Shorter-links/internal/i18n"
	"github.com/AlShabiliBadia/Shorter-links/internal/repository"
	"github.com/AlShabiliBadia/Shorter-links/internal/service"
	"github.com/AlShabiliBadia/Shorter-links/response"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"
)

const testBaseURL = "http://sho.rt"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.OpenDB(context.Background(), config.DB{Driver: "sqlite", DSN: ":memory:"}, zap.NewNop(), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() { _ = repository.CloseDB(db) })

	reg := prometheus.NewRegistry()
	metrics, err := repository.NewMetrics(reg)
	require.NoError(t, err)
	store := repository.NewStore(db, metrics)

	tokens, err := auth.NewTokenService(config.Auth{Secret: "test-secret", Algorithm: "HS256", TokenTTL: time.Minute})
	require.NoError(t, err)

	bundle, err := i18n.Load([]string{"../../i18n/en.toml", "../../i18n/zh.toml"}, "en")
	require.NoError(t, err)

	return NewRouter(RouterDeps{
		Logger:         zap.NewNop(),
		Bundle:         bundle,
		Links:          service.NewLinkService(store, zap.NewNop()),
		Accounts:       service.NewAccountService(store, auth.NewHasher(bcrypt.MinCost), tokens, zap.NewNop()),
		Checks:         map[string]HealthCheck{"db": store.Ping},
		Gatherer:       reg,
		BaseURL:        testBaseURL,
		RequestTimeout: 5 * time.Second,
	})
}

type client struct {
	t     *testing.T
	r     http.Handler
	token string
}

func (c *client) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) response.Response[T] {
	t.Helper()
	var resp response.Response[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func signupAndLogin(t *testing.T, r http.Handler, email string) *client {
	t.Helper()
	anon := &client{t: t, r: r}

	w := anon.do(http.MethodPost, "/users/signup", map[string]string{
		"username":              "alice",
		"email":                 email,
		"password":              "correct horse",
		"password_confirmation": "correct horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = anon.do(http.MethodPost, "/users/login", map[string]string{"email": email, "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[dto.Token](t, w).Data
	require.Equal(t, "bearer", token.TokenType)

	return &client{t: t, r: r, token: token.AccessToken}
}

func codeOf(t *testing.T, info dto.LinkInfo) string {
	t.Helper()
	code := strings.TrimPrefix(info.ShortURL, testBaseURL+"/links/")
	require.Len(t, code, 8)
	return code
}

func TestAnonymousLinkRedirect(t *testing.T) {
	r := newTestRouter(t)
	anon := &client{t: t, r: r}

	w := anon.do(http.MethodPost, "/links", map[string]string{"target_url": "https://example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	info := decode[dto.LinkInfo](t, w).Data
	require.Equal(t, "https://example.com", info.TargetURL)
	require.Zero(t, info.Clicks)
	code := codeOf(t, info)

	w = anon.do(http.MethodGet, "/links/"+code, nil)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	require.Equal(t, "https://example.com", w.Header().Get("Location"))

	// nobody can read the stats of an anonymous link
	w = anon.do(http.MethodGet, "/links/clicks/"+code, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	alice := signupAndLogin(t, r, "alice@example.com")
	w = alice.do(http.MethodGet, "/links/clicks/"+code, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestOwnedLinkStats(t *testing.T) {
	r := newTestRouter(t)
	alice := signupAndLogin(t, r, "alice@example.com")
	bob := signupAndLogin(t, r, "bob@example.com")
	anon := &client{t: t, r: r}

	w := alice.do(http.MethodPost, "/links", map[string]string{"target_url": "https://example.com/owned"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	code := codeOf(t, decode[dto.LinkInfo](t, w).Data)

	for i := 0; i < 3; i++ {
		w = anon.do(http.MethodGet, "/links/"+code, nil)
		require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	}

	w = alice.do(http.MethodGet, "/links/clicks/"+code, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, dto.LinkStats{TargetURL: "https://example.com/owned", ShortCode: code, Clicks: 3},
		decode[dto.LinkStats](t, w).Data)

	w = bob.do(http.MethodGet, "/links/clicks/"+code, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = alice.do(http.MethodGet, "/users/links?page=1&size=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[response.PageResponse[dto.LinkInfo]](t, w).Data
	require.Equal(t, 1, page.Total)
	require.Equal(t, int64(3), page.List[0].Clicks)

	w = alice.do(http.MethodGet, "/users/links?size=1000", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// an invalid token on an optional endpoint is treated as anonymous
	forged := &client{t: t, r: r, token: "forged"}
	w = forged.do(http.MethodPost, "/links", map[string]string{"target_url": "https://example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = forged.do(http.MethodGet, "/users/links", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorResponses(t *testing.T) {
	r := newTestRouter(t)
	anon := &client{t: t, r: r}
	signupAndLogin(t, r, "alice@example.com")

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		status  int
		message string
	}{
		{"malformed json", http.MethodPost, "/links", "{", http.StatusBadRequest, "Parameter verification failed"},
		{"invalid url", http.MethodPost, "/links", map[string]string{"target_url": "example.com"}, http.StatusUnprocessableEntity, "Target URL must be an absolute http or https URL"},
		{"unknown code", http.MethodGet, "/links/zzzzzzzz", nil, http.StatusNotFound, "Link not found!"},
		{"password mismatch", http.MethodPost, "/users/signup", map[string]string{
			"username": "bob", "email": "bob@example.com", "password": "password1", "password_confirmation": "password2",
		}, http.StatusUnprocessableEntity, "Password and Password confirmation are not matching."},
		{"duplicate email", http.MethodPost, "/users/signup", map[string]string{
			"username": "mallory", "email": "alice@example.com", "password": "password1", "password_confirmation": "password1",
		}, http.StatusBadRequest, "An account with this email already exists."},
		{"wrong password", http.MethodPost, "/users/login", map[string]string{"email": "alice@example.com", "password": "wrong horse"}, http.StatusUnauthorized, "Incorrect email or password"},
		{"unknown email", http.MethodPost, "/users/login", map[string]string{"email": "nobody@example.com", "password": "correct horse"}, http.StatusUnauthorized, "Incorrect email or password"},
		{"delete without token", http.MethodDelete, "/users/account/delete", nil, http.StatusUnauthorized, "Not authenticated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := anon.do(tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())

			resp := decode[any](t, w)
			require.False(t, resp.Success)
			require.Equal(t, tt.message, resp.Message)
		})
	}

	t.Run("localized", func(t *testing.T) {
		w := anon.do(http.MethodGet, "/links/zzzzzzzz", nil, "Accept-Language", "zh-CN,zh;q=0.9")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "短链不存在", decode[any](t, w).Message)
	})
}

func TestDeleteAccountOrphansLinks(t *testing.T) {
	r := newTestRouter(t)
	alice := signupAndLogin(t, r, "alice@example.com")

	w := alice.do(http.MethodPost, "/links", map[string]string{"target_url": "https://example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	code := codeOf(t, decode[dto.LinkInfo](t, w).Data)

	w = alice.do(http.MethodDelete, "/users/account/delete", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = alice.do(http.MethodDelete, "/users/account/delete", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = alice.do(http.MethodGet, "/links/"+code, nil)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)

	again := signupAndLogin(t, r, "alice@example.com")
	w = again.do(http.MethodGet, "/links/clicks/"+code, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)
	anon := &client{t: t, r: r}

	w := anon.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok","checks":{"db":"ok"}}`, w.Body.String())

	anon.do(http.MethodPost, "/links", map[string]string{"target_url": "https://example.com"})
	w = anon.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `db_query_total{query_name="CreateLink",status="success"} 1`)
}

func TestHealthDegraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthz", Health(map[string]HealthCheck{
		"db":    func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}))

	w := (&client{t: t, r: r}).do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.JSONEq(t, `{"status":"degraded","checks":{"db":"ok","redis":"unavailable"}}`, w.Body.String())
}
