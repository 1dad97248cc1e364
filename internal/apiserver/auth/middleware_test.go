package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-panel/internal/apiserver/authz"
	"blog-panel/internal/shared/cache"
	"blog-panel/internal/shared/model"
	"blog-panel/internal/shared/storage/memstore"
)

func TestIsPublicRoute(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   bool
	}{
		{"POST", "/api/auth/register", true},
		{"POST", "/api/auth/login", true},
		{"POST", "/api/auth/refresh-token", false},
		{"POST", "/api/auth/logout", false},
		{"GET", "/api/posts", true},
		{"GET", "/api/posts/hello-world", true},
		{"POST", "/api/posts", false},
		{"PUT", "/api/posts/abc/status", false},
		{"GET", "/api/categories", true},
		{"DELETE", "/api/categories/abc", false},
		{"GET", "/api/tags/abc/posts", true},
		{"GET", "/api/media", false},
		{"POST", "/api/media/upload", false},
		{"GET", "/health", true},
		{"GET", "/metrics", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isPublicRoute(tt.method, tt.path), "%s %s", tt.method, tt.path)
	}
}

func testUser(t *testing.T, store *memstore.Store, role model.UserRole) *model.User {
	t.Helper()
	now := time.Now()
	user := &model.User{
		ID:        generateID(),
		Username:  "u-" + generateID(),
		Email:     generateID() + "@example.com",
		Name:      "Test User",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestMiddlewareProtectedRoute(t *testing.T) {
	store := memstore.NewStore()
	sessions := cache.NewMemoryCache()
	cfg := Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
	user := testUser(t, store, model.UserRoleAuthor)

	var got *authz.Principal
	handler := Middleware(cfg, store, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// 无令牌
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/posts", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// 有效令牌
	token, err := GenerateToken(cfg, user.ID)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, model.UserRoleAuthor, got.Role)

	// 吊销后同一令牌失效
	require.NoError(t, sessions.RevokeToken(context.Background(), token, time.Hour))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewarePublicRouteInjectsPrincipal(t *testing.T) {
	store := memstore.NewStore()
	sessions := cache.NewMemoryCache()
	cfg := Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
	user := testUser(t, store, model.UserRoleEditor)

	var got *authz.Principal
	handler := Middleware(cfg, store, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// 匿名访问公开路由
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/posts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got)

	// 携带有效令牌访问公开路由，主体仍被注入
	token, err := GenerateToken(cfg, user.ID)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	// 垃圾令牌不拦截公开路由
	got = nil
	req = httptest.NewRequest("GET", "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got)
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	store := memstore.NewStore()
	sessions := cache.NewMemoryCache()
	cfg := Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
	h := NewHandler(store, sessions, cfg)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	srv := Middleware(cfg, store, sessions)(mux)

	// 注册
	body := `{"username":"alice","email":"alice@example.com","password":"secret123","name":"Alice"}`
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, model.UserRoleAuthor, reg.User.Role)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	// 重复注册同一邮箱
	req = httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// 登录
	req = httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"email":"alice@example.com","password":"secret123"}`))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var login authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	// 错误密码
	req = httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// 刷新令牌
	req = httptest.NewRequest("POST", "/api/auth/refresh-token", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// 注销后旧令牌被吊销
	req = httptest.NewRequest("POST", "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest("POST", "/api/auth/refresh-token", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
