package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-panel/internal/config"
	"blog-panel/internal/shared/cache"
	"blog-panel/internal/shared/storage/memstore"
	"blog-panel/pkg/logging"
)

// fakeBlob 测试用对象存储
type fakeBlob struct{}

func (fakeBlob) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}
func (fakeBlob) Delete(ctx context.Context, key string) error { return nil }
func (fakeBlob) PublicURL(key string) string                  { return "http://blob.local/test/" + key }
func (fakeBlob) Bucket() string                               { return "test" }

// Prometheus 指标注册在全局 registry，Handler 整个测试进程只建一次
func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTLHours = 1
	cfg.Upload.MaxSizeBytes = 1 << 20

	h := NewHandler(memstore.NewStore(), cache.NewMemoryCache(), fakeBlob{}, cfg)
	return h.Router()
}

func TestRouterEndToEnd(t *testing.T) {
	router := testRouter(t)

	// 健康检查
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)

	// 指标端点
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// CORS 预检
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/api/posts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	// 未认证写请求被拦
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/posts", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// 注册 -> 建文章 -> 匿名读取
	body := `{"username":"alice","email":"alice@example.com","password":"secret123","name":"Alice","role":"editor"}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	req := httptest.NewRequest("POST", "/api/posts",
		strings.NewReader(`{"title":"Hello, World!","content":"<p>one two three</p>","status":"published","categories":["Tech"]}`))
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/posts/hello-world", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"word_count":3`)

	// 分类已按名建档
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/categories/tech", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogMiddleware(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "access.log")
	logger := logging.New(logging.Config{Format: "json", Output: logFile, Component: "apiserver"})

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	wrapped := requestLogMiddleware(logger, inner)

	req := httptest.NewRequest("POST", "/api/posts", nil)
	req = req.WithContext(context.WithValue(req.Context(), logging.UserIDKey, "u1"))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, `"method":"POST"`)
	assert.Contains(t, line, `"path":"/api/posts"`)
	assert.Contains(t, line, `"status":201`)
	assert.Contains(t, line, `"user_id":"u1"`)
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/posts", "/api/posts"},
		{"/api/posts/abc123", "/api/posts/{id}"},
		{"/api/posts/abc123/status", "/api/posts/{id}/status"},
		{"/api/categories/tech/posts", "/api/categories/{id}/posts"},
		{"/api/media/upload", "/api/media/upload"},
		{"/api/media/abc", "/api/media/{id}"},
		{"/health", "/health"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.in), tt.in)
	}
}
