// Package server 路由配置与核心基础设施
//
// 本包把各领域独立包（auth/post/category/tag/media）的路由挂到同一个
// ServeMux 上，并套上指标、认证、CORS 三层中间件。
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"blog-panel/internal/apiserver/auth"
	"blog-panel/internal/apiserver/category"
	"blog-panel/internal/apiserver/media"
	"blog-panel/internal/apiserver/post"
	"blog-panel/internal/apiserver/tag"
	"blog-panel/internal/config"
	"blog-panel/internal/shared/cache"
	"blog-panel/internal/shared/storage"
	"blog-panel/pkg/logging"
)

// Handler API 处理器
//
// 依赖说明：
//   - store: MongoDB 存储层（业务数据）
//   - sessions: Redis 会话缓存（令牌吊销名单）
//   - blob: MinIO 对象存储（媒体文件）
type Handler struct {
	store    storage.PersistentStore
	sessions cache.SessionCache
	blob     media.BlobStore
	cfg      *config.Config
	metrics  *Metrics
	logger   *logging.Logger
}

// NewHandler 创建 Handler 实例
func NewHandler(store storage.PersistentStore, sessions cache.SessionCache, blob media.BlobStore, cfg *config.Config) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		blob:     blob,
		cfg:      cfg,
		metrics:  NewMetrics("blog_panel"),
		logger:   logging.Default("apiserver"),
	}
}

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查:
//   - GET  /health                       - 服务健康检查
//   - GET  /metrics                      - Prometheus 指标
//
// 认证 (Auth):
//   - POST /api/auth/register            - 注册
//   - POST /api/auth/login               - 登录
//   - POST /api/auth/refresh-token       - 刷新令牌（需认证）
//   - POST /api/auth/logout              - 注销（吊销当前令牌）
//
// 文章 (Post):
//   - GET    /api/posts                  - 列表（过滤/分页/排序）
//   - POST   /api/posts                  - 创建
//   - GET    /api/posts/{idOrSlug}       - 按 ID 或 slug 获取
//   - PUT    /api/posts/{id}             - 更新
//   - PUT    /api/posts/{id}/status      - 变更状态
//   - DELETE /api/posts/{id}             - 删除
//
// 分类 (Category) / 标签 (Tag):
//   - GET    /api/{categories,tags}              - 列表
//   - POST   /api/{categories,tags}              - 创建（admin/editor）
//   - GET    /api/{categories,tags}/{idOrSlug}   - 获取
//   - PUT    /api/{categories,tags}/{id}         - 更新（admin/editor）
//   - DELETE /api/{categories,tags}/{id}         - 删除（admin/editor，有引用时拒绝）
//   - GET    /api/{categories,tags}/{idOrSlug}/posts - 已发布文章
//
// 媒体 (Media):
//   - POST   /api/media/upload           - 上传（multipart）
//   - GET    /api/media                  - 列表（非 admin 仅自己的）
//   - GET    /api/media/{id}             - 获取
//   - DELETE /api/media/{id}             - 删除
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", MetricsHandler())

	authCfg := auth.Config{
		JWTSecret: h.cfg.Auth.JWTSecret,
		TokenTTL:  h.cfg.Auth.TokenTTL(),
	}
	auth.NewHandler(h.store, h.sessions, authCfg).RegisterRoutes(mux)
	post.NewHandler(h.store).RegisterRoutes(mux)
	category.NewHandler(h.store).RegisterRoutes(mux)
	tag.NewHandler(h.store).RegisterRoutes(mux)
	media.NewHandler(h.store, h.blob, h.cfg.Upload.MaxSizeBytes).RegisterRoutes(mux)

	// 中间件从内到外：metrics -> 请求日志 -> auth -> cors
	// 请求日志在认证内侧，上下文里已有 user_id
	handler := h.metrics.MetricsMiddleware(mux)
	handler = requestLogMiddleware(h.logger, handler)
	handler = auth.Middleware(authCfg, h.store, h.sessions)(handler)
	return corsMiddleware(handler)
}

// requestLogMiddleware 每个请求输出一条结构化访问日志
func requestLogMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.WithContext(r.Context()).
			HTTPRequestLog(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start), r.RemoteAddr)
	})
}

// Health 健康检查
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
