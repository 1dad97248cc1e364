package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"blog-panel/internal/apiserver/authz"
	"blog-panel/internal/shared/cache"
	"blog-panel/internal/shared/storage"
	"blog-panel/pkg/logging"
)

// 免认证路由（前缀匹配，不限方法）
var publicPrefixes = []string{
	"/api/auth/register",
	"/api/auth/login",
	"/health",
	"/metrics",
}

// 免认证的只读路由前缀（仅 GET）
var publicReadPrefixes = []string{
	"/api/posts",
	"/api/categories",
	"/api/tags",
}

func isPublicRoute(method, path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if method == http.MethodGet {
		for _, prefix := range publicReadPrefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
	}
	return false
}

// Middleware 创建 JWT 认证中间件
//
// 受保护路由：无令牌/无效令牌/已吊销令牌一律 401。
// 公开路由：无令牌放行；携带了有效令牌时仍注入主体，
// 让只读接口能按请求者身份放宽草稿可见性。
func Middleware(cfg Config, store UserStore, sessions cache.SessionCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			public := isPublicRoute(r.Method, r.URL.Path)

			token := BearerToken(r)
			if token == "" {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			claims, err := ParseToken(cfg, token)
			if err != nil {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				log.Printf("[auth] token parse error: %v", err)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			// 吊销名单查询失败时按未吊销处理
			revoked, err := sessions.IsTokenRevoked(r.Context(), token)
			if err != nil {
				log.Printf("[auth] IsTokenRevoked error: %v", err)
			}
			if revoked {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				writeError(w, http.StatusUnauthorized, "token has been revoked")
				return
			}

			// 每次从存储加载用户，角色变更和删号立即生效
			user, err := store.GetUserByID(r.Context(), claims.Subject)
			if err != nil {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				if errors.Is(err, storage.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "user not found")
					return
				}
				log.Printf("[auth] GetUserByID error: %v", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			principal := &authz.Principal{ID: user.ID, Role: user.Role}
			ctx := WithPrincipal(r.Context(), principal)
			ctx = context.WithValue(ctx, logging.UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
