package category

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

	"blog-panel/internal/apiserver/auth"
	"blog-panel/internal/apiserver/authz"
	"blog-panel/internal/shared/model"
	"blog-panel/internal/shared/storage/memstore"
)

var (
	adminP  = &authz.Principal{ID: "adm", Role: model.UserRoleAdmin}
	authorP = &authz.Principal{ID: "au", Role: model.UserRoleAuthor}
)

func doAs(t *testing.T, mux *http.ServeMux, principal *authz.Principal, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if principal != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCategoryCRUD(t *testing.T) {
	store := memstore.NewStore()
	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)

	// author 无权创建
	rec := doAs(t, mux, authorP, "POST", "/api/categories", `{"name":"Tech"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// admin 创建
	rec = doAs(t, mux, adminP, "POST", "/api/categories", `{"name":"Tech","description":"d"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Category *model.Category `json:"category"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "tech", created.Category.Slug)

	// 重名冲突
	rec = doAs(t, mux, adminP, "POST", "/api/categories", `{"name":"Tech"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// 按 slug 匿名获取
	rec = doAs(t, mux, nil, "GET", "/api/categories/tech", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// 改名重派生 slug
	rec = doAs(t, mux, adminP, "PUT", "/api/categories/"+created.Category.ID, `{"name":"Deep Tech"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated struct {
		Category *model.Category `json:"category"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "deep-tech", updated.Category.Slug)

	// 删除
	rec = doAs(t, mux, adminP, "DELETE", "/api/categories/"+created.Category.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doAs(t, mux, nil, "GET", "/api/categories/deep-tech", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryDeleteGuard(t *testing.T) {
	store := memstore.NewStore()
	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	ctx := context.Background()

	cat, err := store.FindOrCreateCategoryByName(ctx, "Tech")
	require.NoError(t, err)

	now := time.Now()
	post := &model.Post{
		ID: "aaaaaaaaaaaaaaaaaaaaaaaa", Title: "P", Slug: "p", Content: "x",
		Status: model.PostStatusPublished, AuthorID: "au",
		Categories: []string{cat.ID}, PublishedAt: &now,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.CreatePost(ctx, post))

	// 被引用时拒绝删除
	rec := doAs(t, mux, adminP, "DELETE", "/api/categories/"+cat.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 post")

	// 解除引用后可删
	require.NoError(t, store.DeletePost(ctx, post.ID))
	rec = doAs(t, mux, adminP, "DELETE", "/api/categories/"+cat.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCategoryPosts(t *testing.T) {
	store := memstore.NewStore()
	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	ctx := context.Background()

	cat, err := store.FindOrCreateCategoryByName(ctx, "Tech")
	require.NoError(t, err)

	mk := func(id, slug string, status model.PostStatus, publishedAt time.Time) {
		p := &model.Post{
			ID: id, Title: slug, Slug: slug, Content: "x",
			Status: status, AuthorID: "au", Categories: []string{cat.ID},
			CreatedAt: publishedAt, UpdatedAt: publishedAt,
		}
		if status == model.PostStatusPublished {
			p.PublishedAt = &publishedAt
		}
		require.NoError(t, store.CreatePost(ctx, p))
	}
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mk("aaaaaaaaaaaaaaaaaaaaaaa1", "old", model.PostStatusPublished, base)
	mk("aaaaaaaaaaaaaaaaaaaaaaa2", "new", model.PostStatusPublished, base.Add(time.Hour))
	mk("aaaaaaaaaaaaaaaaaaaaaaa3", "draft", model.PostStatusDraft, base)

	rec := doAs(t, mux, nil, "GET", "/api/categories/tech/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Posts []*model.Post `json:"posts"`
		Total int64         `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 2)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, "new", resp.Posts[0].Slug)
	assert.Equal(t, "old", resp.Posts[1].Slug)
}
