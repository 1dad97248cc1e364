package tag

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

var editorP = &authz.Principal{ID: "ed", Role: model.UserRoleEditor}

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

func TestTagCRUD(t *testing.T) {
	store := memstore.NewStore()
	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)

	// 匿名不能创建
	rec := doAs(t, mux, nil, "POST", "/api/tags", `{"name":"Go"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// editor 创建
	rec = doAs(t, mux, editorP, "POST", "/api/tags", `{"name":"Go"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Tag *model.Tag `json:"tag"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "go", created.Tag.Slug)

	// 重名冲突
	rec = doAs(t, mux, editorP, "POST", "/api/tags", `{"name":"Go"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// 列表公开
	rec = doAs(t, mux, nil, "GET", "/api/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Tags []*model.Tag `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed.Tags, 1)

	// 改名并删除
	rec = doAs(t, mux, editorP, "PUT", "/api/tags/"+created.Tag.ID, `{"name":"Golang"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doAs(t, mux, editorP, "DELETE", "/api/tags/"+created.Tag.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTagDeleteGuardAndPosts(t *testing.T) {
	store := memstore.NewStore()
	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	ctx := context.Background()

	tag, err := store.FindOrCreateTagByName(ctx, "Go")
	require.NoError(t, err)

	now := time.Now()
	post := &model.Post{
		ID: "bbbbbbbbbbbbbbbbbbbbbbbb", Title: "P", Slug: "p", Content: "x",
		Status: model.PostStatusPublished, AuthorID: "au",
		Tags: []string{tag.ID}, PublishedAt: &now,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.CreatePost(ctx, post))

	// 被引用时拒绝删除
	rec := doAs(t, mux, editorP, "DELETE", "/api/tags/"+tag.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// 标签下文章列表
	rec = doAs(t, mux, nil, "GET", "/api/tags/go/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Posts []*model.Post `json:"posts"`
		Total int64         `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)

	// 解除引用后可删
	require.NoError(t, store.DeletePost(ctx, post.ID))
	rec = doAs(t, mux, editorP, "DELETE", "/api/tags/"+tag.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
