// Package tag 标签领域 - HTTP 处理
package tag

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"blog-panel/internal/apiserver/auth"
	"blog-panel/internal/apiserver/authz"
	"blog-panel/internal/shared/model"
	"blog-panel/internal/shared/storage"
)

// Store 标签处理器所需的存储能力
type Store interface {
	storage.TagStore
	storage.PostStore
}

// Handler 标签领域 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建标签处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册标签相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tags", h.List)
	mux.HandleFunc("POST /api/tags", h.Create)
	mux.HandleFunc("GET /api/tags/{idOrSlug}", h.Get)
	mux.HandleFunc("PUT /api/tags/{id}", h.Update)
	mux.HandleFunc("DELETE /api/tags/{id}", h.Delete)
	mux.HandleFunc("GET /api/tags/{idOrSlug}/posts", h.ListPosts)
}

// List 全部标签（按名称排序）
// GET /api/tags
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.ListTags(r.Context())
	if err != nil {
		log.Printf("[tag.list] error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list tags")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]*model.Tag{"tags": tags})
}

// Get 按 ID 或 slug 获取标签
// GET /api/tags/{idOrSlug}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tag, ok := h.load(w, r, r.PathValue("idOrSlug"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]*model.Tag{"tag": tag})
}

// Create 创建标签
// POST /api/tags
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r.Context())
	if !authz.CanManageTaxonomy(principal) {
		writeError(w, http.StatusForbidden, "not allowed to manage tags")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	now := time.Now()
	tag := &model.Tag{
		ID:        generateID(),
		Name:      req.Name,
		Slug:      model.Slugify(req.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateTag(r.Context(), tag); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "tag with this name already exists")
			return
		}
		log.Printf("[tag.create] error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create tag")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Tag created successfully",
		"tag":     tag,
	})
}

// Update 更新标签
// PUT /api/tags/{id}
//
// 改名会重新派生 slug。
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r.Context())
	if !authz.CanManageTaxonomy(principal) {
		writeError(w, http.StatusForbidden, "not allowed to manage tags")
		return
	}

	tag, ok := h.load(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	var req struct {
		Name *string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil {
		if *req.Name == "" {
			writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		tag.Name = *req.Name
		tag.Slug = model.Slugify(*req.Name)
	}
	tag.UpdatedAt = time.Now()

	if err := h.store.UpdateTag(r.Context(), tag); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "tag with this name already exists")
			return
		}
		log.Printf("[tag.update] error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update tag")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Tag updated successfully",
		"tag":     tag,
	})
}

// Delete 删除标签
// DELETE /api/tags/{id}
//
// 仍被文章引用的标签拒绝删除。
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r.Context())
	if !authz.CanManageTaxonomy(principal) {
		writeError(w, http.StatusForbidden, "not allowed to manage tags")
		return
	}

	tag, ok := h.load(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	inUse, err := h.store.CountPostsWithTag(r.Context(), tag.ID)
	if err != nil {
		log.Printf("[tag.delete] CountPostsWithTag error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if inUse > 0 {
		writeError(w, http.StatusConflict,
			fmt.Sprintf("cannot delete tag: it is used by %d post(s)", inUse))
		return
	}

	if err := h.store.DeleteTag(r.Context(), tag.ID); err != nil {
		log.Printf("[tag.delete] error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete tag")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Tag deleted successfully"})
}

// ListPosts 标签下的已发布文章（按发布时间倒序）
// GET /api/tags/{idOrSlug}/posts
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	tag, ok := h.load(w, r, r.PathValue("idOrSlug"))
	if !ok {
		return
	}

	page, limit := parsePagination(r.URL.Query())
	filter := storage.PostFilter{
		Status:    model.PostStatusPublished,
		TagID:     tag.ID,
		SortBy:    "published_at",
		SortOrder: "desc",
		Skip:      (page - 1) * limit,
		Limit:     limit,
	}

	posts, err := h.store.ListPosts(r.Context(), filter)
	if err != nil {
		log.Printf("[tag.posts] ListPosts error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	total, err := h.store.CountPosts(r.Context(), filter)
	if err != nil {
		log.Printf("[tag.posts] CountPosts error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tag":         tag,
		"posts":       posts,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

// load 按 ID 或 slug 加载标签；出错时已写响应并返回 false
func (h *Handler) load(w http.ResponseWriter, r *http.Request, idOrSlug string) (*model.Tag, bool) {
	var (
		tag *model.Tag
		err error
	)
	if isHexID(idOrSlug) {
		tag, err = h.store.GetTag(r.Context(), idOrSlug)
	} else {
		tag, err = h.store.GetTagBySlug(r.Context(), idOrSlug)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tag not found")
			return nil, false
		}
		log.Printf("[tag] load error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return tag, true
}
