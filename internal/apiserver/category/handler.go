// Package category 分类领域 - HTTP 处理
package category

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

// Store 分类处理器所需的存储能力
type Store interface {
	storage.CategoryStore
	storage.PostStore
}

// Handler 分类领域 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建分类处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册分类相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/categories", h.List)
	mux.HandleFunc("POST /api/categories", h.Create)
	mux.HandleFunc("GET /api/categories/{idOrSlug}", h.Get)
	mux.HandleFunc("PUT /api/categories/{id}", h.Update)
	mux.HandleFunc("DELETE /api/categories/{id}", h.Delete)
	mux.HandleFunc("GET /api/categories/{idOrSlug}/posts", h.ListPosts)
}

type upsertRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List 全部分类（按名称排序）
// GET /api/categories
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.store.ListCategories(r.Context())
	if err != nil {
		log.Printf("[category.list] error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]*model.Category{"categories": cats})
}

// Get 按 ID 或 slug 获取分类
// GET /api/categories/{idOrSlug}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.load(w, r, r.PathValue("idOrSlug"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]*model.Category{"category": cat})
}

// Create 创建分类
// POST /api/categories
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r.Context())
	if !authz.CanManageTaxonomy(principal) {
		writeError(w, http.StatusForbidden, "not allowed to manage categories")
		return
	}

	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	now := time.Now()
	cat := &model.Category{
		ID:          generateID(),
		Name:        req.Name,
		Slug:        model.Slugify(req.Name),
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.store.CreateCategory(r.Context(), cat); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "category with this name already exists")
			return
		}
		log.Printf("[category.create] error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Category created successfully",
		"category": cat,
	})
}

// Update 更新分类
// PUT /api/categories/{id}
//
// 改名会重新派生 slug。
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r.Context())
	if !authz.CanManageTaxonomy(principal) {
		writeError(w, http.StatusForbidden, "not allowed to manage categories")
		return
	}

	cat, ok := h.load(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
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
		cat.Name = *req.Name
		cat.Slug = model.Slugify(*req.Name)
	}
	if req.Description != nil {
		cat.Description = *req.Description
	}
	cat.UpdatedAt = time.Now()

	if err := h.store.UpdateCategory(r.Context(), cat); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "category with this name already exists")
			return
		}
		log.Printf("[category.update] error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Category updated successfully",
		"category": cat,
	})
}

// Delete 删除分类
// DELETE /api/categories/{id}
//
// 仍被文章引用的分类拒绝删除。
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r.Context())
	if !authz.CanManageTaxonomy(principal) {
		writeError(w, http.StatusForbidden, "not allowed to manage categories")
		return
	}

	cat, ok := h.load(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	inUse, err := h.store.CountPostsWithCategory(r.Context(), cat.ID)
	if err != nil {
		log.Printf("[category.delete] CountPostsWithCategory error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if inUse > 0 {
		writeError(w, http.StatusConflict,
			fmt.Sprintf("cannot delete category: it is used by %d post(s)", inUse))
		return
	}

	if err := h.store.DeleteCategory(r.Context(), cat.ID); err != nil {
		log.Printf("[category.delete] error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

// ListPosts 分类下的已发布文章（按发布时间倒序）
// GET /api/categories/{idOrSlug}/posts
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.load(w, r, r.PathValue("idOrSlug"))
	if !ok {
		return
	}

	page, limit := parsePagination(r.URL.Query())
	filter := storage.PostFilter{
		Status:     model.PostStatusPublished,
		CategoryID: cat.ID,
		SortBy:     "published_at",
		SortOrder:  "desc",
		Skip:       (page - 1) * limit,
		Limit:      limit,
	}

	posts, err := h.store.ListPosts(r.Context(), filter)
	if err != nil {
		log.Printf("[category.posts] ListPosts error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	total, err := h.store.CountPosts(r.Context(), filter)
	if err != nil {
		log.Printf("[category.posts] CountPosts error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"category":    cat,
		"posts":       posts,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

// load 按 ID 或 slug 加载分类；出错时已写响应并返回 false
func (h *Handler) load(w http.ResponseWriter, r *http.Request, idOrSlug string) (*model.Category, bool) {
	var (
		cat *model.Category
		err error
	)
	if isHexID(idOrSlug) {
		cat, err = h.store.GetCategory(r.Context(), idOrSlug)
	} else {
		cat, err = h.store.GetCategoryBySlug(r.Context(), idOrSlug)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return nil, false
		}
		log.Printf("[category] load error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return cat, true
}
