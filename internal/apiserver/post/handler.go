// Package post 文章领域 - HTTP 处理
package post

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"blog-panel/internal/apiserver/auth"
	"blog-panel/internal/apiserver/authz"
	"blog-panel/internal/shared/model"
	"blog-panel/internal/shared/storage"
)

// Store 文章处理器所需的存储能力
//
// 文章写路径会顺带解析分类/标签名，所以不止依赖 PostStore。
type Store interface {
	storage.PostStore
	storage.CategoryStore
	storage.TagStore
}

// Handler 文章领域 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建文章处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册文章相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/posts", h.List)
	mux.HandleFunc("POST /api/posts", h.Create)
	mux.HandleFunc("GET /api/posts/{idOrSlug}", h.Get)
	mux.HandleFunc("PUT /api/posts/{id}", h.Update)
	mux.HandleFunc("PUT /api/posts/{id}/status", h.UpdateStatus)
	mux.HandleFunc("DELETE /api/posts/{id}", h.Delete)
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type createRequest struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Excerpt         string   `json:"excerpt"`
	MetaDescription string   `json:"meta_description"`
	Status          string   `json:"status"`
	FeaturedImage   string   `json:"featured_image"`
	Categories      []string `json:"categories"`
	Tags            []string `json:"tags"`
}

// updateRequest 所有字段可选，nil 表示不修改
type updateRequest struct {
	Title           *string   `json:"title"`
	Content         *string   `json:"content"`
	Excerpt         *string   `json:"excerpt"`
	MetaDescription *string   `json:"meta_description"`
	Status          *string   `json:"status"`
	FeaturedImage   *string   `json:"featured_image"`
	Categories      *[]string `json:"categories"`
	Tags            *[]string `json:"tags"`
}

type listResponse struct {
	Posts       []*model.Post `json:"posts"`
	TotalPages  int64         `json:"totalPages"`
	CurrentPage int64         `json:"currentPage"`
	Total       int64         `json:"total"`
}

type postResponse struct {
	Message string      `json:"message"`
	Post    *model.Post `json:"post"`
}

// ============================================================================
// HTTP 处理函数
// ============================================================================

// List 文章列表
// GET /api/posts
//
// 草稿可见性：无特权的请求者只能列出已发布文章，
// 除非按作者过滤且作者就是自己。
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := parsePagination(q)

	filter := storage.PostFilter{
		Status:     model.PostStatus(q.Get("status")),
		AuthorID:   q.Get("author"),
		CategoryID: q.Get("category"),
		TagID:      q.Get("tag"),
		Search:     q.Get("search"),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
		Skip:       (page - 1) * limit,
		Limit:      limit,
	}
	if filter.Status != "" && !model.ValidPostStatus(filter.Status) {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	principal := auth.GetPrincipal(r.Context())
	if !canListNonPublished(principal, filter.AuthorID) {
		filter.Status = model.PostStatusPublished
	}

	posts, err := h.store.ListPosts(r.Context(), filter)
	if err != nil {
		log.Printf("[post.list] ListPosts error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	total, err := h.store.CountPosts(r.Context(), filter)
	if err != nil {
		log.Printf("[post.list] CountPosts error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Posts:       posts,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
		Total:       total,
	})
}

// Get 按 ID 或 slug 获取单篇文章
// GET /api/posts/{idOrSlug}
//
// 命中可见文章时浏览计数原子自增。
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	idOrSlug := r.PathValue("idOrSlug")

	var (
		post *model.Post
		err  error
	)
	if isHexID(idOrSlug) {
		post, err = h.store.GetPost(r.Context(), idOrSlug)
	} else {
		post, err = h.store.GetPostBySlug(r.Context(), idOrSlug)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("[post.get] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	principal := auth.GetPrincipal(r.Context())
	if !authz.CanViewPost(principal, post) {
		writeError(w, http.StatusForbidden, "not allowed to view this post")
		return
	}

	if err := h.store.IncrementPostViews(r.Context(), post.ID); err != nil {
		log.Printf("[post.get] IncrementPostViews error: %v", err)
	} else {
		post.Views++
	}

	writeJSON(w, http.StatusOK, map[string]*model.Post{"post": post})
}

// Create 创建文章
// POST /api/posts
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}

	status := model.PostStatusDraft
	if req.Status != "" {
		status = model.PostStatus(req.Status)
		if !model.ValidPostStatus(status) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
	}

	categoryIDs, err := resolveCategoryIDs(r.Context(), h.store, req.Categories)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "conflicting category name, retry the request")
			return
		}
		log.Printf("[post.create] resolve categories error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to resolve categories")
		return
	}
	tagIDs, err := resolveTagIDs(r.Context(), h.store, req.Tags)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "conflicting tag name, retry the request")
			return
		}
		log.Printf("[post.create] resolve tags error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to resolve tags")
		return
	}

	now := time.Now()
	post := &model.Post{
		ID:              generateID(),
		Title:           req.Title,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		MetaDescription: req.MetaDescription,
		Status:          status,
		FeaturedImage:   req.FeaturedImage,
		AuthorID:        principal.ID,
		Categories:      categoryIDs,
		Tags:            tagIDs,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	post.ApplyDerivations(nil, now)

	if err := h.store.CreatePost(r.Context(), post); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "a post with this title already exists")
			return
		}
		log.Printf("[post.create] CreatePost error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	log.Printf("[post] Created: %s (%s) by %s", post.Title, post.ID, principal.ID)
	writeJSON(w, http.StatusCreated, postResponse{Message: "Post created successfully", Post: post})
}

// Update 更新文章
// PUT /api/posts/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadForWrite(w, r)
	if !ok {
		return
	}
	principal := auth.GetPrincipal(r.Context())
	if !authz.CanUpdatePost(principal, post) {
		writeError(w, http.StatusForbidden, "not allowed to update this post")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title != nil && *req.Title == "" {
		writeError(w, http.StatusBadRequest, "title cannot be empty")
		return
	}
	if req.Content != nil && *req.Content == "" {
		writeError(w, http.StatusBadRequest, "content cannot be empty")
		return
	}
	if req.Status != nil && !model.ValidPostStatus(model.PostStatus(*req.Status)) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	prev := *post
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.MetaDescription != nil {
		post.MetaDescription = *req.MetaDescription
	}
	if req.Status != nil {
		post.Status = model.PostStatus(*req.Status)
	}
	if req.FeaturedImage != nil {
		post.FeaturedImage = *req.FeaturedImage
	}
	if req.Categories != nil {
		ids, err := resolveCategoryIDs(r.Context(), h.store, *req.Categories)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				writeError(w, http.StatusConflict, "conflicting category name, retry the request")
				return
			}
			log.Printf("[post.update] resolve categories error: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to resolve categories")
			return
		}
		post.Categories = ids
	}
	if req.Tags != nil {
		ids, err := resolveTagIDs(r.Context(), h.store, *req.Tags)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				writeError(w, http.StatusConflict, "conflicting tag name, retry the request")
				return
			}
			log.Printf("[post.update] resolve tags error: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to resolve tags")
			return
		}
		post.Tags = ids
	}

	now := time.Now()
	post.ApplyDerivations(&prev, now)
	post.UpdatedAt = now

	if err := h.store.UpdatePost(r.Context(), post); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "a post with this title already exists")
			return
		}
		log.Printf("[post.update] UpdatePost error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update post")
		return
	}

	writeJSON(w, http.StatusOK, postResponse{Message: "Post updated successfully", Post: post})
}

// UpdateStatus 变更文章状态
// PUT /api/posts/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadForWrite(w, r)
	if !ok {
		return
	}
	principal := auth.GetPrincipal(r.Context())
	if !authz.CanUpdatePost(principal, post) {
		writeError(w, http.StatusForbidden, "not allowed to update this post")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := model.PostStatus(req.Status)
	if !model.ValidPostStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	prev := *post
	post.Status = status
	now := time.Now()
	post.ApplyDerivations(&prev, now)
	post.UpdatedAt = now

	if err := h.store.UpdatePost(r.Context(), post); err != nil {
		log.Printf("[post.status] UpdatePost error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update post status")
		return
	}

	writeJSON(w, http.StatusOK, postResponse{Message: "Post status updated successfully", Post: post})
}

// Delete 删除文章
// DELETE /api/posts/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadForWrite(w, r)
	if !ok {
		return
	}
	principal := auth.GetPrincipal(r.Context())
	if !authz.CanDeletePost(principal, post) {
		writeError(w, http.StatusForbidden, "not allowed to delete this post")
		return
	}

	if err := h.store.DeletePost(r.Context(), post.ID); err != nil {
		log.Printf("[post.delete] DeletePost error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}

	log.Printf("[post] Deleted: %s by %s", post.ID, principal.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

// ============================================================================
// 内部辅助
// ============================================================================

// loadForWrite 按路径 ID 加载文章；出错时已写响应并返回 false
func (h *Handler) loadForWrite(w http.ResponseWriter, r *http.Request) (*model.Post, bool) {
	id := r.PathValue("id")
	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return nil, false
		}
		log.Printf("[post] GetPost error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return post, true
}

// canListNonPublished 列表能否包含未发布文章
func canListNonPublished(p *authz.Principal, authorFilter string) bool {
	if p == nil {
		return false
	}
	if p.Role == model.UserRoleAdmin || p.Role == model.UserRoleEditor {
		return true
	}
	return authorFilter != "" && authorFilter == p.ID
}
