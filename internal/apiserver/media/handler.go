// Package media 媒体领域 - HTTP 处理
//
// 上传顺序约束：对象先落 MinIO，元数据后入库；删除反之。
// 保证库里每条记录都对应一个可访问的对象。
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"blog-panel/internal/apiserver/auth"
	"blog-panel/internal/apiserver/authz"
	"blog-panel/internal/shared/model"
	"blog-panel/internal/shared/storage"
)

// BlobStore 对象存储接口
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	Bucket() string
}

// 允许上传的 MIME 类型
var allowedMimeTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// Handler 媒体领域 HTTP 处理器
type Handler struct {
	store   storage.MediaStore
	blob    BlobStore
	maxSize int64
}

// NewHandler 创建媒体处理器
func NewHandler(store storage.MediaStore, blob BlobStore, maxSize int64) *Handler {
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	return &Handler{store: store, blob: blob, maxSize: maxSize}
}

// RegisterRoutes 注册媒体相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/media/upload", h.Upload)
	mux.HandleFunc("GET /api/media", h.List)
	mux.HandleFunc("GET /api/media/{id}", h.Get)
	mux.HandleFunc("DELETE /api/media/{id}", h.Delete)
}

// Upload 上传文件
// POST /api/media/upload  (multipart/form-data, 字段名 file)
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+1<<20)
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxSize {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("file too large: max %d bytes", h.maxSize))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !allowedMimeTypes[mimeType] {
		writeError(w, http.StatusBadRequest, "unsupported file type: "+mimeType)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		log.Printf("[media.upload] read file error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	if int64(len(data)) > h.maxSize {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("file too large: max %d bytes", h.maxSize))
		return
	}

	key := generateObjectKey(header.Filename)

	// 对象先写，元数据后插；对象写失败则不留任何记录
	if err := h.blob.Upload(r.Context(), key, data, mimeType); err != nil {
		log.Printf("[media.upload] blob upload error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	now := time.Now()
	media := &model.Media{
		ID:           generateID(),
		Filename:     key,
		OriginalName: header.Filename,
		Path:         h.blob.Bucket() + "/" + key,
		MimeType:     mimeType,
		Size:         int64(len(data)),
		URL:          h.blob.PublicURL(key),
		BlogPostID:   r.FormValue("blog_post_id"),
		UploadedByID: principal.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.store.CreateMedia(r.Context(), media); err != nil {
		log.Printf("[media.upload] CreateMedia error: %v", err)
		// 元数据入库失败时回收已写对象
		if derr := h.blob.Delete(r.Context(), key); derr != nil {
			log.Printf("[media.upload] orphan cleanup error: %v", derr)
		}
		writeError(w, http.StatusInternalServerError, "failed to save media record")
		return
	}

	log.Printf("[media] Uploaded: %s (%s, %d bytes) by %s", key, mimeType, media.Size, principal.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "File uploaded successfully",
		"media":   media,
	})
}

// List 媒体列表
// GET /api/media
//
// 非 admin 只能看到自己上传的文件。
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	owner, ok := authz.MediaListOwnerScope(principal)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	q := r.URL.Query()
	page, limit := parsePagination(q)
	filter := storage.MediaFilter{
		UploadedByID: owner,
		MimePrefix:   q.Get("type"),
		Skip:         (page - 1) * limit,
		Limit:        limit,
	}

	items, err := h.store.ListMedia(r.Context(), filter)
	if err != nil {
		log.Printf("[media.list] error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list media")
		return
	}
	total, err := h.store.CountMedia(r.Context(), filter)
	if err != nil {
		log.Printf("[media.list] count error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list media")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"media":       items,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

// Get 单条媒体元数据
// GET /api/media/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	media, err := h.store.GetMedia(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "media not found")
			return
		}
		log.Printf("[media.get] error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if principal.Role != model.UserRoleAdmin && media.UploadedByID != principal.ID {
		writeError(w, http.StatusForbidden, "not allowed to view this media")
		return
	}

	writeJSON(w, http.StatusOK, map[string]*model.Media{"media": media})
}

// Delete 删除媒体（对象与元数据）
// DELETE /api/media/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	media, err := h.store.GetMedia(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "media not found")
			return
		}
		log.Printf("[media.delete] GetMedia error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !authz.CanDeleteMedia(principal, media) {
		writeError(w, http.StatusForbidden, "not allowed to delete this media")
		return
	}

	// 对象先删，元数据后删；对象删失败则记录保留
	if err := h.blob.Delete(r.Context(), media.Filename); err != nil {
		log.Printf("[media.delete] blob delete error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete file")
		return
	}
	if err := h.store.DeleteMedia(r.Context(), media.ID); err != nil {
		log.Printf("[media.delete] DeleteMedia error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete media record")
		return
	}

	log.Printf("[media] Deleted: %s by %s", media.Filename, principal.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Media deleted successfully"})
}
