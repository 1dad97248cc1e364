package media

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"blog-panel/internal/shared/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func generateID() string {
	return bson.NewObjectID().Hex()
}

// generateObjectKey 生成抗碰撞的对象键：basename-时间戳-随机串.ext
func generateObjectKey(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	base = model.Slugify(base)
	if base == "" {
		base = "file"
	}

	buf := make([]byte, 4)
	rand.Read(buf)
	return base + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + hex.EncodeToString(buf) + ext
}

func parsePagination(q url.Values) (page, limit int64) {
	page = 1
	limit = defaultPageSize
	if v, err := strconv.ParseInt(q.Get("page"), 10, 64); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 64); err == nil && v > 0 {
		limit = min(v, maxPageSize)
	}
	return page, limit
}

func totalPages(total, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
