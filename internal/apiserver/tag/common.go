package tag

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var hexIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

func isHexID(s string) bool {
	return hexIDPattern.MatchString(s)
}

func generateID() string {
	return bson.NewObjectID().Hex()
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
