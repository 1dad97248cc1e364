package post

import (
	"context"
	"strings"

	"blog-panel/internal/shared/storage"
)

// 分类/标签名到 ID 的解析
//
// 文章写入时携带的是名字列表；不存在的名字当场建档（原子 upsert），
// 已存在的复用现有 ID。每个名字产出一个 ID，保持请求中的出现顺序，
// 不去重：重复的名字产出相同 ID 的重复条目。空白名跳过，否则会
// 建出空名空 slug 的档案并永久占住唯一索引。

// resolveCategoryIDs 把分类名列表解析为 ID 列表
func resolveCategoryIDs(ctx context.Context, store storage.CategoryStore, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cat, err := store.FindOrCreateCategoryByName(ctx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, cat.ID)
	}
	return ids, nil
}

// resolveTagIDs 把标签名列表解析为 ID 列表
func resolveTagIDs(ctx context.Context, store storage.TagStore, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tag, err := store.FindOrCreateTagByName(ctx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}
