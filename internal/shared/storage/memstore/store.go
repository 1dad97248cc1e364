// Package memstore 实现内存版 PersistentStore
//
// 用于单元测试与本地开发，语义与 mongostore 对齐：
// 唯一键冲突返回 storage.ErrDuplicate，缺失实体返回 storage.ErrNotFound。
// 所有操作在同一把互斥锁下执行，find-or-create 因此天然原子。
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"blog-panel/internal/shared/model"
	"blog-panel/internal/shared/storage"
)

// Store 内存存储
type Store struct {
	mu         sync.Mutex
	users      map[string]*model.User
	posts      map[string]*model.Post
	categories map[string]*model.Category
	tags       map[string]*model.Tag
	media      map[string]*model.Media
}

// NewStore 创建内存存储实例
func NewStore() *Store {
	return &Store{
		users:      map[string]*model.User{},
		posts:      map[string]*model.Post{},
		categories: map[string]*model.Category{},
		tags:       map[string]*model.Tag{},
		media:      map[string]*model.Media{},
	}
}

// Close 关闭存储（无操作）
func (s *Store) Close() error { return nil }

var _ storage.PersistentStore = (*Store)(nil)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return storage.ErrDuplicate
		}
	}
	if _, ok := s.users[user.ID]; ok {
		return storage.ErrDuplicate
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

// ============================================================================
// PostStore
// ============================================================================

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.Slug == post.Slug {
			return storage.ErrDuplicate
		}
	}
	if _, ok := s.posts[post.ID]; ok {
		return storage.ErrDuplicate
	}
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdatePost(ctx context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.ID]; !ok {
		return storage.ErrNotFound
	}
	for _, p := range s.posts {
		if p.ID != post.ID && p.Slug == post.Slug {
			return storage.ErrDuplicate
		}
	}
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *Store) IncrementPostViews(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Views++
	return nil
}

func matchPost(p *model.Post, f storage.PostFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.AuthorID != "" && p.AuthorID != f.AuthorID {
		return false
	}
	if f.CategoryID != "" && !contains(p.Categories, f.CategoryID) {
		return false
	}
	if f.TagID != "" && !contains(p.Tags, f.TagID) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Content), needle) {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (s *Store) ListPosts(ctx context.Context, f storage.PostFilter) ([]*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*model.Post
	for _, p := range s.posts {
		if matchPost(p, f) {
			cp := *p
			result = append(result, &cp)
		}
	}

	// 降序交换操作数而非取反：取反在相等元素上不是严格弱序
	asc := f.SortOrder == "asc"
	sort.Slice(result, func(i, j int) bool {
		if asc {
			return postLess(result[i], result[j], f.SortBy)
		}
		return postLess(result[j], result[i], f.SortBy)
	})

	return paginate(result, f.Skip, f.Limit), nil
}

// postLess 按排序字段比较（升序语义）
func postLess(a, b *model.Post, sortBy string) bool {
	switch sortBy {
	case "title":
		return a.Title < b.Title
	case "views":
		return a.Views < b.Views
	case "published_at":
		at, bt := time.Time{}, time.Time{}
		if a.PublishedAt != nil {
			at = *a.PublishedAt
		}
		if b.PublishedAt != nil {
			bt = *b.PublishedAt
		}
		return at.Before(bt)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func paginate[T any](items []*T, skip, limit int64) []*T {
	if skip >= int64(len(items)) {
		return []*T{}
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	if items == nil {
		items = []*T{}
	}
	return items
}

func (s *Store) CountPosts(ctx context.Context, f storage.PostFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, p := range s.posts {
		if matchPost(p, f) {
			n++
		}
	}
	return n, nil
}

// ============================================================================
// CategoryStore
// ============================================================================

func (s *Store) CreateCategory(ctx context.Context, cat *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertCategoryLocked(cat)
}

func (s *Store) insertCategoryLocked(cat *model.Category) error {
	for _, c := range s.categories {
		if c.Name == cat.Name {
			return storage.ErrDuplicate
		}
	}
	if _, ok := s.categories[cat.ID]; ok {
		return storage.ErrDuplicate
	}
	cp := *cat
	s.categories[cat.ID] = &cp
	return nil
}

func (s *Store) InsertCategories(ctx context.Context, cats []*model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cat := range cats {
		if err := s.insertCategoryLocked(cat); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) FindOrCreateCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	now := time.Now()
	cat := &model.Category{
		ID:        bson.NewObjectID().Hex(),
		Name:      name,
		Slug:      model.Slugify(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.categories[cat.ID] = cat
	cp := *cat
	return &cp, nil
}

func (s *Store) UpdateCategory(ctx context.Context, cat *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[cat.ID]; !ok {
		return storage.ErrNotFound
	}
	for _, c := range s.categories {
		if c.ID != cat.ID && c.Name == cat.Name {
			return storage.ErrDuplicate
		}
	}
	cp := *cat
	s.categories[cat.ID] = &cp
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []*model.Category{}
	for _, c := range s.categories {
		cp := *c
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Store) CountCategories(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.categories)), nil
}

func (s *Store) CountPostsWithCategory(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, p := range s.posts {
		if contains(p.Categories, id) {
			n++
		}
	}
	return n, nil
}

// ============================================================================
// TagStore
// ============================================================================

func (s *Store) CreateTag(ctx context.Context, tag *model.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertTagLocked(tag)
}

func (s *Store) insertTagLocked(tag *model.Tag) error {
	for _, t := range s.tags {
		if t.Name == tag.Name {
			return storage.ErrDuplicate
		}
	}
	if _, ok := s.tags[tag.ID]; ok {
		return storage.ErrDuplicate
	}
	cp := *tag
	s.tags[tag.ID] = &cp
	return nil
}

func (s *Store) InsertTags(ctx context.Context, tags []*model.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range tags {
		if err := s.insertTagLocked(tag); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetTag(ctx context.Context, id string) (*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tags[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tags {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetTagByName(ctx context.Context, name string) (*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tags {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) FindOrCreateTagByName(ctx context.Context, name string) (*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tags {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	now := time.Now()
	tag := &model.Tag{
		ID:        bson.NewObjectID().Hex(),
		Name:      name,
		Slug:      model.Slugify(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tags[tag.ID] = tag
	cp := *tag
	return &cp, nil
}

func (s *Store) UpdateTag(ctx context.Context, tag *model.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tags[tag.ID]; !ok {
		return storage.ErrNotFound
	}
	for _, t := range s.tags {
		if t.ID != tag.ID && t.Name == tag.Name {
			return storage.ErrDuplicate
		}
	}
	cp := *tag
	s.tags[tag.ID] = &cp
	return nil
}

func (s *Store) DeleteTag(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tags[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.tags, id)
	return nil
}

func (s *Store) ListTags(ctx context.Context) ([]*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []*model.Tag{}
	for _, t := range s.tags {
		cp := *t
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Store) CountTags(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.tags)), nil
}

func (s *Store) CountPostsWithTag(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, p := range s.posts {
		if contains(p.Tags, id) {
			n++
		}
	}
	return n, nil
}

// ============================================================================
// MediaStore
// ============================================================================

func (s *Store) CreateMedia(ctx context.Context, media *model.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.media[media.ID]; ok {
		return storage.ErrDuplicate
	}
	cp := *media
	s.media[media.ID] = &cp
	return nil
}

func (s *Store) GetMedia(ctx context.Context, id string) (*model.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.media[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, storage.ErrNotFound
}

func (s *Store) DeleteMedia(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.media[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.media, id)
	return nil
}

func matchMedia(m *model.Media, f storage.MediaFilter) bool {
	if f.UploadedByID != "" && m.UploadedByID != f.UploadedByID {
		return false
	}
	if f.MimePrefix != "" && !strings.HasPrefix(m.MimeType, f.MimePrefix+"/") {
		return false
	}
	return true
}

func (s *Store) ListMedia(ctx context.Context, f storage.MediaFilter) ([]*model.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*model.Media
	for _, m := range s.media {
		if matchMedia(m, f) {
			cp := *m
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, f.Skip, f.Limit), nil
}

func (s *Store) CountMedia(ctx context.Context, f storage.MediaFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.media {
		if matchMedia(m, f) {
			n++
		}
	}
	return n, nil
}
