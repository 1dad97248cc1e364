package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"blog-panel/internal/shared/model"
	"blog-panel/internal/shared/storage"
)

// testStore 创建测试用 Store，使用独立数据库避免污染
func testStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	s, err := NewStore(uri, "blog_panel_test")
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	ctx := context.Background()
	if err := s.db.Drop(ctx); err != nil {
		t.Fatalf("Failed to drop test database: %v", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		s.db.Drop(context.Background())
		s.Close()
	})

	return s
}

// Compile-time interface check
var _ storage.PersistentStore = (*Store)(nil)

func TestUserCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	user := &model.User{
		ID:           "68a1b2c3d4e5f60718293a4b",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$12$x",
		Name:         "Alice",
		Role:         model.UserRoleAuthor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// email 唯一索引
	dup := *user
	dup.ID = "68a1b2c3d4e5f60718293a4c"
	dup.Username = "alice2"
	if err := s.CreateUser(ctx, &dup); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("duplicate email error = %v, want ErrDuplicate", err)
	}

	got, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want %q", got.Username, "alice")
	}

	if _, err := s.GetUserByID(ctx, "nonexistent"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetUserByID(nonexistent) error = %v, want ErrNotFound", err)
	}

	n, err := s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 1 {
		t.Errorf("CountUsers = %d, want 1", n)
	}
}

func TestPostCRUDAndFilters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	post := &model.Post{
		ID:        "68a1b2c3d4e5f60718293b01",
		Title:     "Hello, World!",
		Slug:      "hello-world",
		Content:   "<p>one two three</p>",
		Status:    model.PostStatusDraft,
		AuthorID:  "68a1b2c3d4e5f60718293a4b",
		WordCount: 3,
		Categories: []string{
			"68a1b2c3d4e5f60718293c01",
		},
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	// slug 唯一索引
	dup := *post
	dup.ID = "68a1b2c3d4e5f60718293b02"
	if err := s.CreatePost(ctx, &dup); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("duplicate slug error = %v, want ErrDuplicate", err)
	}

	got, err := s.GetPostBySlug(ctx, "hello-world")
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if got.Title != "Hello, World!" {
		t.Errorf("Title = %q", got.Title)
	}

	// 视图计数原子自增
	if err := s.IncrementPostViews(ctx, post.ID); err != nil {
		t.Fatalf("IncrementPostViews: %v", err)
	}
	got, _ = s.GetPost(ctx, post.ID)
	if got.Views != 1 {
		t.Errorf("Views = %d, want 1", got.Views)
	}

	// 过滤
	posts, err := s.ListPosts(ctx, storage.PostFilter{Status: model.PostStatusDraft})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("ListPosts(draft) len = %d, want 1", len(posts))
	}
	posts, _ = s.ListPosts(ctx, storage.PostFilter{Search: "TWO"})
	if len(posts) != 1 {
		t.Errorf("ListPosts(search) len = %d, want 1", len(posts))
	}
	n, _ := s.CountPosts(ctx, storage.PostFilter{CategoryID: "68a1b2c3d4e5f60718293c01"})
	if n != 1 {
		t.Errorf("CountPosts(category) = %d, want 1", n)
	}

	if err := s.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if _, err := s.GetPost(ctx, post.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetPost after delete error = %v, want ErrNotFound", err)
	}
}

func TestFindOrCreateCategoryByName(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first, err := s.FindOrCreateCategoryByName(ctx, "Tech")
	if err != nil {
		t.Fatalf("FindOrCreateCategoryByName: %v", err)
	}
	if first.Slug != "tech" {
		t.Errorf("Slug = %q, want %q", first.Slug, "tech")
	}

	second, err := s.FindOrCreateCategoryByName(ctx, "Tech")
	if err != nil {
		t.Fatalf("FindOrCreateCategoryByName (second): %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("second resolve returned %q, want %q", second.ID, first.ID)
	}

	n, _ := s.CountCategories(ctx)
	if n != 1 {
		t.Errorf("CountCategories = %d, want 1", n)
	}
}
