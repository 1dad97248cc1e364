// Package bootstrap 首次启动时的数据播种
//
// 幂等：只在对应集合为空时写入，重启不会重复建档。
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"blog-panel/internal/apiserver/auth"
	"blog-panel/internal/shared/model"
	"blog-panel/internal/shared/storage"
)

// Store 播种所需的存储能力
type Store interface {
	storage.UserStore
	storage.CategoryStore
	storage.TagStore
}

// 默认管理员账号
const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@example.com"
	defaultAdminPassword = "admin123"
)

// 播种条目带显式 slug：标准派生会把 "Node.js" 变成 "node-js"，
// 而既有数据约定该标签的 slug 是 "nodejs"。
var defaultCategories = []struct {
	name        string
	slug        string
	description string
}{
	{"Technology", "technology", "Technology related posts"},
	{"Programming", "programming", "Programming related posts"},
	{"Design", "design", "Design related posts"},
}

var defaultTags = []struct {
	name string
	slug string
}{
	{"JavaScript", "javascript"},
	{"Node.js", "nodejs"},
	{"MongoDB", "mongodb"},
	{"Express", "express"},
	{"React", "react"},
}

// Seed 播种默认数据：管理员账号、默认分类、默认标签
func Seed(ctx context.Context, store Store) error {
	if err := seedAdmin(ctx, store); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := seedCategories(ctx, store); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if err := seedTags(ctx, store); err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}
	return nil
}

func seedAdmin(ctx context.Context, store Store) error {
	count, err := store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := &model.User{
		ID:           bson.NewObjectID().Hex(),
		Username:     defaultAdminUsername,
		Email:        defaultAdminEmail,
		PasswordHash: hash,
		Name:         "Admin",
		Role:         model.UserRoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(ctx, admin); err != nil {
		return err
	}
	log.Printf("[bootstrap] Created admin user: %s (%s)", admin.Email, admin.ID)
	return nil
}

func seedCategories(ctx context.Context, store Store) error {
	count, err := store.CountCategories(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	cats := make([]*model.Category, 0, len(defaultCategories))
	for _, c := range defaultCategories {
		cats = append(cats, &model.Category{
			ID:          bson.NewObjectID().Hex(),
			Name:        c.name,
			Slug:        c.slug,
			Description: c.description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err := store.InsertCategories(ctx, cats); err != nil {
		return err
	}
	log.Printf("[bootstrap] Seeded %d default categories", len(cats))
	return nil
}

func seedTags(ctx context.Context, store Store) error {
	count, err := store.CountTags(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	tags := make([]*model.Tag, 0, len(defaultTags))
	for _, tg := range defaultTags {
		tags = append(tags, &model.Tag{
			ID:        bson.NewObjectID().Hex(),
			Name:      tg.name,
			Slug:      tg.slug,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err := store.InsertTags(ctx, tags); err != nil {
		return err
	}
	log.Printf("[bootstrap] Seeded %d default tags", len(tags))
	return nil
}
