// Package storage 定义存储层领域错误
//
// 这些错误用于隔离业务层与底层存储引擎的错误类型，
// 各驱动实现（mongostore/memstore）负责将底层错误转换为这些领域错误。
package storage

import "errors"

var (
	// ErrNotFound 实体不存在
	// 替代 mongo.ErrNoDocuments
	ErrNotFound = errors.New("entity not found")

	// ErrConflict 业务冲突（如删除仍被引用的分类/标签）
	ErrConflict = errors.New("conflict: entity is referenced")

	// ErrDuplicate 唯一键冲突（email/username/slug/name 重复）
	ErrDuplicate = errors.New("duplicate: entity already exists")
)
