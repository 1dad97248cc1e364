package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleEditor UserRole = "editor"
	UserRoleAuthor UserRole = "author"
)

// ValidUserRole 校验角色取值
func ValidUserRole(r UserRole) bool {
	switch r {
	case UserRoleAdmin, UserRoleEditor, UserRoleAuthor:
		return true
	}
	return false
}

// User 用户
//
// email 和 username 全局唯一（由存储层唯一索引保证）。
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"` // never expose in JSON
	Name         string    `json:"name" bson:"name"`
	Role         UserRole  `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}
