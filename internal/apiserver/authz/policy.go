// Package authz 集中式授权策略
//
// 把散落在各 handler 的角色判断收拢为一个纯决策函数：
// 输入主体（principal）、动作、资源的归属事实，输出允许/拒绝。
// 本包不做任何 I/O，资源状态由调用方查好后传入。
//
// 拒绝与"资源不存在"是两种结果：handler 先查资源（404），
// 再问策略（403），绝不用 404 掩盖 403。
package authz

import "blog-panel/internal/shared/model"

// Principal 发起请求的已认证主体；nil 表示匿名请求
type Principal struct {
	ID   string
	Role model.UserRole
}

// Action 资源动作
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind 资源类别
type Kind string

const (
	KindPost     Kind = "post"
	KindCategory Kind = "category"
	KindTag      Kind = "tag"
	KindMedia    Kind = "media"
)

// Resource 决策所需的资源事实
type Resource struct {
	Kind       Kind
	OwnerID    string           // post.AuthorID / media.UploadedByID；分类标签无归属
	PostStatus model.PostStatus // 仅对文章读取有意义
}

// Can 判定主体能否对资源执行动作
//
// 规则（按序）：
//   - 文章读取：published 公开；非 published 仅作者本人或 admin/editor
//   - 分类/标签读取：公开
//   - 任何创建：需要已认证主体；分类/标签创建另需 admin/editor
//   - 文章更新：作者本人或 admin/editor；文章删除：作者本人或 admin
//   - 分类/标签更新/删除：admin/editor
//   - 媒体更新/删除：上传者本人或 admin
func Can(p *Principal, action Action, res Resource) bool {
	switch action {
	case ActionRead:
		switch res.Kind {
		case KindPost:
			if res.PostStatus == model.PostStatusPublished {
				return true
			}
			return isOwner(p, res.OwnerID) || hasRole(p, model.UserRoleAdmin, model.UserRoleEditor)
		default:
			return true
		}

	case ActionCreate:
		if p == nil {
			return false
		}
		if res.Kind == KindCategory || res.Kind == KindTag {
			return hasRole(p, model.UserRoleAdmin, model.UserRoleEditor)
		}
		return true

	case ActionUpdate:
		switch res.Kind {
		case KindPost:
			return isOwner(p, res.OwnerID) || hasRole(p, model.UserRoleAdmin, model.UserRoleEditor)
		case KindCategory, KindTag:
			return hasRole(p, model.UserRoleAdmin, model.UserRoleEditor)
		case KindMedia:
			return isOwner(p, res.OwnerID) || hasRole(p, model.UserRoleAdmin)
		}

	case ActionDelete:
		switch res.Kind {
		case KindPost:
			return isOwner(p, res.OwnerID) || hasRole(p, model.UserRoleAdmin)
		case KindCategory, KindTag:
			return hasRole(p, model.UserRoleAdmin, model.UserRoleEditor)
		case KindMedia:
			return isOwner(p, res.OwnerID) || hasRole(p, model.UserRoleAdmin)
		}
	}
	return false
}

// CanViewPost 文章可见性判定
func CanViewPost(p *Principal, post *model.Post) bool {
	return Can(p, ActionRead, Resource{Kind: KindPost, OwnerID: post.AuthorID, PostStatus: post.Status})
}

// CanUpdatePost 文章更新判定
func CanUpdatePost(p *Principal, post *model.Post) bool {
	return Can(p, ActionUpdate, Resource{Kind: KindPost, OwnerID: post.AuthorID})
}

// CanDeletePost 文章删除判定
func CanDeletePost(p *Principal, post *model.Post) bool {
	return Can(p, ActionDelete, Resource{Kind: KindPost, OwnerID: post.AuthorID})
}

// CanManageTaxonomy 分类/标签管理判定（创建/更新/删除同一规则）
func CanManageTaxonomy(p *Principal) bool {
	return Can(p, ActionCreate, Resource{Kind: KindCategory})
}

// CanDeleteMedia 媒体删除判定
func CanDeleteMedia(p *Principal, media *model.Media) bool {
	return Can(p, ActionDelete, Resource{Kind: KindMedia, OwnerID: media.UploadedByID})
}

// MediaListOwnerScope 媒体列表的归属过滤
//
// admin 返回空串表示不限归属，非 admin 只能看到自己上传的媒体。
// 匿名主体返回 ok=false：媒体列表不对匿名开放。
func MediaListOwnerScope(p *Principal) (ownerID string, ok bool) {
	if p == nil {
		return "", false
	}
	if hasRole(p, model.UserRoleAdmin) {
		return "", true
	}
	return p.ID, true
}

func isOwner(p *Principal, ownerID string) bool {
	return p != nil && ownerID != "" && p.ID == ownerID
}

func hasRole(p *Principal, roles ...model.UserRole) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
