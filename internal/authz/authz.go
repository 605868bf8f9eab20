// Package authz 修改内容前的权限判断
package authz

import "github.com/d60-Lab/forum/internal/model"

// IsAdmin 是否管理员
func IsAdmin(actor *model.User) bool {
	return actor != nil && (actor.Role == model.RoleAdmin || actor.IsAdmin)
}

// IsElevated 可以操作他人内容（版主或管理员）
func IsElevated(actor *model.User) bool {
	return IsAdmin(actor) || (actor != nil && actor.Role == model.RoleModerator)
}

// CanModify 作者本人或提升权限者可修改、删除
func CanModify(actor *model.User, ownerID string) bool {
	if actor == nil {
		return false
	}
	return actor.ID == ownerID || IsElevated(actor)
}

// HasRole 持有任一角色即可，管理员满足所有角色
func HasRole(actor *model.User, roles ...string) bool {
	if actor == nil {
		return false
	}
	if IsAdmin(actor) {
		return true
	}
	for _, r := range roles {
		if actor.Role == r {
			return true
		}
	}
	return false
}
