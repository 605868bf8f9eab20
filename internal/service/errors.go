package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/forum/pkg/errcode"
)

var (
	ErrFollowSelf       = errcode.BadRequest("you cannot follow yourself")
	ErrAlreadyFollowing = errcode.BadRequest("already following this user")
	ErrNotFollowing     = errcode.BadRequest("not following this user")

	ErrUsernameTaken      = errcode.BadRequest("username already exists")
	ErrEmailTaken         = errcode.BadRequest("email already exists")
	ErrInvalidCredentials = errcode.Unauthorized("invalid credentials")
	ErrAccountDisabled    = errcode.Forbidden("account is disabled")
	ErrWrongPassword      = errcode.BadRequest("current password is incorrect")
	ErrInvalidRole        = errcode.BadRequest("invalid role")
	ErrDeactivateSelf     = errcode.BadRequest("you cannot deactivate your own account")

	ErrInvalidReactionType = errcode.BadRequest("invalid reaction type")
	ErrTitleRequired       = errcode.BadRequest("title is required")

	ErrUserNotFound         = errcode.NotFound("user not found")
	ErrPostNotFound         = errcode.NotFound("post not found")
	ErrCommentNotFound      = errcode.NotFound("comment not found")
	ErrNotificationNotFound = errcode.NotFound("notification not found")
	ErrCategoryNotFound     = errcode.NotFound("category not found")
	ErrForumNotFound        = errcode.NotFound("forum not found")
	ErrTopicNotFound        = errcode.NotFound("topic not found")

	ErrForbidden   = errcode.Forbidden("you do not have permission to perform this action")
	ErrTopicLocked = errcode.Forbidden("topic is locked")
)

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// notFoundAs 把 gorm 的未找到错误替换成业务错误，其它错误原样返回
func notFoundAs(err, as error) error {
	if isNotFound(err) {
		return as
	}
	return err
}
