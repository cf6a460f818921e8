package service

import (
	"errors"
	"fmt"
)

// Kind 错误分类，handler 据此决定 HTTP 状态码
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindConflict
	KindInvalidInput
	KindStoreFailure
	// KindUnauthorized 仅身份相关接口使用（登录失败、未登录）
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindForbidden:
		return "Forbidden"
	case KindConflict:
		return "Conflict"
	case KindInvalidInput:
		return "InvalidInput"
	case KindStoreFailure:
		return "StoreFailure"
	case KindUnauthorized:
		return "Unauthorized"
	default:
		return "Unknown"
	}
}

// Error 业务错误。Code 面向调用方，Err 为底层原因，只用于日志
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按 Code 比较，errors.Is(err, ErrAlreadyLiked) 这样的写法才成立
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrArticleNotFound       = newError(KindNotFound, "ARTICLE_NOT_FOUND", "文章不存在")
	ErrCommentNotFound       = newError(KindNotFound, "COMMENT_NOT_FOUND", "评论不存在")
	ErrParentNotFound        = newError(KindNotFound, "PARENT_NOT_FOUND", "父评论不存在")
	ErrParentArticleMismatch = newError(KindInvalidInput, "PARENT_ARTICLE_MISMATCH", "父评论不属于该文章")
	ErrEmptyContent          = newError(KindInvalidInput, "EMPTY_CONTENT", "评论内容不能为空")
	ErrInvalidPagination     = newError(KindInvalidInput, "INVALID_PAGINATION", "页码和每页数量必须大于 0")
	ErrActorRequired         = newError(KindInvalidInput, "ACTOR_REQUIRED", "无法识别请求方身份")
	ErrForbidden             = newError(KindForbidden, "FORBIDDEN", "没有权限执行该操作")
	ErrAlreadyLiked          = newError(KindConflict, "ALREADY_LIKED", "已经点过赞了")
	ErrNotLiked              = newError(KindConflict, "NOT_LIKED", "还没有点赞")
	ErrUserNotFound          = newError(KindNotFound, "USER_NOT_FOUND", "用户不存在")
	ErrUsernameExists        = newError(KindConflict, "USERNAME_EXISTS", "用户名已存在")
	ErrInvalidCredential     = newError(KindUnauthorized, "INVALID_CREDENTIAL", "用户名或密码错误")
	ErrLoginRequired         = newError(KindUnauthorized, "LOGIN_REQUIRED", "请先登录")
	ErrStoreFailure          = newError(KindStoreFailure, "STORE_FAILURE", "服务暂时不可用，请稍后重试")
)

// storeFailure 包装存储层错误，对外只暴露通用提示
func storeFailure(err error) *Error {
	return &Error{
		Kind:    KindStoreFailure,
		Code:    ErrStoreFailure.Code,
		Message: ErrStoreFailure.Message,
		Err:     err,
	}
}

// AsError 取出业务错误，未分类的错误一律视为存储失败
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return storeFailure(err)
}
