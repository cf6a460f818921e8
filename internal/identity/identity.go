// Package identity 描述请求方是谁：登录账号，或者只有网络地址的匿名访客。
package identity

import (
	"errors"
	"strconv"
	"strings"

	"discuss-go/internal/model"
)

var ErrNoActor = errors.New("既没有登录身份也没有网络地址")

// Identity 已验证的账号身份
type Identity struct {
	ID       int64
	Username string
	Role     string
}

// Elevated 是否拥有版主/管理员权限
func (i *Identity) Elevated() bool {
	return i != nil && model.IsElevated(i.Role)
}

type kind uint8

const (
	kindInvalid kind = iota
	kindAccount
	kindAnonymous
)

// ActorKey 点赞、浏览去重使用的身份键，只能是账号或网络地址之一。
// 零值无效，只能通过 Account / Anonymous / Resolve 构造。
type ActorKey struct {
	kind      kind
	accountID int64
	address   string
}

// Account 账号身份键
func Account(id int64) (ActorKey, error) {
	if id <= 0 {
		return ActorKey{}, ErrNoActor
	}
	return ActorKey{kind: kindAccount, accountID: id}, nil
}

// Anonymous 匿名身份键，以网络地址区分
func Anonymous(address string) (ActorKey, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return ActorKey{}, ErrNoActor
	}
	return ActorKey{kind: kindAnonymous, address: address}, nil
}

// Resolve 登录身份优先，否则退回网络地址
func Resolve(ident *Identity, address string) (ActorKey, error) {
	if ident != nil && ident.ID > 0 {
		return Account(ident.ID)
	}
	return Anonymous(address)
}

// Valid 是否为合法身份键
func (k ActorKey) Valid() bool {
	return k.kind != kindInvalid
}

// AccountID 返回账号 ID，匿名身份返回 false
func (k ActorKey) AccountID() (int64, bool) {
	return k.accountID, k.kind == kindAccount
}

// Address 返回网络地址，账号身份返回 false
func (k ActorKey) Address() (string, bool) {
	return k.address, k.kind == kindAnonymous
}

// String 用于缓存 key 和日志，如 "u:42"、"ip:10.0.0.1"
func (k ActorKey) String() string {
	switch k.kind {
	case kindAccount:
		return "u:" + strconv.FormatInt(k.accountID, 10)
	case kindAnonymous:
		return "ip:" + k.address
	default:
		return "invalid"
	}
}

// Apply 把身份键写入点赞记录，保证 UserID 与 IPAddress 只有一个非空
func (k ActorKey) Apply(like *model.Like) {
	like.UserID, like.IPAddress = nil, nil
	switch k.kind {
	case kindAccount:
		id := k.accountID
		like.UserID = &id
	case kindAnonymous:
		addr := k.address
		like.IPAddress = &addr
	}
}

// FromLike 从点赞记录还原身份键
func FromLike(like *model.Like) (ActorKey, error) {
	switch {
	case like.UserID != nil && like.IPAddress == nil:
		return Account(*like.UserID)
	case like.IPAddress != nil && like.UserID == nil:
		return Anonymous(*like.IPAddress)
	default:
		return ActorKey{}, ErrNoActor
	}
}
