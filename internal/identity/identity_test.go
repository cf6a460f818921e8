package identity

import (
	"testing"

	"discuss-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	testCases := []struct {
		name    string
		ident   *Identity
		address string

		wantKey string
		wantErr error
	}{
		{
			name:    "账号优先于地址",
			ident:   &Identity{ID: 42, Username: "alice"},
			address: "10.0.0.1",
			wantKey: "u:42",
		},
		{
			name:    "匿名访客按地址",
			address: "10.0.0.1",
			wantKey: "ip:10.0.0.1",
		},
		{
			name:    "地址两端空白会被去掉",
			address: "  10.0.0.2 ",
			wantKey: "ip:10.0.0.2",
		},
		{
			name:    "身份 ID 非法时退回地址",
			ident:   &Identity{ID: 0},
			address: "10.0.0.3",
			wantKey: "ip:10.0.0.3",
		},
		{
			name:    "两者都没有",
			wantErr: ErrNoActor,
			wantKey: "invalid",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := Resolve(tc.ident, tc.address)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.wantKey, key.String())
			assert.Equal(t, tc.wantErr == nil, key.Valid())
		})
	}
}

func TestActorKey_ZeroValueInvalid(t *testing.T) {
	var key ActorKey
	assert.False(t, key.Valid())
	_, ok := key.AccountID()
	assert.False(t, ok)
	_, ok = key.Address()
	assert.False(t, ok)
}

func TestActorKey_ApplyAndFromLike(t *testing.T) {
	account, err := Account(7)
	require.NoError(t, err)
	anon, err := Anonymous("192.168.1.9")
	require.NoError(t, err)

	like := &model.Like{ArticleID: 1}
	anon.Apply(like)
	account.Apply(like)
	// 后一次 Apply 覆盖前一次，两个字段只留一个
	require.NotNil(t, like.UserID)
	assert.Nil(t, like.IPAddress)
	assert.Equal(t, int64(7), *like.UserID)

	back, err := FromLike(like)
	require.NoError(t, err)
	assert.Equal(t, account, back)

	anon.Apply(like)
	assert.Nil(t, like.UserID)
	back, err = FromLike(like)
	require.NoError(t, err)
	assert.Equal(t, anon, back)
}

func TestFromLike_Ambiguous(t *testing.T) {
	uid, addr := int64(1), "10.0.0.1"
	_, err := FromLike(&model.Like{UserID: &uid, IPAddress: &addr})
	assert.ErrorIs(t, err, ErrNoActor)

	_, err = FromLike(&model.Like{})
	assert.ErrorIs(t, err, ErrNoActor)
}

func TestIdentity_Elevated(t *testing.T) {
	var nilIdent *Identity
	assert.False(t, nilIdent.Elevated())
	assert.False(t, (&Identity{ID: 1, Role: model.RoleUser}).Elevated())
	assert.True(t, (&Identity{ID: 1, Role: model.RoleModerator}).Elevated())
	assert.True(t, (&Identity{ID: 1, Role: model.RoleAdmin}).Elevated())
}
