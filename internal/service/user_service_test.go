package service

import (
	"context"
	"testing"

	"github.com/haierkeys/fast-asset-delivery/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Authenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.userService()

	u, err := svc.Authenticate(ctx, f.bearer(t, f.buyer))
	require.NoError(t, err)
	assert.Equal(t, f.buyer.ID, u.ID)

	for _, credential := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Authenticate(ctx, credential)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated, credential)
	}

	// 已删除的用户
	ghost := &domain.User{ID: 4242, Username: "ghost"}
	_, err = svc.Authenticate(ctx, f.bearer(t, ghost))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestUserService_InactiveUserIsUnauthenticated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.userService()

	banned, err := f.users.Create(ctx, &domain.User{Username: "banned", IsActive: false})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, f.bearer(t, banned))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.IssueToken(ctx, banned.ID, "127.0.0.1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	tok, err := svc.IssueToken(ctx, f.buyer.ID, "127.0.0.1")
	require.NoError(t, err)
	u, err := svc.Authenticate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "buyer", u.Username)
}
