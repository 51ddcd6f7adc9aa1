package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/client"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/repositories/metadata"
)

func TestAuthService_TokenLifecycle(t *testing.T) {
	repo := setupMetadata(t)
	fc := &fakeClient{}
	svc := NewAuthService(fc, repo)
	ctx := context.Background()

	found, err := svc.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, svc.SetToken(ctx, " abc.def.ghi \n"))
	assert.Equal(t, "abc.def.ghi", fc.token)

	stored, err := repo.Get(ctx, metadata.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", string(stored))

	// a new process restores the same token
	fc2 := &fakeClient{}
	found, err = NewAuthService(fc2, repo).Restore(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc.def.ghi", fc2.token)

	require.NoError(t, svc.Clear(ctx))
	assert.Empty(t, fc.token)
	stored, err = repo.Get(ctx, metadata.KeyAccessToken)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestAuthService_EmptyTokenClears(t *testing.T) {
	repo := setupMetadata(t)
	fc := &fakeClient{}
	svc := NewAuthService(fc, repo)
	ctx := context.Background()

	require.NoError(t, svc.SetToken(ctx, "tok"))
	require.NoError(t, svc.SetToken(ctx, "   "))

	found, err := svc.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAuthService_Ping(t *testing.T) {
	fc := &fakeClient{pingErr: client.ErrUnavailable}
	svc := NewAuthService(fc, setupMetadata(t))

	require.ErrorIs(t, svc.Ping(context.Background()), client.ErrUnavailable)
	fc.pingErr = nil
	require.NoError(t, svc.Ping(context.Background()))
}
