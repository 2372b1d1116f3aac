package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/rbac"
	"github.com/sigainv/siga-backend/internal/testutil"
)

func testSession() auth.Session {
	return auth.Session{
		UserID:      42,
		Username:    "oficina_cali",
		DisplayName: "Oficina CALI",
		Role:        rbac.RoleOfficeCali,
		OfficeID:    7,
		OfficeName:  "CALI",
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	_, client := testutil.NewTestRedis(t)
	store := auth.NewStore(client, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, testSession())
	require.NoError(t, err)
	assert.Len(t, token, 64)

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, testSession(), got)
}

func TestStoreTokensAreUnique(t *testing.T) {
	_, client := testutil.NewTestRedis(t)
	store := auth.NewStore(client, time.Hour)
	ctx := context.Background()

	t1, err := store.Create(ctx, testSession())
	require.NoError(t, err)
	t2, err := store.Create(ctx, testSession())
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

func TestStoreGetUnknownToken(t *testing.T) {
	_, client := testutil.NewTestRedis(t)
	store := auth.NewStore(client, time.Hour)

	_, err := store.Get(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestStoreExpiry(t *testing.T) {
	mr, client := testutil.NewTestRedis(t)
	store := auth.NewStore(client, time.Minute)
	ctx := context.Background()

	token, err := store.Create(ctx, testSession())
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestStoreDelete(t *testing.T) {
	_, client := testutil.NewTestRedis(t)
	store := auth.NewStore(client, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, testSession())
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, token))
	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	t.Run("deleting twice is not an error", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, token))
	})
}
