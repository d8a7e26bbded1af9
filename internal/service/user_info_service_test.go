package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pushmasterhq/pushmaster-api/internal/models"
)

type stubUserInfoStore struct {
	byEmail  map[string]*models.UserInfo
	getCalls int
}

func newStubUserInfoStore() *stubUserInfoStore {
	return &stubUserInfoStore{byEmail: map[string]*models.UserInfo{}}
}

func (s *stubUserInfoStore) GetByEmail(ctx context.Context, email string) (*models.UserInfo, error) {
	s.getCalls++
	info, ok := s.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *info
	return &clone, nil
}

func (s *stubUserInfoStore) Create(ctx context.Context, info *models.UserInfo) error {
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	clone := *info
	s.byEmail[info.Email] = &clone
	return nil
}

func newUserInfoEnv(t *testing.T) (*stubUserInfoStore, *memCacheRepo, *UserInfoService) {
	t.Helper()
	store := newStubUserInfoStore()
	cacheRepo := newMemCacheRepo()
	cacheSvc := NewCacheService(cacheRepo, nil, time.Hour, zap.NewNop(), true)
	return store, cacheRepo, NewUserInfoService(store, cacheSvc, zap.NewNop())
}

func TestUserInfoLazyCreate(t *testing.T) {
	store, cache, svc := newUserInfoEnv(t)
	ctx := context.Background()

	info, err := svc.InfoForUser(ctx, "dev@example.com", "Dev One")
	require.NoError(t, err)
	require.Equal(t, "Dev One", info.FullName)
	require.NotNil(t, store.byEmail["dev@example.com"])
	require.True(t, cache.has(models.UserInfoCacheKey("dev@example.com")))

	// Second lookup comes from cache, not the store.
	calls := store.getCalls
	again, err := svc.InfoForUser(ctx, "dev@example.com", "")
	require.NoError(t, err)
	require.Equal(t, "Dev One", again.FullName)
	require.Equal(t, calls, store.getCalls)
}

func TestUserInfoFallsBackToNickname(t *testing.T) {
	_, _, svc := newUserInfoEnv(t)

	info, err := svc.InfoForUser(context.Background(), "carol@example.com", "")
	require.NoError(t, err)
	require.Equal(t, "carol", info.FullName)
}

func TestRememberIdentitySwallowsFailures(t *testing.T) {
	_, _, svc := newUserInfoEnv(t)

	// Must not panic or error even for a blank identity.
	svc.RememberIdentity(context.Background(), models.Identity{})
	svc.RememberIdentity(context.Background(), models.Identity{Email: "dev@example.com", Name: "Dev One"})
}
