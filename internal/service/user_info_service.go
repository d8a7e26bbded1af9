package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pushmasterhq/pushmaster-api/internal/models"
)

// UserInfoStore is the user-info persistence surface.
type UserInfoStore interface {
	GetByEmail(ctx context.Context, email string) (*models.UserInfo, error)
	Create(ctx context.Context, info *models.UserInfo) error
}

// UserInfoService resolves display names for emails. Records are
// created lazily the first time an email is seen and cached per user.
type UserInfoService struct {
	store  UserInfoStore
	cache  *CacheService
	logger *zap.Logger
}

// NewUserInfoService constructs the service.
func NewUserInfoService(store UserInfoStore, cache *CacheService, logger *zap.Logger) *UserInfoService {
	return &UserInfoService{store: store, cache: cache, logger: logger}
}

// InfoForUser returns the info record for an email, creating it on
// first reference. fallbackName seeds the full name when the record
// does not exist yet; empty falls back to the email's local part.
func (s *UserInfoService) InfoForUser(ctx context.Context, email, fallbackName string) (*models.UserInfo, error) {
	key := models.UserInfoCacheKey(email)

	var cached models.UserInfo
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	info, err := s.store.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		name := fallbackName
		if name == "" {
			name = models.Nickname(email)
		}
		info = &models.UserInfo{Email: email, FullName: name}
		if err := s.store.Create(ctx, info); err != nil {
			return nil, fmt.Errorf("create user info: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load user info: %w", err)
	}

	_ = s.cache.Set(ctx, key, info, 0)
	return info, nil
}

// RememberIdentity records an authenticated actor's display name so
// later lookups resolve it. Failures are logged and swallowed; identity
// bookkeeping must never fail a request.
func (s *UserInfoService) RememberIdentity(ctx context.Context, identity models.Identity) {
	if identity.Email == "" {
		return
	}
	if _, err := s.InfoForUser(ctx, identity.Email, identity.Name); err != nil {
		s.logger.Warn("remember identity failed", zap.String("email", identity.Email), zap.Error(err))
	}
}
