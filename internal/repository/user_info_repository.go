package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pushmasterhq/pushmaster-api/internal/models"
)

// UserInfoRepository persists lazily created user display records.
type UserInfoRepository struct {
	db *sqlx.DB
}

// NewUserInfoRepository constructs the repository.
func NewUserInfoRepository(db *sqlx.DB) *UserInfoRepository {
	return &UserInfoRepository{db: db}
}

// GetByEmail fetches a user's info record.
func (r *UserInfoRepository) GetByEmail(ctx context.Context, email string) (*models.UserInfo, error) {
	const query = `SELECT id, email, full_name, created_at, modified_at FROM user_infos WHERE email = $1`
	var info models.UserInfo
	if err := r.db.GetContext(ctx, &info, query, email); err != nil {
		return nil, err
	}
	return &info, nil
}

// Create inserts a new user info row.
func (r *UserInfoRepository) Create(ctx context.Context, info *models.UserInfo) error {
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if info.CreatedAt.IsZero() {
		info.CreatedAt = now
	}
	info.ModifiedAt = now

	const query = `INSERT INTO user_infos (id, email, full_name, created_at, modified_at)
	VALUES (:id, :email, :full_name, :created_at, :modified_at)`
	if _, err := r.db.NamedExecContext(ctx, query, info); err != nil {
		return fmt.Errorf("create user info: %w", err)
	}
	return nil
}
