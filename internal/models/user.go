package models

import (
	"strings"
	"time"
)

// UserInfo is a cached denormalization of a user's display name. Rows
// are created lazily on first reference and never transition.
type UserInfo struct {
	ID         string    `db:"id" json:"-"`
	Email      string    `db:"email" json:"email"`
	FullName   string    `db:"full_name" json:"full_name"`
	CreatedAt  time.Time `db:"created_at" json:"-"`
	ModifiedAt time.Time `db:"modified_at" json:"-"`
}

// Identity is an authenticated actor. Authentication happens upstream;
// handlers receive the identity already resolved.
type Identity struct {
	Email string
	Name  string
}

// Nickname is the local part of the identity's email address.
func (i Identity) Nickname() string {
	return Nickname(i.Email)
}

// Nickname returns the local part of an email address.
func Nickname(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// UserInfoCacheKey is the cache key for a user's info record.
func UserInfoCacheKey(email string) string {
	return "user-info-" + email
}

// EntityKind distinguishes ownable entity types for operations that
// apply to both requests and pushes.
type EntityKind string

const (
	EntityKindRequest EntityKind = "request"
	EntityKindPush    EntityKind = "push"
)
