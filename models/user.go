package models

import (
	"time"

	"sheetcharts/domain/core"

	"github.com/google/uuid"
)

// Identity of the single-user fallback that migrations insert
const (
	DefaultUserEmail    = "default@sheetcharts.local"
	DefaultUserUsername = "default"
)

// User represents a system user
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Username  string    `json:"username" db:"username"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewDefaultUser builds the fallback user identified by core.DefaultUserID
func NewDefaultUser() *User {
	return &User{
		ID:       uuid.MustParse(core.DefaultUserID.String()),
		Email:    DefaultUserEmail,
		Username: DefaultUserUsername,
		IsActive: true,
	}
}
