package models

import "time"

// Roles recognised by the write routes.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// User is an account that can obtain a signed token.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:varchar(255);not null"` // bcrypt, never serialized
	Role         string    `json:"role" gorm:"type:varchar(32);not null"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// Identity is the caller established by a verified token. It lives for one
// request only.
type Identity struct {
	SubjectID string `json:"subjectId"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// UserSummary is the public view of a user returned by login.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}
