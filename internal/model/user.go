package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Permission pages gate access to the boundary surfaces. Dashboard pages are
// derived per category as "DASHBOARD_<CATEGORY>".
const (
	PageTill  = "TILL"
	PageAdmin = "ADMIN"
)

// DashboardPage returns the permission page for a dashboard category.
func DashboardPage(category string) string {
	return "DASHBOARD_" + strings.ToUpper(category)
}

// User is an operator account. Admins bypass per-page permission checks.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsAdmin      bool      `json:"isAdmin" db:"is_admin"`
	Active       bool      `json:"active" db:"active"`
}

// Session is an authenticated login issued by the auth service.
type Session struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"-"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"isAdmin"`
	ExpiresAt time.Time `json:"expiresAt"`
}
