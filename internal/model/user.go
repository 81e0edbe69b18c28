package model

import (
	"strings"
	"time"
)

const (
	// AdminFlagTrue is written for administrators.
	AdminFlagTrue = "TRUE"
	// AdminFlagFalse is written for regular employees.
	AdminFlagFalse = "FALSE"
)

// User is one row of the users table.
type User struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	Identifier   string    `json:"identifier" gorm:"uniqueIndex;size:64;not null"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	AdminFlag    string    `json:"-" gorm:"size:16;not null;default:'FALSE'"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the stored admin flag reads "true" in any case.
func (u *User) IsAdmin() bool {
	return ParseAdminFlag(u.AdminFlag)
}

// Identity builds the session identity for u.
func (u *User) Identity() *Identity {
	return &Identity{
		Name:       u.Name,
		Identifier: u.Identifier,
		Admin:      u.IsAdmin(),
	}
}

// ParseAdminFlag compares the stored flag against "true" case-insensitively.
func ParseAdminFlag(flag string) bool {
	return strings.EqualFold(flag, "true")
}

// FormatAdminFlag is the inverse of ParseAdminFlag.
func FormatAdminFlag(admin bool) string {
	if admin {
		return AdminFlagTrue
	}
	return AdminFlagFalse
}

// NormalizeIdentifier is the single coercion applied to identifiers before
// they are stored or compared.
func NormalizeIdentifier(raw string) string {
	return strings.TrimSpace(raw)
}
