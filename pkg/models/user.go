package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleBuilder = "builder"
	RoleWorker  = "worker"
)

// User represents a team member. Email is unique across all organizations.
type User struct {
	ID             string  `json:"id" db:"id"`
	OrganizationID string  `json:"organizationId" db:"organization_id"`
	Name           string  `json:"name" db:"name"`
	Email          string  `json:"email" db:"email"`
	Role           string  `json:"role" db:"role"` // "builder", "worker" or an extended role string
	Avatar         string  `json:"avatar" db:"avatar"`
	Phone          *string `json:"phone,omitempty" db:"phone"`
	Company        *string `json:"company,omitempty" db:"company"`
	Password       string  `json:"-" db:"password_hash"` // Never return password in JSON
	IsAdmin        bool    `json:"isAdmin" db:"is_admin"`
	IsSuperAdmin   bool    `json:"isSuperAdmin" db:"is_super_admin"`
}

// CanModerate reports whether the user may remove content authored by others.
func (u *User) CanModerate() bool {
	return u != nil && (u.IsAdmin || u.IsSuperAdmin)
}

// TokenClaims represents the JWT token claims
type TokenClaims struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	OrganizationID string `json:"org_id"`
	Type           string `json:"type"` // "access" or "refresh"
	Exp            int64  `json:"exp"`
	Iat            int64  `json:"iat"`
}

// GetExpirationTime implements jwt.Claims interface
func (c *TokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}

// GetIssuedAt implements jwt.Claims interface
func (c *TokenClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Iat, 0)), nil
}

// GetNotBefore implements jwt.Claims interface
func (c *TokenClaims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims interface
func (c *TokenClaims) GetIssuer() (string, error) {
	return "", nil
}

// GetSubject implements jwt.Claims interface
func (c *TokenClaims) GetSubject() (string, error) {
	return c.UserID, nil
}

// GetAudience implements jwt.Claims interface
func (c *TokenClaims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}
