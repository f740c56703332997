package models

import "time"

// User is the persistence shape of an account row.
type User struct {
	UserID         string `db:"user_id"`
	Username       string `db:"username"`
	Name           string `db:"name"`
	Email          string `db:"email"`
	PasswordHash   string `db:"password_hash"`
	AuthProvider   string `db:"auth_provider"`
	ProviderUserID string `db:"provider_user_id"`
	EmailVerified  bool   `db:"email_verified"`

	RefreshTokenHash       string     `db:"refresh_token_hash"`
	RefreshTokenExpiryTime *time.Time `db:"refresh_token_expiry_time"`

	AuditFields
}
