package models

import "time"

// Subscription tiers. Free users are limited to one newly started level per
// UTC day; pro users are not.
const (
	TierFree = "free"
	TierPro  = "pro"
)

// User represents a player account in the system
type User struct {
	ID               int64
	Email            string
	PasswordHash     string
	Name             string
	SubscriptionTier string
	OAuthProvider    string
	OAuthSubject     string
	IsAdmin          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsFreeTier reports whether the daily level quota applies to this user.
// Anything other than an explicit pro tier is treated as free.
func (u *User) IsFreeTier() bool {
	return u.SubscriptionTier != TierPro
}

// PasswordResetToken represents a token for password reset
type PasswordResetToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
	Used      bool
}

// IsExpired checks if the reset token has expired
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
