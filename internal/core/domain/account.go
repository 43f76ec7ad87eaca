package domain

import (
	"crypto/subtle"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AccountStatus tracks whether the owner has proven control of the email address.
type AccountStatus string

const (
	StatusUnverified AccountStatus = "unverified"
	StatusVerified   AccountStatus = "verified"
)

// ProfileImage references an image stored at the external image host.
type ProfileImage struct {
	ExternalID string `json:"external_id" bson:"external_id"`
	URL        string `json:"url" bson:"url"`
}

// Account models a registered user.
type Account struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	PasswordHash    string        `json:"-"`
	Role            string        `json:"role"`
	Status          AccountStatus `json:"status"`
	OTP             string        `json:"-"`
	OTPExpires      *time.Time    `json:"-"`
	ProfileImage    *ProfileImage `json:"profile_image,omitempty"`
	SessionIssuedAt *time.Time    `json:"-"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// HasPendingOTP reports whether a code is stored together with its expiry.
// A code without an expiry is never usable.
func (a *Account) HasPendingOTP() bool {
	return a.OTP != "" && a.OTPExpires != nil
}

// OTPExpired reports whether the pending code can no longer be used at now.
// Expiry is strict: now == OTPExpires counts as expired.
func (a *Account) OTPExpired(now time.Time) bool {
	if !a.HasPendingOTP() {
		return true
	}
	return !now.Before(*a.OTPExpires)
}

// OTPMatches reports whether candidate is the pending, unexpired code.
func (a *Account) OTPMatches(candidate string, now time.Time) bool {
	if candidate == "" || a.OTPExpired(now) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.OTP), []byte(candidate)) == 1
}

// Verified reports whether the account completed email verification.
func (a *Account) Verified() bool {
	return a.Status == StatusVerified
}
