package models

import (
	"time"

	"github.com/collegecab/collegecab-backend/internal/utils"
)

// OTPTTL is how long a one-time code stays valid after issuance.
const OTPTTL = 300 * time.Second

// OTPCredential is the pending one-time code attached to whichever
// record currently owns it: a PendingRegistration before verification,
// or a User for login. Only the SHA-256 hash is ever stored.
type OTPCredential struct {
	OTPHash      *string    `json:"-" gorm:"size:64"`
	OTPCreatedAt *time.Time `json:"-"`
}

// SetOTP stores the hash of a freshly generated code.
func (c *OTPCredential) SetOTP(code string, issuedAt time.Time) {
	hash := utils.HashOTP(code)
	c.OTPHash = &hash
	c.OTPCreatedAt = &issuedAt
}

// ClearOTP removes the credential after use (codes are single-use).
func (c *OTPCredential) ClearOTP() {
	c.OTPHash = nil
	c.OTPCreatedAt = nil
}

// OTPMatches compares the stored hash against the hash of the input.
// A cleared credential never matches.
func (c *OTPCredential) OTPMatches(code string) bool {
	if c.OTPHash == nil {
		return false
	}
	return *c.OTPHash == utils.HashOTP(code)
}

// OTPExpired reports whether the code is older than OTPTTL at the given
// time. A code exactly OTPTTL old is still valid.
func (c *OTPCredential) OTPExpired(now time.Time) bool {
	if c.OTPCreatedAt == nil {
		return true
	}
	return now.Sub(*c.OTPCreatedAt) > OTPTTL
}
