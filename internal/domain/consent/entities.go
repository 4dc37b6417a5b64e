package consent

import (
	"errors"
	"time"
)

var (
	ErrOTPNotFound      = errors.New("otp not found")
	ErrConsentNotFound  = errors.New("consent record not found")
	ErrInvalidMobile    = errors.New("invalid mobile number")
	ErrExpired          = errors.New("otp expired")
	ErrAlreadyUsed      = errors.New("otp already used")
	ErrAttemptsExceeded = errors.New("otp attempts exceeded")
	ErrCodeMismatch     = errors.New("otp code mismatch")
)

// MaxAttempts caps verify calls per OTP record.
const MaxAttempts = 5

// Validity is the OTP expiry window used by the consent flow.
const Validity = 10 * time.Minute

// Consent rows are append-only; withdrawal is a timestamp, never a delete.
type Consent struct {
	ID          uint64     `gorm:"primaryKey;column:id" json:"-"`
	ConsentID   string     `gorm:"size:32;uniqueIndex:ux_consents_consent_id" json:"consent_id"`
	OrgID       string     `gorm:"size:32;index" json:"org_id"`
	UserRef     string     `gorm:"size:64;index:idx_consents_user" json:"user_ref"`
	Purpose     string     `gorm:"size:64;index:idx_consents_user" json:"purpose"`
	Version     string     `gorm:"size:16" json:"version"`
	ConsentedAt time.Time  `json:"consented_at"`
	WithdrawnAt *time.Time `json:"withdrawn_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Consent) TableName() string { return "consent_records" }

type OTP struct {
	ID         uint64     `gorm:"primaryKey;column:id" json:"-"`
	OTPID      string     `gorm:"column:otp_id;size:32;uniqueIndex:ux_otps_otp_id" json:"otp_id"`
	OrgID      string     `gorm:"size:32" json:"org_id"`
	Mobile     string     `gorm:"size:10;index:idx_otps_mobile" json:"mobile"`
	Code       string     `gorm:"size:6" json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Attempts   int        `gorm:"default:0" json:"attempts"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OTP) TableName() string { return "otp_verifications" }

// Live reports whether the record can still be verified: unverified and
// unexpired as of now.
func (o *OTP) Live(now time.Time) bool {
	return o.VerifiedAt == nil && now.Before(o.ExpiresAt)
}
