package consent

import (
	"context"
	"time"
)

type Repository interface {
	CreateConsent(ctx context.Context, c *Consent) error
	SaveConsent(ctx context.Context, c *Consent) error
	// LatestActiveConsent returns the newest un-withdrawn consent for
	// (userRef, purpose).
	LatestActiveConsent(ctx context.Context, userRef, purpose string) (*Consent, error)
	ListConsents(ctx context.Context, userRef string) ([]Consent, error)

	CreateOTP(ctx context.Context, o *OTP) error
	SaveOTP(ctx context.Context, o *OTP) error
	// LatestLiveByMobile returns the newest unverified, unexpired OTP.
	LatestLiveByMobile(ctx context.Context, mobile string, now time.Time) (*OTP, error)
	// LatestByMobile returns the newest OTP regardless of liveness.
	LatestByMobile(ctx context.Context, mobile string) (*OTP, error)
	// ExpireLiveByMobile sets expires_at=now on every live OTP for the mobile.
	ExpireLiveByMobile(ctx context.Context, mobile string, now time.Time) error
}
