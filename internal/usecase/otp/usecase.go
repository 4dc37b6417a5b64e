package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"time"

	domain "lendmitra-backend/internal/domain/consent"
	"lendmitra-backend/pkg/id"

	"gorm.io/gorm"
)

// 10-digit Indian mobile, first digit 6-9.
var reMobile = regexp.MustCompile(`^[6-9][0-9]{9}$`)

type Usecase struct {
	orgID string
	repo  domain.Repository
	now   func() time.Time
}

func NewUsecase(orgID string, repo domain.Repository) *Usecase {
	return &Usecase{orgID: orgID, repo: repo, now: time.Now}
}

type IssueResult struct {
	OTPID     string    `json:"otp_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issue invalidates every live code for the mobile before creating a new
// 6-digit code. Sequential, unguarded by a transaction: a concurrent issue
// for the same mobile can briefly leave two live codes (accepted race).
func (u *Usecase) Issue(ctx context.Context, mobile string) (*IssueResult, error) {
	if !reMobile.MatchString(mobile) {
		return nil, domain.ErrInvalidMobile
	}
	now := u.now().UTC()

	if err := u.repo.ExpireLiveByMobile(ctx, mobile, now); err != nil {
		return nil, err
	}

	o := &domain.OTP{
		OTPID:     id.NewID32(),
		OrgID:     u.orgID,
		Mobile:    mobile,
		Code:      newCode(),
		ExpiresAt: now.Add(domain.Validity),
	}
	if err := u.repo.CreateOTP(ctx, o); err != nil {
		return nil, err
	}
	return &IssueResult{OTPID: o.OTPID, ExpiresAt: o.ExpiresAt}, nil
}

type VerifyResult struct {
	Verified   bool      `json:"verified"`
	VerifiedAt time.Time `json:"verified_at"`
}

// Verify checks the latest live code for the mobile. The attempt counter is
// bumped unconditionally; a verified record can never be un-verified.
func (u *Usecase) Verify(ctx context.Context, mobile, code string) (*VerifyResult, error) {
	if !reMobile.MatchString(mobile) {
		return nil, domain.ErrInvalidMobile
	}
	now := u.now().UTC()

	o, err := u.repo.LatestLiveByMobile(ctx, mobile, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No live record: distinguish expired/used from never-issued by
			// falling back to the latest record regardless of liveness.
			return nil, u.classifyDead(ctx, mobile, now)
		}
		return nil, err
	}

	o.Attempts++
	if err := u.repo.SaveOTP(ctx, o); err != nil {
		return nil, err
	}

	switch {
	case o.VerifiedAt != nil:
		return nil, domain.ErrAlreadyUsed
	case now.After(o.ExpiresAt):
		return nil, domain.ErrExpired
	case o.Attempts > domain.MaxAttempts:
		return nil, domain.ErrAttemptsExceeded
	case o.Code != code:
		remaining := domain.MaxAttempts - o.Attempts
		if remaining < 0 {
			remaining = 0
		}
		return nil, fmt.Errorf("%w: %d attempts remaining", domain.ErrCodeMismatch, remaining)
	}

	o.VerifiedAt = &now
	if err := u.repo.SaveOTP(ctx, o); err != nil {
		return nil, err
	}
	return &VerifyResult{Verified: true, VerifiedAt: now}, nil
}

// classifyDead maps an absent live record onto the precise failure.
func (u *Usecase) classifyDead(ctx context.Context, mobile string, now time.Time) error {
	latest, err := u.repo.LatestByMobile(ctx, mobile)
	if err != nil {
		return domain.ErrOTPNotFound
	}
	// expiry outranks the used check: a lapsed record answers Expired even
	// when it was verified inside its window
	if now.After(latest.ExpiresAt) {
		return domain.ErrExpired
	}
	if latest.VerifiedAt != nil {
		return domain.ErrAlreadyUsed
	}
	return domain.ErrOTPNotFound
}

type ConsentInput struct {
	UserRef string `json:"user_ref"`
	Purpose string `json:"purpose"`
	Version string `json:"version"`
}

// RecordConsent is fire-and-forget: a persistence failure is logged and
// swallowed so it never blocks the caller's primary flow.
func (u *Usecase) RecordConsent(ctx context.Context, in ConsentInput) {
	c := &domain.Consent{
		ConsentID:   id.NewID32(),
		OrgID:       u.orgID,
		UserRef:     in.UserRef,
		Purpose:     in.Purpose,
		Version:     in.Version,
		ConsentedAt: u.now().UTC(),
	}
	if err := u.repo.CreateConsent(ctx, c); err != nil {
		log.Printf("consent persist failed (user=%s purpose=%s): %v", in.UserRef, in.Purpose, err)
	}
}

// WithdrawConsent stamps withdrawn_at on the latest active consent. It is a
// real operation with a real error: withdrawal must not be best-effort.
func (u *Usecase) WithdrawConsent(ctx context.Context, userRef, purpose string) error {
	c, err := u.repo.LatestActiveConsent(ctx, userRef, purpose)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrConsentNotFound
		}
		return err
	}
	now := u.now().UTC()
	c.WithdrawnAt = &now
	return u.repo.SaveConsent(ctx, c)
}

func (u *Usecase) ListConsents(ctx context.Context, userRef string) ([]domain.Consent, error) {
	return u.repo.ListConsents(ctx, userRef)
}

func newCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		n = big.NewInt(time.Now().UnixNano() % 1_000_000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}
