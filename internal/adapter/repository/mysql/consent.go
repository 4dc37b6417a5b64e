package mysql

import (
	"context"
	"time"

	consentDomain "lendmitra-backend/internal/domain/consent"

	"gorm.io/gorm"
)

type ConsentRepository struct{ db *gorm.DB }

func NewConsentRepository(db *gorm.DB) *ConsentRepository { return &ConsentRepository{db: db} }

func (r *ConsentRepository) CreateConsent(ctx context.Context, c *consentDomain.Consent) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ConsentRepository) SaveConsent(ctx context.Context, c *consentDomain.Consent) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *ConsentRepository) LatestActiveConsent(ctx context.Context, userRef, purpose string) (*consentDomain.Consent, error) {
	var out consentDomain.Consent
	res := r.db.WithContext(ctx).
		Where("user_ref = ? AND purpose = ? AND withdrawn_at IS NULL", userRef, purpose).
		Order("consented_at DESC, id DESC").
		First(&out)
	return &out, res.Error
}

func (r *ConsentRepository) ListConsents(ctx context.Context, userRef string) ([]consentDomain.Consent, error) {
	var out []consentDomain.Consent
	res := r.db.WithContext(ctx).
		Where("user_ref = ?", userRef).
		Order("consented_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *ConsentRepository) CreateOTP(ctx context.Context, o *consentDomain.OTP) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *ConsentRepository) SaveOTP(ctx context.Context, o *consentDomain.OTP) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *ConsentRepository) LatestLiveByMobile(ctx context.Context, mobile string, now time.Time) (*consentDomain.OTP, error) {
	var out consentDomain.OTP
	res := r.db.WithContext(ctx).
		Where("mobile = ? AND verified_at IS NULL AND expires_at > ?", mobile, now).
		Order("created_at DESC, id DESC").
		First(&out)
	return &out, res.Error
}

func (r *ConsentRepository) LatestByMobile(ctx context.Context, mobile string) (*consentDomain.OTP, error) {
	var out consentDomain.OTP
	res := r.db.WithContext(ctx).
		Where("mobile = ?", mobile).
		Order("created_at DESC, id DESC").
		First(&out)
	return &out, res.Error
}

func (r *ConsentRepository) ExpireLiveByMobile(ctx context.Context, mobile string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&consentDomain.OTP{}).
		Where("mobile = ? AND verified_at IS NULL AND expires_at > ?", mobile, now).
		Update("expires_at", now).Error
}
