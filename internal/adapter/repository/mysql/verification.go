package mysql

import (
	"context"

	verificationDomain "lendmitra-backend/internal/domain/verification"

	"gorm.io/gorm"
)

type VerificationRepository struct{ db *gorm.DB }

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Create(ctx context.Context, rec *verificationDomain.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *VerificationRepository) LatestByType(ctx context.Context, applicationNumericID uint64, t verificationDomain.Type) (*verificationDomain.Record, error) {
	var out verificationDomain.Record
	res := r.db.WithContext(ctx).
		Where("application_id = ? AND type = ?", applicationNumericID, t).
		Order("created_at DESC, id DESC").
		First(&out)
	return &out, res.Error
}

func (r *VerificationRepository) ListByApplication(ctx context.Context, applicationNumericID uint64) ([]verificationDomain.Record, error) {
	var out []verificationDomain.Record
	res := r.db.WithContext(ctx).
		Where("application_id = ?", applicationNumericID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}
