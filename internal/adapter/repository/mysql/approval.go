package mysql

import (
	"context"

	approvalDomain "lendmitra-backend/internal/domain/approval"

	"gorm.io/gorm"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

func (r *ApprovalRepository) Create(ctx context.Context, rec *approvalDomain.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *ApprovalRepository) ListByApplication(ctx context.Context, applicationNumericID uint64) ([]approvalDomain.Record, error) {
	var out []approvalDomain.Record
	res := r.db.WithContext(ctx).
		Where("application_id = ?", applicationNumericID).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *ApprovalRepository) GetByRole(ctx context.Context, applicationNumericID uint64, role string) (*approvalDomain.Record, error) {
	var out approvalDomain.Record
	res := r.db.WithContext(ctx).
		Where("application_id = ? AND approver_role = ?", applicationNumericID, role).
		First(&out)
	return &out, res.Error
}
