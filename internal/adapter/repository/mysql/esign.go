package mysql

import (
	"context"

	esignDomain "lendmitra-backend/internal/domain/esign"

	"gorm.io/gorm"
)

type ESignRepository struct{ db *gorm.DB }

func NewESignRepository(db *gorm.DB) *ESignRepository { return &ESignRepository{db: db} }

func (r *ESignRepository) Create(ctx context.Context, req *esignDomain.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *ESignRepository) Save(ctx context.Context, req *esignDomain.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *ESignRepository) GetByRequestID(ctx context.Context, requestID string) (*esignDomain.Request, error) {
	var out esignDomain.Request
	res := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&out)
	return &out, res.Error
}

func (r *ESignRepository) GetByAccessToken(ctx context.Context, token string) (*esignDomain.Request, error) {
	var out esignDomain.Request
	res := r.db.WithContext(ctx).Where("access_token = ?", token).First(&out)
	return &out, res.Error
}

func (r *ESignRepository) ListByApplication(ctx context.Context, applicationNumericID uint64) ([]esignDomain.Request, error) {
	var out []esignDomain.Request
	res := r.db.WithContext(ctx).
		Where("application_id = ?", applicationNumericID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *ESignRepository) AppendAudit(ctx context.Context, e *esignDomain.AuditEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ESignRepository) ListAudit(ctx context.Context, requestNumericID uint64) ([]esignDomain.AuditEntry, error) {
	var out []esignDomain.AuditEntry
	res := r.db.WithContext(ctx).
		Where("request_id = ?", requestNumericID).
		Order("at ASC, id ASC").
		Find(&out)
	return out, res.Error
}
