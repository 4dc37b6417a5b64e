package mysql

import (
	"context"

	appDomain "lendmitra-backend/internal/domain/application"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *appDomain.LoanApplication) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) Save(ctx context.Context, a *appDomain.LoanApplication) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*appDomain.LoanApplication, error) {
	var out appDomain.LoanApplication
	res := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*appDomain.LoanApplication, error) {
	var out appDomain.LoanApplication
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ?", applicationID).
		First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) ListByStage(ctx context.Context, orgID string, stage appDomain.Stage) ([]appDomain.LoanApplication, error) {
	var out []appDomain.LoanApplication
	res := r.db.WithContext(ctx).
		Where("org_id = ? AND stage = ?", orgID, stage).
		Order("stage_updated_at ASC").
		Find(&out)
	return out, res.Error
}

func (r *ApplicationRepository) CountByStatus(ctx context.Context, orgID string) (map[appDomain.Status]int64, error) {
	type row struct {
		Status appDomain.Status
		N      int64
	}
	var rows []row
	res := r.db.WithContext(ctx).
		Model(&appDomain.LoanApplication{}).
		Select("status, count(*) as n").
		Where("org_id = ?", orgID).
		Group("status").
		Scan(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	out := make(map[appDomain.Status]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}

func (r *ApplicationRepository) SumDisbursed(ctx context.Context, orgID string) (float64, error) {
	var total float64
	res := r.db.WithContext(ctx).
		Model(&appDomain.LoanApplication{}).
		Select("coalesce(sum(disbursed_amount), 0)").
		Where("org_id = ? AND status = ?", orgID, appDomain.StatusDisbursed).
		Scan(&total)
	return total, res.Error
}

func (r *ApplicationRepository) CreateApplicant(ctx context.Context, ap *appDomain.Applicant) error {
	return r.db.WithContext(ctx).Create(ap).Error
}

func (r *ApplicationRepository) SaveApplicant(ctx context.Context, ap *appDomain.Applicant) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

func (r *ApplicationRepository) GetPrimaryApplicant(ctx context.Context, applicationNumericID uint64) (*appDomain.Applicant, error) {
	var out appDomain.Applicant
	res := r.db.WithContext(ctx).
		Where("application_id = ? AND type = ?", applicationNumericID, appDomain.ApplicantPrimary).
		First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) GetReferralCode(ctx context.Context, code string) (*appDomain.ReferralCode, error) {
	var out appDomain.ReferralCode
	res := r.db.WithContext(ctx).Where("code = ?", code).First(&out)
	return &out, res.Error
}
