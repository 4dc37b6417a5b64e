package appmock

import (
	"context"

	domain "lendmitra-backend/internal/domain/application"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only fill in the function fields a test needs; nil getters return
// context.Canceled, nil writers are no-ops.
type Repo struct {
	CreateFn                      func(ctx context.Context, a *domain.LoanApplication) error
	SaveFn                        func(ctx context.Context, a *domain.LoanApplication) error
	GetByApplicationIDFn          func(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	GetByApplicationIDForUpdateFn func(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	ListByStageFn                 func(ctx context.Context, orgID string, stage domain.Stage) ([]domain.LoanApplication, error)
	CountByStatusFn               func(ctx context.Context, orgID string) (map[domain.Status]int64, error)
	SumDisbursedFn                func(ctx context.Context, orgID string) (float64, error)
	CreateApplicantFn             func(ctx context.Context, ap *domain.Applicant) error
	SaveApplicantFn               func(ctx context.Context, ap *domain.Applicant) error
	GetPrimaryApplicantFn         func(ctx context.Context, applicationNumericID uint64) (*domain.Applicant, error)
	GetReferralCodeFn             func(ctx context.Context, code string) (*domain.ReferralCode, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.LoanApplication) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, a *domain.LoanApplication) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByStage(ctx context.Context, orgID string, stage domain.Stage) ([]domain.LoanApplication, error) {
	if m.ListByStageFn != nil {
		return m.ListByStageFn(ctx, orgID, stage)
	}
	return nil, context.Canceled
}

func (m *Repo) CountByStatus(ctx context.Context, orgID string) (map[domain.Status]int64, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx, orgID)
	}
	return nil, context.Canceled
}

func (m *Repo) SumDisbursed(ctx context.Context, orgID string) (float64, error) {
	if m.SumDisbursedFn != nil {
		return m.SumDisbursedFn(ctx, orgID)
	}
	return 0, context.Canceled
}

func (m *Repo) CreateApplicant(ctx context.Context, ap *domain.Applicant) error {
	if m.CreateApplicantFn != nil {
		return m.CreateApplicantFn(ctx, ap)
	}
	return nil
}

func (m *Repo) SaveApplicant(ctx context.Context, ap *domain.Applicant) error {
	if m.SaveApplicantFn != nil {
		return m.SaveApplicantFn(ctx, ap)
	}
	return nil
}

func (m *Repo) GetPrimaryApplicant(ctx context.Context, applicationNumericID uint64) (*domain.Applicant, error) {
	if m.GetPrimaryApplicantFn != nil {
		return m.GetPrimaryApplicantFn(ctx, applicationNumericID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetReferralCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	if m.GetReferralCodeFn != nil {
		return m.GetReferralCodeFn(ctx, code)
	}
	return nil, context.Canceled
}
