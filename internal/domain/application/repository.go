package application

import "context"

type Repository interface {
	Create(ctx context.Context, a *LoanApplication) error
	Save(ctx context.Context, a *LoanApplication) error
	GetByApplicationID(ctx context.Context, applicationID string) (*LoanApplication, error)
	// GetByApplicationIDForUpdate locks the row inside the current tx.
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*LoanApplication, error)
	ListByStage(ctx context.Context, orgID string, stage Stage) ([]LoanApplication, error)
	CountByStatus(ctx context.Context, orgID string) (map[Status]int64, error)
	SumDisbursed(ctx context.Context, orgID string) (float64, error)

	CreateApplicant(ctx context.Context, ap *Applicant) error
	SaveApplicant(ctx context.Context, ap *Applicant) error
	GetPrimaryApplicant(ctx context.Context, applicationNumericID uint64) (*Applicant, error)

	GetReferralCode(ctx context.Context, code string) (*ReferralCode, error)
}
