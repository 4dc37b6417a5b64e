package approval

import "context"

type Repository interface {
	// Create appends a decision (at most one per role per application,
	// enforced by the usecase).
	Create(ctx context.Context, r *Record) error
	ListByApplication(ctx context.Context, applicationNumericID uint64) ([]Record, error)
	GetByRole(ctx context.Context, applicationNumericID uint64, role string) (*Record, error)
}
