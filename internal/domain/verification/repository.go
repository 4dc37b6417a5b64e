package verification

import "context"

type Repository interface {
	// Create appends a record; verification history is never updated in place.
	Create(ctx context.Context, r *Record) error
	LatestByType(ctx context.Context, applicationNumericID uint64, t Type) (*Record, error)
	ListByApplication(ctx context.Context, applicationNumericID uint64) ([]Record, error)
}
