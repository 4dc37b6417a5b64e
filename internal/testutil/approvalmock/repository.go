package approvalmock

import (
	"context"

	domain "lendmitra-backend/internal/domain/approval"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn            func(ctx context.Context, r *domain.Record) error
	ListByApplicationFn func(ctx context.Context, applicationNumericID uint64) ([]domain.Record, error)
	GetByRoleFn         func(ctx context.Context, applicationNumericID uint64, role string) (*domain.Record, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Record) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) ListByApplication(ctx context.Context, applicationNumericID uint64) ([]domain.Record, error) {
	if m.ListByApplicationFn != nil {
		return m.ListByApplicationFn(ctx, applicationNumericID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByRole(ctx context.Context, applicationNumericID uint64, role string) (*domain.Record, error) {
	if m.GetByRoleFn != nil {
		return m.GetByRoleFn(ctx, applicationNumericID, role)
	}
	return nil, context.Canceled
}
