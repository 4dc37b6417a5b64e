package uowmock

import (
	"context"
	"errors"

	"lendmitra-backend/internal/domain/application"
	"lendmitra-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn            func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinApplicationTxFn func(ctx context.Context, applicationID string, fn func(r uow.Repos, a *application.LoanApplication) error) error
}

func New() *UoW { return &UoW{} }

// Locked wires WithinApplicationTx to hand fn the given repos and application,
// mimicking a successful row lock. Most tests want exactly this.
func Locked(r uow.Repos, a *application.LoanApplication) *UoW {
	return &UoW{
		WithinApplicationTxFn: func(ctx context.Context, applicationID string, fn func(uow.Repos, *application.LoanApplication) error) error {
			return fn(r, a)
		},
	}
}

func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinApplicationTx(ctx context.Context, applicationID string, fn func(r uow.Repos, a *application.LoanApplication) error) error {
	if m.WithinApplicationTxFn != nil {
		return m.WithinApplicationTxFn(ctx, applicationID, fn)
	}
	return errUnimplemented
}
