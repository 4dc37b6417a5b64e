package uow

import (
	"context"

	"lendmitra-backend/internal/domain/application"
	"lendmitra-backend/internal/domain/approval"
	"lendmitra-backend/internal/domain/mandate"
)

type Repos struct {
	Applications application.Repository
	Approvals    approval.Repository
	Mandates     mandate.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the application row first, then pass it in
	WithinApplicationTx(ctx context.Context, applicationID string, fn func(r Repos, a *application.LoanApplication) error) error
}
