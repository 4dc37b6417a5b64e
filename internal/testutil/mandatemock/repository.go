package mandatemock

import (
	"context"

	domain "lendmitra-backend/internal/domain/mandate"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn              func(ctx context.Context, m *domain.Mandate) error
	SaveFn                func(ctx context.Context, m *domain.Mandate) error
	GetByMandateIDFn      func(ctx context.Context, mandateID string) (*domain.Mandate, error)
	LatestByApplicationFn func(ctx context.Context, applicationNumericID uint64) (*domain.Mandate, error)
	GetTokenFn            func(ctx context.Context, orgID, environment string) (*domain.AccessToken, error)
	UpsertTokenFn         func(ctx context.Context, t *domain.AccessToken) error
}

func (m *Repo) Create(ctx context.Context, md *domain.Mandate) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, md)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, md *domain.Mandate) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, md)
	}
	return nil
}

func (m *Repo) GetByMandateID(ctx context.Context, mandateID string) (*domain.Mandate, error) {
	if m.GetByMandateIDFn != nil {
		return m.GetByMandateIDFn(ctx, mandateID)
	}
	return nil, context.Canceled
}

func (m *Repo) LatestByApplication(ctx context.Context, applicationNumericID uint64) (*domain.Mandate, error) {
	if m.LatestByApplicationFn != nil {
		return m.LatestByApplicationFn(ctx, applicationNumericID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetToken(ctx context.Context, orgID, environment string) (*domain.AccessToken, error) {
	if m.GetTokenFn != nil {
		return m.GetTokenFn(ctx, orgID, environment)
	}
	return nil, context.Canceled
}

func (m *Repo) UpsertToken(ctx context.Context, t *domain.AccessToken) error {
	if m.UpsertTokenFn != nil {
		return m.UpsertTokenFn(ctx, t)
	}
	return nil
}
