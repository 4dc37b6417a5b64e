package mandate

import "context"

type Repository interface {
	Create(ctx context.Context, m *Mandate) error
	Save(ctx context.Context, m *Mandate) error
	GetByMandateID(ctx context.Context, mandateID string) (*Mandate, error)
	// LatestByApplication returns the newest mandate row by created_at.
	LatestByApplication(ctx context.Context, applicationNumericID uint64) (*Mandate, error)

	GetToken(ctx context.Context, orgID, environment string) (*AccessToken, error)
	// UpsertToken replaces the cached token for (org, environment).
	UpsertToken(ctx context.Context, t *AccessToken) error
}
