package esign

import "context"

type Repository interface {
	Create(ctx context.Context, r *Request) error
	Save(ctx context.Context, r *Request) error
	GetByRequestID(ctx context.Context, requestID string) (*Request, error)
	GetByAccessToken(ctx context.Context, token string) (*Request, error)
	ListByApplication(ctx context.Context, applicationNumericID uint64) ([]Request, error)

	AppendAudit(ctx context.Context, e *AuditEntry) error
	ListAudit(ctx context.Context, requestNumericID uint64) ([]AuditEntry, error)
}
