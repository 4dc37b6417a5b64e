package esign

import (
	"context"
	"errors"
	"log"
	"time"

	domainApp "lendmitra-backend/internal/domain/application"
	domain "lendmitra-backend/internal/domain/esign"
	"lendmitra-backend/internal/provider"
	"lendmitra-backend/pkg/id"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenTTL is the fixed validity window for signer access tokens.
const TokenTTL = 72 * time.Hour

// Provider is the slice of the e-sign client this usecase needs.
type Provider interface {
	CreateSession(ctx context.Context, orgID string, env provider.Environment, documentType, signerName, signerMobile string) (*provider.SignSession, error)
	SessionStatus(ctx context.Context, orgID string, env provider.Environment, providerRef string) (string, error)
}

type Usecase struct {
	orgID  string
	env    provider.Environment
	apps   domainApp.Repository
	repo   domain.Repository
	client Provider
	now    func() time.Time
}

func NewUsecase(orgID string, env provider.Environment, apps domainApp.Repository, repo domain.Repository, client Provider) *Usecase {
	return &Usecase{orgID: orgID, env: env, apps: apps, repo: repo, client: client, now: time.Now}
}

type RequestInput struct {
	ApplicationID string `json:"application_id"`
	DocumentType  string `json:"document_type"`
	SignerName    string `json:"signer_name"`
	SignerMobile  string `json:"signer_mobile"`
}

type RequestDTO struct {
	RequestID      string     `json:"request_id"`
	DocumentType   string     `json:"document_type"`
	Status         string     `json:"status"`
	SignerURL      string     `json:"signer_url,omitempty"`
	AccessToken    string     `json:"access_token,omitempty"`
	TokenExpiresAt time.Time  `json:"token_expires_at"`
	SignedAt       *time.Time `json:"signed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RequestSignature opens a provider signing session and hands back a signer
// URL plus a time-boxed access token.
func (u *Usecase) RequestSignature(ctx context.Context, in RequestInput) (*RequestDTO, error) {
	a, err := u.apps.GetByApplicationID(ctx, in.ApplicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainApp.ErrNotFound
		}
		return nil, err
	}

	session, err := u.client.CreateSession(ctx, u.orgID, u.env, in.DocumentType, in.SignerName, in.SignerMobile)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	r := &domain.Request{
		RequestID:      id.NewID32(),
		ApplicationID:  a.ID,
		OrgID:          u.orgID,
		DocumentType:   in.DocumentType,
		SignerName:     in.SignerName,
		SignerMobile:   in.SignerMobile,
		Status:         domain.StatusSent,
		Provider:       session.Provider,
		ProviderRef:    session.ProviderRef,
		SignerURL:      session.SignerURL,
		AccessToken:    uuid.NewString(),
		TokenExpiresAt: now.Add(TokenTTL),
	}
	if err := u.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	u.audit(ctx, r.ID, "requested", "")

	return toDTO(r, true), nil
}

type TokenVerifyResult struct {
	RequestID     string `json:"request_id"`
	DocumentType  string `json:"document_type"`
	Status        string `json:"status"`
	SignerURL     string `json:"signer_url,omitempty"`
	AlreadySigned bool   `json:"already_signed"`
}

// VerifyAccessToken resolves a signer token. The first successful view moves
// sent→viewed and logs it; later views only log. A lapsed token fails
// regardless of document status; the already-signed short-circuit applies
// only while the token is still valid.
func (u *Usecase) VerifyAccessToken(ctx context.Context, token, callerIP string) (*TokenVerifyResult, error) {
	r, err := u.repo.GetByAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if u.now().UTC().After(r.TokenExpiresAt) {
		return nil, domain.ErrTokenExpired
	}
	if r.Status == domain.StatusSigned {
		return &TokenVerifyResult{
			RequestID:     r.RequestID,
			DocumentType:  r.DocumentType,
			Status:        string(r.Status),
			AlreadySigned: true,
		}, nil
	}

	if r.Status == domain.StatusPending || r.Status == domain.StatusSent {
		r.Status = domain.StatusViewed
		if err := u.repo.Save(ctx, r); err != nil {
			return nil, err
		}
	}
	u.audit(ctx, r.ID, "viewed", callerIP)

	return &TokenVerifyResult{
		RequestID:    r.RequestID,
		DocumentType: r.DocumentType,
		Status:       string(r.Status),
		SignerURL:    r.SignerURL,
	}, nil
}

// CheckStatus polls the provider while the request is non-terminal. Once a
// terminal state lands, the stored row is final and the provider is no
// longer consulted.
func (u *Usecase) CheckStatus(ctx context.Context, requestID string) (*RequestDTO, error) {
	r, err := u.repo.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if r.Status.Terminal() {
		return toDTO(r, false), nil
	}

	remote, err := u.client.SessionStatus(ctx, u.orgID, u.env, r.ProviderRef)
	if err != nil {
		return nil, err
	}
	next := domain.Status(remote)
	if next != r.Status && validStatus(next) {
		r.Status = next
		if next == domain.StatusSigned {
			now := u.now().UTC()
			r.SignedAt = &now
		}
		if err := u.repo.Save(ctx, r); err != nil {
			return nil, err
		}
		u.audit(ctx, r.ID, "status_"+remote, "")
	}
	return toDTO(r, false), nil
}

// MarkSigned is the webhook complement to polling.
func (u *Usecase) MarkSigned(ctx context.Context, requestID string) (*RequestDTO, error) {
	r, err := u.repo.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if r.Status == domain.StatusSigned {
		return toDTO(r, false), nil
	}
	if r.Status.Terminal() {
		return nil, domain.ErrAlreadySigned
	}
	now := u.now().UTC()
	r.Status = domain.StatusSigned
	r.SignedAt = &now
	if err := u.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	u.audit(ctx, r.ID, "signed", "")
	return toDTO(r, false), nil
}

func (u *Usecase) AuditTrail(ctx context.Context, requestID string) ([]domain.AuditEntry, error) {
	r, err := u.repo.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u.repo.ListAudit(ctx, r.ID)
}

// audit appends a log entry; a persistence failure is logged and swallowed so
// it never blocks the signing flow.
func (u *Usecase) audit(ctx context.Context, requestNumericID uint64, action, ip string) {
	err := u.repo.AppendAudit(ctx, &domain.AuditEntry{
		EntryID:   uuid.NewString(),
		RequestID: requestNumericID,
		Action:    action,
		CallerIP:  ip,
	})
	if err != nil {
		log.Printf("esign audit persist failed (request=%d action=%s): %v", requestNumericID, action, err)
	}
}

func validStatus(s domain.Status) bool {
	switch s {
	case domain.StatusPending, domain.StatusSent, domain.StatusViewed,
		domain.StatusSigned, domain.StatusExpired, domain.StatusFailed:
		return true
	}
	return false
}

func toDTO(r *domain.Request, includeToken bool) *RequestDTO {
	dto := &RequestDTO{
		RequestID:      r.RequestID,
		DocumentType:   r.DocumentType,
		Status:         string(r.Status),
		SignerURL:      r.SignerURL,
		TokenExpiresAt: r.TokenExpiresAt,
		SignedAt:       r.SignedAt,
		CreatedAt:      r.CreatedAt,
	}
	if includeToken {
		dto.AccessToken = r.AccessToken
	}
	return dto
}
