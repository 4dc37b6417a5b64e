package mandate

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainApp "lendmitra-backend/internal/domain/application"
	domain "lendmitra-backend/internal/domain/mandate"
	"lendmitra-backend/internal/domain/uow"
	domainVerification "lendmitra-backend/internal/domain/verification"
	"lendmitra-backend/internal/provider"
	"lendmitra-backend/pkg/id"

	"gorm.io/gorm"
)

// tokenSafetyBuffer keeps cached tokens comfortably inside the provider's
// stated TTL.
const tokenSafetyBuffer = 5 * time.Minute

// PaymentsProvider is the slice of the gateway client this usecase needs.
type PaymentsProvider interface {
	Authenticate(ctx context.Context, orgID string, env provider.Environment) (token string, ttl time.Duration, err error)
	RegisterMandate(ctx context.Context, orgID string, env provider.Environment, token string, amount float64, collectionDate time.Time) (string, error)
	MandateStatus(ctx context.Context, orgID string, env provider.Environment, token, providerRef string) (status, umrn string, err error)
	PennyDrop(ctx context.Context, orgID string, env provider.Environment, token, account, ifsc string) (valid bool, holderName string, err error)
	Payout(ctx context.Context, orgID string, env provider.Environment, token string, amount float64, account, ifsc string) (string, error)
}

type Usecase struct {
	orgID   string
	env     provider.Environment
	repo    domain.Repository
	apps    domainApp.Repository
	records domainVerification.Repository
	client  PaymentsProvider
	uow     uow.UnitOfWork
	now     func() time.Time
}

func NewUsecase(orgID string, env provider.Environment, repo domain.Repository, apps domainApp.Repository, records domainVerification.Repository, client PaymentsProvider, tx uow.UnitOfWork) *Usecase {
	return &Usecase{orgID: orgID, env: env, repo: repo, apps: apps, records: records, client: client, uow: tx, now: time.Now}
}

// GetAccessToken returns a cached gateway token when its expiry clears the
// safety buffer, otherwise fetches a fresh one and upserts the cache.
// Concurrent callers may both fetch; last write wins and both tokens work.
func (u *Usecase) GetAccessToken(ctx context.Context) (string, error) {
	now := u.now().UTC()

	cached, err := u.repo.GetToken(ctx, u.orgID, string(u.env))
	if err == nil && cached.ExpiresAt.After(now.Add(tokenSafetyBuffer)) {
		return cached.Token, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	token, ttl, err := u.client.Authenticate(ctx, u.orgID, u.env)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenMissing, err)
	}
	expiry := now.Add(ttl - tokenSafetyBuffer)
	if ttl <= tokenSafetyBuffer {
		expiry = now.Add(ttl / 2)
	}
	if err := u.repo.UpsertToken(ctx, &domain.AccessToken{
		OrgID:       u.orgID,
		Environment: string(u.env),
		Token:       token,
		ExpiresAt:   expiry,
	}); err != nil {
		return "", err
	}
	return token, nil
}

type CreateInput struct {
	ApplicationID    string    `json:"application_id"`
	CollectionAmount float64   `json:"collection_amount"`
	CollectionDate   time.Time `json:"collection_date"`
}

type MandateDTO struct {
	MandateID        string     `json:"mandate_id"`
	Status           string     `json:"status"`
	UMRN             string     `json:"umrn,omitempty"`
	ProviderRef      string     `json:"provider_ref,omitempty"`
	CollectionAmount float64    `json:"collection_amount"`
	CollectionDate   *time.Time `json:"collection_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Create registers a fresh eMandate attempt. Token acquisition failure is
// fatal here, never retried in the background.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*MandateDTO, error) {
	a, err := u.apps.GetByApplicationID(ctx, in.ApplicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainApp.ErrNotFound
		}
		return nil, err
	}

	token, err := u.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	ref, err := u.client.RegisterMandate(ctx, u.orgID, u.env, token, in.CollectionAmount, in.CollectionDate)
	if err != nil {
		return nil, err
	}

	date := in.CollectionDate
	m := &domain.Mandate{
		MandateID:        id.NewID32(),
		ApplicationID:    a.ID,
		OrgID:            u.orgID,
		Status:           domain.StatusInitiated,
		ProviderRef:      ref,
		CollectionAmount: in.CollectionAmount,
		CollectionDate:   &date,
	}
	if err := u.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return toDTO(m), nil
}

// CheckStatus refreshes a non-terminal mandate from the gateway.
func (u *Usecase) CheckStatus(ctx context.Context, mandateID string) (*MandateDTO, error) {
	m, err := u.repo.GetByMandateID(ctx, mandateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if m.Status.Terminal() {
		return toDTO(m), nil
	}

	token, err := u.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	status, umrn, err := u.client.MandateStatus(ctx, u.orgID, u.env, token, m.ProviderRef)
	if err != nil {
		return nil, err
	}
	next := domain.Status(status)
	if next != m.Status && validStatus(next) {
		m.Status = next
		if umrn != "" {
			m.UMRN = umrn
		}
		if err := u.repo.Save(ctx, m); err != nil {
			return nil, err
		}
	}
	return toDTO(m), nil
}

// Latest returns the authoritative (newest) mandate for the application, or
// nil when none exists — callers render nothing in that case.
func (u *Usecase) Latest(ctx context.Context, applicationID string) (*MandateDTO, error) {
	a, err := u.apps.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainApp.ErrNotFound
		}
		return nil, err
	}
	m, err := u.repo.LatestByApplication(ctx, a.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDTO(m), nil
}

// PennyDrop validates a payout account via the gateway and records the
// attempt as a bank_account verification for audit.
func (u *Usecase) PennyDrop(ctx context.Context, applicationID, account, ifsc string) (bool, string, error) {
	a, err := u.apps.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, "", domainApp.ErrNotFound
		}
		return false, "", err
	}

	token, err := u.GetAccessToken(ctx)
	if err != nil {
		return false, "", err
	}
	valid, holder, err := u.client.PennyDrop(ctx, u.orgID, u.env, token, account, ifsc)

	rec := &domainVerification.Record{
		RecordID:      id.NewID32(),
		ApplicationID: a.ID,
		OrgID:         u.orgID,
		Type:          domainVerification.TypeBankAccount,
		Provider:      "paygate",
		Verified:      valid,
	}
	switch {
	case err != nil:
		rec.Status = domainVerification.StatusFailed
		rec.Message = err.Error()
	case valid:
		rec.Status = domainVerification.StatusSuccess
	default:
		rec.Status = domainVerification.StatusFailed
		rec.Message = "penny drop reported invalid account"
	}
	_ = u.records.Create(ctx, rec)

	if err != nil {
		return false, "", err
	}
	return valid, holder, nil
}

type DisburseInput struct {
	ApplicationID string `json:"application_id"`
	Account       string `json:"account_number"`
	IFSC          string `json:"ifsc"`
}

// Disburse pays out a sanctioned application. Requires the stage to be
// disbursement_pending and an active/registered mandate on file.
func (u *Usecase) Disburse(ctx context.Context, in DisburseInput) (*MandateDTO, error) {
	token, err := u.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var dto *MandateDTO
	err = u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *domainApp.LoanApplication) error {
		if a.Stage != domainApp.StageDisbursementPending {
			return domainApp.ErrInvalidTransition
		}
		m, err := r.Mandates.LatestByApplication(ctx, a.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if m.Status != domain.StatusActive && m.Status != domain.StatusApproved && m.Status != domain.StatusRegistered {
			return fmt.Errorf("mandate %s not ready for collection: %s", m.MandateID, m.Status)
		}

		if _, err := u.client.Payout(ctx, u.orgID, u.env, token, a.SanctionedAmount, in.Account, in.IFSC); err != nil {
			return err
		}

		a.DisbursedAmount = a.SanctionedAmount
		if err := a.Advance(string(domainApp.StageDisbursed), u.now()); err != nil {
			return err
		}
		if err := r.Applications.Save(ctx, a); err != nil {
			return err
		}
		dto = toDTO(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func validStatus(s domain.Status) bool {
	switch s {
	case domain.StatusInitiated, domain.StatusPending, domain.StatusRegistered,
		domain.StatusApproved, domain.StatusActive, domain.StatusRejected,
		domain.StatusFailed, domain.StatusCancelled:
		return true
	}
	return false
}

func toDTO(m *domain.Mandate) *MandateDTO {
	return &MandateDTO{
		MandateID:        m.MandateID,
		Status:           string(m.Status),
		UMRN:             m.UMRN,
		ProviderRef:      m.ProviderRef,
		CollectionAmount: m.CollectionAmount,
		CollectionDate:   m.CollectionDate,
		CreatedAt:        m.CreatedAt,
	}
}
