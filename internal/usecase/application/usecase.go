package application

import (
	"context"
	"errors"
	"log"
	"time"

	domain "lendmitra-backend/internal/domain/application"
	domainApproval "lendmitra-backend/internal/domain/approval"
	"lendmitra-backend/internal/domain/uow"
	"lendmitra-backend/pkg/id"

	"gorm.io/gorm"
)

type Usecase struct {
	orgID string
	repo  domain.Repository
	uow   uow.UnitOfWork
}

// NewUsecase wires the application state machine. orgID is injected here so
// no component reads tenant identity from ambient globals.
func NewUsecase(orgID string, repo domain.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{orgID: orgID, repo: repo, uow: tx}
}

// CreateDraft starts an application in draft at the initial stage. Referral
// flows must present an active code. Applicant persistence is best-effort:
// the application row already exists and KYC will re-supply the fields.
func (u *Usecase) CreateDraft(ctx context.Context, in CreateDraftInput) (*ApplicationDTO, error) {
	if in.ReferralCode != "" {
		rc, err := u.repo.GetReferralCode(ctx, in.ReferralCode)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, domain.ErrInvalidReferralCode
		case err != nil:
			return nil, err
		case !rc.Active:
			return nil, domain.ErrInvalidReferralCode
		}
	}

	now := time.Now().UTC()
	a := &domain.LoanApplication{
		ApplicationID:   id.NewID32(),
		ApplicationNo:   id.NewApplicationNo(now),
		OrgID:           u.orgID,
		Status:          domain.StatusDraft,
		Stage:           domain.StageApplicationLogin,
		RequestedAmount: in.RequestedAmount,
		TenureDays:      in.TenureDays,
		DailyRate:       in.DailyRate,
		ReferralCode:    in.ReferralCode,
		StageUpdatedAt:  now,
	}
	if err := u.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	ap := &domain.Applicant{
		ApplicantID:   id.NewID32(),
		ApplicationID: a.ID,
		Type:          domain.ApplicantPrimary,
		Name:          in.Name,
		Mobile:        in.Mobile,
		Email:         in.Email,
		PAN:           in.PAN,
	}
	if err := u.repo.CreateApplicant(ctx, ap); err != nil {
		// Application is already persisted; do not fail the draft.
		log.Printf("applicant create failed for application %s: %v", a.ApplicationID, err)
	}

	return toDTO(a), nil
}

func (u *Usecase) Get(ctx context.Context, applicationID string) (*ApplicationDTO, error) {
	a, err := u.repo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDTO(a), nil
}

// AdvanceStage moves the application one position forward, or into a
// terminal status, under a row lock.
func (u *Usecase) AdvanceStage(ctx context.Context, applicationID, target string) (*ApplicationDTO, error) {
	var dto *ApplicationDTO
	err := u.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, a *domain.LoanApplication) error {
		if err := a.Advance(target, time.Now()); err != nil {
			return err
		}
		if err := r.Applications.Save(ctx, a); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Submit marks a draft as submitted; the stage does not move.
func (u *Usecase) Submit(ctx context.Context, applicationID string) (*ApplicationDTO, error) {
	return u.setStatus(ctx, applicationID, domain.StatusDraft, domain.StatusSubmitted)
}

func (u *Usecase) Cancel(ctx context.Context, applicationID string) (*ApplicationDTO, error) {
	return u.AdvanceStage(ctx, applicationID, string(domain.StatusCancelled))
}

func (u *Usecase) Reject(ctx context.Context, applicationID string) (*ApplicationDTO, error) {
	return u.AdvanceStage(ctx, applicationID, string(domain.StatusRejected))
}

func (u *Usecase) Close(ctx context.Context, applicationID string) (*ApplicationDTO, error) {
	return u.AdvanceStage(ctx, applicationID, string(domain.StatusClosed))
}

func (u *Usecase) setStatus(ctx context.Context, applicationID string, from, to domain.Status) (*ApplicationDTO, error) {
	var dto *ApplicationDTO
	err := u.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, a *domain.LoanApplication) error {
		if a.Status.Terminal() {
			return domain.ErrApplicationFrozen
		}
		if a.Status != from {
			return domain.ErrInvalidTransition
		}
		a.Status = to
		a.StageUpdatedAt = time.Now().UTC()
		if err := r.Applications.Save(ctx, a); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Decide appends one approver decision. Once every required role has
// decided, the application either advances approval_pending→sanctioned or is
// rejected outright.
func (u *Usecase) Decide(ctx context.Context, in DecideInput) (*ApplicationDTO, error) {
	var dto *ApplicationDTO
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *domain.LoanApplication) error {
		if a.Status.Terminal() {
			return domain.ErrApplicationFrozen
		}
		if a.Stage != domain.StageApprovalPending {
			return domain.ErrInvalidTransition
		}

		if _, err := r.Approvals.GetByRole(ctx, a.ID, in.ApproverRole); err == nil {
			return domainApproval.ErrAlreadyDecided
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		rec := &domainApproval.Record{
			ApprovalID:    id.NewID32(),
			ApplicationID: a.ID,
			ApproverRole:  in.ApproverRole,
			ApproverID:    in.ApproverID,
			Decision:      domainApproval.Decision(in.Decision),
			Amount:        in.Amount,
			Comments:      in.Comments,
		}
		if err := r.Approvals.Create(ctx, rec); err != nil {
			return err
		}

		records, err := r.Approvals.ListByApplication(ctx, a.ID)
		if err != nil {
			return err
		}
		complete, rejected := domainApproval.Outcome(records)
		switch {
		case rejected:
			if err := a.Advance(string(domain.StatusRejected), time.Now()); err != nil {
				return err
			}
		case complete:
			a.SanctionedAmount = sanctionAmount(records)
			if err := a.Advance(string(domain.StageSanctioned), time.Now()); err != nil {
				return err
			}
		default:
			// waiting on remaining roles
		}
		if err := r.Applications.Save(ctx, a); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// sanctionAmount is the smallest approved amount across roles; an approver
// can only reduce, never raise, what another role allowed.
func sanctionAmount(records []domainApproval.Record) float64 {
	var amt float64
	for _, r := range records {
		if r.Decision != domainApproval.DecisionApproved || r.Amount <= 0 {
			continue
		}
		if amt == 0 || r.Amount < amt {
			amt = r.Amount
		}
	}
	return amt
}
