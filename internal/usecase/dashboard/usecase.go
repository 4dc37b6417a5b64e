package dashboard

import (
	"context"
	"errors"
	"sort"
	"time"

	domainApp "lendmitra-backend/internal/domain/application"
	domainConsent "lendmitra-backend/internal/domain/consent"
	domainESign "lendmitra-backend/internal/domain/esign"
	domainVerification "lendmitra-backend/internal/domain/verification"

	"gorm.io/gorm"
)

// Usecase is the read-only aggregation layer over origination data. It never
// mutates rows.
type Usecase struct {
	orgID    string
	apps     domainApp.Repository
	records  domainVerification.Repository
	esign    domainESign.Repository
	consents domainConsent.Repository
}

func NewUsecase(orgID string, apps domainApp.Repository, records domainVerification.Repository, es domainESign.Repository, consents domainConsent.Repository) *Usecase {
	return &Usecase{orgID: orgID, apps: apps, records: records, esign: es, consents: consents}
}

type Stats struct {
	ByStatus       map[string]int64 `json:"by_status"`
	TotalDisbursed float64          `json:"total_disbursed"`
	ApprovalQueue  int              `json:"approval_queue"`
}

func (u *Usecase) Stats(ctx context.Context) (*Stats, error) {
	counts, err := u.apps.CountByStatus(ctx, u.orgID)
	if err != nil {
		return nil, err
	}
	disbursed, err := u.apps.SumDisbursed(ctx, u.orgID)
	if err != nil {
		return nil, err
	}
	queue, err := u.apps.ListByStage(ctx, u.orgID, domainApp.StageApprovalPending)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int64, len(counts))
	for k, v := range counts {
		byStatus[string(k)] = v
	}
	return &Stats{
		ByStatus:       byStatus,
		TotalDisbursed: disbursed,
		ApprovalQueue:  len(queue),
	}, nil
}

type QueueEntry struct {
	ApplicationID   string            `json:"application_id"`
	ApplicationNo   string            `json:"application_no"`
	RequestedAmount float64           `json:"requested_amount"`
	StageSince      time.Time         `json:"stage_since"`
	Verifications   map[string]string `json:"verifications"` // type → latest status
}

// ApprovalQueue lists applications awaiting decisions, each with a summary
// of its most recent verification per type.
func (u *Usecase) ApprovalQueue(ctx context.Context) ([]QueueEntry, error) {
	apps, err := u.apps.ListByStage(ctx, u.orgID, domainApp.StageApprovalPending)
	if err != nil {
		return nil, err
	}

	out := make([]QueueEntry, 0, len(apps))
	for i := range apps {
		a := &apps[i]
		summary := make(map[string]string)
		for _, t := range []domainVerification.Type{
			domainVerification.TypePAN,
			domainVerification.TypeAadhaar,
			domainVerification.TypeBankAccount,
		} {
			rec, err := u.records.LatestByType(ctx, a.ID, t)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, err
			}
			summary[string(t)] = string(rec.Status)
		}
		out = append(out, QueueEntry{
			ApplicationID:   a.ApplicationID,
			ApplicationNo:   a.ApplicationNo,
			RequestedAmount: a.RequestedAmount,
			StageSince:      a.StageUpdatedAt,
			Verifications:   summary,
		})
	}
	return out, nil
}

type AuditEvent struct {
	Kind    string    `json:"kind"` // verification | esign | consent
	Label   string    `json:"label"`
	Status  string    `json:"status,omitempty"`
	At      time.Time `json:"at"`
	Details string    `json:"details,omitempty"`
}

// AuditTrail merges the append-only histories for one application, newest
// first.
func (u *Usecase) AuditTrail(ctx context.Context, applicationID string) ([]AuditEvent, error) {
	a, err := u.apps.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainApp.ErrNotFound
		}
		return nil, err
	}

	var events []AuditEvent

	records, err := u.records.ListByApplication(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		events = append(events, AuditEvent{
			Kind:    "verification",
			Label:   string(r.Type) + " via " + r.Provider,
			Status:  string(r.Status),
			At:      r.CreatedAt,
			Details: r.Message,
		})
	}

	requests, err := u.esign.ListByApplication(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range requests {
		entries, err := u.esign.ListAudit(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			events = append(events, AuditEvent{
				Kind:   "esign",
				Label:  r.DocumentType + ": " + e.Action,
				Status: string(r.Status),
				At:     e.At,
			})
		}
	}

	ap, err := u.apps.GetPrimaryApplicant(ctx, a.ID)
	if err == nil && ap.Mobile != "" {
		consents, err := u.consents.ListConsents(ctx, ap.Mobile)
		if err != nil {
			return nil, err
		}
		for _, c := range consents {
			status := "active"
			if c.WithdrawnAt != nil {
				status = "withdrawn"
			}
			events = append(events, AuditEvent{
				Kind:   "consent",
				Label:  c.Purpose + " v" + c.Version,
				Status: status,
				At:     c.ConsentedAt,
			})
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].At.After(events[j].At) })
	return events, nil
}
