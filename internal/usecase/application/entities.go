package application

import (
	"time"

	domain "lendmitra-backend/internal/domain/application"
	"lendmitra-backend/pkg/loancalc"
)

type CreateDraftInput struct {
	ReferralCode    string  `json:"referral_code,omitempty"`
	Name            string  `json:"name"`
	Mobile          string  `json:"mobile"`
	Email           string  `json:"email,omitempty"`
	PAN             string  `json:"pan,omitempty"`
	RequestedAmount float64 `json:"requested_amount"`
	TenureDays      int     `json:"tenure_days"`
	DailyRate       float64 `json:"daily_rate"`
}

type DecideInput struct {
	ApplicationID string
	ApproverRole  string
	ApproverID    string
	Decision      string // approved | rejected
	Amount        float64
	Comments      string
}

type ApplicationDTO struct {
	ApplicationID    string           `json:"application_id"`
	ApplicationNo    string           `json:"application_no"`
	Status           string           `json:"status"`
	Stage            string           `json:"stage"`
	RequestedAmount  float64          `json:"requested_amount"`
	SanctionedAmount float64          `json:"sanctioned_amount,omitempty"`
	DisbursedAmount  float64          `json:"disbursed_amount,omitempty"`
	TenureDays       int              `json:"tenure_days"`
	DailyRate        float64          `json:"daily_rate"`
	Loan             loancalc.Details `json:"loan"`
	Stages           []StageState     `json:"stages"`
	CreatedAt        time.Time        `json:"created_at"`
}

// StageState is the projection of one workflow position for display. It is
// derived, never persisted.
type StageState struct {
	Stage string `json:"stage"`
	State string `json:"state"` // completed | current | pending | rejected
}

// StageView classifies every stage against the application's position. When
// the application is in a terminal failure status the current position is
// marked rejected.
func StageView(a *domain.LoanApplication) []StageState {
	cur := domain.StageIndex(a.Stage)
	failed := a.Status == domain.StatusRejected || a.Status == domain.StatusCancelled

	out := make([]StageState, 0, len(domain.StageOrder))
	for i, s := range domain.StageOrder {
		state := "pending"
		switch {
		case i < cur:
			state = "completed"
		case i == cur:
			if failed {
				state = "rejected"
			} else {
				state = "current"
			}
		}
		out = append(out, StageState{Stage: string(s), State: state})
	}
	return out
}

func toDTO(a *domain.LoanApplication) *ApplicationDTO {
	principal := a.SanctionedAmount
	if principal == 0 {
		principal = a.RequestedAmount
	}
	return &ApplicationDTO{
		ApplicationID:    a.ApplicationID,
		ApplicationNo:    a.ApplicationNo,
		Status:           string(a.Status),
		Stage:            string(a.Stage),
		RequestedAmount:  a.RequestedAmount,
		SanctionedAmount: a.SanctionedAmount,
		DisbursedAmount:  a.DisbursedAmount,
		TenureDays:       a.TenureDays,
		DailyRate:        a.DailyRate,
		Loan:             loancalc.Calculate(principal, a.DailyRate, a.TenureDays),
		Stages:           StageView(a),
		CreatedAt:        a.CreatedAt,
	}
}
