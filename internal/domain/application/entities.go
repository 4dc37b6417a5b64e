package application

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("application not found")
	ErrInvalidTransition   = errors.New("invalid stage transition")
	ErrApplicationFrozen   = errors.New("application is in a terminal state")
	ErrInvalidReferralCode = errors.New("referral code is unknown or inactive")
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusSubmitted  Status = "submitted"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusSanctioned Status = "sanctioned"
	StatusDisbursed  Status = "disbursed"
	StatusCancelled  Status = "cancelled"
	StatusClosed     Status = "closed"
)

// Terminal reports whether the status is absorbing: no further stage moves.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusClosed
}

type Stage string

const (
	StageApplicationLogin    Stage = "application_login"
	StageDocumentCollection  Stage = "document_collection"
	StageFieldVerification   Stage = "field_verification"
	StageCreditAssessment    Stage = "credit_assessment"
	StageApprovalPending     Stage = "approval_pending"
	StageSanctioned          Stage = "sanctioned"
	StageDisbursementPending Stage = "disbursement_pending"
	StageDisbursed           Stage = "disbursed"
)

// StageOrder is the fixed workflow. Transitions move one position at a time;
// terminal statuses are reachable from any non-terminal position.
var StageOrder = []Stage{
	StageApplicationLogin,
	StageDocumentCollection,
	StageFieldVerification,
	StageCreditAssessment,
	StageApprovalPending,
	StageSanctioned,
	StageDisbursementPending,
	StageDisbursed,
}

// StageIndex returns the position of s in StageOrder, or -1.
func StageIndex(s Stage) int {
	for i, v := range StageOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// statusForStage returns the status a stage move forces, if any.
func statusForStage(s Stage) (Status, bool) {
	switch s {
	case StageSanctioned:
		return StatusSanctioned, true
	case StageDisbursed:
		return StatusDisbursed, true
	default:
		return "", false
	}
}

type LoanApplication struct {
	ID               uint64         `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID    string         `gorm:"size:32;uniqueIndex:ux_apps_application_id_active" json:"application_id"`
	ApplicationNo    string         `gorm:"size:24;uniqueIndex:ux_apps_application_no" json:"application_no"`
	OrgID            string         `gorm:"size:32;index:idx_apps_org" json:"org_id"`
	Status           Status         `gorm:"type:enum('draft','submitted','approved','rejected','sanctioned','disbursed','cancelled','closed');default:'draft'" json:"status"`
	Stage            Stage          `gorm:"size:32;default:'application_login'" json:"stage"`
	RequestedAmount  float64        `gorm:"type:decimal(18,2)" json:"requested_amount"`
	ApprovedAmount   float64        `gorm:"type:decimal(18,2)" json:"approved_amount"`
	SanctionedAmount float64        `gorm:"type:decimal(18,2)" json:"sanctioned_amount"`
	DisbursedAmount  float64        `gorm:"type:decimal(18,2)" json:"disbursed_amount"`
	TenureDays       int            `json:"tenure_days"`
	DailyRate        float64        `gorm:"type:decimal(6,4)" json:"daily_rate"`
	ReferralCode     string         `gorm:"size:16" json:"referral_code,omitempty"`
	StageUpdatedAt   time.Time      `gorm:"autoCreateTime" json:"stage_updated_at"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LoanApplication) TableName() string { return "loan_applications" }

// CanAdvance validates the successor rule. Target may be the name of the
// next stage, or a terminal status name (rejected/cancelled/closed).
func (a *LoanApplication) CanAdvance(target string) error {
	if a.Status.Terminal() {
		return ErrApplicationFrozen
	}
	switch Status(target) {
	case StatusRejected, StatusCancelled, StatusClosed:
		return nil
	}
	cur := StageIndex(a.Stage)
	next := StageIndex(Stage(target))
	if next == -1 || next != cur+1 {
		return ErrInvalidTransition
	}
	return nil
}

// Advance applies a validated transition in place, keeping status and stage
// mutually consistent. Terminal targets freeze the stage where it stands.
func (a *LoanApplication) Advance(target string, now time.Time) error {
	if err := a.CanAdvance(target); err != nil {
		return err
	}
	switch Status(target) {
	case StatusRejected, StatusCancelled, StatusClosed:
		a.Status = Status(target)
	default:
		a.Stage = Stage(target)
		if st, forced := statusForStage(a.Stage); forced {
			a.Status = st
		}
	}
	a.StageUpdatedAt = now.UTC()
	return nil
}

type ApplicantType string

const (
	ApplicantPrimary  ApplicantType = "primary"
	ApplicantCo       ApplicantType = "co_applicant"
	ApplicantReferral ApplicantType = "referral"
)

type Applicant struct {
	ID            uint64         `gorm:"primaryKey;column:id" json:"-"`
	ApplicantID   string         `gorm:"size:32;uniqueIndex:ux_applicants_applicant_id" json:"applicant_id"`
	ApplicationID uint64         `gorm:"index:idx_applicants_application" json:"-"`
	Type          ApplicantType  `gorm:"size:16;default:'primary'" json:"type"`
	Name          string         `gorm:"size:128" json:"name"`
	PAN           string         `gorm:"column:pan;size:10" json:"pan,omitempty"`
	Aadhaar       string         `gorm:"size:12" json:"aadhaar,omitempty"`
	Mobile        string         `gorm:"size:10;index" json:"mobile"`
	Email         string         `gorm:"size:128" json:"email,omitempty"`
	DateOfBirth   *time.Time     `gorm:"type:date" json:"date_of_birth,omitempty"`
	Address       string         `gorm:"type:text" json:"address,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Applicant) TableName() string { return "applicants" }

type ReferralCode struct {
	ID        uint64    `gorm:"primaryKey;column:id"`
	Code      string    `gorm:"size:16;uniqueIndex:ux_referral_codes_code"`
	OrgID     string    `gorm:"size:32;index"`
	Active    bool      `gorm:"default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ReferralCode) TableName() string { return "referral_codes" }
