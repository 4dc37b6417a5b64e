package approval

import (
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("approval record not found")
	ErrAlreadyDecided = errors.New("approver role already decided")
)

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// RequiredRoles is the approver role set that must each produce a decision
// before the approval stage can advance.
var RequiredRoles = []string{"admin", "credit_head"}

type Record struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	ApprovalID    string    `gorm:"size:32;uniqueIndex:ux_approvals_approval_id" json:"approval_id"`
	ApplicationID uint64    `gorm:"index:idx_approvals_application" json:"-"`
	ApproverRole  string    `gorm:"size:32" json:"approver_role"`
	ApproverID    string    `gorm:"size:32" json:"approver_id"`
	Decision      Decision  `gorm:"type:enum('approved','rejected')" json:"decision"`
	Amount        float64   `gorm:"type:decimal(18,2)" json:"amount"`
	Comments      string    `gorm:"type:text" json:"comments,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Record) TableName() string { return "approval_records" }

// Outcome folds a set of records against RequiredRoles. Complete is true once
// every required role has a decision. Rejected is true as soon as any required
// role's standing decision is a reject, even while other roles are pending.
func Outcome(records []Record) (complete, rejected bool) {
	decided := make(map[string]Decision, len(records))
	for _, r := range records {
		if _, ok := decided[r.ApproverRole]; !ok {
			decided[r.ApproverRole] = r.Decision
		}
	}
	complete = true
	for _, role := range RequiredRoles {
		d, ok := decided[role]
		if !ok {
			complete = false
			continue
		}
		if d == DecisionRejected {
			rejected = true
		}
	}
	return complete, rejected
}
