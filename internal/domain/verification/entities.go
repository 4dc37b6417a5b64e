package verification

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("verification record not found")
	ErrInvalidFormat = errors.New("invalid input format")
)

type Type string

const (
	TypePAN         Type = "pan"
	TypeAadhaar     Type = "aadhaar"
	TypeBankAccount Type = "bank_account"
	TypeIFSC        Type = "ifsc"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

// Record is append-only: every verification attempt inserts a new row, even
// failed ones. The state machine consults the most recent row per type.
type Record struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	RecordID      string    `gorm:"size:32;uniqueIndex:ux_verifications_record_id" json:"record_id"`
	ApplicationID uint64    `gorm:"index:idx_verifications_application" json:"-"`
	OrgID         string    `gorm:"size:32;index" json:"org_id"`
	Type          Type      `gorm:"size:16;index:idx_verifications_application" json:"type"`
	Provider      string    `gorm:"size:32" json:"provider"`
	Status        Status    `gorm:"type:enum('success','failed','pending');default:'pending'" json:"status"`
	Verified      bool      `json:"verified"`
	RequestJSON   string    `gorm:"type:text" json:"-"`
	ResponseJSON  string    `gorm:"type:text" json:"-"`
	Message       string    `gorm:"size:255" json:"message,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Record) TableName() string { return "verification_records" }
