package mandate

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("mandate not found")
	ErrTokenMissing = errors.New("payment access token unavailable")
)

type Status string

const (
	StatusInitiated  Status = "initiated"
	StatusPending    Status = "pending"
	StatusRegistered Status = "registered"
	StatusApproved   Status = "approved"
	StatusActive     Status = "active"
	StatusRejected   Status = "rejected"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusActive, StatusRejected, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Mandate rows are append-per-attempt; the latest row by created_at is the
// authoritative one for an application.
type Mandate struct {
	ID               uint64     `gorm:"primaryKey;column:id" json:"-"`
	MandateID        string     `gorm:"size:32;uniqueIndex:ux_mandates_mandate_id" json:"mandate_id"`
	ApplicationID    uint64     `gorm:"index:idx_mandates_application" json:"-"`
	OrgID            string     `gorm:"size:32;index" json:"org_id"`
	Status           Status     `gorm:"type:enum('initiated','pending','registered','approved','active','rejected','failed','cancelled');default:'initiated'" json:"status"`
	UMRN             string     `gorm:"column:umrn;size:32" json:"umrn,omitempty"`
	ProviderRef      string     `gorm:"size:64" json:"provider_ref,omitempty"`
	CollectionAmount float64    `gorm:"type:decimal(18,2)" json:"collection_amount"`
	CollectionDate   *time.Time `gorm:"type:date" json:"collection_date,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Mandate) TableName() string { return "mandates" }

// AccessToken caches one provider auth token per (org, environment). Writers
// race benignly: the upsert keeps the cache eventually consistent.
type AccessToken struct {
	ID          uint64    `gorm:"primaryKey;column:id"`
	OrgID       string    `gorm:"size:32;uniqueIndex:ux_payment_tokens_org_env"`
	Environment string    `gorm:"size:16;uniqueIndex:ux_payment_tokens_org_env"`
	Token       string    `gorm:"type:text"`
	ExpiresAt   time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (AccessToken) TableName() string { return "payment_access_tokens" }
