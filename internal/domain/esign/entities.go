package esign

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("esign request not found")
	ErrTokenExpired  = errors.New("esign access token expired")
	ErrAlreadySigned = errors.New("document already signed")
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusViewed  Status = "viewed"
	StatusSigned  Status = "signed"
	StatusExpired Status = "expired"
	StatusFailed  Status = "failed"
)

// Terminal reports whether polling should stop for this status.
func (s Status) Terminal() bool {
	return s == StatusSigned || s == StatusExpired || s == StatusFailed
}

type Request struct {
	ID             uint64    `gorm:"primaryKey;column:id" json:"-"`
	RequestID      string    `gorm:"size:32;uniqueIndex:ux_esign_request_id" json:"request_id"`
	ApplicationID  uint64    `gorm:"index:idx_esign_application" json:"-"`
	OrgID          string    `gorm:"size:32;index" json:"org_id"`
	DocumentType   string    `gorm:"size:64" json:"document_type"`
	SignerName     string    `gorm:"size:128" json:"signer_name"`
	SignerMobile   string    `gorm:"size:10" json:"signer_mobile"`
	Status         Status    `gorm:"type:enum('pending','sent','viewed','signed','expired','failed');default:'pending'" json:"status"`
	Provider       string    `gorm:"size:32" json:"provider"`
	ProviderRef    string    `gorm:"size:64" json:"provider_ref,omitempty"`
	SignerURL      string    `gorm:"type:text" json:"signer_url,omitempty"`
	AccessToken    string    `gorm:"size:36;uniqueIndex:ux_esign_access_token" json:"-"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
	SignedAt       *time.Time `json:"signed_at,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Request) TableName() string { return "esign_requests" }

// AuditEntry is append-only; one row per observed action on a request.
type AuditEntry struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	EntryID   string    `gorm:"size:36;uniqueIndex:ux_esign_audit_entry_id" json:"entry_id"`
	RequestID uint64    `gorm:"index:idx_esign_audit_request" json:"-"`
	Action    string    `gorm:"size:32" json:"action"`
	CallerIP  string    `gorm:"size:45" json:"caller_ip,omitempty"`
	At        time.Time `gorm:"autoCreateTime" json:"at"`
}

func (AuditEntry) TableName() string { return "esign_audit_log" }
