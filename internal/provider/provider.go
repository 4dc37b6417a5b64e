package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrConfigurationMissing means no credentials exist for (org, environment,
// provider). Adapters fall back to Mock mode instead of failing hard.
var ErrConfigurationMissing = errors.New("provider configuration missing")

type Environment string

const (
	EnvUAT        Environment = "uat"
	EnvProduction Environment = "production"
)

type Mode string

const (
	ModeLive Mode = "live"
	ModeMock Mode = "mock"
)

// Config holds per-(org, environment) credentials for one provider. Rows live
// in configuration storage; credentials are never hardcoded per call.
type Config struct {
	ID          uint64      `gorm:"primaryKey;column:id"`
	OrgID       string      `gorm:"size:32;uniqueIndex:ux_provider_configs_scope"`
	Environment Environment `gorm:"size:16;uniqueIndex:ux_provider_configs_scope"`
	Provider    string      `gorm:"size:32;uniqueIndex:ux_provider_configs_scope"`
	BaseURL     string      `gorm:"size:255"`
	APIKey      string      `gorm:"size:255"`
	APISecret   string      `gorm:"size:255"`
	CreatedAt   time.Time   `gorm:"autoCreateTime"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime"`
}

func (Config) TableName() string { return "provider_configs" }

type ConfigRepository interface {
	// Get returns ErrConfigurationMissing when no row matches.
	Get(ctx context.Context, orgID string, env Environment, provider string) (*Config, error)
}

// Error is the normalized failure from an external provider call: a non-2xx
// response or a malformed body. It never escapes the adapter layer raw.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsProviderError unwraps err into *Error if possible.
func IsProviderError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
