package mysql

import (
	"context"
	"errors"

	"lendmitra-backend/internal/provider"

	"gorm.io/gorm"
)

type ProviderConfigRepository struct{ db *gorm.DB }

func NewProviderConfigRepository(db *gorm.DB) *ProviderConfigRepository {
	return &ProviderConfigRepository{db: db}
}

// Get maps a missing row to ErrConfigurationMissing so adapters can select
// mock mode without inspecting gorm internals.
func (r *ProviderConfigRepository) Get(ctx context.Context, orgID string, env provider.Environment, name string) (*provider.Config, error) {
	var out provider.Config
	res := r.db.WithContext(ctx).
		Where("org_id = ? AND environment = ? AND provider = ?", orgID, env, name).
		First(&out)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, provider.ErrConfigurationMissing
		}
		return nil, res.Error
	}
	return &out, nil
}
