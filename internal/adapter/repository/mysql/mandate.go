package mysql

import (
	"context"

	mandateDomain "lendmitra-backend/internal/domain/mandate"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MandateRepository struct{ db *gorm.DB }

func NewMandateRepository(db *gorm.DB) *MandateRepository { return &MandateRepository{db: db} }

func (r *MandateRepository) Create(ctx context.Context, m *mandateDomain.Mandate) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MandateRepository) Save(ctx context.Context, m *mandateDomain.Mandate) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *MandateRepository) GetByMandateID(ctx context.Context, mandateID string) (*mandateDomain.Mandate, error) {
	var out mandateDomain.Mandate
	res := r.db.WithContext(ctx).Where("mandate_id = ?", mandateID).First(&out)
	return &out, res.Error
}

func (r *MandateRepository) LatestByApplication(ctx context.Context, applicationNumericID uint64) (*mandateDomain.Mandate, error) {
	var out mandateDomain.Mandate
	res := r.db.WithContext(ctx).
		Where("application_id = ?", applicationNumericID).
		Order("created_at DESC, id DESC").
		First(&out)
	return &out, res.Error
}

func (r *MandateRepository) GetToken(ctx context.Context, orgID, environment string) (*mandateDomain.AccessToken, error) {
	var out mandateDomain.AccessToken
	res := r.db.WithContext(ctx).
		Where("org_id = ? AND environment = ?", orgID, environment).
		First(&out)
	return &out, res.Error
}

// UpsertToken races benignly between concurrent refreshers: the unique
// (org_id, environment) key makes the last writer win.
func (r *MandateRepository) UpsertToken(ctx context.Context, t *mandateDomain.AccessToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "org_id"}, {Name: "environment"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "updated_at"}),
		}).
		Create(t).Error
}
