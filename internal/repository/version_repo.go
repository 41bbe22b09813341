package repository

import (
	"context"

	"github.com/hypnotizedent/printshop-os-sub002/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ruleSetVersionRow = 1

// VersionRepository manages the single-row rule-set version counter.
type VersionRepository interface {
	Current(ctx context.Context) (int64, error)
	// Increment bumps the counter and returns the new version. Call it inside
	// the same transaction as the rule mutation so readers never observe a
	// mix of old rules and new version or vice versa.
	Increment(ctx context.Context) (int64, error)
}

type versionRepository struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) Current(ctx context.Context) (int64, error) {
	var row model.RuleSetVersion
	err := GetDB(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		FirstOrCreate(&row, model.RuleSetVersion{ID: ruleSetVersionRow}).Error
	if err != nil {
		return 0, err
	}
	return row.Version, nil
}

func (r *versionRepository) Increment(ctx context.Context) (int64, error) {
	if _, err := r.Current(ctx); err != nil {
		return 0, err
	}
	db := GetDB(ctx, r.db)
	err := db.Model(&model.RuleSetVersion{}).
		Where("id = ?", ruleSetVersionRow).
		UpdateColumn("version", gorm.Expr("version + 1")).Error
	if err != nil {
		return 0, err
	}
	var row model.RuleSetVersion
	if err := db.First(&row, "id = ?", ruleSetVersionRow).Error; err != nil {
		return 0, err
	}
	return row.Version, nil
}
