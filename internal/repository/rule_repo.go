package repository

import (
	"context"

	"github.com/hypnotizedent/printshop-os-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RuleFilter narrows ListRules output.
type RuleFilter struct {
	ActiveOnly bool
	Service    string // matches rules whose product_type condition names the service
}

type RuleRepository interface {
	Create(ctx context.Context, rule *model.PricingRule) error
	Update(ctx context.Context, rule *model.PricingRule) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PricingRule, error)
	List(ctx context.Context, filter RuleFilter, page, limit int) ([]model.PricingRule, int64, error)
	ListAll(ctx context.Context) ([]model.PricingRule, error)
	CountAmbiguous(ctx context.Context, specificity, precedence int, excludeID *uuid.UUID) (int64, error)
}

type ruleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) Create(ctx context.Context, rule *model.PricingRule) error {
	return GetDB(ctx, r.db).Create(rule).Error
}

func (r *ruleRepository) Update(ctx context.Context, rule *model.PricingRule) error {
	return GetDB(ctx, r.db).Save(rule).Error
}

func (r *ruleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PricingRule{}).Error
}

func (r *ruleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PricingRule, error) {
	var rule model.PricingRule
	if err := GetDB(ctx, r.db).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) List(ctx context.Context, filter RuleFilter, page, limit int) ([]model.PricingRule, int64, error) {
	var rules []model.PricingRule
	var total int64

	query := GetDB(ctx, r.db).Model(&model.PricingRule{})
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.Service != "" {
		// product_type conditions carry a "services" array in their envelope.
		query = query.Where(
			`conditions @> ?::jsonb`,
			`[{"type":"product_type","services":["`+filter.Service+`"]}]`,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("precedence desc, updated_at desc").Offset(offset).Limit(limit).Find(&rules).Error; err != nil {
		return nil, 0, err
	}

	return rules, total, nil
}

func (r *ruleRepository) ListAll(ctx context.Context) ([]model.PricingRule, error) {
	var rules []model.PricingRule
	if err := GetDB(ctx, r.db).Order("precedence desc, updated_at desc").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// CountAmbiguous counts other active rules sharing both specificity
// (condition count) and precedence — the configuration the matcher can only
// resolve by recency, which rule writes reject up front.
func (r *ruleRepository) CountAmbiguous(ctx context.Context, specificity, precedence int, excludeID *uuid.UUID) (int64, error) {
	query := GetDB(ctx, r.db).Model(&model.PricingRule{}).
		Where("active = ?", true).
		Where("jsonb_array_length(conditions) = ?", specificity).
		Where("precedence = ?", precedence)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
