package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RuleScope identifies the fully-specified tuple a rule occupies within its
// (service type, interpretation type) catalogue. Used for the write-time
// uniqueness check that keeps the resolver unambiguous.
type RuleScope struct {
	ServiceType        string
	InterpretationType *string
	SourceLanguageID   *uuid.UUID
	TargetLanguageID   *uuid.UUID
	Region             *string
}

type PricingRuleRepository interface {
	Create(ctx context.Context, rule *model.PricingRule) error
	Update(ctx context.Context, rule *model.PricingRule) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PricingRule, error)
	List(ctx context.Context, serviceType string, page, limit int) ([]model.PricingRule, int64, error)
	// ListActiveRules returns the catalogue snapshot the pricing engine
	// resolves against. Called once per calculation.
	ListActiveRules(ctx context.Context, serviceType string) ([]model.PricingRule, error)
	// CountSameScope counts active rules occupying the same fully-specified
	// tuple, excluding the given rule ID if non-nil.
	CountSameScope(ctx context.Context, scope RuleScope, excludeID *uuid.UUID) (int64, error)
}

type pricingRuleRepository struct {
	db *gorm.DB
}

func NewPricingRuleRepository(db *gorm.DB) PricingRuleRepository {
	return &pricingRuleRepository{db: db}
}

func (r *pricingRuleRepository) Create(ctx context.Context, rule *model.PricingRule) error {
	return GetDB(ctx, r.db).Create(rule).Error
}

func (r *pricingRuleRepository) Update(ctx context.Context, rule *model.PricingRule) error {
	return GetDB(ctx, r.db).Save(rule).Error
}

func (r *pricingRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PricingRule{}).Error
}

func (r *pricingRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PricingRule, error) {
	var rule model.PricingRule
	if err := GetDB(ctx, r.db).
		Preload("SourceLanguage").Preload("TargetLanguage").
		First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *pricingRuleRepository) List(ctx context.Context, serviceType string, page, limit int) ([]model.PricingRule, int64, error) {
	var rules []model.PricingRule
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.PricingRule{})
	if serviceType != "" {
		query = query.Where("service_type = ?", serviceType)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Preload("SourceLanguage").Preload("TargetLanguage")
	if serviceType != "" {
		fetch = fetch.Where("service_type = ?", serviceType)
	}
	if err := fetch.Order("service_type asc, priority desc, created_at desc").
		Offset(offset).Limit(limit).Find(&rules).Error; err != nil {
		return nil, 0, err
	}

	return rules, total, nil
}

func (r *pricingRuleRepository) ListActiveRules(ctx context.Context, serviceType string) ([]model.PricingRule, error) {
	var rules []model.PricingRule
	if err := GetDB(ctx, r.db).
		Where("service_type = ? AND is_active = ?", serviceType, true).
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *pricingRuleRepository) CountSameScope(ctx context.Context, scope RuleScope, excludeID *uuid.UUID) (int64, error) {
	query := GetDB(ctx, r.db).Model(&model.PricingRule{}).
		Where("service_type = ? AND is_active = ?", scope.ServiceType, true)

	query = whereNullable(query, "interpretation_type", scope.InterpretationType)
	query = whereNullableID(query, "source_language_id", scope.SourceLanguageID)
	query = whereNullableID(query, "target_language_id", scope.TargetLanguageID)
	query = whereNullable(query, "region", scope.Region)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func whereNullable(query *gorm.DB, column string, value *string) *gorm.DB {
	if value == nil {
		return query.Where(column + " IS NULL")
	}
	return query.Where(column+" = ?", *value)
}

func whereNullableID(query *gorm.DB, column string, value *uuid.UUID) *gorm.DB {
	if value == nil {
		return query.Where(column + " IS NULL")
	}
	return query.Where(column+" = ?", *value)
}
