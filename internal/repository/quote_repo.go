package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuoteFilter narrows quote listings.
type QuoteFilter struct {
	Status      string
	ServiceType string
	ClientID    *uuid.UUID
	Page        int
	Limit       int
}

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	Update(ctx context.Context, quote *model.Quote) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	List(ctx context.Context, filter QuoteFilter) ([]model.Quote, int64, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Create(quote).Error
}

func (r *quoteRepository) Update(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Save(quote).Error
}

func (r *quoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	if err := GetDB(ctx, r.db).
		Preload("Windows", func(db *gorm.DB) *gorm.DB { return db.Order("starts_at asc") }).
		Preload("Client").
		Preload("SourceLanguage").Preload("TargetLanguage").
		Preload("Rule").
		First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) List(ctx context.Context, filter QuoteFilter) ([]model.Quote, int64, error) {
	var quotes []model.Quote
	var total int64

	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.ServiceType != "" {
			q = q.Where("service_type = ?", filter.ServiceType)
		}
		if filter.ClientID != nil {
			q = q.Where("client_id = ?", *filter.ClientID)
		}
		return q
	}

	if err := apply(db.Model(&model.Quote{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := apply(db.Preload("Client").Preload("SourceLanguage").Preload("TargetLanguage")).
		Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&quotes).Error; err != nil {
		return nil, 0, err
	}

	return quotes, total, nil
}

func (r *quoteRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Quote{}).
		Where("quote_no LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
