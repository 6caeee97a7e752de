package service

import (
	"context"
	"time"

	"backend/internal/model"

	"gorm.io/gorm"
)

type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.QuoteStatistics, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetStatistics aggregates quote volumes and amounts for the given range.
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.QuoteStatistics, error) {
	var response model.QuoteStatistics
	response.TimeRangeStartDate = startDate
	response.TimeRangeEndDate = endDate

	inRange := func(q *gorm.DB) *gorm.DB {
		return q.Where("quotes.created_at >= ? AND quotes.created_at <= ?", startDate, endDate)
	}

	var totals struct {
		Count  int
		Amount float64
	}
	inRange(s.db.WithContext(ctx).Table("quotes")).
		Select("COUNT(*) as count, COALESCE(SUM(total), 0) as amount").
		Scan(&totals)
	response.TotalQuotes = totals.Count
	response.TotalQuotedAmount = totals.Amount

	var needsReview int64
	inRange(s.db.WithContext(ctx).Table("quotes")).
		Where("status = ?", model.QuoteStatusNeedsReview).
		Count(&needsReview)
	response.NeedsReviewCount = int(needsReview)

	var accepted int64
	inRange(s.db.WithContext(ctx).Table("quotes")).
		Where("status = ?", model.QuoteStatusAccepted).
		Count(&accepted)
	response.AcceptedCount = int(accepted)

	var byService []model.ServiceTypeBucket
	inRange(s.db.WithContext(ctx).Table("quotes")).
		Select("service_type, COUNT(*) as count, COALESCE(SUM(total), 0) as total_amount").
		Group("service_type").
		Order("count DESC").
		Scan(&byService)
	response.ByServiceType = byService

	var topPairs []model.LanguagePairRanking
	inRange(s.db.WithContext(ctx).Table("quotes")).
		Select("src.code as source_code, tgt.code as target_code, COUNT(*) as count, COALESCE(SUM(quotes.total), 0) as total_amount").
		Joins("JOIN languages src ON src.id = quotes.source_language_id").
		Joins("JOIN languages tgt ON tgt.id = quotes.target_language_id").
		Group("src.code, tgt.code").
		Order("count DESC").
		Limit(5).
		Scan(&topPairs)
	response.TopLanguagePairs = topPairs

	return response, nil
}
