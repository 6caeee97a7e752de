package model

import (
	"time"
)

// QuoteStatistics aggregates quote volumes and amounts for a date range
type QuoteStatistics struct {
	TotalQuotes        int                   `json:"total_quotes"`
	TotalQuotedAmount  float64               `json:"total_quoted_amount"`
	NeedsReviewCount   int                   `json:"needs_review_count"`
	AcceptedCount      int                   `json:"accepted_count"`
	ByServiceType      []ServiceTypeBucket   `json:"by_service_type"`
	TopLanguagePairs   []LanguagePairRanking `json:"top_language_pairs"`
	TimeRangeStartDate time.Time             `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time             `json:"time_range_end_date"`
}

// ServiceTypeBucket is one service type's share of quote volume and value
type ServiceTypeBucket struct {
	ServiceType string  `json:"service_type"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

// LanguagePairRanking ranks a language pair by quote count
type LanguagePairRanking struct {
	SourceCode  string  `json:"source_code"`
	TargetCode  string  `json:"target_code"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}
