package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hypnotizedent/printshop-os-sub002/internal/model"
	"github.com/hypnotizedent/printshop-os-sub002/internal/pricing"
	"github.com/hypnotizedent/printshop-os-sub002/internal/repository"
)

// --- DTOs ---

type HistoryQuery struct {
	From        string // YYYY-MM-DD, inclusive
	To          string // YYYY-MM-DD, inclusive
	Service     string
	MinQuantity int
	MaxQuantity int
	Fingerprint string
}

// HistoryEntryResponse returns the stored request and result payloads verbatim
// so a replayed record matches what the caller originally received.
type HistoryEntryResponse struct {
	ID             string          `json:"id"`
	Fingerprint    string          `json:"fingerprint"`
	Service        string          `json:"service"`
	Quantity       int             `json:"quantity"`
	Total          string          `json:"total"`
	RuleSetVersion int64           `json:"rule_set_version"`
	CacheHit       bool            `json:"cache_hit"`
	Request        json.RawMessage `json:"request"`
	Result         json.RawMessage `json:"result"`
	CreatedAt      string          `json:"created_at"`
}

// --- Interface ---

type HistoryService interface {
	GetHistory(ctx context.Context, query HistoryQuery, page, limit int) ([]HistoryEntryResponse, int64, error)
}

type historyService struct {
	historyRepo repository.HistoryRepository
}

func NewHistoryService(historyRepo repository.HistoryRepository) HistoryService {
	return &historyService{historyRepo: historyRepo}
}

// --- Implementation ---

func (s *historyService) GetHistory(ctx context.Context, query HistoryQuery, page, limit int) ([]HistoryEntryResponse, int64, error) {
	filter, err := toHistoryFilter(query)
	if err != nil {
		return nil, 0, err
	}

	records, total, err := s.historyRepo.Search(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch quote history: %w", err)
	}

	res := make([]HistoryEntryResponse, 0, len(records))
	for _, rec := range records {
		res = append(res, toHistoryEntryResponse(rec))
	}

	return res, total, nil
}

// --- Helpers ---

func toHistoryFilter(query HistoryQuery) (repository.HistoryFilter, error) {
	filter := repository.HistoryFilter{
		Service:     query.Service,
		MinQuantity: query.MinQuantity,
		MaxQuantity: query.MaxQuantity,
		Fingerprint: query.Fingerprint,
	}

	if query.From != "" {
		t, err := time.Parse("2006-01-02", query.From)
		if err != nil {
			return repository.HistoryFilter{}, &pricing.ValidationError{Field: "from", Message: "expected YYYY-MM-DD"}
		}
		filter.From = &t
	}
	if query.To != "" {
		t, err := time.Parse("2006-01-02", query.To)
		if err != nil {
			return repository.HistoryFilter{}, &pricing.ValidationError{Field: "to", Message: "expected YYYY-MM-DD"}
		}
		// Inclusive day bound.
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return repository.HistoryFilter{}, &pricing.ValidationError{Field: "to", Message: "must not precede from"}
	}
	if query.MinQuantity < 0 {
		return repository.HistoryFilter{}, &pricing.ValidationError{Field: "min_quantity", Message: "must be non-negative"}
	}
	if query.MaxQuantity < 0 {
		return repository.HistoryFilter{}, &pricing.ValidationError{Field: "max_quantity", Message: "must be non-negative"}
	}
	if query.MinQuantity > 0 && query.MaxQuantity > 0 && query.MaxQuantity < query.MinQuantity {
		return repository.HistoryFilter{}, &pricing.ValidationError{Field: "max_quantity", Message: "must not be below min_quantity"}
	}

	return filter, nil
}

func toHistoryEntryResponse(rec model.QuoteHistory) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:             rec.ID.String(),
		Fingerprint:    rec.Fingerprint,
		Service:        rec.Service,
		Quantity:       rec.Quantity,
		Total:          pricing.FormatCents(rec.TotalCents),
		RuleSetVersion: rec.RuleSetVersion,
		CacheHit:       rec.CacheHit,
		Request:        json.RawMessage(rec.Request),
		Result:         json.RawMessage(rec.Result),
		CreatedAt:      rec.CreatedAt.Format(time.RFC3339),
	}
}
