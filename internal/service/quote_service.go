package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hypnotizedent/printshop-os-sub002/internal/model"
	"github.com/hypnotizedent/printshop-os-sub002/internal/pricing"
	"github.com/hypnotizedent/printshop-os-sub002/internal/quotecache"
	"github.com/hypnotizedent/printshop-os-sub002/internal/repository"
	"github.com/hypnotizedent/printshop-os-sub002/internal/ruleset"
	ws "github.com/hypnotizedent/printshop-os-sub002/internal/websocket"

	"github.com/sethvargo/go-retry"
)

// --- DTOs ---

type ComputeQuoteRequest struct {
	Service     string   `json:"service" binding:"required"`
	Quantity    int      `json:"quantity" binding:"required"`
	Colors      int      `json:"colors"`
	Locations   []string `json:"locations"`
	StitchCount int      `json:"stitch_count"`
	Tier        string   `json:"tier"`
	Rush        bool     `json:"rush"`
}

type SurchargeResponse struct {
	Kind   string `json:"kind"`
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

type QuoteResponse struct {
	Service        string              `json:"service"`
	Quantity       int                 `json:"quantity"`
	Base           string              `json:"base"`
	Location       string              `json:"location_surcharge"`
	Decoration     string              `json:"decoration"`
	Surcharges     []SurchargeResponse `json:"surcharges"`
	Subtotal       string              `json:"subtotal"`
	Discount       string              `json:"discount"`
	DiscountTier   string              `json:"discount_tier,omitempty"`
	Tax            string              `json:"tax"`
	Total          string              `json:"total"`
	MarginPercent  string              `json:"margin_percent"`
	RuleID         string              `json:"rule_id,omitempty"`
	RuleSetVersion int64               `json:"rule_set_version"`
	CacheHit       bool                `json:"cache_hit"`
}

// PersistenceError wraps a history write failure that strict-audit mode must
// surface to the caller.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("history write failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// --- Interface ---

type QuoteService interface {
	ComputeQuote(ctx context.Context, req ComputeQuoteRequest) (QuoteResponse, error)
}

// QuoteServiceConfig carries the tunables the facade needs.
type QuoteServiceConfig struct {
	// StrictAudit makes the history write synchronous and propagates its
	// failure; the default recovers locally with retry + log.
	StrictAudit bool
	// HistoryTimeout bounds each history write attempt cycle.
	HistoryTimeout time.Duration
	// HistoryRetries is the number of backoff retries after the first attempt.
	HistoryRetries uint64
}

type quoteService struct {
	rules       *ruleset.Manager
	cache       *quotecache.Cache
	historyRepo repository.HistoryRepository
	rates       *pricing.RateConfig
	hub         *ws.Hub
	cfg         QuoteServiceConfig
	now         func() time.Time
}

func NewQuoteService(
	rules *ruleset.Manager,
	cache *quotecache.Cache,
	historyRepo repository.HistoryRepository,
	rates *pricing.RateConfig,
	hub *ws.Hub,
	cfg QuoteServiceConfig,
) QuoteService {
	if cfg.HistoryTimeout <= 0 {
		cfg.HistoryTimeout = 10 * time.Second
	}
	if cfg.HistoryRetries == 0 {
		cfg.HistoryRetries = 4
	}
	return &quoteService{
		rules:       rules,
		cache:       cache,
		historyRepo: historyRepo,
		rates:       rates,
		hub:         hub,
		cfg:         cfg,
		now:         time.Now,
	}
}

// --- Implementation ---

func (s *quoteService) ComputeQuote(ctx context.Context, req ComputeQuoteRequest) (QuoteResponse, error) {
	preq := toPricingRequest(req).Normalize()
	if err := preq.Validate(); err != nil {
		return QuoteResponse{}, err
	}

	// One snapshot for the whole call: matching, pricing and fingerprinting
	// all see the same rule-set version.
	snap := s.rules.Snapshot()
	fingerprint := pricing.Fingerprint(preq, snap.Version)

	result, hit, err := s.cache.GetOrCompute(ctx, fingerprint, snap.Version, func(ctx context.Context) (pricing.Result, error) {
		rule := pricing.Select(preq, s.now(), snap.Rules)
		res, err := pricing.Calculate(preq, rule, s.rates)
		if err != nil {
			return pricing.Result{}, err
		}
		res.RuleSetVersion = snap.Version
		return res, nil
	})
	if err != nil {
		return QuoteResponse{}, err
	}

	if err := s.recordHistory(ctx, fingerprint, preq, result, hit); err != nil {
		return QuoteResponse{}, err
	}

	s.hub.Notify(ws.EventQuoteComputed, map[string]interface{}{
		"fingerprint":      fingerprint,
		"service":          string(preq.Service),
		"quantity":         preq.Quantity,
		"total_cents":      result.TotalCents,
		"rule_set_version": snap.Version,
		"cache_hit":        hit,
	})

	return toQuoteResponse(result, hit), nil
}

// recordHistory appends the audit record. Every call is recorded — cache hits
// included — so each served quote stays auditable. Failures are retried with
// exponential backoff; only strict-audit mode escalates them to the caller.
func (s *quoteService) recordHistory(ctx context.Context, fingerprint string, req pricing.Request, res pricing.Result, hit bool) error {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode history request: %w", err)
	}
	resJSON, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode history result: %w", err)
	}
	rec := &model.QuoteHistory{
		Fingerprint:    fingerprint,
		Service:        string(req.Service),
		Quantity:       req.Quantity,
		TotalCents:     res.TotalCents,
		RuleSetVersion: res.RuleSetVersion,
		CacheHit:       hit,
		Request:        string(reqJSON),
		Result:         string(resJSON),
	}

	if s.cfg.StrictAudit {
		writeCtx, cancel := context.WithTimeout(ctx, s.cfg.HistoryTimeout)
		defer cancel()
		if err := s.appendWithRetry(writeCtx, rec); err != nil {
			return &PersistenceError{Err: err}
		}
		return nil
	}

	// Default mode: never block the quote on audit I/O, but never drop a
	// failure silently either.
	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HistoryTimeout)
		defer cancel()
		if err := s.appendWithRetry(writeCtx, rec); err != nil {
			log.Printf("ERROR: quote history write failed after retries (fingerprint=%s): %v", fingerprint, err)
		}
	}()
	return nil
}

func (s *quoteService) appendWithRetry(ctx context.Context, rec *model.QuoteHistory) error {
	backoff := retry.WithMaxRetries(s.cfg.HistoryRetries, retry.NewExponential(100*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.historyRepo.Append(ctx, rec); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// --- Helpers ---

func toPricingRequest(req ComputeQuoteRequest) pricing.Request {
	locations := make([]pricing.Location, 0, len(req.Locations))
	for _, l := range req.Locations {
		locations = append(locations, pricing.Location(l))
	}
	return pricing.Request{
		Service:     pricing.Service(req.Service),
		Quantity:    req.Quantity,
		Colors:      req.Colors,
		Locations:   locations,
		StitchCount: req.StitchCount,
		Tier:        pricing.Tier(req.Tier),
		Rush:        req.Rush,
	}
}

func toQuoteResponse(res pricing.Result, hit bool) QuoteResponse {
	surcharges := make([]SurchargeResponse, 0, len(res.Surcharges))
	for _, line := range res.Surcharges {
		surcharges = append(surcharges, SurchargeResponse{
			Kind:   line.Kind,
			Label:  line.Label,
			Amount: pricing.FormatCents(line.AmountCents),
		})
	}
	return QuoteResponse{
		Service:        string(res.Service),
		Quantity:       res.Quantity,
		Base:           pricing.FormatCents(res.BaseCents),
		Location:       pricing.FormatCents(res.LocationCents),
		Decoration:     pricing.FormatCents(res.DecorationCents),
		Surcharges:     surcharges,
		Subtotal:       pricing.FormatCents(res.SubtotalCents),
		Discount:       pricing.FormatCents(res.DiscountCents),
		DiscountTier:   res.DiscountTier,
		Tax:            pricing.FormatCents(res.TaxCents),
		Total:          pricing.FormatCents(res.TotalCents),
		MarginPercent:  pricing.FormatBps(res.MarginBps),
		RuleID:         res.RuleID,
		RuleSetVersion: res.RuleSetVersion,
		CacheHit:       hit,
	}
}
