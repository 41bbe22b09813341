package pricing

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// ServiceRates holds the per-unit charge and known unit cost for one
// decoration service, both in cents. Unit cost backs margin enforcement.
type ServiceRates struct {
	BaseCents     int64 `json:"base_cents"`
	UnitCostCents int64 `json:"unit_cost_cents"`
}

// DiscountTier is one quantity-keyed volume discount bracket. Tiers are
// contiguous and non-overlapping by construction: each tier runs from its
// MinQuantity up to the next tier's MinQuantity, and the highest threshold
// met wins.
type DiscountTier struct {
	Name        string `json:"name"`
	MinQuantity int    `json:"min_quantity"`
	Bps         int64  `json:"bps"`
}

// RateConfig is the default rate table set, loaded from a JSON document the
// way the original shop kept its versioned pricing rules.
type RateConfig struct {
	Currency string `json:"currency"`

	Services map[Service]ServiceRates `json:"services"`

	// Location surcharge stage: per-location multiplier in hundredths
	// (100 = 1.0x) applied to PerColorRateCents x color count.
	LocationMultipliers map[Location]int64 `json:"location_multipliers"`
	PerColorRateCents   int64              `json:"per_color_rate_cents"`

	// Color charge per unit, indexed by color count then quality tier.
	// Premium rates must be >= basic for every count.
	ColorRates map[Tier]map[string]int64 `json:"color_rates"`

	// Embroidery replaces the color term: cents per 100 stitches, per tier.
	StitchRatePer100 map[Tier]int64 `json:"stitch_rate_per_100_cents"`

	RushFeeCents int64 `json:"rush_fee_cents"`
	TaxBps       int64 `json:"tax_bps"`
	MinMarginBps int64 `json:"min_margin_bps"`

	Tiers []DiscountTier `json:"discount_tiers"`
}

// LoadRateConfig reads and validates a rate table document.
func LoadRateConfig(path string) (*RateConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate config: %w", err)
	}
	var cfg RateConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse rate config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate enforces the structural invariants of the rate tables.
func (c *RateConfig) Validate() error {
	if c.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if len(c.Services) == 0 {
		return fmt.Errorf("at least one service rate entry is required")
	}
	for svc, rates := range c.Services {
		if !ValidService(svc) {
			return fmt.Errorf("unknown service %q in rate table", svc)
		}
		if rates.BaseCents < 0 || rates.UnitCostCents < 0 {
			return fmt.Errorf("service %s: negative rates", svc)
		}
	}
	for loc, mult := range c.LocationMultipliers {
		if !validLocation(loc) {
			return fmt.Errorf("unknown location %q in multiplier table", loc)
		}
		if mult <= 0 {
			return fmt.Errorf("location %s: multiplier must be positive", loc)
		}
	}
	if c.PerColorRateCents < 0 || c.RushFeeCents < 0 {
		return fmt.Errorf("surcharge rates must be non-negative")
	}
	if c.TaxBps < 0 || c.TaxBps > 10000 {
		return fmt.Errorf("tax_bps out of range")
	}
	if c.MinMarginBps < 0 || c.MinMarginBps >= 10000 {
		return fmt.Errorf("min_margin_bps out of range")
	}

	// Premium color rates must dominate basic for every declared count.
	basic := c.ColorRates[TierBasic]
	premium := c.ColorRates[TierPremium]
	for count, basicRate := range basic {
		if _, err := strconv.Atoi(count); err != nil {
			return fmt.Errorf("color_rates: bad count key %q", count)
		}
		if premiumRate, ok := premium[count]; ok && premiumRate < basicRate {
			return fmt.Errorf("color_rates: premium rate for %s colors below basic", count)
		}
	}
	if c.StitchRatePer100 != nil {
		if c.StitchRatePer100[TierPremium] < c.StitchRatePer100[TierBasic] {
			return fmt.Errorf("stitch rate: premium below basic")
		}
	}

	// Discount tiers: strictly increasing thresholds starting at 1, with
	// non-decreasing percentages so more volume never means less discount.
	prevMin := 0
	prevBps := int64(-1)
	for i, tier := range c.Tiers {
		if i == 0 && tier.MinQuantity != 1 {
			return fmt.Errorf("discount_tiers: first tier must start at quantity 1")
		}
		if tier.MinQuantity <= prevMin {
			return fmt.Errorf("discount_tiers: thresholds must be strictly increasing")
		}
		if tier.Bps < 0 || tier.Bps > 10000 {
			return fmt.Errorf("discount_tiers: bps out of range at threshold %d", tier.MinQuantity)
		}
		if tier.Bps < prevBps {
			return fmt.Errorf("discount_tiers: percentage decreases at threshold %d", tier.MinQuantity)
		}
		prevMin = tier.MinQuantity
		prevBps = tier.Bps
	}
	return nil
}

// DiscountFor returns the discount basis points and tier name for a quantity:
// the highest threshold met wins, no stacking.
func (c *RateConfig) DiscountFor(quantity int) (int64, string) {
	var bps int64
	name := ""
	for _, tier := range c.Tiers {
		if quantity >= tier.MinQuantity {
			bps = tier.Bps
			name = tier.Name
		}
	}
	return bps, name
}

// colorRate looks up the per-unit color charge for a count and tier. Counts
// above the highest declared entry are charged at that highest entry.
func (c *RateConfig) colorRate(tier Tier, colors int) int64 {
	if colors <= 0 {
		return 0
	}
	table := c.ColorRates[tier]
	if len(table) == 0 {
		return 0
	}
	if rate, ok := table[strconv.Itoa(colors)]; ok {
		return rate
	}
	counts := make([]int, 0, len(table))
	for k := range table {
		n, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		counts = append(counts, n)
	}
	sort.Ints(counts)
	best := int64(0)
	for _, n := range counts {
		if n <= colors {
			best = table[strconv.Itoa(n)]
		}
	}
	return best
}
