package pricing

import "fmt"

// SurchargeLine is one itemized surcharge entry in the breakdown. Location
// charges are not lines; they are carried once in Result.LocationCents.
type SurchargeLine struct {
	Kind        string `json:"kind"` // "rush", "rule", "margin"
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
}

// Result is the fully itemized outcome of a quote computation. It is
// immutable once produced; total == subtotal - discount + tax holds exactly
// in integer cents.
type Result struct {
	Service  Service `json:"service"`
	Quantity int     `json:"quantity"`

	BaseCents       int64           `json:"base_cents"`
	LocationCents   int64           `json:"location_cents"`
	DecorationCents int64           `json:"decoration_cents"` // color or stitch term
	Surcharges      []SurchargeLine `json:"surcharges,omitempty"`

	SubtotalCents int64  `json:"subtotal_cents"`
	DiscountCents int64  `json:"discount_cents"`
	DiscountBps   int64  `json:"discount_bps"`
	DiscountTier  string `json:"discount_tier,omitempty"`
	TaxCents      int64  `json:"tax_cents"`
	TotalCents    int64  `json:"total_cents"`

	MarginBps      int64  `json:"margin_bps"`
	RuleID         string `json:"rule_id,omitempty"`
	RuleName       string `json:"rule_name,omitempty"`
	RuleSetVersion int64  `json:"rule_set_version"`
}

// Calculate runs the staged cost pipeline for a normalized request against
// the default rate tables, with the matched rule (nil for none) contributing
// overrides. Pure: no I/O, no clock, deterministic for identical inputs.
//
// Stages: base -> location surcharge -> color/stitch -> rush and flat
// surcharges -> volume discount -> margin enforcement -> tax -> total.
// Everything is integer cents with half-up rounding per stage.
func Calculate(req Request, rule *Rule, cfg *RateConfig) (Result, error) {
	req = req.Normalize()
	qty := int64(req.Quantity)

	rates, hasRates := cfg.Services[req.Service]
	override := rule != nil && rule.Action.UnitPriceCents != nil
	if !hasRates && !override {
		return Result{}, fmt.Errorf("%w: %s", ErrNoMatchingRule, req.Service)
	}

	res := Result{Service: req.Service, Quantity: req.Quantity}
	if rule != nil {
		res.RuleID = rule.ID
		res.RuleName = rule.Name
	}

	var subtotal int64
	if override {
		subtotal = *rule.Action.UnitPriceCents * qty
		res.BaseCents = subtotal
	} else {
		res.BaseCents = rates.BaseCents * qty

		for _, loc := range req.Locations {
			mult, ok := cfg.LocationMultipliers[loc]
			if !ok {
				mult = 100
			}
			res.LocationCents += roundDiv(cfg.PerColorRateCents*int64(req.Colors)*mult*qty, 100)
		}

		if req.Service == ServiceEmbroidery {
			res.DecorationCents = roundDiv(int64(req.StitchCount)*cfg.StitchRatePer100[req.Tier]*qty, 100)
		} else {
			res.DecorationCents = cfg.colorRate(req.Tier, req.Colors) * qty
		}

		subtotal = res.BaseCents + res.LocationCents + res.DecorationCents
	}

	if req.Rush {
		fee := cfg.RushFeeCents
		if rule != nil && rule.Action.RushFeeCents != nil {
			fee = *rule.Action.RushFeeCents
		}
		if fee > 0 {
			res.Surcharges = append(res.Surcharges, SurchargeLine{Kind: "rush", Label: "rush", AmountCents: fee})
			subtotal += fee
		}
	}
	if rule != nil && rule.Action.FlatSurchargeCents > 0 {
		res.Surcharges = append(res.Surcharges, SurchargeLine{Kind: "rule", Label: rule.Name, AmountCents: rule.Action.FlatSurchargeCents})
		subtotal += rule.Action.FlatSurchargeCents
	}

	// Volume discount. An explicit unit-price override is the contracted
	// volume deal already, so the tier table does not stack on top of it.
	switch {
	case override:
		res.DiscountBps = 0
		res.DiscountTier = "contract"
	case rule != nil && rule.Action.DiscountBps != nil:
		res.DiscountBps = *rule.Action.DiscountBps
		res.DiscountTier = rule.Name
	default:
		res.DiscountBps, res.DiscountTier = cfg.DiscountFor(req.Quantity)
	}
	res.DiscountCents = applyBps(subtotal, res.DiscountBps)

	// Margin enforcement against known unit cost.
	if hasRates && rates.UnitCostCents > 0 {
		cost := rates.UnitCostCents * qty
		net := subtotal - res.DiscountCents
		if net > 0 {
			res.MarginBps = roundDiv((net-cost)*10000, net)
		}
		if override && res.MarginBps < cfg.MinMarginBps {
			switch rule.Action.MarginPolicy {
			case MarginPolicyAllow:
				// Rule explicitly permits the below-minimum margin.
			case MarginPolicyStrict:
				return Result{}, &MarginViolationError{RuleID: rule.ID, ImpliedBps: res.MarginBps, MinimumBps: cfg.MinMarginBps}
			default:
				// Clamp upward to the minimum-margin floor rather than
				// accept a loss-making quote.
				floor := roundDiv(cost*10000, 10000-cfg.MinMarginBps)
				if floor > net {
					adjustment := floor - net
					res.Surcharges = append(res.Surcharges, SurchargeLine{Kind: "margin", Label: "minimum margin adjustment", AmountCents: adjustment})
					subtotal += adjustment
					net = floor
				}
				res.MarginBps = roundDiv((net-cost)*10000, net)
			}
		}
	}

	res.SubtotalCents = subtotal
	res.TaxCents = applyBps(subtotal-res.DiscountCents, cfg.TaxBps)
	res.TotalCents = subtotal - res.DiscountCents + res.TaxCents
	return res, nil
}
