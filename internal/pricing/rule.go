package pricing

import (
	"fmt"
	"time"
)

// MarginPolicy controls what happens when a rule's price override falls below
// the configured minimum margin.
type MarginPolicy string

const (
	// MarginPolicyClamp raises the price to the minimum-margin floor (default).
	MarginPolicyClamp MarginPolicy = "clamp"
	// MarginPolicyAllow explicitly permits a below-minimum margin.
	MarginPolicyAllow MarginPolicy = "allow"
	// MarginPolicyStrict rejects the quote instead of auto-correcting.
	MarginPolicyStrict MarginPolicy = "strict"
)

// Action is the set of pricing overrides a matched rule contributes.
// Zero values mean "no override"; the default formulas apply instead.
type Action struct {
	// UnitPriceCents replaces the staged per-unit computation with an explicit
	// contracted price. Volume discount tiers do not stack on top of it.
	UnitPriceCents *int64 `json:"unit_price_cents,omitempty"`
	// FlatSurchargeCents is added to the subtotal (setup fees and the like).
	FlatSurchargeCents int64 `json:"flat_surcharge_cents,omitempty"`
	// DiscountBps replaces the quantity-tier discount percentage.
	DiscountBps *int64 `json:"discount_bps,omitempty"`
	// RushFeeCents replaces the configured rush fee when the request is rushed.
	RushFeeCents *int64 `json:"rush_fee_cents,omitempty"`
	// MarginPolicy: "", "clamp", "allow" or "strict".
	MarginPolicy MarginPolicy `json:"margin_policy,omitempty"`
}

// Validate checks override ranges; field names refer to the rule payload.
func (a Action) Validate() error {
	if a.UnitPriceCents != nil && *a.UnitPriceCents <= 0 {
		return &ValidationError{Field: "action.unit_price_cents", Message: "must be positive"}
	}
	if a.FlatSurchargeCents < 0 {
		return &ValidationError{Field: "action.flat_surcharge_cents", Message: "must be non-negative"}
	}
	if a.DiscountBps != nil && (*a.DiscountBps < 0 || *a.DiscountBps > 10000) {
		return &ValidationError{Field: "action.discount_bps", Message: "must be between 0 and 10000"}
	}
	if a.RushFeeCents != nil && *a.RushFeeCents < 0 {
		return &ValidationError{Field: "action.rush_fee_cents", Message: "must be non-negative"}
	}
	switch a.MarginPolicy {
	case "", MarginPolicyClamp, MarginPolicyAllow, MarginPolicyStrict:
	default:
		return &ValidationError{Field: "action.margin_policy", Message: fmt.Sprintf("unknown policy %q", a.MarginPolicy)}
	}
	return nil
}

// Rule is the in-memory form of a pricing rule, decoded from storage into the
// closed condition model. Conditions are AND-ed; a rule with zero conditions
// is the catch-all fallback with the lowest possible specificity.
type Rule struct {
	ID          string
	Name        string
	Conditions  ConditionList
	Action      Action
	Precedence  int
	Active      bool
	ActiveFrom  time.Time
	ActiveUntil *time.Time
	UpdatedAt   time.Time
}

// Specificity is the number of conditions the rule declares.
func (r Rule) Specificity() int { return len(r.Conditions) }

// ActiveAt reports whether the rule's active window contains t.
func (r Rule) ActiveAt(t time.Time) bool {
	if t.Before(r.ActiveFrom) {
		return false
	}
	return r.ActiveUntil == nil || !t.After(*r.ActiveUntil)
}

// MatchesRequest reports whether every condition matches.
func (r Rule) MatchesRequest(req Request, now time.Time) bool {
	for _, c := range r.Conditions {
		if !c.Matches(req, now) {
			return false
		}
	}
	return true
}
