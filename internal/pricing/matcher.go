package pricing

import (
	"log"
	"time"
)

// Select picks the single best-fit rule for the request, or nil when nothing
// matches and the default formulas should apply.
//
// Surviving rules are ranked by specificity (condition count), then explicit
// precedence (higher wins), then most-recent update. Two active rules with
// identical specificity and precedence is a configuration error; quoting must
// never hard-fail on that, so the newest rule wins and the ambiguity is logged.
func Select(req Request, now time.Time, rules []Rule) *Rule {
	var best *Rule
	ambiguous := false
	for i := range rules {
		r := &rules[i]
		if !r.Active || !r.ActiveAt(now) {
			continue
		}
		if !r.MatchesRequest(req, now) {
			continue
		}
		if best == nil {
			best = r
			continue
		}
		switch {
		case r.Specificity() != best.Specificity():
			if r.Specificity() > best.Specificity() {
				best = r
				ambiguous = false
			}
		case r.Precedence != best.Precedence:
			if r.Precedence > best.Precedence {
				best = r
				ambiguous = false
			}
		default:
			ambiguous = true
			if r.UpdatedAt.After(best.UpdatedAt) {
				best = r
			}
		}
	}
	if ambiguous && best != nil {
		log.Printf("WARNING: ambiguous rule configuration: multiple rules with specificity=%d precedence=%d match; picked newest %s (%s)",
			best.Specificity(), best.Precedence, best.Name, best.ID)
	}
	return best
}
