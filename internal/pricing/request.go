package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Service enum constants — the closed set of decoration methods.
type Service string

const (
	ServiceScreen      Service = "screen"
	ServiceDTG         Service = "dtg"
	ServiceEmbroidery  Service = "embroidery"
	ServiceVinyl       Service = "vinyl"
	ServiceSublimation Service = "sublimation"
	ServiceFinishing   Service = "finishing"
)

// Location enum constants — valid print placements.
type Location string

const (
	LocationFront       Location = "front"
	LocationBack        Location = "back"
	LocationLeftSleeve  Location = "left_sleeve"
	LocationRightSleeve Location = "right_sleeve"
	LocationPocket      Location = "pocket"
)

// Tier enum constants — quality tiers.
type Tier string

const (
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// ValidService reports whether s is one of the known decoration methods.
// Callers that accept a service value from the outside (request validation,
// rule list filters) check here before using it.
func ValidService(s Service) bool {
	switch s {
	case ServiceScreen, ServiceDTG, ServiceEmbroidery, ServiceVinyl, ServiceSublimation, ServiceFinishing:
		return true
	}
	return false
}

func validLocation(l Location) bool {
	switch l {
	case LocationFront, LocationBack, LocationLeftSleeve, LocationRightSleeve, LocationPocket:
		return true
	}
	return false
}

// Request describes one print job to be quoted.
type Request struct {
	Service     Service    `json:"service"`
	Quantity    int        `json:"quantity"`
	Colors      int        `json:"colors"`
	Locations   []Location `json:"locations"`
	StitchCount int        `json:"stitch_count"`
	Tier        Tier       `json:"tier"`
	Rush        bool       `json:"rush"`
}

// Normalize returns a canonical copy: locations sorted and de-duplicated,
// empty tier defaulted to basic, stitch count zeroed for non-embroidery
// services so that equivalent requests produce identical fingerprints.
func (r Request) Normalize() Request {
	out := r
	if out.Tier == "" {
		out.Tier = TierBasic
	}
	if out.Service != ServiceEmbroidery {
		out.StitchCount = 0
	}
	if len(r.Locations) > 0 {
		seen := make(map[Location]bool, len(r.Locations))
		locs := make([]Location, 0, len(r.Locations))
		for _, l := range r.Locations {
			if !seen[l] {
				seen[l] = true
				locs = append(locs, l)
			}
		}
		sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })
		out.Locations = locs
	}
	return out
}

// Upper bounds on request inputs. Generous for any real print job, tight
// enough that the per-location product stays far inside int64.
const (
	MaxQuantity    = 1_000_000
	MaxColors      = 100
	MaxStitchCount = 1_000_000
)

// Validate rejects malformed requests with a field-level error. Unknown enum
// values are rejected, never silently defaulted.
func (r Request) Validate() error {
	if !ValidService(r.Service) {
		return &ValidationError{Field: "service", Message: fmt.Sprintf("unknown service %q", r.Service)}
	}
	if r.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be a positive integer"}
	}
	if r.Quantity > MaxQuantity {
		return &ValidationError{Field: "quantity", Message: fmt.Sprintf("must not exceed %d", MaxQuantity)}
	}
	if r.Colors < 0 {
		return &ValidationError{Field: "colors", Message: "must be non-negative"}
	}
	if r.Colors > MaxColors {
		return &ValidationError{Field: "colors", Message: fmt.Sprintf("must not exceed %d", MaxColors)}
	}
	if r.StitchCount < 0 {
		return &ValidationError{Field: "stitch_count", Message: "must be non-negative"}
	}
	if r.StitchCount > MaxStitchCount {
		return &ValidationError{Field: "stitch_count", Message: fmt.Sprintf("must not exceed %d", MaxStitchCount)}
	}
	if r.Tier != TierBasic && r.Tier != TierPremium {
		return &ValidationError{Field: "tier", Message: fmt.Sprintf("unknown tier %q", r.Tier)}
	}
	if len(r.Locations) == 0 && r.Service != ServiceFinishing {
		return &ValidationError{Field: "locations", Message: "at least one location is required"}
	}
	for _, l := range r.Locations {
		if !validLocation(l) {
			return &ValidationError{Field: "locations", Message: fmt.Sprintf("unknown location %q", l)}
		}
	}
	return nil
}

// Fingerprint produces the stable cache key for a normalized request under a
// given rule-set version. Advancing the version changes every fingerprint,
// which is the sole cache invalidation signal.
func Fingerprint(r Request, version int64) string {
	r = r.Normalize()
	locs := make([]string, len(r.Locations))
	for i, l := range r.Locations {
		locs[i] = string(l)
	}
	canonical := fmt.Sprintf("v=%d|svc=%s|qty=%d|col=%d|loc=%s|st=%d|tier=%s|rush=%t",
		version, r.Service, r.Quantity, r.Colors, strings.Join(locs, ","), r.StitchCount, r.Tier, r.Rush)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
