package pricing

import "testing"

func TestNormalizeCanonicalizesLocations(t *testing.T) {
	req := Request{
		Service:   ServiceScreen,
		Quantity:  10,
		Colors:    1,
		Locations: []Location{LocationBack, LocationFront, LocationBack},
	}

	norm := req.Normalize()
	if len(norm.Locations) != 2 {
		t.Fatalf("locations = %v, want deduplicated pair", norm.Locations)
	}
	if norm.Locations[0] != LocationBack || norm.Locations[1] != LocationFront {
		t.Errorf("locations = %v, want sorted [back front]", norm.Locations)
	}
	if norm.Tier != TierBasic {
		t.Errorf("tier = %q, want defaulted basic", norm.Tier)
	}
}

func TestNormalizeZeroesStitchForNonEmbroidery(t *testing.T) {
	req := Request{Service: ServiceScreen, Quantity: 1, StitchCount: 9000}
	if norm := req.Normalize(); norm.StitchCount != 0 {
		t.Errorf("stitch count = %d, want 0 for screen", norm.StitchCount)
	}

	emb := Request{Service: ServiceEmbroidery, Quantity: 1, StitchCount: 9000}
	if norm := emb.Normalize(); norm.StitchCount != 9000 {
		t.Errorf("stitch count = %d, want preserved for embroidery", norm.StitchCount)
	}
}

func TestValidateRejectsUnknownEnums(t *testing.T) {
	tests := []struct {
		name      string
		req       Request
		wantField string
	}{
		{"unknown service", Request{Service: "laser", Quantity: 1, Tier: TierBasic}, "service"},
		{"zero quantity", Request{Service: ServiceScreen, Quantity: 0, Tier: TierBasic}, "quantity"},
		{"negative colors", Request{Service: ServiceScreen, Quantity: 1, Colors: -1, Tier: TierBasic}, "colors"},
		{"unknown tier", Request{Service: ServiceScreen, Quantity: 1, Tier: "deluxe"}, "tier"},
		{"unknown location", Request{Service: ServiceScreen, Quantity: 1, Tier: TierBasic, Locations: []Location{"hood"}}, "locations"},
		{"no locations", Request{Service: ServiceScreen, Quantity: 1, Colors: 1, Tier: TierBasic}, "locations"},
		{"negative stitches", Request{Service: ServiceEmbroidery, Quantity: 1, StitchCount: -5, Tier: TierBasic}, "stitch_count"},
		{"quantity above cap", Request{Service: ServiceScreen, Quantity: MaxQuantity + 1, Colors: 1, Tier: TierBasic, Locations: []Location{LocationFront}}, "quantity"},
		{"colors above cap", Request{Service: ServiceScreen, Quantity: 1, Colors: MaxColors + 1, Tier: TierBasic, Locations: []Location{LocationFront}}, "colors"},
		{"stitches above cap", Request{Service: ServiceEmbroidery, Quantity: 1, StitchCount: MaxStitchCount + 1, Tier: TierBasic, Locations: []Location{LocationFront}}, "stitch_count"},
	}

	for _, tt := range tests {
		err := tt.req.Validate()
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		verr, ok := err.(*ValidationError)
		if !ok {
			t.Errorf("%s: error type %T, want *ValidationError", tt.name, err)
			continue
		}
		if verr.Field != tt.wantField {
			t.Errorf("%s: field %q, want %q", tt.name, verr.Field, tt.wantField)
		}
	}

	valid := Request{Service: ServiceScreen, Quantity: 10, Colors: 2, Tier: TierBasic, Locations: []Location{LocationFront}}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	// Finishing work carries no placement, so it is the one service that may
	// omit locations.
	finishing := Request{Service: ServiceFinishing, Quantity: 10, Tier: TierBasic}
	if err := finishing.Validate(); err != nil {
		t.Errorf("finishing request without locations rejected: %v", err)
	}
}

func TestFingerprintStableUnderEquivalentInput(t *testing.T) {
	a := Request{
		Service:   ServiceScreen,
		Quantity:  10,
		Colors:    2,
		Locations: []Location{LocationFront, LocationBack},
		Tier:      TierBasic,
	}
	b := Request{
		Service:   ServiceScreen,
		Quantity:  10,
		Colors:    2,
		Locations: []Location{LocationBack, LocationFront, LocationBack},
		Tier:      "", // defaults to basic
	}

	if Fingerprint(a, 7) != Fingerprint(b, 7) {
		t.Error("equivalent requests should share a fingerprint")
	}
}

func TestFingerprintChangesWithVersion(t *testing.T) {
	req := Request{Service: ServiceScreen, Quantity: 10, Colors: 2, Tier: TierBasic}

	if Fingerprint(req, 1) == Fingerprint(req, 2) {
		t.Error("advancing the rule-set version must change every fingerprint")
	}
}

func TestFingerprintSensitiveToEachField(t *testing.T) {
	base := Request{Service: ServiceScreen, Quantity: 10, Colors: 2, Tier: TierBasic}
	baseline := Fingerprint(base, 1)

	variants := []Request{
		{Service: ServiceDTG, Quantity: 10, Colors: 2, Tier: TierBasic},
		{Service: ServiceScreen, Quantity: 11, Colors: 2, Tier: TierBasic},
		{Service: ServiceScreen, Quantity: 10, Colors: 3, Tier: TierBasic},
		{Service: ServiceScreen, Quantity: 10, Colors: 2, Tier: TierPremium},
		{Service: ServiceScreen, Quantity: 10, Colors: 2, Tier: TierBasic, Rush: true},
		{Service: ServiceScreen, Quantity: 10, Colors: 2, Tier: TierBasic, Locations: []Location{LocationFront}},
	}
	for i, v := range variants {
		if Fingerprint(v, 1) == baseline {
			t.Errorf("variant %d should produce a distinct fingerprint", i)
		}
	}
}
