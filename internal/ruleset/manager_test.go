package ruleset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hypnotizedent/printshop-os-sub002/internal/model"
	"github.com/hypnotizedent/printshop-os-sub002/internal/pricing"
	"github.com/hypnotizedent/printshop-os-sub002/internal/repository"

	"github.com/google/uuid"
)

type fakeRuleRepo struct {
	repository.RuleRepository
	rows    []model.PricingRule
	listErr error
}

func (f *fakeRuleRepo) ListAll(ctx context.Context) ([]model.PricingRule, error) {
	return f.rows, f.listErr
}

type fakeVersionRepo struct {
	repository.VersionRepository
	version int64
	err     error
}

func (f *fakeVersionRepo) Current(ctx context.Context) (int64, error) {
	return f.version, f.err
}

func ruleRow(name, conditions, action string) model.PricingRule {
	return model.PricingRule{
		ID:         uuid.New(),
		Name:       name,
		Conditions: conditions,
		Action:     action,
		Active:     true,
		ActiveFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestReloadPublishesSnapshot(t *testing.T) {
	ruleRepo := &fakeRuleRepo{rows: []model.PricingRule{
		ruleRow("bulk contract",
			`[{"type":"quantity_range","min":2000},{"type":"product_type","services":["screen"]}]`,
			`{"unit_price_cents":500}`),
	}}
	versionRepo := &fakeVersionRepo{version: 7}

	m := NewManager(ruleRepo, versionRepo)
	if m.Version() != 0 {
		t.Errorf("initial version = %d, want 0", m.Version())
	}

	if err := m.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	snap := m.Snapshot()
	if snap.Version != 7 {
		t.Errorf("version = %d, want 7", snap.Version)
	}
	if len(snap.Rules) != 1 {
		t.Fatalf("rules = %d, want 1", len(snap.Rules))
	}
	if snap.Rules[0].Specificity() != 2 {
		t.Errorf("specificity = %d, want 2", snap.Rules[0].Specificity())
	}
	if snap.Rules[0].Action.UnitPriceCents == nil || *snap.Rules[0].Action.UnitPriceCents != 500 {
		t.Errorf("unit price = %v, want 500", snap.Rules[0].Action.UnitPriceCents)
	}
}

func TestReloadSkipsUndecodableRows(t *testing.T) {
	ruleRepo := &fakeRuleRepo{rows: []model.PricingRule{
		ruleRow("good", `[{"type":"quantity_range","min":1}]`, `{"flat_surcharge_cents":100}`),
		ruleRow("unknown condition", `[{"type":"customer_segment"}]`, `{}`),
		ruleRow("bad action", `[]`, `{"discount_bps":20000}`),
	}}
	versionRepo := &fakeVersionRepo{version: 3}

	m := NewManager(ruleRepo, versionRepo)
	if err := m.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	snap := m.Snapshot()
	if len(snap.Rules) != 1 {
		t.Fatalf("rules = %d, want only the decodable one", len(snap.Rules))
	}
	if snap.Rules[0].Name != "good" {
		t.Errorf("kept rule = %q, want good", snap.Rules[0].Name)
	}
}

func TestReloadKeepsOldSnapshotOnError(t *testing.T) {
	ruleRepo := &fakeRuleRepo{rows: []model.PricingRule{
		ruleRow("good", `[]`, `{}`),
	}}
	versionRepo := &fakeVersionRepo{version: 1}

	m := NewManager(ruleRepo, versionRepo)
	if err := m.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	ruleRepo.listErr = errors.New("connection reset")
	versionRepo.version = 2
	if err := m.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error")
	}

	snap := m.Snapshot()
	if snap.Version != 1 || len(snap.Rules) != 1 {
		t.Errorf("snapshot after failed reload = v%d with %d rules, want intact v1 with 1 rule", snap.Version, len(snap.Rules))
	}
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	if _, err := Decode(ruleRow("x", `not json`, `{}`)); err == nil {
		t.Error("expected error for malformed conditions")
	}
	if _, err := Decode(ruleRow("x", `[]`, `not json`)); err == nil {
		t.Error("expected error for malformed action")
	}
	if _, err := Decode(ruleRow("x", `[]`, `{"unit_price_cents":-5}`)); err == nil {
		t.Error("expected error for invalid action values")
	}
}

func TestDecodedRuleMatches(t *testing.T) {
	row := ruleRow("screen bulk",
		`[{"type":"quantity_range","min":2000},{"type":"product_type","services":["screen"]}]`,
		`{"unit_price_cents":500}`)

	rule, err := Decode(row)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	match := pricing.Request{Service: pricing.ServiceScreen, Quantity: 4245, Tier: pricing.TierBasic}
	if !rule.MatchesRequest(match, now) {
		t.Error("rule should match a qualifying request")
	}

	small := pricing.Request{Service: pricing.ServiceScreen, Quantity: 100, Tier: pricing.TierBasic}
	if rule.MatchesRequest(small, now) {
		t.Error("rule should not match below the quantity threshold")
	}
}
