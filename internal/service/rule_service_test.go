package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hypnotizedent/printshop-os-sub002/internal/model"
	"github.com/hypnotizedent/printshop-os-sub002/internal/pricing"
	"github.com/hypnotizedent/printshop-os-sub002/internal/repository"
	"github.com/hypnotizedent/printshop-os-sub002/internal/ruleset"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Fakes ---

type memRuleRepo struct {
	rows      map[uuid.UUID]model.PricingRule
	ambiguous int64
}

func newMemRuleRepo() *memRuleRepo {
	return &memRuleRepo{rows: make(map[uuid.UUID]model.PricingRule)}
}

func (f *memRuleRepo) Create(ctx context.Context, rule *model.PricingRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt
	f.rows[rule.ID] = *rule
	return nil
}

func (f *memRuleRepo) Update(ctx context.Context, rule *model.PricingRule) error {
	if _, ok := f.rows[rule.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	rule.UpdatedAt = time.Now()
	f.rows[rule.ID] = *rule
	return nil
}

func (f *memRuleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

func (f *memRuleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PricingRule, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (f *memRuleRepo) List(ctx context.Context, filter repository.RuleFilter, page, limit int) ([]model.PricingRule, int64, error) {
	out := make([]model.PricingRule, 0, len(f.rows))
	for _, row := range f.rows {
		if filter.ActiveOnly && !row.Active {
			continue
		}
		out = append(out, row)
	}
	return out, int64(len(out)), nil
}

func (f *memRuleRepo) ListAll(ctx context.Context) ([]model.PricingRule, error) {
	out := make([]model.PricingRule, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, row)
	}
	return out, nil
}

func (f *memRuleRepo) CountAmbiguous(ctx context.Context, specificity, precedence int, excludeID *uuid.UUID) (int64, error) {
	return f.ambiguous, nil
}

type memVersionRepo struct {
	version int64
}

func (f *memVersionRepo) Current(ctx context.Context) (int64, error) {
	return f.version, nil
}

func (f *memVersionRepo) Increment(ctx context.Context) (int64, error) {
	f.version++
	return f.version, nil
}

type memAuditRepo struct {
	entries []model.AuditLog
	err     error
}

func (f *memAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *memAuditRepo) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- Helpers ---

func newTestRuleService(t *testing.T) (RuleService, *memRuleRepo, *memVersionRepo, *memAuditRepo, *ruleset.Manager) {
	t.Helper()
	ruleRepo := newMemRuleRepo()
	versionRepo := &memVersionRepo{}
	auditRepo := &memAuditRepo{}
	manager := ruleset.NewManager(ruleRepo, versionRepo)
	svc := NewRuleService(ruleRepo, versionRepo, auditRepo, passthroughTx{}, manager, nil)
	return svc, ruleRepo, versionRepo, auditRepo, manager
}

func validCreateRequest() CreateRuleRequest {
	return CreateRuleRequest{
		Name: "bulk contract",
		Conditions: json.RawMessage(`[{"type":"quantity_range","min":2000},` +
			`{"type":"product_type","services":["screen"]}]`),
		Action:     json.RawMessage(`{"unit_price_cents":500}`),
		Precedence: 10,
		ActiveFrom: "2026-01-01",
	}
}

// --- Tests ---

func TestCreateRuleBumpsVersionAndReloads(t *testing.T) {
	svc, ruleRepo, versionRepo, auditRepo, manager := newTestRuleService(t)

	resp, err := svc.CreateRule(context.Background(), validCreateRequest(), "ops-1")
	if err != nil {
		t.Fatalf("CreateRule: %v", err)
	}

	if versionRepo.version != 1 {
		t.Errorf("version = %d, want 1", versionRepo.version)
	}
	if len(ruleRepo.rows) != 1 {
		t.Fatalf("stored rules = %d, want 1", len(ruleRepo.rows))
	}
	if resp.Specificity != 2 {
		t.Errorf("specificity = %d, want 2", resp.Specificity)
	}
	if !resp.Active {
		t.Error("rules default to active")
	}

	snap := manager.Snapshot()
	if snap.Version != 1 || len(snap.Rules) != 1 {
		t.Errorf("snapshot = v%d with %d rules, want v1 with 1", snap.Version, len(snap.Rules))
	}

	if len(auditRepo.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(auditRepo.entries))
	}
	entry := auditRepo.entries[0]
	if entry.Action != model.ActionCreatePricingRule || entry.ActorID != "ops-1" {
		t.Errorf("audit entry = %+v", entry)
	}
}

func TestCreateRuleRejectsUnknownCondition(t *testing.T) {
	svc, ruleRepo, versionRepo, _, _ := newTestRuleService(t)

	req := validCreateRequest()
	req.Conditions = json.RawMessage(`[{"type":"customer_segment","segment":"vip"}]`)

	_, err := svc.CreateRule(context.Background(), req, "")
	var verr *pricing.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Field != "conditions" {
		t.Errorf("field = %q, want conditions", verr.Field)
	}
	if len(ruleRepo.rows) != 0 || versionRepo.version != 0 {
		t.Error("rejected payload must not reach storage or bump the version")
	}
}

func TestCreateRuleRejectsInvalidAction(t *testing.T) {
	svc, _, _, _, _ := newTestRuleService(t)

	req := validCreateRequest()
	req.Action = json.RawMessage(`{"discount_bps":20000}`)

	_, err := svc.CreateRule(context.Background(), req, "")
	var verr *pricing.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestCreateRuleRejectsInvertedWindow(t *testing.T) {
	svc, _, _, _, _ := newTestRuleService(t)

	req := validCreateRequest()
	req.ActiveFrom = "2026-06-01"
	req.ActiveUntil = "2026-01-01"

	_, err := svc.CreateRule(context.Background(), req, "")
	var verr *pricing.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Field != "active_until" {
		t.Errorf("field = %q, want active_until", verr.Field)
	}
}

func TestCreateRuleConflict(t *testing.T) {
	svc, ruleRepo, _, _, _ := newTestRuleService(t)
	ruleRepo.ambiguous = 1

	_, err := svc.CreateRule(context.Background(), validCreateRequest(), "")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if conflict.Specificity != 2 || conflict.Precedence != 10 {
		t.Errorf("conflict = %+v", conflict)
	}
}

func TestUpdateRuleBumpsVersion(t *testing.T) {
	svc, _, versionRepo, _, manager := newTestRuleService(t)

	created, err := svc.CreateRule(context.Background(), validCreateRequest(), "")
	if err != nil {
		t.Fatal(err)
	}

	update := UpdateRuleRequest{
		Name:       "bulk contract v2",
		Conditions: json.RawMessage(`[{"type":"quantity_range","min":1000}]`),
		Action:     json.RawMessage(`{"unit_price_cents":450}`),
		Precedence: 20,
		ActiveFrom: "2026-01-01",
	}
	updated, err := svc.UpdateRule(context.Background(), created.ID, update, "ops-2")
	if err != nil {
		t.Fatalf("UpdateRule: %v", err)
	}

	if updated.Name != "bulk contract v2" || updated.Precedence != 20 {
		t.Errorf("updated = %+v", updated)
	}
	if versionRepo.version != 2 {
		t.Errorf("version = %d, want 2 after create+update", versionRepo.version)
	}
	if manager.Version() != 2 {
		t.Errorf("snapshot version = %d, want 2", manager.Version())
	}
}

func TestUpdateRuleNotFound(t *testing.T) {
	svc, _, _, _, _ := newTestRuleService(t)

	_, err := svc.UpdateRule(context.Background(), uuid.NewString(), UpdateRuleRequest{
		Name:       "x",
		Conditions: json.RawMessage(`[]`),
		Action:     json.RawMessage(`{}`),
		ActiveFrom: "2026-01-01",
	}, "")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want record not found", err)
	}
}

func TestDeleteRuleBumpsVersionAndAudits(t *testing.T) {
	svc, ruleRepo, versionRepo, auditRepo, _ := newTestRuleService(t)

	created, err := svc.CreateRule(context.Background(), validCreateRequest(), "")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteRule(context.Background(), created.ID, "ops-3"); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}

	if len(ruleRepo.rows) != 0 {
		t.Error("rule should be gone")
	}
	if versionRepo.version != 2 {
		t.Errorf("version = %d, want 2", versionRepo.version)
	}
	last := auditRepo.entries[len(auditRepo.entries)-1]
	if last.Action != model.ActionDeletePricingRule {
		t.Errorf("last audit action = %q", last.Action)
	}
}

func TestMutationSurvivesAuditFailure(t *testing.T) {
	svc, ruleRepo, _, auditRepo, _ := newTestRuleService(t)
	auditRepo.err = errors.New("audit store down")

	if _, err := svc.CreateRule(context.Background(), validCreateRequest(), ""); err != nil {
		t.Fatalf("audit failure must not fail the mutation: %v", err)
	}
	if len(ruleRepo.rows) != 1 {
		t.Error("rule should be stored despite audit failure")
	}
}

func TestGetRulesRejectsUnknownServiceFilter(t *testing.T) {
	svc, _, _, _, _ := newTestRuleService(t)

	// A value outside the service enum would otherwise be spliced into the
	// repository's jsonb containment fragment.
	_, _, err := svc.GetRules(context.Background(), RuleListFilter{Service: `scr"een`}, 1, 20)
	var verr *pricing.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Field != "service" {
		t.Errorf("field = %q, want service", verr.Field)
	}

	if _, _, err := svc.GetRules(context.Background(), RuleListFilter{Service: "screen"}, 1, 20); err != nil {
		t.Errorf("known service filter rejected: %v", err)
	}
}

func TestGetRuleInvalidID(t *testing.T) {
	svc, _, _, _, _ := newTestRuleService(t)

	_, err := svc.GetRule(context.Background(), "not-a-uuid")
	var verr *pricing.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}
