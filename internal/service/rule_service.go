package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hypnotizedent/printshop-os-sub002/internal/model"
	"github.com/hypnotizedent/printshop-os-sub002/internal/pricing"
	"github.com/hypnotizedent/printshop-os-sub002/internal/repository"
	"github.com/hypnotizedent/printshop-os-sub002/internal/ruleset"
	ws "github.com/hypnotizedent/printshop-os-sub002/internal/websocket"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateRuleRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Conditions  json.RawMessage `json:"conditions" binding:"required"`
	Action      json.RawMessage `json:"action" binding:"required"`
	Precedence  int             `json:"precedence"`
	Active      *bool           `json:"active"`
	ActiveFrom  string          `json:"active_from" binding:"required"` // YYYY-MM-DD
	ActiveUntil string          `json:"active_until"`                   // YYYY-MM-DD, nullable
}

type UpdateRuleRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Conditions  json.RawMessage `json:"conditions" binding:"required"`
	Action      json.RawMessage `json:"action" binding:"required"`
	Precedence  int             `json:"precedence"`
	Active      *bool           `json:"active"`
	ActiveFrom  string          `json:"active_from" binding:"required"`
	ActiveUntil string          `json:"active_until"`
}

type RuleResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Conditions  json.RawMessage `json:"conditions"`
	Action      json.RawMessage `json:"action"`
	Precedence  int             `json:"precedence"`
	Specificity int             `json:"specificity"`
	Active      bool            `json:"active"`
	ActiveFrom  string          `json:"active_from"`
	ActiveUntil *string         `json:"active_until"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

type RuleListFilter struct {
	ActiveOnly bool
	Service    string
}

// ConflictError reports a rule write that would collide with an existing
// active rule at the same specificity and precedence.
type ConflictError struct {
	Specificity int
	Precedence  int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("an active rule with %d conditions already exists at precedence %d", e.Specificity, e.Precedence)
}

// --- Interface ---

type RuleService interface {
	GetRules(ctx context.Context, filter RuleListFilter, page, limit int) ([]RuleResponse, int64, error)
	GetRule(ctx context.Context, id string) (RuleResponse, error)
	CreateRule(ctx context.Context, req CreateRuleRequest, actorID string) (RuleResponse, error)
	UpdateRule(ctx context.Context, id string, req UpdateRuleRequest, actorID string) (RuleResponse, error)
	DeleteRule(ctx context.Context, id string, actorID string) error
	RuleSetVersion(ctx context.Context) (int64, error)
}

type ruleService struct {
	ruleRepo    repository.RuleRepository
	versionRepo repository.VersionRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	rules       *ruleset.Manager
	hub         *ws.Hub
}

func NewRuleService(
	ruleRepo repository.RuleRepository,
	versionRepo repository.VersionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	rules *ruleset.Manager,
	hub *ws.Hub,
) RuleService {
	return &ruleService{
		ruleRepo:    ruleRepo,
		versionRepo: versionRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		rules:       rules,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *ruleService) GetRules(ctx context.Context, filter RuleListFilter, page, limit int) ([]RuleResponse, int64, error) {
	// The repository interpolates the service into a jsonb containment
	// fragment, so only known enum values may pass through.
	if filter.Service != "" && !pricing.ValidService(pricing.Service(filter.Service)) {
		return nil, 0, &pricing.ValidationError{Field: "service", Message: fmt.Sprintf("unknown service %q", filter.Service)}
	}
	rows, total, err := s.ruleRepo.List(ctx, repository.RuleFilter{
		ActiveOnly: filter.ActiveOnly,
		Service:    filter.Service,
	}, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch pricing rules: %w", err)
	}

	res := make([]RuleResponse, 0, len(rows))
	for _, row := range rows {
		res = append(res, toRuleResponse(row))
	}

	return res, total, nil
}

func (s *ruleService) GetRule(ctx context.Context, id string) (RuleResponse, error) {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return RuleResponse{}, &pricing.ValidationError{Field: "id", Message: "invalid rule id"}
	}

	row, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		return RuleResponse{}, err
	}

	return toRuleResponse(*row), nil
}

func (s *ruleService) CreateRule(ctx context.Context, req CreateRuleRequest, actorID string) (RuleResponse, error) {
	conditions, _, from, until, err := parseRuleFields(req.Conditions, req.Action, req.ActiveFrom, req.ActiveUntil)
	if err != nil {
		return RuleResponse{}, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	if active {
		if err := s.checkConflict(ctx, len(conditions), req.Precedence, nil); err != nil {
			return RuleResponse{}, err
		}
	}

	row := model.PricingRule{
		Name:        req.Name,
		Description: req.Description,
		Conditions:  string(req.Conditions),
		Action:      string(req.Action),
		Precedence:  req.Precedence,
		Active:      active,
		ActiveFrom:  from,
		ActiveUntil: until,
	}

	// The version bump rides the same transaction as the rule write so
	// readers never pair old rules with a new version.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ruleRepo.Create(txCtx, &row); err != nil {
			return fmt.Errorf("failed to create pricing rule: %w", err)
		}
		if _, err := s.versionRepo.Increment(txCtx); err != nil {
			return fmt.Errorf("failed to bump rule-set version: %w", err)
		}
		return nil
	})
	if err != nil {
		return RuleResponse{}, err
	}

	s.afterMutation(ctx, actorID, model.ActionCreatePricingRule, row, req)

	return toRuleResponse(row), nil
}

func (s *ruleService) UpdateRule(ctx context.Context, id string, req UpdateRuleRequest, actorID string) (RuleResponse, error) {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return RuleResponse{}, &pricing.ValidationError{Field: "id", Message: "invalid rule id"}
	}

	row, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		return RuleResponse{}, err
	}

	conditions, _, from, until, err := parseRuleFields(req.Conditions, req.Action, req.ActiveFrom, req.ActiveUntil)
	if err != nil {
		return RuleResponse{}, err
	}

	active := row.Active
	if req.Active != nil {
		active = *req.Active
	}

	if active {
		if err := s.checkConflict(ctx, len(conditions), req.Precedence, &ruleID); err != nil {
			return RuleResponse{}, err
		}
	}

	row.Name = req.Name
	row.Description = req.Description
	row.Conditions = string(req.Conditions)
	row.Action = string(req.Action)
	row.Precedence = req.Precedence
	row.Active = active
	row.ActiveFrom = from
	row.ActiveUntil = until

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ruleRepo.Update(txCtx, row); err != nil {
			return fmt.Errorf("failed to update pricing rule: %w", err)
		}
		if _, err := s.versionRepo.Increment(txCtx); err != nil {
			return fmt.Errorf("failed to bump rule-set version: %w", err)
		}
		return nil
	})
	if err != nil {
		return RuleResponse{}, err
	}

	s.afterMutation(ctx, actorID, model.ActionUpdatePricingRule, *row, req)

	return toRuleResponse(*row), nil
}

func (s *ruleService) DeleteRule(ctx context.Context, id string, actorID string) error {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return &pricing.ValidationError{Field: "id", Message: "invalid rule id"}
	}

	row, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ruleRepo.Delete(txCtx, ruleID); err != nil {
			return fmt.Errorf("failed to delete pricing rule: %w", err)
		}
		if _, err := s.versionRepo.Increment(txCtx); err != nil {
			return fmt.Errorf("failed to bump rule-set version: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.afterMutation(ctx, actorID, model.ActionDeletePricingRule, *row, map[string]string{"deleted_id": id})

	return nil
}

func (s *ruleService) RuleSetVersion(ctx context.Context) (int64, error) {
	return s.versionRepo.Current(ctx)
}

// --- Helpers ---

// parseRuleFields decodes and validates the condition list, the action set and
// the activity window before anything reaches storage.
func parseRuleFields(conditionsJSON, actionJSON json.RawMessage, fromStr, untilStr string) (pricing.ConditionList, pricing.Action, time.Time, *time.Time, error) {
	var conditions pricing.ConditionList
	if err := json.Unmarshal(conditionsJSON, &conditions); err != nil {
		return nil, pricing.Action{}, time.Time{}, nil, &pricing.ValidationError{Field: "conditions", Message: err.Error()}
	}

	var action pricing.Action
	if err := json.Unmarshal(actionJSON, &action); err != nil {
		return nil, pricing.Action{}, time.Time{}, nil, &pricing.ValidationError{Field: "action", Message: err.Error()}
	}
	if err := action.Validate(); err != nil {
		return nil, pricing.Action{}, time.Time{}, nil, err
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return nil, pricing.Action{}, time.Time{}, nil, &pricing.ValidationError{Field: "active_from", Message: "expected YYYY-MM-DD"}
	}

	var until *time.Time
	if untilStr != "" {
		t, err := time.Parse("2006-01-02", untilStr)
		if err != nil {
			return nil, pricing.Action{}, time.Time{}, nil, &pricing.ValidationError{Field: "active_until", Message: "expected YYYY-MM-DD"}
		}
		if t.Before(from) {
			return nil, pricing.Action{}, time.Time{}, nil, &pricing.ValidationError{Field: "active_until", Message: "must not precede active_from"}
		}
		until = &t
	}

	return conditions, action, from, until, nil
}

func (s *ruleService) checkConflict(ctx context.Context, specificity, precedence int, excludeID *uuid.UUID) error {
	count, err := s.ruleRepo.CountAmbiguous(ctx, specificity, precedence, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check rule conflicts: %w", err)
	}
	if count > 0 {
		return &ConflictError{Specificity: specificity, Precedence: precedence}
	}
	return nil
}

// afterMutation refreshes the in-memory snapshot, announces the change and
// writes the audit record. All three are best-effort: the mutation is already
// committed and must not be reported as failed.
func (s *ruleService) afterMutation(ctx context.Context, actorID, action string, row model.PricingRule, details interface{}) {
	if err := s.rules.Reload(ctx); err != nil {
		log.Printf("ERROR: rule-set reload after %s failed: %v", action, err)
	}

	s.hub.Notify(ws.EventRuleSetUpdated, map[string]interface{}{
		"action":           action,
		"rule_id":          row.ID.String(),
		"rule_name":        row.Name,
		"rule_set_version": s.rules.Version(),
	})

	detailsJSON, _ := json.Marshal(details)
	entry := model.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityID:   row.ID.String(),
		EntityName: row.Name,
		Details:    string(detailsJSON),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		log.Printf("WARNING: audit log write failed for %s %s: %v", action, row.ID, err)
	}
}

func toRuleResponse(row model.PricingRule) RuleResponse {
	resp := RuleResponse{
		ID:          row.ID.String(),
		Name:        row.Name,
		Description: row.Description,
		Conditions:  json.RawMessage(row.Conditions),
		Action:      json.RawMessage(row.Action),
		Precedence:  row.Precedence,
		Active:      row.Active,
		ActiveFrom:  row.ActiveFrom.Format("2006-01-02"),
		CreatedAt:   row.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   row.UpdatedAt.Format(time.RFC3339),
	}
	if rule, err := ruleset.Decode(row); err == nil {
		resp.Specificity = rule.Specificity()
	}
	if row.ActiveUntil != nil {
		s := row.ActiveUntil.Format("2006-01-02")
		resp.ActiveUntil = &s
	}
	return resp
}
