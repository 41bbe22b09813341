// Package ruleset maintains an immutable, versioned snapshot of the active
// pricing rules. Readers always see a complete, consistent rule set via a
// single atomic pointer; the snapshot's version doubles as the cache
// fingerprint generation.
package ruleset

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/hypnotizedent/printshop-os-sub002/internal/model"
	"github.com/hypnotizedent/printshop-os-sub002/internal/pricing"
	"github.com/hypnotizedent/printshop-os-sub002/internal/repository"
)

// Snapshot is an immutable view of the rule set at one version. Never mutate
// a published snapshot; Reload builds and swaps a fresh one.
type Snapshot struct {
	Version int64
	Rules   []pricing.Rule
}

type Manager struct {
	ruleRepo    repository.RuleRepository
	versionRepo repository.VersionRepository
	snap        atomic.Pointer[Snapshot]
}

func NewManager(ruleRepo repository.RuleRepository, versionRepo repository.VersionRepository) *Manager {
	m := &Manager{ruleRepo: ruleRepo, versionRepo: versionRepo}
	m.snap.Store(&Snapshot{})
	return m
}

// Reload reads the version counter and rule rows, decodes them into the typed
// condition model and atomically publishes the new snapshot. Rows with an
// undecodable payload are skipped and logged rather than poisoning the whole
// rule set.
func (m *Manager) Reload(ctx context.Context) error {
	version, err := m.versionRepo.Current(ctx)
	if err != nil {
		return fmt.Errorf("read rule-set version: %w", err)
	}
	rows, err := m.ruleRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load pricing rules: %w", err)
	}

	rules := make([]pricing.Rule, 0, len(rows))
	for _, row := range rows {
		rule, err := Decode(row)
		if err != nil {
			log.Printf("WARNING: skipping pricing rule %s (%s): %v", row.ID, row.Name, err)
			continue
		}
		rules = append(rules, rule)
	}

	m.snap.Store(&Snapshot{Version: version, Rules: rules})
	return nil
}

// Snapshot returns the current published snapshot.
func (m *Manager) Snapshot() *Snapshot {
	return m.snap.Load()
}

// Version is a convenience accessor for the published generation.
func (m *Manager) Version() int64 {
	return m.snap.Load().Version
}

// Decode converts a stored rule row into the in-memory form, rejecting
// unknown condition kinds and out-of-range actions.
func Decode(row model.PricingRule) (pricing.Rule, error) {
	var conditions pricing.ConditionList
	if err := json.Unmarshal([]byte(row.Conditions), &conditions); err != nil {
		return pricing.Rule{}, fmt.Errorf("decode conditions: %w", err)
	}
	var action pricing.Action
	if err := json.Unmarshal([]byte(row.Action), &action); err != nil {
		return pricing.Rule{}, fmt.Errorf("decode action: %w", err)
	}
	if err := action.Validate(); err != nil {
		return pricing.Rule{}, err
	}
	return pricing.Rule{
		ID:          row.ID.String(),
		Name:        row.Name,
		Conditions:  conditions,
		Action:      action,
		Precedence:  row.Precedence,
		Active:      row.Active,
		ActiveFrom:  row.ActiveFrom,
		ActiveUntil: row.ActiveUntil,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
