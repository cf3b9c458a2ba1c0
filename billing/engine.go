package billing

import (
	"fmt"
	"log/slog"

	"github.com/sehatkita/billing-engine/money"
)

// Engine ties the rule store, the snapshot cache and the calculation
// pipeline together. It holds no mutable calculation state of its own:
// every invocation works on a point-in-time snapshot of the active rules,
// so the engine is safe for arbitrarily many concurrent callers.
type Engine struct {
	store  RuleStore
	cache  RulesCache
	logger *slog.Logger
}

// NewEngine creates an engine with a default in-memory snapshot cache.
func NewEngine(store RuleStore, logger *slog.Logger) *Engine {
	return NewEngineWithCache(store, NewInMemoryRulesCache(DefaultCacheConfig()), logger)
}

// NewEngineWithCache creates an engine with a caller-provided cache, e.g. a
// Redis-backed one shared across server instances.
func NewEngineWithCache(store RuleStore, cache RulesCache, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Snapshot returns the active rules in application order, from cache when
// warm and from the store otherwise.
func (e *Engine) Snapshot() ([]*Rule, error) {
	if rules := e.cache.Get(); rules != nil {
		return rules, nil
	}

	rules, err := e.store.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load active rules: %w", err)
	}
	e.cache.Set(rules)
	return rules, nil
}

// CalculateInvoice runs the full invoice calculation against the current
// active-rule snapshot. Data-quality warnings are logged and returned on
// the result; charge validation failures are returned as an error before
// any rule runs.
func (e *Engine) CalculateInvoice(charges []Charge, ctx BillingContext) (*InvoiceResult, error) {
	rules, err := e.Snapshot()
	if err != nil {
		return nil, err
	}

	result, err := Calculate(charges, ctx, rules)
	if err != nil {
		return nil, err
	}

	e.logWarnings(result.Warnings)
	return result, nil
}

// SimulateRules previews every active rule against a synthetic scenario and
// test amount, one outcome per rule.
func (e *Engine) SimulateRules(scenario BillingContext, testAmount money.Money) ([]RuleOutcome, error) {
	rules, err := e.Snapshot()
	if err != nil {
		return nil, err
	}

	outcomes, warnings := Simulate(scenario, testAmount, rules)
	e.logWarnings(warnings)
	return outcomes, nil
}

// AddRule validates and stores a new rule, then invalidates the snapshot
// cache so the next calculation sees it.
func (e *Engine) AddRule(r *Rule) error {
	if err := ValidateRule(r); err != nil {
		return fmt.Errorf("rule validation failed: %w", err)
	}

	if err := e.store.Add(r); err != nil {
		return err
	}

	e.cache.Invalidate()
	return nil
}

// UpdateRule validates and updates an existing rule, invalidating the
// snapshot cache.
func (e *Engine) UpdateRule(r *Rule) error {
	if err := ValidateRule(r); err != nil {
		return fmt.Errorf("rule validation failed: %w", err)
	}

	if err := e.store.Update(r); err != nil {
		return err
	}

	e.cache.Invalidate()
	return nil
}

// DeleteRule removes a rule and invalidates the snapshot cache.
func (e *Engine) DeleteRule(id string) error {
	if err := e.store.Delete(id); err != nil {
		return err
	}

	e.cache.Invalidate()
	return nil
}

// GetRule retrieves a single rule by ID.
func (e *Engine) GetRule(id string) (*Rule, error) {
	return e.store.Get(id)
}

// ListRules returns every rule, active or not, in application order.
func (e *Engine) ListRules() ([]*Rule, error) {
	return e.store.List()
}

func (e *Engine) logWarnings(warnings []Warning) {
	for _, w := range warnings {
		e.logger.Warn("rule skipped as non-matching",
			slog.String("rule_id", w.RuleID),
			slog.String("field", string(w.Field)),
			slog.String("reason", w.Message))
	}
}
