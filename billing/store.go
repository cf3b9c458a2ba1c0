package billing

import (
	"fmt"
	"sync"
	"time"
)

// RuleStore manages rule persistence and retrieval. ListActive returns a
// point-in-time snapshot ordered by (priority, id); implementations hand
// out copies so that concurrent rule edits by an administrator can never
// partially affect an in-flight calculation.
type RuleStore interface {
	// Add a new rule
	Add(rule *Rule) error

	// Get a rule by ID
	Get(id string) (*Rule, error)

	// List all rules, active or not, in application order
	List() ([]*Rule, error)

	// ListActive returns a snapshot of the active rules in application order
	ListActive() ([]*Rule, error)

	// Update an existing rule
	Update(rule *Rule) error

	// Delete a rule
	Delete(id string) error
}

// InMemoryRuleStore implements RuleStore using an in-memory map. Safe for
// concurrent use; rules are cloned on the way in and out.
type InMemoryRuleStore struct {
	rules map[string]*Rule
	mu    sync.RWMutex
}

// NewInMemoryRuleStore creates a new in-memory rule store.
func NewInMemoryRuleStore() *InMemoryRuleStore {
	return &InMemoryRuleStore{
		rules: make(map[string]*Rule),
	}
}

// Add adds a new rule to the store, setting its timestamps.
func (s *InMemoryRuleStore) Add(rule *Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[rule.ID]; exists {
		return fmt.Errorf("rule with ID %s already exists", rule.ID)
	}

	now := time.Now()
	stored := rule.Clone()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.rules[rule.ID] = stored

	rule.CreatedAt = now
	rule.UpdatedAt = now
	return nil
}

// Get retrieves a copy of a rule by ID.
func (s *InMemoryRuleStore) Get(id string) (*Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, exists := s.rules[id]
	if !exists {
		return nil, fmt.Errorf("rule with ID %s not found", id)
	}
	return rule.Clone(), nil
}

// List returns copies of all rules in application order.
func (s *InMemoryRuleStore) List() ([]*Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Rule, 0, len(s.rules))
	for _, rule := range s.rules {
		all = append(all, rule.Clone())
	}
	sortByPriority(all)
	return all, nil
}

// ListActive returns a snapshot of the active rules in application order.
func (s *InMemoryRuleStore) ListActive() ([]*Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*Rule
	for _, rule := range s.rules {
		if rule.Active {
			active = append(active, rule.Clone())
		}
	}
	sortByPriority(active)
	return active, nil
}

// Update replaces an existing rule, preserving CreatedAt.
func (s *InMemoryRuleStore) Update(rule *Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.rules[rule.ID]
	if !exists {
		return fmt.Errorf("rule with ID %s not found", rule.ID)
	}

	stored := rule.Clone()
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	s.rules[rule.ID] = stored

	rule.CreatedAt = stored.CreatedAt
	rule.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes a rule from the store.
func (s *InMemoryRuleStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[id]; !exists {
		return fmt.Errorf("rule with ID %s not found", id)
	}

	delete(s.rules, id)
	return nil
}
