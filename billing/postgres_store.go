package billing

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/lib/pq"
)

// PostgresRuleStore implements RuleStore backed by PostgreSQL. Conditions
// and actions are stored as JSONB columns; the list queries order by
// (priority, id) so a snapshot comes back in application order.
type PostgresRuleStore struct {
	db *sql.DB
}

// NewPostgresRuleStore creates a PostgreSQL-backed RuleStore.
func NewPostgresRuleStore(db *sql.DB) *PostgresRuleStore {
	return &PostgresRuleStore{db: db}
}

// Add inserts a new rule into the database.
func (s *PostgresRuleStore) Add(rule *Rule) error {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM billing_rules WHERE id = $1)
	`, rule.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check rule existence: %w", err)
	}
	if exists {
		return fmt.Errorf("rule with ID %s already exists", rule.ID)
	}

	conditions, actions, err := marshalRuleBody(rule)
	if err != nil {
		return err
	}

	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	_, err = s.db.Exec(`
		INSERT INTO billing_rules
			(id, name, description, rule_type, conditions, actions, priority, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rule.ID, rule.Name, rule.Description, rule.Type, conditions, actions,
		rule.Priority, rule.Active, rule.CreatedAt, rule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}

	return nil
}

// Get retrieves a rule by ID.
func (s *PostgresRuleStore) Get(id string) (*Rule, error) {
	row := s.db.QueryRow(`
		SELECT id, name, description, rule_type, conditions, actions, priority, is_active, created_at, updated_at
		FROM billing_rules
		WHERE id = $1
	`, id)

	rule, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("rule %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

// List returns every rule in application order.
func (s *PostgresRuleStore) List() ([]*Rule, error) {
	return s.list(`
		SELECT id, name, description, rule_type, conditions, actions, priority, is_active, created_at, updated_at
		FROM billing_rules
		ORDER BY priority ASC, id ASC
	`)
}

// ListActive returns a snapshot of the active rules in application order.
func (s *PostgresRuleStore) ListActive() ([]*Rule, error) {
	return s.list(`
		SELECT id, name, description, rule_type, conditions, actions, priority, is_active, created_at, updated_at
		FROM billing_rules
		WHERE is_active = true
		ORDER BY priority ASC, id ASC
	`)
}

func (s *PostgresRuleStore) list(query string) ([]*Rule, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rulesList []*Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rulesList = append(rulesList, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rulesList, nil
}

// Update modifies an existing rule.
func (s *PostgresRuleStore) Update(rule *Rule) error {
	conditions, actions, err := marshalRuleBody(rule)
	if err != nil {
		return err
	}

	rule.UpdatedAt = time.Now()

	result, err := s.db.Exec(`
		UPDATE billing_rules
		SET name = $1, description = $2, rule_type = $3, conditions = $4,
			actions = $5, priority = $6, is_active = $7, updated_at = $8
		WHERE id = $9
	`, rule.Name, rule.Description, rule.Type, conditions, actions,
		rule.Priority, rule.Active, rule.UpdatedAt, rule.ID)

	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("rule %s not found", rule.ID)
	}

	return nil
}

// Delete removes a rule from the database.
func (s *PostgresRuleStore) Delete(id string) error {
	result, err := s.db.Exec(`
		DELETE FROM billing_rules
		WHERE id = $1
	`, id)

	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("rule %s not found", id)
	}

	return nil
}

func marshalRuleBody(rule *Rule) (conditions, actions []byte, err error) {
	conditions, err = json.Marshal(rule.Conditions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal conditions: %w", err)
	}
	actions, err = json.Marshal(rule.Actions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal actions: %w", err)
	}
	return conditions, actions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*Rule, error) {
	var (
		rule       Rule
		conditions []byte
		actions    []byte
	)
	err := row.Scan(
		&rule.ID,
		&rule.Name,
		&rule.Description,
		&rule.Type,
		&conditions,
		&actions,
		&rule.Priority,
		&rule.Active,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conditions for rule %s: %w", rule.ID, err)
	}
	if err := json.Unmarshal(actions, &rule.Actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions for rule %s: %w", rule.ID, err)
	}

	return &rule, nil
}
