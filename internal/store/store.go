// Package store persists named condition sets: JSONLogic documents managed
// by the condition editor, addressable by name for reuse across forms.
//
// Every write passes the document through the condition engine first
// (parse, then serialize), so stored logic is always in canonical form:
// wrapped under a top-level connective, numeric literals coerced, and
// foreign fragments preserved verbatim by the engine's fallback rules.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/QuickFlo/condkit/condition"
	"github.com/QuickFlo/condkit/internal/core/db"
	"github.com/google/uuid"
)

// Sentinel errors for condition-set operations.
var (
	// ErrSetNotFound indicates no condition set with the requested name.
	ErrSetNotFound = errors.New("condition set not found")

	// ErrEmptyName indicates a save or lookup with an empty set name.
	ErrEmptyName = errors.New("condition set name must not be empty")

	// ErrInvalidLogic indicates a document that is not valid JSON.
	ErrInvalidLogic = errors.New("condition set logic is not valid JSON")
)

// ConditionSet is one persisted JSONLogic document.
// Timestamps are RFC3339 text, identical across drivers.
type ConditionSet struct {
	SetID        string `db:"set_id" json:"set_id"`
	Name         string `db:"name" json:"name"`
	Logic        string `db:"logic" json:"logic"`
	TemplateMode bool   `db:"template_mode" json:"template_mode"`
	CreatedAt    string `db:"created_at" json:"created_at"`
	UpdatedAt    string `db:"updated_at" json:"updated_at"`
}

// Root parses the stored document back into an editable condition tree.
func (s ConditionSet) Root() (condition.ConditionRoot, error) {
	var value any
	if err := json.Unmarshal([]byte(s.Logic), &value); err != nil {
		return condition.ConditionRoot{}, fmt.Errorf("%w: %v", ErrInvalidLogic, err)
	}
	return condition.FromJSONLogic(value, condition.Options{UseTemplateSyntax: s.TemplateMode}), nil
}

// Store provides CRUD access to condition sets.
type Store struct {
	queries *db.Queries
}

// New creates a Store over an open database connection.
func New(queries *db.Queries) *Store {
	return &Store{queries: queries}
}

// Save upserts a condition set under name, canonicalizing the document
// through the condition engine. Returns the stored set.
func (st *Store) Save(ctx context.Context, name string, logic json.RawMessage, templateMode bool) (ConditionSet, error) {
	if name == "" {
		return ConditionSet{}, ErrEmptyName
	}

	canonical, err := canonicalize(logic, templateMode)
	if err != nil {
		return ConditionSet{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)

	res, err := st.queries.Exec(ctx, "update-condition-set", canonical, templateMode, now, name)
	if err != nil {
		return ConditionSet{}, fmt.Errorf("failed to update condition set: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ConditionSet{}, fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		// UUIDv7 set ids keep insertion order clustered in the primary index.
		setID := uuid.Must(uuid.NewV7()).String()
		if _, err := st.queries.Exec(ctx, "insert-condition-set",
			setID, name, canonical, templateMode, now, now); err != nil {
			return ConditionSet{}, fmt.Errorf("failed to insert condition set: %w", err)
		}
	}

	return st.Get(ctx, name)
}

// Get retrieves a condition set by name.
func (st *Store) Get(ctx context.Context, name string) (ConditionSet, error) {
	if name == "" {
		return ConditionSet{}, ErrEmptyName
	}

	var set ConditionSet
	if err := st.queries.Get(ctx, "get-condition-set", &set, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ConditionSet{}, fmt.Errorf("%w: %s", ErrSetNotFound, name)
		}
		return ConditionSet{}, fmt.Errorf("failed to query condition set: %w", err)
	}
	return set, nil
}

// List returns all condition sets ordered by name.
func (st *Store) List(ctx context.Context) ([]ConditionSet, error) {
	var sets []ConditionSet
	if err := st.queries.Select(ctx, "list-condition-sets", &sets); err != nil {
		return nil, fmt.Errorf("failed to list condition sets: %w", err)
	}
	return sets, nil
}

// Delete removes a condition set by name.
func (st *Store) Delete(ctx context.Context, name string) error {
	if name == "" {
		return ErrEmptyName
	}

	res, err := st.queries.Exec(ctx, "delete-condition-set", name)
	if err != nil {
		return fmt.Errorf("failed to delete condition set: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrSetNotFound, name)
	}
	return nil
}

// canonicalize round-trips a document through the condition engine and
// re-encodes it compactly. HTML escaping is disabled: operator keys like
// ">" and "<=" must be stored verbatim.
func canonicalize(logic json.RawMessage, templateMode bool) (string, error) {
	var value any
	if err := json.Unmarshal(logic, &value); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLogic, err)
	}

	opts := condition.Options{UseTemplateSyntax: templateMode}
	canonical := condition.ToJSONLogic(condition.FromJSONLogic(value, opts), opts)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(canonical); err != nil {
		return "", fmt.Errorf("failed to encode canonical logic: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
