// condition/tree.go

// Package condition implements the bidirectional conversion engine between a
// visual condition tree (rows of `left operator right`, grouped by AND/OR)
// and a JSONLogic expression tree.
//
// The package is the persistence boundary of the condition editor: the
// hosting UI holds the last-known JSONLogic value, calls FromJSONLogic to
// obtain an editable tree, and calls ToJSONLogic after every edit to obtain
// the value it forwards outward. Evaluation of JSONLogic against data is
// deliberately out of scope.
package condition

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

/*
 * Condition tree model.
 *
 * SimpleCondition and ConditionGroup form a tagged union (ConditionItem)
 * under a ConditionRoot. Nodes are value types replaced wholesale on edit;
 * update.go provides the pure path-indexed edit functions.
 *
 * Node ids address rows in the hosting UI and carry no semantics; the
 * serializer ignores them and the parser mints fresh ones. Ids come from an
 * injectable IDSource (UUIDv7 by default) so tests can assert deterministic
 * ids.
 */

// Logic selects how a group combines its children.
type Logic string

const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
)

// ConditionItem is the tagged union of SimpleCondition and ConditionGroup.
// Sealed: only the two types in this package implement it, so serializer and
// parser can match exhaustively.
type ConditionItem interface {
	isConditionItem()
}

// SimpleCondition is a single editable row: left operator right.
//
// Left holds a variable path or, in template mode, a literal in {{path}}
// display form. Right is meaningful only when the operator's RightRequired
// is true; its textual form is operator-dependent (a comma-separated list
// for in, a regex source for matches, a scalar otherwise).
//
// When HasUnparsed is set, Unparsed holds a JSONLogic fragment the parser
// could not represent as a row and the serializer re-emits it verbatim, so
// foreign expressions survive a load/save cycle unchanged unless the row is
// edited. The flag, not a nil check, marks preservation: the JSON literal
// null is a valid fragment and decodes to a nil Unparsed.
type SimpleCondition struct {
	ID          string `json:"id"`
	Left        string `json:"left"`
	Operator    Op     `json:"operator"`
	Right       string `json:"right,omitempty"`
	Unparsed    any    `json:"unparsed,omitempty"`
	HasUnparsed bool   `json:"hasUnparsed,omitempty"`
}

func (SimpleCondition) isConditionItem() {}

// ConditionGroup combines nested items under an AND/OR connective.
// Nestable to arbitrary depth; the model enforces no depth cap.
type ConditionGroup struct {
	ID         string          `json:"id"`
	Logic      Logic           `json:"logic"`
	Conditions []ConditionItem `json:"conditions"`
}

func (ConditionGroup) isConditionItem() {}

// ConditionRoot is the tree's entry point: structurally a group without an
// id. The hosting UI owns its lifetime.
type ConditionRoot struct {
	Logic      Logic           `json:"logic"`
	Conditions []ConditionItem `json:"conditions"`
}

// UnparsedPlaceholder is the synthetic left text of a fallback row produced
// for JSONLogic shapes outside the editor grammar. The hosting UI may render
// it however it likes; the serializer never consults it.
const UnparsedPlaceholder = "__unparsed__"

// IDSource mints node identifiers. Implementations must not repeat an id
// within a process lifetime; ids are never reused after removal.
type IDSource func() string

// NewNodeID generates a UUIDv7 node identifier.
// Panics on clock regression (uuid.Must); acceptable for id generation.
func NewNodeID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Factory constructs tree nodes with ids from an injectable source.
// The zero dependency surface of the engine is the id source; everything
// else is a pure function of its inputs.
type Factory struct {
	newID IDSource
}

// NewFactory returns a Factory minting ids from src.
// A nil src falls back to UUIDv7 generation.
func NewFactory(src IDSource) *Factory {
	if src == nil {
		src = NewNodeID
	}
	return &Factory{newID: src}
}

// NewCondition returns an empty condition row: operator defaulted to ==,
// empty left and right, fresh id.
func (f *Factory) NewCondition() SimpleCondition {
	return SimpleCondition{
		ID:       f.newID(),
		Operator: OpEq,
	}
}

// NewGroup returns an empty AND group with a fresh id.
func (f *Factory) NewGroup() ConditionGroup {
	return ConditionGroup{
		ID:         f.newID(),
		Logic:      LogicAnd,
		Conditions: []ConditionItem{},
	}
}

// defaultFactory backs the package-level constructors with UUIDv7 ids.
var defaultFactory = NewFactory(nil)

// NewCondition returns an empty condition row with a UUIDv7 id.
func NewCondition() SimpleCondition {
	return defaultFactory.NewCondition()
}

// NewGroup returns an empty AND group with a UUIDv7 id.
func NewGroup() ConditionGroup {
	return defaultFactory.NewGroup()
}

// NewRoot returns an empty AND root. Roots carry no id.
func NewRoot() ConditionRoot {
	return ConditionRoot{
		Logic:      LogicAnd,
		Conditions: []ConditionItem{},
	}
}

// itemEnvelope discriminates tree-snapshot JSON by its "type" field.
type itemEnvelope struct {
	Type string `json:"type"`
}

// MarshalJSON tags the row with type "condition" for snapshot round-trips.
func (c SimpleCondition) MarshalJSON() ([]byte, error) {
	type alias SimpleCondition
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: "condition", alias: alias(c)})
}

// MarshalJSON tags the group with type "group" for snapshot round-trips.
func (g ConditionGroup) MarshalJSON() ([]byte, error) {
	type alias ConditionGroup
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: "group", alias: alias(g)})
}

// UnmarshalJSON restores a group from its snapshot form, dispatching each
// child on its "type" discriminator.
func (g *ConditionGroup) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         string            `json:"id"`
		Logic      Logic             `json:"logic"`
		Conditions []json.RawMessage `json:"conditions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	items, err := unmarshalItems(raw.Conditions)
	if err != nil {
		return err
	}
	g.ID = raw.ID
	g.Logic = raw.Logic
	g.Conditions = items
	return nil
}

// UnmarshalJSON restores a root from its snapshot form.
func (r *ConditionRoot) UnmarshalJSON(data []byte) error {
	var raw struct {
		Logic      Logic             `json:"logic"`
		Conditions []json.RawMessage `json:"conditions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	items, err := unmarshalItems(raw.Conditions)
	if err != nil {
		return err
	}
	r.Logic = raw.Logic
	r.Conditions = items
	return nil
}

// unmarshalItems decodes a snapshot's child list, dispatching each element
// on its "type" discriminator.
func unmarshalItems(raws []json.RawMessage) ([]ConditionItem, error) {
	items := make([]ConditionItem, 0, len(raws))
	for _, raw := range raws {
		var env itemEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		switch env.Type {
		case "condition":
			var c SimpleCondition
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, err
			}
			items = append(items, c)
		case "group":
			var g ConditionGroup
			if err := json.Unmarshal(raw, &g); err != nil {
				return nil, err
			}
			items = append(items, g)
		default:
			return nil, fmt.Errorf("unknown condition item type %q", env.Type)
		}
	}
	return items, nil
}
