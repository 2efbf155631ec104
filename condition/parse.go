// condition/parse.go
package condition

import "strconv"

/*
 * Parser: JSONLogic -> condition tree.
 *
 * Lifts an arbitrary JSON value (as decoded by encoding/json: maps, slices,
 * float64, string, bool, nil) into a condition tree. Recognition is
 * shape-driven against the operator catalogue; anything else degrades to an
 * inert fallback row that preserves the original fragment for verbatim
 * re-emission. The parser never fails on structurally valid input: the
 * editor must stay usable even when fed data it cannot fully represent.
 *
 * Shape discrimination notes:
 *   - "in" with an array second operand is the in operator; with an operand
 *     the parser can read as a left reference it is contains (reversed).
 *   - "!" maps to isFalse and "!!" to isTrue. isEmpty/isNotEmpty share those
 *     keywords, so they come back as their truthiness equivalents; the two
 *     pairs are logically interchangeable under JSONLogic truthiness.
 *   - the literal true inside a group restores an empty AND group, matching
 *     what the serializer emits for empty groups.
 */

// FromJSONLogic lifts a JSONLogic value into a condition tree, minting
// UUIDv7 node ids.
func FromJSONLogic(value any, opts Options) ConditionRoot {
	return defaultFactory.FromJSONLogic(value, opts)
}

// FromJSONLogic lifts a JSONLogic value into a condition tree with node ids
// from the factory's id source.
//
// The literal true, nil, and any non-object value produce an empty root.
// A top-level single-row comparison is wrapped in an AND root so the result
// shape is uniform.
func (f *Factory) FromJSONLogic(value any, opts Options) ConditionRoot {
	root := NewRoot()

	obj, ok := value.(map[string]any)
	if !ok {
		return root
	}

	if logic, items, ok := groupShape(obj); ok {
		root.Logic = logic
		root.Conditions = f.parseItems(items, opts)
		return root
	}

	root.Conditions = []ConditionItem{f.parseCondition(obj, opts)}
	return root
}

// groupShape recognizes {"and": [...]} / {"or": [...]} objects.
func groupShape(obj map[string]any) (Logic, []any, bool) {
	if len(obj) != 1 {
		return "", nil, false
	}
	for key, value := range obj {
		if key != string(LogicAnd) && key != string(LogicOr) {
			return "", nil, false
		}
		items, ok := value.([]any)
		if !ok {
			return "", nil, false
		}
		return Logic(key), items, true
	}
	return "", nil, false
}

func (f *Factory) parseItems(items []any, opts Options) []ConditionItem {
	out := make([]ConditionItem, 0, len(items))
	for _, item := range items {
		out = append(out, f.parseItem(item, opts))
	}
	return out
}

// parseItem lifts one group operand: nested group, condition row, or the
// serializer's empty-group literal.
func (f *Factory) parseItem(node any, opts Options) ConditionItem {
	if b, ok := node.(bool); ok && b {
		// Empty groups serialize to true; restore an empty group. The
		// original connective is not recoverable and defaults to AND, which
		// is equivalent for an empty operand list.
		return f.NewGroup()
	}

	obj, ok := node.(map[string]any)
	if !ok {
		return f.unparsed(node)
	}

	if logic, items, ok := groupShape(obj); ok {
		group := f.NewGroup()
		group.Logic = logic
		group.Conditions = f.parseItems(items, opts)
		return group
	}

	return f.parseCondition(obj, opts)
}

// parseCondition matches a single-keyword object against the operator
// catalogue's shapes. Unrecognized shapes degrade to a fallback row holding
// the original fragment.
func (f *Factory) parseCondition(obj map[string]any, opts Options) SimpleCondition {
	if len(obj) != 1 {
		return f.unparsed(obj)
	}

	var key string
	var raw any
	for k, v := range obj {
		key, raw = k, v
	}

	args, ok := raw.([]any)
	if !ok {
		return f.unparsed(obj)
	}

	switch key {
	case "!", "!!":
		if len(args) != 1 {
			return f.unparsed(obj)
		}
		left, ok := parseOperandRef(args[0], opts)
		if !ok {
			return f.unparsed(obj)
		}
		c := f.NewCondition()
		c.Left = left
		if key == "!" {
			c.Operator = OpIsFalse
		} else {
			c.Operator = OpIsTrue
		}
		return c

	case "in":
		if len(args) != 2 {
			return f.unparsed(obj)
		}
		if list, ok := args[1].([]any); ok {
			// {"in": [left, [v, ...]]} is the in operator.
			left, okLeft := parseOperandRef(args[0], opts)
			right, okRight := joinList(list)
			if !okLeft || !okRight {
				return f.unparsed(obj)
			}
			return f.newRow(OpIn, left, right)
		}
		// {"in": [needle, haystack]} is contains with reversed operands.
		left, okLeft := parseOperandRef(args[1], opts)
		right, okRight := scalarText(args[0])
		if !okLeft || !okRight {
			return f.unparsed(obj)
		}
		return f.newRow(OpContains, left, right)

	case "startsWith", "endsWith", "matches":
		op := Op(key)
		left, right, ok := f.parseBinary(args, opts)
		if !ok {
			return f.unparsed(obj)
		}
		return f.newRow(op, left, right)

	case "==", "!=", ">", ">=", "<", "<=":
		left, right, ok := f.parseBinary(args, opts)
		if !ok {
			return f.unparsed(obj)
		}
		return f.newRow(Op(key), left, right)
	}

	return f.unparsed(obj)
}

// parseBinary extracts the left reference and right text of a two-operand
// comparison.
func (f *Factory) parseBinary(args []any, opts Options) (left, right string, ok bool) {
	if len(args) != 2 {
		return "", "", false
	}
	left, okLeft := parseOperandRef(args[0], opts)
	right, okRight := scalarText(args[1])
	if !okLeft || !okRight {
		return "", "", false
	}
	return left, right, true
}

// parseOperandRef reads a left-hand operand: a var node yields its path.
// Template mode also accepts raw string operands, rendering both in {{path}}
// display form; var nodes are accepted there too for data authored before
// template mode existed. Outside template mode a raw string is a string
// literal, not a reference; accepting it would rewrite the expression into a
// data lookup on re-serialization, so it falls to the preserving fallback.
func parseOperandRef(operand any, opts Options) (string, bool) {
	switch v := operand.(type) {
	case map[string]any:
		if len(v) != 1 {
			return "", false
		}
		path, ok := v["var"].(string)
		if !ok {
			return "", false
		}
		if opts.UseTemplateSyntax {
			return ToDisplayString(path), true
		}
		return path, true
	case string:
		if opts.UseTemplateSyntax {
			return ToDisplayString(v), true
		}
		return "", false
	default:
		return "", false
	}
}

// scalarText renders a right-hand scalar back to its editable text form.
// Numbers are stringified without locale formatting. Booleans are rejected:
// the text form "true" would re-serialize as a string, not a boolean, so
// they go through the preserving fallback. Composite values are outside the
// editor grammar.
func scalarText(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

// joinList renders an in-operator array back to comma-separated text.
func joinList(list []any) (string, bool) {
	text := ""
	for i, elem := range list {
		s, ok := scalarText(elem)
		if !ok {
			return "", false
		}
		if i > 0 {
			text += ", "
		}
		text += s
	}
	return text, true
}

// newRow builds a parsed condition row.
func (f *Factory) newRow(op Op, left, right string) SimpleCondition {
	c := f.NewCondition()
	c.Operator = op
	c.Left = left
	c.Right = right
	return c
}

// unparsed builds the inert fallback row for a fragment outside the editor
// grammar. The fragment itself is preserved for verbatim re-emission;
// HasUnparsed marks preservation so even a null fragment survives.
func (f *Factory) unparsed(node any) SimpleCondition {
	c := f.NewCondition()
	c.Left = UnparsedPlaceholder
	c.Unparsed = node
	c.HasUnparsed = true
	return c
}
