// condition/serialize.go
package condition

import (
	"regexp"
	"strconv"
	"strings"
)

/*
 * Serializer: condition tree -> JSONLogic.
 *
 * Lowers a tree into a JSONLogic value built from map[string]any, []any and
 * scalars, ready for encoding/json. Shapes per operator:
 *
 *   ==, !=, >, >=, <, <=   {op: [left, right]}
 *   contains               {"in": [right, left]}   operands reversed
 *   in                     {"in": [left, [v, ...]]} right split on commas
 *   startsWith, endsWith   {op: [left, right]}      custom keywords
 *   matches                {"matches": [left, pattern]} pattern verbatim
 *   isTrue, isNotEmpty     {"!!": [left]}
 *   isFalse, isEmpty       {"!": [left]}
 *
 * An empty group serializes to the literal true: an empty AND/OR is
 * vacuously satisfied. This is a documented policy, not an artifact. A
 * single-row root still wraps under its logic key so downstream consumers
 * always see the same top-level shape.
 *
 * The serializer never fails for a well-formed tree. A condition carrying an
 * operator id without catalogue metadata falls back to equality semantics,
 * and a row holding an unparsed foreign fragment re-emits it verbatim.
 */

// Options controls both conversion directions.
type Options struct {
	// UseTemplateSyntax enables the {{path}} literal convention: operands in
	// display form serialize to raw strings instead of var nodes, and var
	// nodes parse back to display form.
	UseTemplateSyntax bool
}

// ToJSONLogic lowers a condition tree into a JSONLogic value.
// The result is always encodable with encoding/json and is the literal true
// for an empty tree.
func ToJSONLogic(root ConditionRoot, opts Options) any {
	return serializeGroup(root.Logic, root.Conditions, opts)
}

// serializeGroup lowers a group body under its logic key, or to the literal
// true when the group has no children.
func serializeGroup(logic Logic, items []ConditionItem, opts Options) any {
	if len(items) == 0 {
		return true
	}
	operands := make([]any, 0, len(items))
	for _, item := range items {
		operands = append(operands, serializeItem(item, opts))
	}
	return map[string]any{string(logic): operands}
}

// serializeItem dispatches on the tagged union.
func serializeItem(item ConditionItem, opts Options) any {
	switch v := item.(type) {
	case SimpleCondition:
		return serializeCondition(v, opts)
	case ConditionGroup:
		return serializeGroup(v.Logic, v.Conditions, opts)
	default:
		// Sealed union; unreachable for trees built from this package.
		return true
	}
}

// serializeCondition lowers a single row into its operator shape.
func serializeCondition(c SimpleCondition, opts Options) any {
	if c.HasUnparsed || c.Unparsed != nil {
		// Foreign fragment the editor could not represent: re-emit verbatim
		// so a load/save cycle is lossless for unedited rows. The flag covers
		// the null fragment, which a nil check alone would miss.
		return c.Unparsed
	}

	info, ok := GetOperatorInfo(c.Operator)
	if !ok {
		info, _ = GetOperatorInfo(OpEq)
	}

	left := serializeLeft(c.Left, opts)

	switch info.Value {
	case OpIsTrue, OpIsNotEmpty:
		return map[string]any{"!!": []any{left}}
	case OpIsFalse, OpIsEmpty:
		return map[string]any{"!": []any{left}}
	case OpContains:
		// JSONLogic's substring-search convention: needle first.
		return map[string]any{"in": []any{coerceScalar(c.Right), left}}
	case OpIn:
		return map[string]any{"in": []any{left, coerceList(c.Right)}}
	case OpMatches:
		// The pattern source is emitted verbatim, no implicit escaping.
		// Validating it is the consumer's responsibility.
		return map[string]any{"matches": []any{left, c.Right}}
	default:
		return map[string]any{info.JSONLogicOp: []any{left, coerceScalar(c.Right)}}
	}
}

// serializeLeft resolves a left operand: a {{path}} display form in template
// mode demotes to the raw path string, everything else promotes to a var
// node.
func serializeLeft(left string, opts Options) any {
	if opts.UseTemplateSyntax {
		if path, ok := FromDisplayString(left); ok {
			return path
		}
	}
	return map[string]any{"var": left}
}

// numberPattern accepts the numeric literals eligible for right-hand
// coercion. Deliberately narrower than strconv.ParseFloat, which would also
// accept forms like "Inf" or hex floats.
var numberPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// coerceScalar converts right-hand text to a number when it reads as a
// numeric literal, passing it through as a string otherwise.
func coerceScalar(text string) any {
	trimmed := strings.TrimSpace(text)
	if numberPattern.MatchString(trimmed) {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	}
	return text
}

// coerceList splits right-hand text on commas, trimming and coercing each
// element independently.
func coerceList(text string) []any {
	parts := strings.Split(text, ",")
	out := make([]any, 0, len(parts))
	for _, part := range parts {
		out = append(out, coerceScalar(strings.TrimSpace(part)))
	}
	return out
}
