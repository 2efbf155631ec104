// condition/operators.go
package condition

/*
 * Operator catalogue for the condition editor.
 *
 * Defines the fixed, ordered set of comparison operators a condition row can
 * carry, together with the metadata both the serializer and the parser need:
 * the JSONLogic keyword each operator lowers to, whether a right-hand value
 * is required, and display hints for the hosting UI.
 *
 * Several operators do not map 1:1 onto native JSONLogic keywords:
 *   - contains lowers to "in" with reversed operands (needle-in-haystack)
 *   - startsWith/endsWith/matches lower to custom two-argument keywords
 *   - isTrue/isNotEmpty lower to "!!", isFalse/isEmpty lower to "!"
 *
 * Catalogue order is display order; the hosting UI renders the list as-is.
 *
 * Why a static slice: the catalogue never changes at runtime, and lookups
 * by id must tolerate foreign operator strings (stale persisted data), so
 * GetOperatorInfo reports absence via comma-ok rather than failing.
 */

// Op identifies a comparison operator in a condition row.
type Op string

const (
	OpEq         Op = "=="
	OpNeq        Op = "!="
	OpGt         Op = ">"
	OpGte        Op = ">="
	OpLt         Op = "<"
	OpLte        Op = "<="
	OpContains   Op = "contains"
	OpStartsWith Op = "startsWith"
	OpEndsWith   Op = "endsWith"
	OpIn         Op = "in"
	OpMatches    Op = "matches"
	OpIsTrue     Op = "isTrue"
	OpIsFalse    Op = "isFalse"
	OpIsEmpty    Op = "isEmpty"
	OpIsNotEmpty Op = "isNotEmpty"
)

// OperatorInfo describes one catalogue entry.
type OperatorInfo struct {
	Value         Op     // unique operator id
	JSONLogicOp   string // JSONLogic keyword emitted by the serializer
	Label         string // human-readable label for UI display
	Symbol        string // short display symbol; empty for word operators
	RightRequired bool   // true when the operator takes a right-hand value
}

// operators is the authoritative catalogue. Order matters: the hosting UI
// displays operators in this order.
var operators = []OperatorInfo{
	{Value: OpEq, JSONLogicOp: "==", Label: "equals", Symbol: "=", RightRequired: true},
	{Value: OpNeq, JSONLogicOp: "!=", Label: "not equals", Symbol: "≠", RightRequired: true},
	{Value: OpGt, JSONLogicOp: ">", Label: "greater than", Symbol: ">", RightRequired: true},
	{Value: OpGte, JSONLogicOp: ">=", Label: "greater or equal", Symbol: "≥", RightRequired: true},
	{Value: OpLt, JSONLogicOp: "<", Label: "less than", Symbol: "<", RightRequired: true},
	{Value: OpLte, JSONLogicOp: "<=", Label: "less or equal", Symbol: "≤", RightRequired: true},
	{Value: OpContains, JSONLogicOp: "in", Label: "contains", RightRequired: true},
	{Value: OpStartsWith, JSONLogicOp: "startsWith", Label: "starts with", RightRequired: true},
	{Value: OpEndsWith, JSONLogicOp: "endsWith", Label: "ends with", RightRequired: true},
	{Value: OpIn, JSONLogicOp: "in", Label: "in list", RightRequired: true},
	{Value: OpMatches, JSONLogicOp: "matches", Label: "matches regex", RightRequired: true},
	{Value: OpIsTrue, JSONLogicOp: "!!", Label: "is true"},
	{Value: OpIsFalse, JSONLogicOp: "!", Label: "is false"},
	{Value: OpIsEmpty, JSONLogicOp: "!", Label: "is empty"},
	{Value: OpIsNotEmpty, JSONLogicOp: "!!", Label: "is not empty"},
}

// operatorByValue indexes the catalogue by operator id.
var operatorByValue = func() map[Op]OperatorInfo {
	m := make(map[Op]OperatorInfo, len(operators))
	for _, info := range operators {
		m[info.Value] = info
	}
	return m
}()

// ListOperators returns the catalogue in display order.
// Returns a copy so callers cannot mutate the authoritative slice.
func ListOperators() []OperatorInfo {
	out := make([]OperatorInfo, len(operators))
	copy(out, operators)
	return out
}

// GetOperatorInfo looks up catalogue metadata by operator id.
// A foreign or stale id reports ok=false rather than failing; the caller
// may be rendering data persisted by a newer or older editor version.
func GetOperatorInfo(op Op) (OperatorInfo, bool) {
	info, ok := operatorByValue[op]
	return info, ok
}
