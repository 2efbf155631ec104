package condition

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

/*
 * Round-trip laws.
 *
 * For any tree the editor itself can produce, serialize-then-parse preserves
 * logic connectives, operator ids, and left/right text, ignoring node ids.
 * isEmpty/isNotEmpty are excluded from the id-identity property: they share
 * serialized shapes with isFalse/isTrue and come back as those equivalents
 * (covered by a deterministic test below).
 */

// roundTripOps are the operators whose serialized shapes are injective.
var roundTripOps = []Op{
	OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte,
	OpContains, OpStartsWith, OpEndsWith, OpIn, OpMatches,
	OpIsTrue, OpIsFalse,
}

// pathWords feed generated variable paths and right-hand text.
var pathWords = []string{"user", "order", "status", "role", "total", "tags", "email", "tier"}

// randomPath builds a dotted variable path, 1-3 segments.
func randomPath(r *rand.Rand) string {
	n := 1 + r.Intn(3)
	path := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			path += "."
		}
		path += pathWords[r.Intn(len(pathWords))]
	}
	return path
}

// randomRight builds right-hand text that survives numeric coercion
// unchanged: either a plain word or a canonical integer literal.
func randomRight(r *rand.Rand, op Op) string {
	scalar := func() string {
		if r.Intn(2) == 0 {
			return strconv.Itoa(r.Intn(2000) - 1000)
		}
		return pathWords[r.Intn(len(pathWords))]
	}

	switch op {
	case OpIsTrue, OpIsFalse:
		return ""
	case OpIn:
		n := 1 + r.Intn(3)
		text := ""
		for i := 0; i < n; i++ {
			if i > 0 {
				text += ", "
			}
			text += scalar()
		}
		return text
	case OpMatches:
		return "^" + pathWords[r.Intn(len(pathWords))] + "$"
	default:
		return scalar()
	}
}

// randomTree builds an editor-producible tree of bounded depth.
func randomTree(r *rand.Rand, depth int) ConditionRoot {
	root := NewRoot()
	if r.Intn(2) == 0 {
		root.Logic = LogicOr
	}
	root.Conditions = randomItems(r, depth)
	return root
}

func randomItems(r *rand.Rand, depth int) []ConditionItem {
	n := 1 + r.Intn(3)
	items := make([]ConditionItem, 0, n)
	for i := 0; i < n; i++ {
		if depth > 0 && r.Intn(3) == 0 {
			group := NewGroup()
			if r.Intn(2) == 0 {
				group.Logic = LogicOr
			}
			group.Conditions = randomItems(r, depth-1)
			items = append(items, group)
			continue
		}
		op := roundTripOps[r.Intn(len(roundTripOps))]
		cond := NewCondition()
		cond.Operator = op
		cond.Left = randomPath(r)
		cond.Right = randomRight(r, op)
		items = append(items, cond)
	}
	return items
}

// equalIgnoringIDs compares trees on logic, operator ids, and left/right
// text only.
func equalIgnoringIDs(a, b ConditionRoot) bool {
	return a.Logic == b.Logic && equalItems(a.Conditions, b.Conditions)
}

func equalItems(a, b []ConditionItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		switch av := a[i].(type) {
		case SimpleCondition:
			bv, ok := b[i].(SimpleCondition)
			if !ok {
				return false
			}
			if av.Left != bv.Left || av.Operator != bv.Operator || av.Right != bv.Right {
				return false
			}
		case ConditionGroup:
			bv, ok := b[i].(ConditionGroup)
			if !ok {
				return false
			}
			if av.Logic != bv.Logic || !equalItems(av.Conditions, bv.Conditions) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func TestRoundTrip_PropertyIdentity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("serialize-then-parse preserves editor-producible trees", prop.ForAll(
		func(seed int64, depth int, templateMode bool) bool {
			r := rand.New(rand.NewSource(seed))
			tree := randomTree(r, depth)
			opts := Options{UseTemplateSyntax: templateMode}

			back := FromJSONLogic(ToJSONLogic(tree, opts), opts)
			if templateMode {
				// Template mode parses left references into {{path}} display
				// form; compare against the display rendering of the input.
				tree = displayRendering(tree)
			}
			return equalIgnoringIDs(tree, back)
		},
		gen.Int64(),
		gen.IntRange(0, 3),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// displayRendering rewrites every left operand into {{path}} display form,
// mirroring what the template-mode parser yields for var references.
func displayRendering(root ConditionRoot) ConditionRoot {
	root.Conditions = displayItems(root.Conditions)
	return root
}

func displayItems(items []ConditionItem) []ConditionItem {
	out := make([]ConditionItem, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case SimpleCondition:
			v.Left = ToDisplayString(v.Left)
			out[i] = v
		case ConditionGroup:
			v.Conditions = displayItems(v.Conditions)
			out[i] = v
		}
	}
	return out
}

func TestRoundTrip_PropertySurvivesJSONEncoding(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("round trip is stable across a JSON wire hop", prop.ForAll(
		func(seed int64, depth int) bool {
			r := rand.New(rand.NewSource(seed))
			tree := randomTree(r, depth)

			encoded, err := json.Marshal(ToJSONLogic(tree, Options{}))
			if err != nil {
				return false
			}
			var wire any
			if err := json.Unmarshal(encoded, &wire); err != nil {
				return false
			}
			return equalIgnoringIDs(tree, FromJSONLogic(wire, Options{}))
		},
		gen.Int64(),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t)
}

func TestRoundTrip_PropertyParserNeverPanics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("parser tolerates arbitrary JSON shapes", prop.ForAll(
		func(seed int64, depth int, templateMode bool) (ok bool) {
			defer func() {
				if r := recover(); r != nil {
					ok = false
				}
			}()
			r := rand.New(rand.NewSource(seed))
			_ = FromJSONLogic(randomJSONValue(r, depth), Options{UseTemplateSyntax: templateMode})
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 4),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// randomJSONValue builds an arbitrary JSON value in decoded form, including
// shapes well outside the editor grammar.
func randomJSONValue(r *rand.Rand, depth int) any {
	if depth == 0 {
		switch r.Intn(5) {
		case 0:
			return true
		case 1:
			return false
		case 2:
			return nil
		case 3:
			return float64(r.Intn(100))
		default:
			return pathWords[r.Intn(len(pathWords))]
		}
	}

	keys := []string{"and", "or", "==", "in", "!", "var", "some_custom_op", "+"}
	if r.Intn(2) == 0 {
		n := r.Intn(3)
		arr := make([]any, 0, n)
		for i := 0; i < n; i++ {
			arr = append(arr, randomJSONValue(r, depth-1))
		}
		return arr
	}
	obj := make(map[string]any)
	n := 1 + r.Intn(2)
	for i := 0; i < n; i++ {
		obj[keys[r.Intn(len(keys))]] = randomJSONValue(r, depth-1)
	}
	return obj
}

func TestRoundTrip_TruthinessEquivalents(t *testing.T) {
	// isEmpty and isNotEmpty share serialized shapes with isFalse and
	// isTrue; they come back as the truthiness equivalent, never as an
	// error or a fallback row.
	tests := []struct {
		in   Op
		want Op
	}{
		{in: OpIsEmpty, want: OpIsFalse},
		{in: OpIsNotEmpty, want: OpIsTrue},
		{in: OpIsFalse, want: OpIsFalse},
		{in: OpIsTrue, want: OpIsTrue},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			root := ConditionRoot{Logic: LogicAnd, Conditions: []ConditionItem{row(tt.in, "field", "")}}
			back := FromJSONLogic(ToJSONLogic(root, Options{}), Options{})

			cond := back.Conditions[0].(SimpleCondition)
			if cond.Operator != tt.want {
				t.Errorf("%q round-tripped to %q, want %q", tt.in, cond.Operator, tt.want)
			}
			if cond.Right != "" {
				t.Errorf("no-right operator came back with right %q", cond.Right)
			}
		})
	}
}

func TestRoundTrip_ForeignFragmentLossless(t *testing.T) {
	raw := `{"and":[{"some_custom_op":[1,2,3]},{"==":["a","b"]},{"!=":[{"var":"active"},true]},{"==":[{"var":"a"},1]}]}`
	wire := mustDecode(t, raw)

	tree := FromJSONLogic(wire, Options{})
	out := ToJSONLogic(tree, Options{})

	encoded, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("re-serialization failed: %v", err)
	}
	var back any
	if err := json.Unmarshal(encoded, &back); err != nil {
		t.Fatalf("re-decoding failed: %v", err)
	}
	var want any
	_ = json.Unmarshal([]byte(raw), &want)
	if !equalJSON(back, want) {
		t.Errorf("foreign fragment changed across an unedited load/save cycle:\ngot  %s", encoded)
	}
}

// equalJSON compares decoded JSON values structurally.
func equalJSON(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ab) == string(bb)
}
