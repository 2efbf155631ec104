package condition

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"
)

// seqIDs returns a deterministic id source for tests: node-001, node-002, ...
func seqIDs() IDSource {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("node-%03d", n)
	}
}

// mustDecode parses a JSON literal into the any-shape the engine works with.
func mustDecode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("invalid test JSON %s: %v", raw, err)
	}
	return v
}

// row builds a condition row without going through a factory.
func row(op Op, left, right string) SimpleCondition {
	return SimpleCondition{ID: "t", Left: left, Operator: op, Right: right}
}

func TestToJSONLogic_EmptyTree(t *testing.T) {
	got := ToJSONLogic(NewRoot(), Options{})
	if got != true {
		t.Fatalf("ToJSONLogic(empty root) = %v, want true", got)
	}
}

func TestToJSONLogic_SingleLeafStillWrapped(t *testing.T) {
	root := ConditionRoot{Logic: LogicOr, Conditions: []ConditionItem{row(OpEq, "status", "active")}}

	got := ToJSONLogic(root, Options{})
	want := mustDecode(t, `{"or":[{"==":[{"var":"status"},"active"]}]}`)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("single leaf not wrapped under root logic: got %#v", got)
	}
}

func TestToJSONLogic_OperatorShapes(t *testing.T) {
	tests := []struct {
		name string
		cond SimpleCondition
		want string
	}{
		{
			name: "equality with string right",
			cond: row(OpEq, "user.role", "admin"),
			want: `{"==":[{"var":"user.role"},"admin"]}`,
		},
		{
			name: "numeric right coerced",
			cond: row(OpGt, "order.total", "100"),
			want: `{">":[{"var":"order.total"},100]}`,
		},
		{
			name: "decimal and exponent forms coerced",
			cond: row(OpLte, "ratio", "2.5e-1"),
			want: `{"<=":[{"var":"ratio"},0.25]}`,
		},
		{
			name: "numeric-looking with surrounding spaces coerced",
			cond: row(OpNeq, "count", " 42 "),
			want: `{"!=":[{"var":"count"},42]}`,
		},
		{
			name: "non-numeric right passes through",
			cond: row(OpLt, "version", "1.2.3"),
			want: `{"<":[{"var":"version"},"1.2.3"]}`,
		},
		{
			name: "contains reverses operands",
			cond: row(OpContains, "tags", "urgent"),
			want: `{"in":["urgent",{"var":"tags"}]}`,
		},
		{
			name: "in splits comma list with per-element coercion",
			cond: row(OpIn, "status", "active, 2, pending"),
			want: `{"in":[{"var":"status"},["active",2,"pending"]]}`,
		},
		{
			name: "startsWith custom keyword",
			cond: row(OpStartsWith, "name", "Dr."),
			want: `{"startsWith":[{"var":"name"},"Dr."]}`,
		},
		{
			name: "endsWith custom keyword",
			cond: row(OpEndsWith, "file", ".pdf"),
			want: `{"endsWith":[{"var":"file"},".pdf"]}`,
		},
		{
			name: "matches keeps pattern source verbatim",
			cond: row(OpMatches, "email", `^[a-z]+@corp\.com$`),
			want: `{"matches":[{"var":"email"},"^[a-z]+@corp\\.com$"]}`,
		},
		{
			name: "matches keeps numeric-looking pattern as string",
			cond: row(OpMatches, "code", "123"),
			want: `{"matches":[{"var":"code"},"123"]}`,
		},
		{
			name: "isTrue",
			cond: row(OpIsTrue, "flags.beta", ""),
			want: `{"!!":[{"var":"flags.beta"}]}`,
		},
		{
			name: "isFalse",
			cond: row(OpIsFalse, "flags.beta", ""),
			want: `{"!":[{"var":"flags.beta"}]}`,
		},
		{
			name: "isEmpty lowers to negation",
			cond: row(OpIsEmpty, "middle_name", ""),
			want: `{"!":[{"var":"middle_name"}]}`,
		},
		{
			name: "isNotEmpty lowers to double negation",
			cond: row(OpIsNotEmpty, "middle_name", ""),
			want: `{"!!":[{"var":"middle_name"}]}`,
		},
		{
			name: "foreign operator id degrades to equality",
			cond: row(Op("between"), "age", "18"),
			want: `{"==":[{"var":"age"},18]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := ConditionRoot{Logic: LogicAnd, Conditions: []ConditionItem{tt.cond}}
			got := ToJSONLogic(root, Options{})
			want := mustDecode(t, `{"and":[`+tt.want+`]}`)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %#v, want %#v", got, want)
			}
		})
	}
}

func TestToJSONLogic_NestedGroups(t *testing.T) {
	root := ConditionRoot{
		Logic: LogicAnd,
		Conditions: []ConditionItem{
			row(OpGt, "order.total", "100"),
			ConditionGroup{
				ID:    "g1",
				Logic: LogicOr,
				Conditions: []ConditionItem{
					row(OpEq, "user.role", "admin"),
					row(OpEq, "user.role", "manager"),
				},
			},
		},
	}

	got := ToJSONLogic(root, Options{})
	want := mustDecode(t, `{"and":[{">":[{"var":"order.total"},100]},{"or":[{"==":[{"var":"user.role"},"admin"]},{"==":[{"var":"user.role"},"manager"]}]}]}`)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("nested group serialization mismatch:\ngot  %#v\nwant %#v", got, want)
	}
}

func TestToJSONLogic_EmptyNestedGroup(t *testing.T) {
	root := ConditionRoot{
		Logic:      LogicAnd,
		Conditions: []ConditionItem{ConditionGroup{ID: "g1", Logic: LogicOr, Conditions: []ConditionItem{}}},
	}

	got := ToJSONLogic(root, Options{})
	want := mustDecode(t, `{"and":[true]}`)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("empty nested group = %#v, want wrapped literal true", got)
	}
}

func TestToJSONLogic_TemplateMode(t *testing.T) {
	tests := []struct {
		name string
		cond SimpleCondition
		opts Options
		want string
	}{
		{
			name: "display-form left demotes to raw path string",
			cond: row(OpEq, "{{user.status}}", "active"),
			opts: Options{UseTemplateSyntax: true},
			want: `{"==":["user.status","active"]}`,
		},
		{
			name: "bare left still promotes to var node",
			cond: row(OpEq, "user.status", "active"),
			opts: Options{UseTemplateSyntax: true},
			want: `{"==":[{"var":"user.status"},"active"]}`,
		},
		{
			name: "display-form left ignored outside template mode",
			cond: row(OpEq, "{{user.status}}", "active"),
			opts: Options{},
			want: `{"==":[{"var":"{{user.status}}"},"active"]}`,
		},
		{
			name: "display-form right passes through verbatim",
			cond: row(OpEq, "a", "{{defaults.status}}"),
			opts: Options{UseTemplateSyntax: true},
			want: `{"==":[{"var":"a"},"{{defaults.status}}"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := ConditionRoot{Logic: LogicAnd, Conditions: []ConditionItem{tt.cond}}
			got := ToJSONLogic(root, tt.opts)
			want := mustDecode(t, `{"and":[`+tt.want+`]}`)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %#v, want %#v", got, want)
			}
		})
	}
}

func TestToJSONLogic_UnparsedFragmentReemitted(t *testing.T) {
	fragment := mustDecode(t, `{"some_custom_op":[1,2,3]}`)
	root := ConditionRoot{
		Logic: LogicAnd,
		Conditions: []ConditionItem{
			SimpleCondition{ID: "t", Left: UnparsedPlaceholder, Operator: OpEq, Unparsed: fragment, HasUnparsed: true},
			row(OpEq, "status", "active"),
		},
	}

	got := ToJSONLogic(root, Options{})
	want := mustDecode(t, `{"and":[{"some_custom_op":[1,2,3]},{"==":[{"var":"status"},"active"]}]}`)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unparsed fragment not re-emitted verbatim: got %#v", got)
	}
}

func TestToJSONLogic_NullFragmentReemitted(t *testing.T) {
	root := ConditionRoot{
		Logic: LogicAnd,
		Conditions: []ConditionItem{
			SimpleCondition{ID: "t", Left: UnparsedPlaceholder, Operator: OpEq, Unparsed: nil, HasUnparsed: true},
		},
	}

	got := ToJSONLogic(root, Options{})
	want := mustDecode(t, `{"and":[null]}`)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("null fragment not re-emitted: got %#v", got)
	}
}

func TestToJSONLogic_OutputIsValidJSON(t *testing.T) {
	root := ConditionRoot{
		Logic: LogicOr,
		Conditions: []ConditionItem{
			row(OpMatches, "email", `\d+`),
			ConditionGroup{ID: "g", Logic: LogicAnd, Conditions: []ConditionItem{row(OpIn, "tier", "gold, silver")}},
		},
	}

	if _, err := json.Marshal(ToJSONLogic(root, Options{})); err != nil {
		t.Fatalf("serializer output is not JSON-encodable: %v", err)
	}
}
