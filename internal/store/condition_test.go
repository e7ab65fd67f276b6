package store

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestConditionIn(t *testing.T) {
	tests := []struct {
		name    string
		operand any
		record  Record
		want    bool
	}{
		{name: "string member", operand: []any{"x", "y"}, record: Record{"f": "y"}, want: true},
		{name: "string non-member", operand: []any{"x", "y"}, record: Record{"f": "z"}, want: false},
		{name: "int operand matches decoded float", operand: []int{1, 2}, record: Record{"f": float64(2)}, want: true},
		{name: "empty list matches nothing", operand: []any{}, record: Record{"f": "x"}, want: false},
		{name: "missing field", operand: []any{"x"}, record: Record{"g": "x"}, want: false},
		{name: "null member", operand: []any{nil}, record: Record{"f": nil}, want: true},
		{name: "bool member", operand: []bool{true}, record: Record{"f": true}, want: true},
		{name: "nested object member", operand: []any{map[string]any{"k": 1}}, record: Record{"f": map[string]any{"k": float64(1)}}, want: true},
		{name: "type mismatch", operand: []any{"1"}, record: Record{"f": float64(1)}, want: false},
		{name: "decoded number member", operand: []any{2}, record: Record{"f": json.Number("2")}, want: true},
		{name: "nested decoded numbers", operand: []any{[]any{1, 2}}, record: Record{"f": []any{json.Number("1"), json.Number("2")}}, want: true},
		{name: "nested length mismatch", operand: []any{[]any{1}}, record: Record{"f": []any{json.Number("1"), json.Number("2")}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCondition("f", Spec{OpIn: tt.operand}, DefaultOperators())
			if err != nil {
				t.Fatalf("NewCondition: %v", err)
			}
			if got := c.Match(tt.record); got != tt.want {
				t.Errorf("Match(%v) = %v, want %v", tt.record, got, tt.want)
			}
		})
	}
}

func TestCondition_UnknownOperator(t *testing.T) {
	_, err := NewCondition("f", Spec{"$regex": "a.*"}, DefaultOperators())
	if !errors.Is(err, ErrUnknownOperator) {
		t.Errorf("err = %v, want ErrUnknownOperator", err)
	}
}

func TestCondition_InvalidOperand(t *testing.T) {
	for _, operand := range []any{"x", 3, nil, map[string]any{"a": 1}} {
		_, err := NewCondition("f", Spec{OpIn: operand}, DefaultOperators())
		if !errors.Is(err, ErrInvalidOperand) {
			t.Errorf("operand %v: err = %v, want ErrInvalidOperand", operand, err)
		}
	}
}

func TestCondition_EmptySpecMatchesAll(t *testing.T) {
	c, err := NewCondition("f", Spec{}, DefaultOperators())
	if err != nil {
		t.Fatalf("NewCondition: %v", err)
	}
	if !c.Match(Record{}) {
		t.Error("empty spec should match")
	}
}

func TestCondition_OperatorsAreANDed(t *testing.T) {
	ops := DefaultOperators()
	calls := 0
	ops["$never"] = func(operand any) (Predicate, error) {
		return func(value any, present bool) bool {
			calls++
			return false
		}, nil
	}
	ops["$zzz"] = func(operand any) (Predicate, error) {
		return func(value any, present bool) bool {
			calls++
			return true
		}, nil
	}

	c, err := NewCondition("f", Spec{"$never": nil, OpIn: []any{"x"}, "$zzz": nil}, ops)
	if err != nil {
		t.Fatalf("NewCondition: %v", err)
	}
	if c.Match(Record{"f": "x"}) {
		t.Error("expected no match when one operator fails")
	}
	// $in passes, $never fails, and $zzz is never evaluated.
	if calls != 1 {
		t.Errorf("evaluated %d custom predicates, want 1", calls)
	}
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{1, float64(1), true},
		{int64(3), 3, true},
		{float64(1.5), 1.5, true},
		{"a", "a", true},
		{"1", 1, false},
		{nil, nil, true},
		{[]any{"a"}, []any{"a"}, true},
		{true, 1, false},
		{json.Number("7"), 7, true},
		{json.Number("9007199254740993"), json.Number("9007199254740992"), false},
		{json.Number("1.5"), 1.5, true},
		{map[string]any{"k": json.Number("1")}, map[string]any{"k": float64(1)}, true},
		{map[string]any{"k": 1}, map[string]any{"j": 1}, false},
		{[]any{"a"}, map[string]any{"a": nil}, false},
	}
	for _, tt := range tests {
		if got := ValuesEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("ValuesEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
