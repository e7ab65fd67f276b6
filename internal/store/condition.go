package store

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Operator names a field-level predicate inside a condition spec.
type Operator string

// OpIn matches when the field value equals one of the operand's items.
const OpIn Operator = "$in"

// Spec maps operators to their operands, e.g. {"$in": [1, 2]}.
type Spec map[Operator]any

// Predicate reports whether a field value satisfies a compiled operator.
// present is false when the record does not have the field at all.
type Predicate func(value any, present bool) bool

// Compiler validates an operand and returns the predicate it denotes.
type Compiler func(operand any) (Predicate, error)

// Operators is the closed table of operators a query may use.
type Operators map[Operator]Compiler

// DefaultOperators returns the built-in operator table.
func DefaultOperators() Operators {
	return Operators{
		OpIn: compileIn,
	}
}

// clone returns a copy that can be extended without affecting o.
func (o Operators) clone() Operators {
	out := make(Operators, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

func compileIn(operand any) (Predicate, error) {
	items, ok := operand.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a list, got %T", ErrInvalidOperand, OpIn, operand)
	}
	return func(value any, present bool) bool {
		if !present {
			return false
		}
		for _, item := range items {
			if ValuesEqual(value, item) {
				return true
			}
		}
		return false
	}, nil
}

// compiledOp is one operator bound to its operand.
type compiledOp struct {
	op   Operator
	pred Predicate
}

// Condition evaluates the operators of one spec against a single field.
type Condition struct {
	Field string
	ops   []compiledOp
}

// NewCondition compiles spec for field using the given operator table.
// Operators are evaluated in name order. An empty spec matches every record.
func NewCondition(field string, spec Spec, ops Operators) (*Condition, error) {
	names := make([]Operator, 0, len(spec))
	for op := range spec {
		names = append(names, op)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	c := &Condition{Field: field}
	for _, op := range names {
		compile, ok := ops[op]
		if !ok {
			return nil, fmt.Errorf("%w: %q on field %q", ErrUnknownOperator, op, field)
		}
		operand, err := normalize(spec[op])
		if err != nil {
			return nil, fmt.Errorf("%w: %s on field %q: %v", ErrInvalidOperand, op, field, err)
		}
		pred, err := compile(operand)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		c.ops = append(c.ops, compiledOp{op: op, pred: pred})
	}
	return c, nil
}

// Match reports whether r satisfies every operator of the condition.
func (c *Condition) Match(r Record) bool {
	value, present := r[c.Field]
	for _, o := range c.ops {
		if !o.pred(value, present) {
			return false
		}
	}
	return true
}

// normalize converts a Go value to its decoded-JSON form, so operands built
// from []int or structs compare like values read from disk.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := DecodeJSON(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValuesEqual compares two field values. Numbers compare by value regardless
// of their Go type, including inside arrays and objects; everything else
// compares structurally.
func ValuesEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return false
		}
		ia, aInt := toInt64(a)
		ib, bInt := toInt64(b)
		if aInt && bInt {
			return ia == ib
		}
		return fa == fb
	}

	switch a := a.(type) {
	case []any:
		b, ok := b.([]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !ValuesEqual(a[i], b[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		b, ok := b.(map[string]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for k, av := range a {
			bv, ok := b[k]
			if !ok || !ValuesEqual(av, bv) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toInt64 returns v as an exact integer when it holds one.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n), true
		}
	}
	return 0, false
}
