package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Criteria selects records. It is either an ID or a Where mapping.
type Criteria interface {
	isCriteria()
}

// ID selects the single record stored under an identifier.
type ID int

// Where selects every record satisfying all of its field conditions.
type Where map[string]Spec

func (ID) isCriteria()    {}
func (Where) isCriteria() {}

// Query is a conjunction of field conditions.
type Query struct {
	conditions []*Condition
}

// NewQuery compiles w into a query. Fields are evaluated in name order.
func NewQuery(w Where, ops Operators) (*Query, error) {
	if ops == nil {
		ops = DefaultOperators()
	}

	fields := make([]string, 0, len(w))
	for field := range w {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	q := &Query{conditions: make([]*Condition, 0, len(fields))}
	for _, field := range fields {
		c, err := NewCondition(field, w[field], ops)
		if err != nil {
			return nil, err
		}
		q.conditions = append(q.conditions, c)
	}
	return q, nil
}

// Match reports whether r satisfies every condition.
func (q *Query) Match(r Record) bool {
	for _, c := range q.conditions {
		if !c.Match(r) {
			return false
		}
	}
	return true
}

// Matches returns the matching records of ds in key order.
// The result is a new slice; ds is not modified.
func (q *Query) Matches(ds Dataset) []Record {
	matches := []Record{}
	for _, key := range ds.Keys() {
		if r := ds[key]; q.Match(r) {
			matches = append(matches, r)
		}
	}
	return matches
}

// ParseCriteria decodes criteria from JSON. A non-negative integer (bare or
// quoted) selects by identifier; an object of field specs builds a Where.
func ParseCriteria(data []byte) (Criteria, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidCriteria)
	}

	if data[0] == '{' {
		var w Where
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
		}
		return w, nil
	}

	var v any
	if err := DecodeJSON(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	id, ok := toID(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s is neither an identifier nor an object", ErrInvalidCriteria, data)
	}
	return ID(id), nil
}
