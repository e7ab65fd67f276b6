// Package store provides a single-file JSON document store.
package store

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// IDField is the reserved field holding a record's identifier.
const IDField = "id"

// Record represents a single schema-free document.
type Record map[string]any

// ID returns the record's identifier, if it carries a valid one.
func (r Record) ID() (int, bool) {
	return toID(r[IDField])
}

// clone returns a shallow copy so stamping an id never touches the caller's map.
func (r Record) clone() Record {
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset maps stringified identifiers to records. It is the entire
// persisted state of a store.
type Dataset map[string]Record

// idKey converts an identifier to its dataset key.
func idKey(id int) string {
	return strconv.Itoa(id)
}

// Keys returns the dataset keys in ascending numeric order.
// Keys that are not integers sort after all numeric keys.
func (d Dataset) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// Records returns every record in key order.
func (d Dataset) Records() []Record {
	out := make([]Record, 0, len(d))
	for _, k := range d.Keys() {
		out = append(out, d[k])
	}
	return out
}

// Get returns the record stored under id.
func (d Dataset) Get(id int) (Record, bool) {
	r, ok := d[idKey(id)]
	return r, ok
}

// put stores r under id, stamping the identifier field.
func (d Dataset) put(id int, r Record) Record {
	if r == nil {
		r = Record{}
	}
	r[IDField] = id
	d[idKey(id)] = r
	return r
}

// remove deletes id and reports whether it was present.
func (d Dataset) remove(id int) bool {
	key := idKey(id)
	if _, ok := d[key]; !ok {
		return false
	}
	delete(d, key)
	return true
}

// toID converts a decoded JSON or Go value to a non-negative integer id.
func toID(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, n >= 0
	case int64:
		return int(n), n >= 0
	case float64:
		if n < 0 || n != math.Trunc(n) || n > 1<<53 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := strconv.Atoi(n.String())
		return i, err == nil && i >= 0
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil && i >= 0
	}
	return 0, false
}
