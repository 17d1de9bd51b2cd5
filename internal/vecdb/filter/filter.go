// Package filter implements the predicate evaluator: declarative
// metadata predicate trees, time/identity predicates, and custom
// predicate callbacks.
package filter

import (
	"strings"
	"time"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
)

// Matches evaluates the declarative parts of a bundle (metadata group,
// time bounds, document-id allowlist) against a chunk. Callers are
// responsible for checking HasCustom first: when a custom predicate is
// present it is the sole filter and this function should not be
// consulted at all.
func Matches(bundle *entity.SearchFilters, chunk entity.Chunk) bool {
	if bundle == nil {
		return true
	}
	if bundle.Metadata != nil && !evaluateGroup(bundle.Metadata, chunk) {
		return false
	}
	if bundle.CreatedAfter != nil && !chunk.CreatedAt.After(*bundle.CreatedAfter) {
		return false
	}
	if bundle.CreatedBefore != nil && !chunk.CreatedAt.Before(*bundle.CreatedBefore) {
		return false
	}
	if len(bundle.DocumentIDs) > 0 && !containsDocumentID(bundle.DocumentIDs, chunk.DocumentID) {
		return false
	}
	return true
}

// MatchesCustom evaluates the bundle's custom predicate against a
// chunk. A panicking predicate is treated as false for that candidate
// only; the search continues.
func MatchesCustom(bundle *entity.SearchFilters, chunk entity.Chunk) (result bool) {
	defer func() {
		if recover() != nil {
			result = false
		}
	}()
	return bundle.CustomFilter(chunk)
}

func containsDocumentID(ids []entity.DocumentID, target entity.DocumentID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func evaluateGroup(group *entity.FilterGroup, chunk entity.Chunk) bool {
	switch group.Operator {
	case entity.LogicalAnd:
		for _, p := range group.Predicates {
			if !evaluatePredicate(p, chunk) {
				return false
			}
		}
		return true
	case entity.LogicalOr:
		for _, p := range group.Predicates {
			if evaluatePredicate(p, chunk) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func evaluatePredicate(p entity.Predicate, chunk entity.Chunk) bool {
	switch v := p.(type) {
	case entity.MetadataFilter:
		return evaluateLeaf(v, chunk)
	case *entity.FilterGroup:
		return evaluateGroup(v, chunk)
	default:
		return false
	}
}

// evaluateLeaf evaluates one (field, operator, value) predicate against
// a chunk's metadata. A missing field is false for every operator,
// ordered comparisons between incompatible types are false (no
// coercion), string operators against non-strings are false, and a
// list-valued candidate only ever matches eq/ne, never the other
// operators.
func evaluateLeaf(f entity.MetadataFilter, chunk entity.Chunk) bool {
	candidate, ok := chunk.Metadata[f.Field]
	if !ok {
		return false
	}

	if _, isList := candidate.([]interface{}); isList {
		switch f.Operator {
		case entity.OpEquals:
			return valuesEqual(candidate, f.Value)
		case entity.OpNotEquals:
			return !valuesEqual(candidate, f.Value)
		default:
			return false
		}
	}

	switch f.Operator {
	case entity.OpEquals:
		return valuesEqual(candidate, f.Value)
	case entity.OpNotEquals:
		return !valuesEqual(candidate, f.Value)
	case entity.OpGreaterThan:
		return orderedCompare(candidate, f.Value, func(c int) bool { return c > 0 })
	case entity.OpGreaterOrEqual:
		return orderedCompare(candidate, f.Value, func(c int) bool { return c >= 0 })
	case entity.OpLessThan:
		return orderedCompare(candidate, f.Value, func(c int) bool { return c < 0 })
	case entity.OpLessOrEqual:
		return orderedCompare(candidate, f.Value, func(c int) bool { return c <= 0 })
	case entity.OpIn:
		return membership(f.Value, candidate)
	case entity.OpNotIn:
		return !membership(f.Value, candidate)
	case entity.OpContains:
		return stringOp(candidate, f.Value, strings.Contains)
	case entity.OpNotContains:
		return !stringOp(candidate, f.Value, strings.Contains)
	case entity.OpStartsWith:
		return stringOp(candidate, f.Value, strings.HasPrefix)
	case entity.OpEndsWith:
		return stringOp(candidate, f.Value, strings.HasSuffix)
	default:
		return false
	}
}

func membership(list interface{}, candidate interface{}) bool {
	items, ok := list.([]interface{})
	if !ok {
		return false
	}
	for _, item := range items {
		if valuesEqual(candidate, item) {
			return true
		}
	}
	return false
}

func stringOp(candidate, value interface{}, op func(s, substr string) bool) bool {
	cs, ok := candidate.(string)
	if !ok {
		return false
	}
	vs, ok := value.(string)
	if !ok {
		return false
	}
	return op(cs, vs)
}

// valuesEqual compares two metadata values of the same kind. Lists
// compare element-wise and order-sensitive; mixed-kind pairs are never
// equal.
func valuesEqual(a, b interface{}) bool {
	al, aok := a.([]interface{})
	bl, bok := b.([]interface{})
	if aok || bok {
		if !aok || !bok || len(al) != len(bl) {
			return false
		}
		for i := range al {
			if !valuesEqual(al[i], bl[i]) {
				return false
			}
		}
		return true
	}
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if aok && bok {
		return af == bf
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	ab, aok := a.(bool)
	bb, bok := b.(bool)
	if aok && bok {
		return ab == bb
	}
	at, aok := a.(time.Time)
	bt, bok := b.(time.Time)
	if aok && bok {
		return at.Equal(bt)
	}
	return false
}

// orderedCompare applies cmp to the three-way comparison of candidate
// against value, returning false (no exception, no coercion) when the
// two are not comparably typed.
func orderedCompare(candidate, value interface{}, cmp func(int) bool) bool {
	if cf, cok := toFloat64(candidate); cok {
		if vf, vok := toFloat64(value); vok {
			return cmp(compareFloat(cf, vf))
		}
		return false
	}
	if cs, ok := candidate.(string); ok {
		if vs, ok := value.(string); ok {
			return cmp(strings.Compare(cs, vs))
		}
		return false
	}
	if ct, ok := candidate.(time.Time); ok {
		if vt, ok := value.(time.Time); ok {
			switch {
			case ct.Before(vt):
				return cmp(-1)
			case ct.After(vt):
				return cmp(1)
			default:
				return cmp(0)
			}
		}
		return false
	}
	return false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
