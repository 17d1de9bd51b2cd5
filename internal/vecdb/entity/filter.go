package entity

import (
	"time"

	"github.com/Abraxas-365/vectordb/pkg/errx"
)

// FilterOperator is a leaf predicate's comparison operator.
type FilterOperator string

const (
	OpEquals         FilterOperator = "eq"
	OpNotEquals      FilterOperator = "ne"
	OpGreaterThan    FilterOperator = "gt"
	OpGreaterOrEqual FilterOperator = "gte"
	OpLessThan       FilterOperator = "lt"
	OpLessOrEqual    FilterOperator = "lte"
	OpIn             FilterOperator = "in"
	OpNotIn          FilterOperator = "not_in"
	OpContains       FilterOperator = "contains"
	OpNotContains    FilterOperator = "not_contains"
	OpStartsWith     FilterOperator = "starts_with"
	OpEndsWith       FilterOperator = "ends_with"
)

var stringOnlyOperators = map[FilterOperator]bool{
	OpContains:    true,
	OpNotContains: true,
	OpStartsWith:  true,
	OpEndsWith:    true,
}

var listOperators = map[FilterOperator]bool{
	OpIn:    true,
	OpNotIn: true,
}

// MetadataFilter is a leaf predicate: (field, operator, value).
// in/not_in must carry a list value and the four string operators a
// string value; this is validated here at construction, not deferred
// to evaluation.
type MetadataFilter struct {
	Field    string
	Operator FilterOperator
	Value    interface{}
}

// NewMetadataFilter validates and constructs a leaf predicate.
func NewMetadataFilter(field string, op FilterOperator, value interface{}) (MetadataFilter, error) {
	if field == "" {
		return MetadataFilter{}, errx.Validation("metadata filter field must not be empty")
	}
	if listOperators[op] {
		if _, ok := value.([]interface{}); !ok {
			return MetadataFilter{}, errx.Validation("operator requires a list value").
				WithDetail("operator", string(op))
		}
	}
	if stringOnlyOperators[op] {
		if _, ok := value.(string); !ok {
			return MetadataFilter{}, errx.Validation("operator requires a string value").
				WithDetail("operator", string(op))
		}
	}
	return MetadataFilter{Field: field, Operator: op, Value: value}, nil
}

// LogicalOperator combines predicates within a group.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "and"
	LogicalOr  LogicalOperator = "or"
)

// Predicate is implemented by MetadataFilter and *FilterGroup so groups
// can nest either.
type Predicate interface {
	isPredicate()
}

func (MetadataFilter) isPredicate() {}
func (*FilterGroup) isPredicate()   {}

// FilterGroup is a non-empty, possibly nested, set of predicates joined
// by AND or OR.
type FilterGroup struct {
	Operator   LogicalOperator
	Predicates []Predicate
}

// NewFilterGroup rejects an empty predicate list at construction time;
// an empty group cannot exist.
func NewFilterGroup(op LogicalOperator, predicates ...Predicate) (*FilterGroup, error) {
	if len(predicates) == 0 {
		return nil, errx.Validation("filter group must not be empty")
	}
	if op != LogicalAnd && op != LogicalOr {
		return nil, errx.Validation("unknown logical operator").WithDetail("operator", string(op))
	}
	return &FilterGroup{Operator: op, Predicates: predicates}, nil
}

// SearchFilters is the search predicate bundle: an optional metadata
// group, optional time bounds, optional allowed-document list, and an
// optional custom predicate that, when present, is the sole filter and
// all declarative parts are ignored. CustomFilter is in-process only
// and never crosses the transport boundary.
type SearchFilters struct {
	Metadata       *FilterGroup
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	DocumentIDs    []DocumentID
	CustomFilter   func(Chunk) bool
}

// HasDeclarative reports whether any declarative (non-custom) part of
// the bundle is populated.
func (f *SearchFilters) HasDeclarative() bool {
	if f == nil {
		return false
	}
	return f.Metadata != nil || f.CreatedAfter != nil || f.CreatedBefore != nil || len(f.DocumentIDs) > 0
}

// HasCustom reports whether the bundle carries a custom predicate.
func (f *SearchFilters) HasCustom() bool {
	return f != nil && f.CustomFilter != nil
}
