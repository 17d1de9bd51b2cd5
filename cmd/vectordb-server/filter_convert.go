package main

import (
	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/pkg/errx"
)

// toFilterGroup converts the wire filter-group DTO into the in-process
// predicate tree, validating each leaf and group at construction.
func toFilterGroup(dto *filterGroupDTO) (*entity.FilterGroup, error) {
	if dto == nil {
		return nil, nil
	}
	op := entity.LogicalOperator(dto.Operator)

	predicates := make([]entity.Predicate, 0, len(dto.Leaves)+len(dto.Filters))
	for _, leaf := range dto.Leaves {
		mf, err := entity.NewMetadataFilter(leaf.Field, entity.FilterOperator(leaf.Operator), leaf.Value)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, mf)
	}
	for i := range dto.Filters {
		nested, err := toFilterGroup(&dto.Filters[i])
		if err != nil {
			return nil, err
		}
		if nested != nil {
			predicates = append(predicates, nested)
		}
	}
	if len(predicates) == 0 {
		return nil, errx.Validation("filter group must not be empty")
	}
	return entity.NewFilterGroup(op, predicates...)
}

func toDocumentIDs(raw []string) ([]entity.DocumentID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]entity.DocumentID, len(raw))
	for i, s := range raw {
		id, err := entity.ParseDocumentID(s)
		if err != nil {
			return nil, errx.Validation("invalid document id").WithDetail("value", s)
		}
		out[i] = id
	}
	return out, nil
}
