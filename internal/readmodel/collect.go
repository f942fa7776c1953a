package readmodel

import (
	"context"
	"fmt"
)

// Lister is the part of a read store Collect needs.
type Lister interface {
	GetAll(ctx context.Context, collection string) ([]any, error)
}

// Collect lists a collection as values of T, keeping those keep accepts.
// A nil keep keeps everything. Items of any other type are an error.
func Collect[T any](ctx context.Context, rs Lister, collection string, keep func(*T) bool) ([]T, error) {
	items, err := rs.GetAll(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		var model *T
		switch v := item.(type) {
		case *T:
			model = v
		case T:
			model = &v
		default:
			return nil, fmt.Errorf("unexpected %T in %s", item, collection)
		}
		if keep == nil || keep(model) {
			out = append(out, *model)
		}
	}
	return out, nil
}
