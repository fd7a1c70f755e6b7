package task

import "github.com/fastygo/tasksync/domain"

// Merge folds a fetched page into the accumulated list.
//
// A first page replaces the list. A continuation page replaces tasks whose id is already
// present in place, so the server value wins without moving the row, and appends the rest in
// page order. A later page can overlap earlier ones when a sort key changed between fetches;
// the result never holds an id twice. Merging the same page again is a no-op.
func Merge(accumulated, incoming []domain.Task, isFirstPage bool) []domain.Task {
	if isFirstPage {
		accumulated = nil
	}

	out := make([]domain.Task, len(accumulated), len(accumulated)+len(incoming))
	copy(out, accumulated)

	index := make(map[string]int, len(out)+len(incoming))
	for i, t := range out {
		index[t.ID] = i
	}
	for _, t := range incoming {
		if i, ok := index[t.ID]; ok {
			out[i] = t
			continue
		}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	return out
}
