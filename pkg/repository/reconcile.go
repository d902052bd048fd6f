package repository

import (
	"fmt"

	"github.com/mwantia/olog/pkg/db/store"
)

// Reconcile turns the per-item outcome of a batched write into a single
// result. Without failures the submitted items are returned unchanged,
// otherwise the call fails as a whole with a *BulkError naming every failed
// item. A response that does not account for every item is a failure too.
func Reconcile[E any](kind string, items []E, resp *store.BulkResponse, key func(E) string) ([]E, error) {
	if resp == nil || len(resp.Items) != len(items) {
		got := 0
		if resp != nil {
			got = len(resp.Items)
		}
		return nil, &BulkError{
			Kind: kind,
			Failures: []ItemFailure{{
				ID:     "*",
				Reason: fmt.Sprintf("ambiguous bulk response: %d results for %d items", got, len(items)),
			}},
		}
	}

	var failures []ItemFailure
	for i, item := range resp.Items {
		switch {
		case item.Err != nil:
			failures = append(failures, ItemFailure{ID: itemID(key(items[i]), i), Reason: item.Err.Error()})
		case item.Result != store.Created && item.Result != store.Updated:
			failures = append(failures, ItemFailure{ID: itemID(key(items[i]), i), Reason: fmt.Sprintf("unexpected result '%s'", item.Result)})
		}
	}

	if len(failures) > 0 {
		return nil, &BulkError{Kind: kind, Failures: failures}
	}
	return items, nil
}
