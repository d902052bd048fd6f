package repository

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mwantia/olog/pkg/db/store"
)

func TestReconcile(t *testing.T) {
	key := func(s string) string { return s }
	items := []string{"alpha", "", "gamma"}

	tests := []struct {
		name     string
		resp     *store.BulkResponse
		want     []string
		failures []ItemFailure
	}{
		{
			name: "all written",
			resp: &store.BulkResponse{Items: []store.BulkItem{
				{ID: "alpha", Result: store.Created},
				{ID: "beta", Result: store.Updated},
				{ID: "gamma", Result: store.Created},
			}},
			want: items,
		},
		{
			name: "item error",
			resp: &store.BulkResponse{Items: []store.BulkItem{
				{ID: "alpha", Result: store.Created},
				{Result: store.Failed, Err: errors.New("document id is required")},
				{ID: "gamma", Result: store.Created},
			}},
			failures: []ItemFailure{{ID: "#1", Reason: "document id is required"}},
		},
		{
			name: "unexpected result",
			resp: &store.BulkResponse{Items: []store.BulkItem{
				{ID: "alpha", Result: store.Failed},
				{ID: "beta", Result: store.Created},
				{ID: "gamma", Result: "noop"},
			}},
			failures: []ItemFailure{
				{ID: "alpha", Reason: "unexpected result 'failed'"},
				{ID: "gamma", Reason: "unexpected result 'noop'"},
			},
		},
		{
			name: "short response",
			resp: &store.BulkResponse{Items: []store.BulkItem{{ID: "alpha", Result: store.Created}}},
			failures: []ItemFailure{
				{ID: "*", Reason: "ambiguous bulk response: 1 results for 3 items"},
			},
		},
		{
			name: "missing response",
			failures: []ItemFailure{
				{ID: "*", Reason: "ambiguous bulk response: 0 results for 3 items"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconcile("tag", items, tt.resp, key)
			if tt.failures == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Fatalf("result mismatch (-want +got):\n%s", diff)
				}
				return
			}

			if got != nil {
				t.Fatalf("expected no partial result, got %v", got)
			}
			if !errors.Is(err, ErrPersistence) {
				t.Fatalf("expected ErrPersistence, got %v", err)
			}
			var bulk *BulkError
			if !errors.As(err, &bulk) {
				t.Fatalf("expected *BulkError, got %T", err)
			}
			if diff := cmp.Diff(tt.failures, bulk.Failures); diff != "" {
				t.Fatalf("failures mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestErrorCategories(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  error
		is   error
		text string
	}{
		{
			name: "operation with cause",
			err:  &OperationError{Op: "save", Kind: "tag", ID: "ops", Err: ErrPersistence, Cause: cause},
			is:   ErrPersistence,
			text: "save tag 'ops': persistence failure: disk full",
		},
		{
			name: "operation without id",
			err:  &OperationError{Op: "count", Kind: "log", Err: ErrUnsupported},
			is:   ErrUnsupported,
			text: "count log: unsupported operation",
		},
		{
			name: "references",
			err: &ReferenceError{Missing: []Reference{
				{Kind: "logbook", Reason: ReasonRequired},
				{Kind: "tag", Name: "urgent", Reason: ReasonInactive},
			}},
			is:   ErrReference,
			text: "invalid reference: a logbook is required, tag 'urgent' is inactive",
		},
		{
			name: "bulk with category",
			err:  &BulkError{Kind: "log", Failures: []ItemFailure{{ID: "#0", Reason: "bad"}}, Err: ErrReference},
			is:   ErrReference,
			text: "invalid reference: 1 log item(s) failed: [#0: bad]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.is) {
				t.Fatalf("expected %v to match %v", tt.err, tt.is)
			}
			if got := tt.err.Error(); got != tt.text {
				t.Fatalf("expected %q, got %q", tt.text, got)
			}
		})
	}

	opErr := &OperationError{Op: "save", Kind: "tag", Err: ErrPersistence, Cause: cause}
	if !errors.Is(opErr, cause) {
		t.Fatalf("expected the cause to stay reachable")
	}
	if errors.Is(opErr, ErrLookup) {
		t.Fatalf("expected a single category")
	}
}
