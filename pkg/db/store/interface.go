package store

import (
	"context"
	"errors"
	"time"

	"github.com/mwantia/olog/pkg/db/query"
)

// ErrMissingID is reported for documents written without an id.
var ErrMissingID = errors.New("document id is required")

// DocumentStore is the document index consumed by the repositories: identity
// keyed upserts, point and multi gets, batched upserts with per-item status
// and structured search. A store offers no cross-document transactions.
type DocumentStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Writes
	Index(ctx context.Context, doc Document, opts WriteOptions) (WriteResult, error)
	Bulk(ctx context.Context, docs []Document, opts WriteOptions) (*BulkResponse, error)
	Refresh(ctx context.Context) error

	// Reads
	Get(ctx context.Context, collection, id string) (*Document, bool, error)
	MultiGet(ctx context.Context, collection string, ids []string) ([]MultiGetItem, error)
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)

	// NextSequence returns the next value of a named id sequence, starting at 1.
	NextSequence(ctx context.Context, name string) (int64, error)
}

type FieldKind int

const (
	// Keyword fields match exactly and case-sensitively.
	Keyword FieldKind = iota
	// Text fields are analyzed into lowercase tokens with positions.
	Text
	// Date fields hold an instant with millisecond precision.
	Date
)

func (k FieldKind) String() string {
	switch k {
	case Text:
		return "text"
	case Date:
		return "date"
	default:
		return "keyword"
	}
}

// Field is one indexed value of a document. Scope names the nested object
// the value belongs to, empty for the document root.
type Field struct {
	Name  string
	Kind  FieldKind
	Scope string
	Value string
	Time  time.Time
}

// Document is the unit of storage: raw JSON source plus its field projection.
type Document struct {
	Collection string
	ID         string
	Source     []byte
	Fields     []Field
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type WriteOptions struct {
	// Refresh makes the write a synchronous flush point.
	Refresh bool
}

type Result string

const (
	Created Result = "created"
	Updated Result = "updated"
	Failed  Result = "failed"
)

type WriteResult struct {
	ID     string
	Result Result
}

type BulkItem struct {
	ID     string
	Result Result
	Err    error
}

// BulkResponse reports the outcome of every item, in request order.
type BulkResponse struct {
	Items []BulkItem
}

// Errors reports whether at least one item failed.
func (r *BulkResponse) Errors() bool {
	for _, item := range r.Items {
		if item.Err != nil || item.Result == Failed {
			return true
		}
	}
	return false
}

type MultiGetItem struct {
	ID       string
	Document *Document
	Found    bool
	Err      error
}

type SortOrder int

const (
	Asc SortOrder = iota
	Desc
)

type Sort struct {
	Field string
	Kind  FieldKind
	Order SortOrder
	// Relevance orders by index order, the store has no scoring of its own.
	Relevance bool
}

type SearchRequest struct {
	Collection string
	Query      query.Query
	From       int
	Size       int
	Sort       []Sort
}

type Hit struct {
	ID     string
	Source []byte
}

type SearchResponse struct {
	Total int64
	Hits  []Hit
}
