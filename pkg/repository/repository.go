package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mwantia/olog/pkg/db/query"
	"github.com/mwantia/olog/pkg/db/store"
	"github.com/mwantia/olog/pkg/entity"
	"github.com/mwantia/olog/pkg/log"
)

const defaultPageSize = 10

// Options tunes a repository.
type Options struct {
	// Refresh makes every write a synchronous flush point of the index.
	Refresh bool
	// PageSize bounds FindAll, 10 when unset.
	PageSize int
}

// Repository keeps one identity-keyed document per entity in a collection.
// Deletion only flips the state to Inactive, documents are never removed.
//
// DeleteByID reads the document and writes it back without any version
// check, a concurrent write to the same identity in between is lost.
type Repository[E any] struct {
	store   store.DocumentStore
	mapping Mapping[E]
	opts    Options
	log     log.LoggerService
}

func New[E any](s store.DocumentStore, mapping Mapping[E], opts Options, logger log.LoggerService) *Repository[E] {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	return &Repository[E]{
		store:   s,
		mapping: mapping,
		opts:    opts,
		log:     logger.Named(mapping.Collection),
	}
}

func (r *Repository[E]) fail(op, id string, category, cause error) error {
	return &OperationError{Op: op, Kind: r.mapping.Kind, ID: id, Err: category, Cause: cause}
}

func (r *Repository[E]) document(e E) (store.Document, error) {
	source, err := json.Marshal(e)
	if err != nil {
		return store.Document{}, err
	}
	return store.Document{
		Collection: r.mapping.Collection,
		ID:         r.mapping.Key(e),
		Source:     source,
		Fields:     r.mapping.Fields(e),
	}, nil
}

func (r *Repository[E]) decode(source []byte) (E, error) {
	var e E
	if err := json.Unmarshal(source, &e); err != nil {
		return e, fmt.Errorf("malformed %s document: %w", r.mapping.Kind, err)
	}
	return e, nil
}

// prepare defaults the state and applies the normalization of the mapping.
func (r *Repository[E]) prepare(e E) E {
	e = r.mapping.WithState(e, r.mapping.State(e).OrDefault())
	if r.mapping.Normalize != nil {
		e = r.mapping.Normalize(e)
	}
	return e
}

// Save upserts the entity by its identity key. An unset state becomes Active.
func (r *Repository[E]) Save(ctx context.Context, e E) (E, error) {
	var zero E
	e = r.prepare(e)
	id := r.mapping.Key(e)

	doc, err := r.document(e)
	if err != nil {
		return zero, r.fail("save", id, ErrPersistence, err)
	}

	res, err := r.store.Index(ctx, doc, store.WriteOptions{Refresh: r.opts.Refresh})
	if err != nil {
		r.log.Error("Failed to save %s '%s': %v", r.mapping.Kind, id, err)
		return zero, r.fail("save", id, ErrPersistence, err)
	}
	if res.Result != store.Created && res.Result != store.Updated {
		r.log.Error("Failed to save %s '%s': unexpected result '%s'", r.mapping.Kind, id, res.Result)
		return zero, r.fail("save", id, ErrPersistence, fmt.Errorf("unexpected result '%s'", res.Result))
	}

	r.log.Debug("Saved %s '%s' (%s)", r.mapping.Kind, id, res.Result)
	return e, nil
}

// SaveAll writes all entities in one batch. Any failed item fails the whole
// call with a *BulkError, no partial list is ever returned.
func (r *Repository[E]) SaveAll(ctx context.Context, entities []E) ([]E, error) {
	if len(entities) == 0 {
		return entities, nil
	}

	items := make([]E, len(entities))
	docs := make([]store.Document, len(entities))
	for i, e := range entities {
		items[i] = r.prepare(e)
		doc, err := r.document(items[i])
		if err != nil {
			return nil, &BulkError{Kind: r.mapping.Kind, Failures: []ItemFailure{{ID: itemID(r.mapping.Key(items[i]), i), Reason: err.Error()}}}
		}
		docs[i] = doc
	}

	resp, err := r.store.Bulk(ctx, docs, store.WriteOptions{Refresh: r.opts.Refresh})
	if err != nil {
		r.log.Error("Failed to save %d %s(s): %v", len(docs), r.mapping.Kind, err)
		return nil, r.fail("save all", "", ErrPersistence, err)
	}

	saved, err := Reconcile(r.mapping.Kind, items, resp, r.mapping.Key)
	if err != nil {
		var bulk *BulkError
		if errors.As(err, &bulk) {
			for _, f := range bulk.Failures {
				r.log.Error("Failed to save %s '%s': %s", r.mapping.Kind, f.ID, f.Reason)
			}
		}
		return nil, err
	}
	return saved, nil
}

// FindByID returns false without an error for a genuine absence.
func (r *Repository[E]) FindByID(ctx context.Context, id string) (E, bool, error) {
	var zero E
	doc, found, err := r.store.Get(ctx, r.mapping.Collection, id)
	if err != nil {
		return zero, false, r.fail("find", id, ErrLookup, err)
	}
	if !found {
		return zero, false, nil
	}

	e, err := r.decode(doc.Source)
	if err != nil {
		return zero, false, r.fail("find", id, ErrLookup, err)
	}
	return e, true, nil
}

func (r *Repository[E]) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, found, err := r.store.Get(ctx, r.mapping.Collection, id)
	if err != nil {
		return false, r.fail("exists", id, ErrLookup, err)
	}
	return found, nil
}

// ExistsByIDs reports whether every id exists.
func (r *Repository[E]) ExistsByIDs(ctx context.Context, ids []string) (bool, error) {
	items, err := r.store.MultiGet(ctx, r.mapping.Collection, ids)
	if err != nil {
		return false, r.fail("exists", "", ErrLookup, err)
	}
	for _, item := range items {
		if item.Err != nil {
			return false, r.fail("exists", item.ID, ErrLookup, item.Err)
		}
		if !item.Found {
			return false, nil
		}
	}
	return true, nil
}

// FindAll lists active entities in the mapping's order, bounded by the page
// size.
func (r *Repository[E]) FindAll(ctx context.Context) ([]E, error) {
	resp, err := r.store.Search(ctx, store.SearchRequest{
		Collection: r.mapping.Collection,
		Query:      query.Term{Field: FieldState, Value: string(entity.Active)},
		Size:       r.opts.PageSize,
		Sort:       r.mapping.Sort,
	})
	if err != nil {
		return nil, r.fail("find all", "", ErrLookup, err)
	}
	return r.decodeHits(resp.Hits)
}

func (r *Repository[E]) decodeHits(hits []store.Hit) ([]E, error) {
	out := make([]E, 0, len(hits))
	for _, hit := range hits {
		e, err := r.decode(hit.Source)
		if err != nil {
			return nil, r.fail("decode", hit.ID, ErrLookup, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// FindAllByID is a best-effort projection: ids that are missing, fail or do
// not decode are left out. Only a failure of the whole call is reported.
func (r *Repository[E]) FindAllByID(ctx context.Context, ids []string) ([]E, error) {
	items, err := r.store.MultiGet(ctx, r.mapping.Collection, ids)
	if err != nil {
		return nil, r.fail("find all", "", ErrLookup, err)
	}

	out := make([]E, 0, len(items))
	for _, item := range items {
		if item.Err != nil || !item.Found {
			continue
		}
		e, err := r.decode(item.Document.Source)
		if err != nil {
			r.log.Warn("Skipping %s '%s': %v", r.mapping.Kind, item.ID, err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// findMany resolves every id strictly: absent ids are missing from the map,
// any failure is an error.
func (r *Repository[E]) findMany(ctx context.Context, ids []string) (map[string]E, error) {
	found := make(map[string]E, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	items, err := r.store.MultiGet(ctx, r.mapping.Collection, ids)
	if err != nil {
		return nil, r.fail("find all", "", ErrLookup, err)
	}
	for _, item := range items {
		if item.Err != nil {
			return nil, r.fail("find", item.ID, ErrLookup, item.Err)
		}
		if !item.Found {
			continue
		}
		e, err := r.decode(item.Document.Source)
		if err != nil {
			return nil, r.fail("find", item.ID, ErrLookup, err)
		}
		found[item.ID] = e
	}
	return found, nil
}

// Count is not offered.
func (r *Repository[E]) Count(ctx context.Context) (int64, error) {
	return 0, r.fail("count", "", ErrUnsupported, nil)
}

// DeleteByID marks the entity Inactive and writes it back under the same key.
func (r *Repository[E]) DeleteByID(ctx context.Context, id string) error {
	e, found, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return r.fail("delete", id, ErrNotFound, nil)
	}

	doc, err := r.document(r.mapping.WithState(e, entity.Inactive))
	if err != nil {
		return r.fail("delete", id, ErrPersistence, err)
	}
	res, err := r.store.Index(ctx, doc, store.WriteOptions{Refresh: r.opts.Refresh})
	if err != nil {
		r.log.Error("Failed to delete %s '%s': %v", r.mapping.Kind, id, err)
		return r.fail("delete", id, ErrPersistence, err)
	}
	if res.Result != store.Updated {
		r.log.Error("Failed to delete %s '%s': unexpected result '%s'", r.mapping.Kind, id, res.Result)
		return r.fail("delete", id, ErrNotFound, fmt.Errorf("document vanished, write reported '%s'", res.Result))
	}

	r.log.Info("Deleted %s '%s'", r.mapping.Kind, id)
	return nil
}

// Delete soft-deletes the entity by its identity key.
func (r *Repository[E]) Delete(ctx context.Context, e E) error {
	return r.DeleteByID(ctx, r.mapping.Key(e))
}

// DeleteEach soft-deletes every entity in turn and reports all failures.
func (r *Repository[E]) DeleteEach(ctx context.Context, entities []E) error {
	var errs []error
	for _, e := range entities {
		if err := r.Delete(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeleteAll is refused, a collection is never wiped in a single call.
func (r *Repository[E]) DeleteAll(ctx context.Context) error {
	return r.fail("delete all", "", ErrForbidden, nil)
}
