package repository

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	config "github.com/mwantia/olog/internal/config/server"
	"github.com/mwantia/olog/pkg/db/store"
	"github.com/mwantia/olog/pkg/entity"
	"github.com/mwantia/olog/pkg/log"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:    filepath.Join(t.TempDir(), "olog.db"),
		Timeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("failed to connect store: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestLogger(buf *bytes.Buffer) log.LoggerService {
	return log.NewLoggerServiceWithWriter("test", config.LogServerConfig{Level: "debug"}, buf)
}

func newLogbooks(t *testing.T, s store.DocumentStore) (*LogbookRepository, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	return NewLogbookRepository(s, "logbooks", Options{Refresh: true}, newTestLogger(&buf)), &buf
}

// failingStore fails every call that reaches the index.
type failingStore struct {
	store.DocumentStore
	err error
}

func (f failingStore) Index(context.Context, store.Document, store.WriteOptions) (store.WriteResult, error) {
	return store.WriteResult{Result: store.Failed}, f.err
}

func (f failingStore) Bulk(context.Context, []store.Document, store.WriteOptions) (*store.BulkResponse, error) {
	return nil, f.err
}

func (f failingStore) Get(context.Context, string, string) (*store.Document, bool, error) {
	return nil, false, f.err
}

func (f failingStore) MultiGet(context.Context, string, []string) ([]store.MultiGetItem, error) {
	return nil, f.err
}

func (f failingStore) Search(context.Context, store.SearchRequest) (*store.SearchResponse, error) {
	return nil, f.err
}

func TestSaveThenFindByID(t *testing.T) {
	repo, _ := newLogbooks(t, newTestStore(t))
	ctx := context.Background()

	saved, err := repo.Save(ctx, entity.Logbook{Name: "operations", Owner: "alice"})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved.State != entity.Active {
		t.Fatalf("expected unset state to default to Active, got %q", saved.State)
	}

	found, ok, err := repo.FindByID(ctx, "operations")
	if err != nil || !ok {
		t.Fatalf("expected logbook to be found, ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(saved, found); diff != "" {
		t.Fatalf("found logbook mismatch (-saved +found):\n%s", diff)
	}
}

func TestFindByIDAbsentIsNotAnError(t *testing.T) {
	repo, _ := newLogbooks(t, newTestStore(t))

	_, ok, err := repo.FindByID(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("expected no error for an absent logbook, got %v", err)
	}
	if ok {
		t.Fatalf("expected absent logbook not to be found")
	}
}

func TestInfrastructureFailuresAreNotAbsence(t *testing.T) {
	var buf bytes.Buffer
	repo := NewLogbookRepository(failingStore{err: context.DeadlineExceeded}, "logbooks", Options{}, newTestLogger(&buf))
	ctx := context.Background()

	_, ok, err := repo.FindByID(ctx, "operations")
	if !errors.Is(err, ErrLookup) || ok {
		t.Fatalf("expected ErrLookup, got ok=%v err=%v", ok, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the timeout to stay reachable, got %v", err)
	}

	if _, err := repo.ExistsByID(ctx, "operations"); !errors.Is(err, ErrLookup) {
		t.Fatalf("expected ErrLookup from ExistsByID, got %v", err)
	}
	if _, err := repo.FindAll(ctx); !errors.Is(err, ErrLookup) {
		t.Fatalf("expected ErrLookup from FindAll, got %v", err)
	}
	if _, err := repo.Save(ctx, entity.NewLogbook("operations", "alice")); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence from Save, got %v", err)
	}
	if _, err := repo.SaveAll(ctx, []entity.Logbook{entity.NewLogbook("a", "alice")}); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence from SaveAll, got %v", err)
	}
	if err := repo.DeleteByID(ctx, "operations"); !errors.Is(err, ErrLookup) {
		t.Fatalf("expected ErrLookup from DeleteByID, got %v", err)
	}
	if !strings.Contains(buf.String(), "Failed to save logbook 'operations'") {
		t.Fatalf("expected failed write to be logged, got:\n%s", buf.String())
	}
}

func TestDeleteByIDIsSoft(t *testing.T) {
	repo, buf := newLogbooks(t, newTestStore(t))
	ctx := context.Background()

	if _, err := repo.SaveAll(ctx, []entity.Logbook{
		entity.NewLogbook("alpha", "alice"),
		entity.NewLogbook("beta", "bob"),
	}); err != nil {
		t.Fatalf("save all failed: %v", err)
	}

	if err := repo.DeleteByID(ctx, "alpha"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	found, ok, err := repo.FindByID(ctx, "alpha")
	if err != nil || !ok {
		t.Fatalf("expected deleted logbook to remain, ok=%v err=%v", ok, err)
	}
	if found.State != entity.Inactive {
		t.Fatalf("expected Inactive, got %q", found.State)
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("find all failed: %v", err)
	}
	if diff := cmp.Diff([]entity.Logbook{entity.NewLogbook("beta", "bob")}, all); diff != "" {
		t.Fatalf("find all mismatch (-want +got):\n%s", diff)
	}

	if !strings.Contains(buf.String(), "Deleted logbook 'alpha'") {
		t.Fatalf("expected soft delete to be logged, got:\n%s", buf.String())
	}
}

func TestDeleteByIDMissing(t *testing.T) {
	repo, _ := newLogbooks(t, newTestStore(t))

	err := repo.DeleteByID(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.ID != "ghost" || opErr.Op != "delete" {
		t.Fatalf("expected operation and identity in the error, got %#v", err)
	}
}

func TestDeleteDelegatesAndDeleteEachJoins(t *testing.T) {
	repo, _ := newLogbooks(t, newTestStore(t))
	ctx := context.Background()

	alpha := entity.NewLogbook("alpha", "alice")
	if _, err := repo.Save(ctx, alpha); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Delete(ctx, alpha); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	err := repo.DeleteEach(ctx, []entity.Logbook{alpha, entity.NewLogbook("ghost", "")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected the missing logbook to be reported, got %v", err)
	}
	if !strings.Contains(err.Error(), "'ghost'") {
		t.Fatalf("expected error to name the missing logbook, got %v", err)
	}
}

func TestFindAllIsOrderedAndBounded(t *testing.T) {
	var buf bytes.Buffer
	repo := NewTagRepository(newTestStore(t), "tags", Options{Refresh: true, PageSize: 3}, newTestLogger(&buf))
	ctx := context.Background()

	var tags []entity.Tag
	for _, name := range []string{"echo", "alpha", "delta", "charlie", "bravo"} {
		tags = append(tags, entity.NewTag(name, "ops"))
	}
	if _, err := repo.SaveAll(ctx, tags); err != nil {
		t.Fatalf("save all failed: %v", err)
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("find all failed: %v", err)
	}
	names := make([]string, 0, len(all))
	for _, tag := range all {
		names = append(names, tag.Name)
	}
	if diff := cmp.Diff([]string{"alpha", "bravo", "charlie"}, names); diff != "" {
		t.Fatalf("find all mismatch (-want +got):\n%s", diff)
	}
}

func TestExistsAndFindAllByID(t *testing.T) {
	var buf bytes.Buffer
	repo := NewPropertyRepository(newTestStore(t), "properties", Options{Refresh: true}, newTestLogger(&buf))
	ctx := context.Background()

	ticket := entity.NewProperty("ticket", "ops", entity.Attribute{Name: "id"}, entity.Attribute{Name: "url"})
	if _, err := repo.Save(ctx, ticket); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if ok, err := repo.ExistsByID(ctx, "ticket"); err != nil || !ok {
		t.Fatalf("expected ticket to exist, ok=%v err=%v", ok, err)
	}
	if ok, err := repo.ExistsByIDs(ctx, []string{"ticket", "missing"}); err != nil || ok {
		t.Fatalf("expected ExistsByIDs to require every id, ok=%v err=%v", ok, err)
	}
	if ok, err := repo.ExistsByIDs(ctx, []string{"ticket"}); err != nil || !ok {
		t.Fatalf("expected ExistsByIDs to hold, ok=%v err=%v", ok, err)
	}

	found, err := repo.FindAllByID(ctx, []string{"missing", "ticket"})
	if err != nil {
		t.Fatalf("find all by id failed: %v", err)
	}
	if diff := cmp.Diff([]entity.Property{ticket}, found); diff != "" {
		t.Fatalf("find all by id mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveAllFailsAsAWhole(t *testing.T) {
	repo, buf := newLogbooks(t, newTestStore(t))
	ctx := context.Background()

	saved, err := repo.SaveAll(ctx, []entity.Logbook{
		entity.NewLogbook("alpha", "alice"),
		entity.NewLogbook("", "nobody"),
		entity.NewLogbook("gamma", "carol"),
	})
	if saved != nil {
		t.Fatalf("expected no partial result, got %v", saved)
	}
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}

	var bulk *BulkError
	if !errors.As(err, &bulk) {
		t.Fatalf("expected a *BulkError, got %T", err)
	}
	if len(bulk.Failures) != 1 || bulk.Failures[0].ID != "#1" {
		t.Fatalf("expected the nameless item to be named by position, got %+v", bulk.Failures)
	}
	if !strings.Contains(buf.String(), "Failed to save logbook '#1'") {
		t.Fatalf("expected failed item to be logged, got:\n%s", buf.String())
	}
}

func TestSaveAllEchoesItems(t *testing.T) {
	repo, _ := newLogbooks(t, newTestStore(t))

	items := []entity.Logbook{entity.NewLogbook("alpha", "alice"), entity.NewLogbook("beta", "bob")}
	saved, err := repo.SaveAll(context.Background(), items)
	if err != nil {
		t.Fatalf("save all failed: %v", err)
	}
	if diff := cmp.Diff(items, saved); diff != "" {
		t.Fatalf("save all mismatch (-want +got):\n%s", diff)
	}
}

func TestCapabilityExclusions(t *testing.T) {
	repo, _ := newLogbooks(t, newTestStore(t))
	ctx := context.Background()

	if _, err := repo.Count(ctx); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected Count to be unsupported, got %v", err)
	}
	if err := repo.DeleteAll(ctx); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected DeleteAll to be forbidden, got %v", err)
	}
}

func TestSaveKeepsOneRecordPerName(t *testing.T) {
	s := newTestStore(t)
	repo, _ := newLogbooks(t, s)
	ctx := context.Background()

	if _, err := repo.Save(ctx, entity.NewLogbook("alpha", "alice")); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.DeleteByID(ctx, "alpha"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.Save(ctx, entity.NewLogbook("alpha", "bob")); err != nil {
		t.Fatalf("resave failed: %v", err)
	}

	resp, err := s.Search(ctx, store.SearchRequest{Collection: "logbooks"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("expected a single record for the name, got %d", resp.Total)
	}
}

func TestPropertySaveCollapsesAttributes(t *testing.T) {
	var buf bytes.Buffer
	repo := NewPropertyRepository(newTestStore(t), "properties", Options{Refresh: true}, newTestLogger(&buf))
	ctx := context.Background()

	saved, err := repo.Save(ctx, entity.Property{Name: "dup", Attributes: []entity.Attribute{{Name: "a"}, {Name: "b"}, {Name: "a", Value: "x"}}})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	all, err := repo.SaveAll(ctx, []entity.Property{{Name: "twice", Attributes: []entity.Attribute{{Name: "c"}, {Name: "c"}}}})
	if err != nil {
		t.Fatalf("save all failed: %v", err)
	}

	want := []entity.Attribute{{Name: "a", Value: "x"}, {Name: "b"}}
	if diff := cmp.Diff(want, saved.Attributes); diff != "" {
		t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]entity.Attribute{{Name: "c"}}, all[0].Attributes); diff != "" {
		t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
	}

	found, _, err := repo.FindByID(ctx, "dup")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if diff := cmp.Diff(saved, found); diff != "" {
		t.Fatalf("stored property mismatch (-saved +found):\n%s", diff)
	}
}
