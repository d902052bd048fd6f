package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/olog/pkg/db/migrations"
	"github.com/mwantia/olog/pkg/db/models"
	"github.com/mwantia/olog/pkg/db/query"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// positionGap separates the token positions of two values of the same text
// field so phrases never match across values.
const positionGap = 100

// SQLiteStore implements DocumentStore on top of SQLite
type SQLiteStore struct {
	db      *gorm.DB
	path    string
	timeout time.Duration
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path     string
	LogLevel logger.LogLevel
	// Timeout bounds every single call against the store.
	Timeout time.Duration
}

// NewSQLiteStore creates a new SQLite-backed document store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:      db,
		path:    cfg.Path,
		timeout: cfg.Timeout,
	}, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Exec("PRAGMA journal_mode=WAL").Error
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Write operations

func (s *SQLiteStore) Index(ctx context.Context, doc Document, opts WriteOptions) (WriteResult, error) {
	if doc.ID == "" {
		return WriteResult{Result: Failed}, ErrMissingID
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := Failed
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := upsert(tx, doc)
		result = r
		return err
	})
	if err != nil {
		return WriteResult{ID: doc.ID, Result: Failed}, fmt.Errorf("failed to index document %s/%s: %w", doc.Collection, doc.ID, err)
	}

	if opts.Refresh {
		if err := s.refresh(ctx); err != nil {
			return WriteResult{ID: doc.ID, Result: result}, err
		}
	}
	return WriteResult{ID: doc.ID, Result: result}, nil
}

// Bulk writes every document in one transaction but applies each item in its
// own savepoint, so a failing item never takes the others down with it.
func (s *SQLiteStore) Bulk(ctx context.Context, docs []Document, opts WriteOptions) (*BulkResponse, error) {
	resp := &BulkResponse{Items: make([]BulkItem, len(docs))}
	if len(docs) == 0 {
		return resp, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, doc := range docs {
			if doc.ID == "" {
				resp.Items[i] = BulkItem{Result: Failed, Err: ErrMissingID}
				continue
			}

			result := Failed
			err := tx.Transaction(func(item *gorm.DB) error {
				r, err := upsert(item, doc)
				result = r
				return err
			})
			if err != nil {
				resp.Items[i] = BulkItem{ID: doc.ID, Result: Failed, Err: err}
				continue
			}
			resp.Items[i] = BulkItem{ID: doc.ID, Result: result}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute bulk request of %d documents: %w", len(docs), err)
	}

	if opts.Refresh {
		if err := s.refresh(ctx); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// Refresh flushes the write-ahead log into the main database file.
func (s *SQLiteStore) Refresh(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.refresh(ctx)
}

func (s *SQLiteStore) refresh(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("PRAGMA wal_checkpoint(PASSIVE)").Error; err != nil {
		return fmt.Errorf("failed to refresh index: %w", err)
	}
	return nil
}

func upsert(tx *gorm.DB, doc Document) (Result, error) {
	if !json.Valid(doc.Source) {
		return Failed, fmt.Errorf("document source is not valid json")
	}

	var count int64
	if err := tx.Model(&models.Document{}).
		Where("collection = ? AND id = ?", doc.Collection, doc.ID).
		Count(&count).Error; err != nil {
		return Failed, err
	}

	result := Created
	if count == 0 {
		row := models.Document{
			Collection: doc.Collection,
			ID:         doc.ID,
			Source:     datatypes.JSON(doc.Source),
		}
		if err := tx.Create(&row).Error; err != nil {
			return Failed, err
		}
	} else {
		result = Updated
		if err := tx.Model(&models.Document{}).
			Where("collection = ? AND id = ?", doc.Collection, doc.ID).
			Updates(map[string]any{
				"source":     datatypes.JSON(doc.Source),
				"updated_at": time.Now().UTC(),
			}).Error; err != nil {
			return Failed, err
		}
	}

	if err := tx.Where("collection = ? AND doc_id = ?", doc.Collection, doc.ID).Delete(&models.Term{}).Error; err != nil {
		return Failed, err
	}
	if err := tx.Where("collection = ? AND doc_id = ?", doc.Collection, doc.ID).Delete(&models.Scope{}).Error; err != nil {
		return Failed, err
	}

	terms, scopes := analyze(doc)
	if len(terms) > 0 {
		if err := tx.CreateInBatches(&terms, 200).Error; err != nil {
			return Failed, err
		}
	}
	if len(scopes) > 0 {
		if err := tx.CreateInBatches(&scopes, 200).Error; err != nil {
			return Failed, err
		}
	}
	return result, nil
}

// analyze turns the field projection of a document into inverted index rows.
func analyze(doc Document) ([]models.Term, []models.Scope) {
	var terms []models.Term
	positions := make(map[string]int)
	scopes := make(map[string]string)

	for _, f := range doc.Fields {
		for key, path := range scopeChain(f.Scope) {
			scopes[key] = path
		}

		term := models.Term{
			Collection: doc.Collection,
			DocID:      doc.ID,
			Field:      f.Name,
			Scope:      f.Scope,
		}

		switch f.Kind {
		case Text:
			key := f.Name + "\x00" + f.Scope
			base := positions[key]
			tokens := query.Tokenize(f.Value)
			for i, token := range tokens {
				t := term
				t.Term = token
				t.Position = base + i
				terms = append(terms, t)
			}
			positions[key] = base + len(tokens) + positionGap
		case Date:
			term.Term = f.Time.UTC().Format(time.RFC3339Nano)
			term.Number = f.Time.UnixMilli()
			terms = append(terms, term)
		default:
			term.Term = f.Value
			terms = append(terms, term)
		}
	}

	keys := make([]string, 0, len(scopes))
	for key := range scopes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]models.Scope, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, models.Scope{
			Collection: doc.Collection,
			DocID:      doc.ID,
			Path:       scopes[key],
			Scope:      key,
		})
	}
	return terms, rows
}

// ScopeKey builds the key of the index-th nested object called name below
// parent, e.g. ScopeKey("properties#0", "attributes", 1).
func ScopeKey(parent, name string, index int) string {
	key := fmt.Sprintf("%s#%d", name, index)
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// scopeChain returns the scope and all its ancestors mapped to their path.
func scopeChain(scope string) map[string]string {
	if scope == "" {
		return nil
	}

	chain := make(map[string]string)
	segments := strings.Split(scope, ".")
	var key, path []string
	for _, segment := range segments {
		key = append(key, segment)
		name, _, _ := strings.Cut(segment, "#")
		path = append(path, name)
		chain[strings.Join(key, ".")] = strings.Join(path, ".")
	}
	return chain
}

// Read operations

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (*Document, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var rows []models.Document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return toDocument(rows[0]), true, nil
}

func (s *SQLiteStore) MultiGet(ctx context.Context, collection string, ids []string) ([]MultiGetItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var rows []models.Document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id IN ?", collection, ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get %d documents from %s: %w", len(ids), collection, err)
	}

	byID := make(map[string]models.Document, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	items := make([]MultiGetItem, 0, len(ids))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			items = append(items, MultiGetItem{ID: id})
			continue
		}
		items = append(items, MultiGetItem{ID: id, Document: toDocument(row), Found: true})
	}
	return items, nil
}

type hitRow struct {
	ID     string
	Source []byte
}

func (s *SQLiteStore) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tr := &translator{}
	where := tr.translate(req.Query, "")
	args := append([]any{req.Collection}, tr.args...)
	from := "FROM index_documents d WHERE d.collection = ? AND (" + where + ")"

	var total int64
	if err := s.db.WithContext(ctx).Raw("SELECT COUNT(*) "+from, args...).Scan(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count documents in %s: %w", req.Collection, err)
	}

	order, orderArgs := orderBy(req.Sort)
	limit := req.Size
	if limit <= 0 {
		limit = -1
	}
	selectArgs := make([]any, 0, len(args)+len(orderArgs)+2)
	selectArgs = append(selectArgs, args...)
	selectArgs = append(selectArgs, orderArgs...)
	selectArgs = append(selectArgs, limit, max(req.From, 0))

	var rows []hitRow
	if err := s.db.WithContext(ctx).
		Raw("SELECT d.id, d.source "+from+" ORDER BY "+order+" LIMIT ? OFFSET ?", selectArgs...).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to search documents in %s: %w", req.Collection, err)
	}

	resp := &SearchResponse{Total: total, Hits: make([]Hit, 0, len(rows))}
	for _, row := range rows {
		resp.Hits = append(resp.Hits, Hit{ID: row.ID, Source: row.Source})
	}
	return resp, nil
}

// orderBy renders the sort clause. The document id always closes the list so
// equal sort keys keep a stable order.
func orderBy(sorts []Sort) (string, []any) {
	var parts []string
	var args []any
	for _, srt := range sorts {
		dir := "ASC"
		if srt.Order == Desc {
			dir = "DESC"
		}
		if srt.Relevance {
			parts = append(parts, "d.created_at "+dir)
			continue
		}
		column := "o.term"
		if srt.Kind == Date {
			column = "o.number"
		}
		parts = append(parts, "(SELECT MIN("+column+") FROM index_terms o WHERE o.collection = d.collection AND o.doc_id = d.id AND o.field = ?) "+dir)
		args = append(args, srt.Field)
	}
	parts = append(parts, "d.id ASC")
	return strings.Join(parts, ", "), args
}

func (s *SQLiteStore) NextSequence(ctx context.Context, name string) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var seq models.Sequence
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Sequence{Name: name}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Sequence{}).
			Where("name = ?", name).
			Update("value", gorm.Expr("value + 1")).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", name).Take(&seq).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return seq.Value, nil
}

func toDocument(row models.Document) *Document {
	return &Document{
		Collection: row.Collection,
		ID:         row.ID,
		Source:     []byte(row.Source),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
