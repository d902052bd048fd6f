package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mwantia/olog/pkg/blob"
	"github.com/mwantia/olog/pkg/db/store"
	"github.com/mwantia/olog/pkg/entity"
	"github.com/mwantia/olog/pkg/log"
	"github.com/mwantia/olog/pkg/search"
)

// Upload is an attachment payload handed to SaveWithAttachments.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// SearchResult is a page of matching logs plus the total number of matches.
type SearchResult struct {
	Logs       []entity.Log `json:"logs"       yaml:"logs"`
	TotalCount int64        `json:"totalCount" yaml:"total_count"`
}

type LogRepositoryConfig struct {
	Collection string
	Options    Options

	Logbooks   *LogbookRepository
	Tags       *TagRepository
	Properties *PropertyRepository
	// Blobs may be nil when attachments are not served.
	Blobs  blob.Store
	Parser *search.Parser
}

// LogRepository stores logs with validated, expanded references. Reads
// return the stored document as is, every log carries its own copies of the
// referenced logbooks, tags and properties.
type LogRepository struct {
	*Repository[entity.Log]

	logbooks   *LogbookRepository
	tags       *TagRepository
	properties *PropertyRepository
	blobs      blob.Store
	parser     *search.Parser
	now        func() time.Time
}

func NewLogRepository(s store.DocumentStore, cfg LogRepositoryConfig, logger log.LoggerService) *LogRepository {
	parser := cfg.Parser
	if parser == nil {
		parser = search.NewParser(search.Options{})
	}
	return &LogRepository{
		Repository: New(s, LogMapping(cfg.Collection), cfg.Options, logger),
		logbooks:   cfg.Logbooks,
		tags:       cfg.Tags,
		properties: cfg.Properties,
		blobs:      cfg.Blobs,
		parser:     parser,
		now:        time.Now,
	}
}

// Save validates and expands the references of the log, assigns a new id
// and stamps the timestamps before writing it. A log is never written over.
func (r *LogRepository) Save(ctx context.Context, l entity.Log) (entity.Log, error) {
	expanded, err := r.expand(ctx, l)
	if err != nil {
		return entity.Log{}, err
	}
	stamped, err := r.stamp(ctx, expanded)
	if err != nil {
		return entity.Log{}, err
	}
	return r.Repository.Save(ctx, stamped)
}

// SaveAll validates every log before anything is written. A single invalid
// log fails the whole call.
func (r *LogRepository) SaveAll(ctx context.Context, logs []entity.Log) ([]entity.Log, error) {
	expanded := make([]entity.Log, len(logs))
	var failures []ItemFailure
	for i, l := range logs {
		e, err := r.expand(ctx, l)
		var refErr *ReferenceError
		switch {
		case errors.As(err, &refErr):
			failures = append(failures, ItemFailure{ID: itemID(l.Key(), i), Reason: refErr.Error()})
			continue
		case err != nil:
			return nil, err
		}
		expanded[i] = e
	}
	if len(failures) > 0 {
		for _, f := range failures {
			r.log.Error("Rejected log '%s': %s", f.ID, f.Reason)
		}
		return nil, &BulkError{Kind: "log", Failures: failures, Err: ErrReference}
	}

	for i := range expanded {
		stamped, err := r.stamp(ctx, expanded[i])
		if err != nil {
			return nil, err
		}
		expanded[i] = stamped
	}
	return r.Repository.SaveAll(ctx, expanded)
}

// expand replaces logbook and tag references with their canonical records
// and completes property copies. All invalid references are collected into
// one *ReferenceError.
func (r *LogRepository) expand(ctx context.Context, l entity.Log) (entity.Log, error) {
	var refs []Reference
	if len(l.Logbooks) == 0 {
		refs = append(refs, Reference{Kind: "logbook", Reason: ReasonRequired})
	}

	logbooks, err := r.logbooks.findMany(ctx, l.LogbookNames())
	if err != nil {
		return l, err
	}
	tags, err := r.tags.findMany(ctx, l.TagNames())
	if err != nil {
		return l, err
	}
	properties, err := r.properties.findMany(ctx, l.PropertyNames())
	if err != nil {
		return l, err
	}

	out := l
	out.Logbooks = make([]entity.Logbook, 0, len(l.Logbooks))
	for _, ref := range uniqueByName(l.Logbooks, func(lb entity.Logbook) string { return lb.Name }) {
		lb, ok := logbooks[ref.Name]
		switch {
		case !ok:
			refs = append(refs, Reference{Kind: "logbook", Name: ref.Name, Reason: ReasonMissing})
		case !lb.State.IsActive():
			refs = append(refs, Reference{Kind: "logbook", Name: ref.Name, Reason: ReasonInactive})
		default:
			out.Logbooks = append(out.Logbooks, lb)
		}
	}

	out.Tags = make([]entity.Tag, 0, len(l.Tags))
	for _, ref := range uniqueByName(l.Tags, func(tag entity.Tag) string { return tag.Name }) {
		tag, ok := tags[ref.Name]
		switch {
		case !ok:
			refs = append(refs, Reference{Kind: "tag", Name: ref.Name, Reason: ReasonMissing})
		case !tag.State.IsActive():
			refs = append(refs, Reference{Kind: "tag", Name: ref.Name, Reason: ReasonInactive})
		default:
			out.Tags = append(out.Tags, tag)
		}
	}

	for _, name := range l.PropertyNames() {
		prop, ok := properties[name]
		switch {
		case !ok:
			refs = append(refs, Reference{Kind: "property", Name: name, Reason: ReasonMissing})
		case !prop.State.IsActive():
			refs = append(refs, Reference{Kind: "property", Name: name, Reason: ReasonInactive})
		}
	}
	out.Properties = make([]entity.Property, 0, len(l.Properties))
	for _, ref := range mergeProperties(l.Properties) {
		prop, ok := properties[ref.Name]
		if !ok {
			continue
		}
		copied := ref
		if copied.Owner == "" {
			copied.Owner = prop.Owner
		}
		copied.State = entity.Active
		out.Properties = append(out.Properties, copied)
	}

	if len(refs) > 0 {
		return l, &ReferenceError{Missing: refs}
	}
	return out, nil
}

// stamp assigns the server-side fields of a log. Every call draws a fresh
// id from the sequence and takes the creation time from the clock, values
// preset by the caller are discarded.
func (r *LogRepository) stamp(ctx context.Context, l entity.Log) (entity.Log, error) {
	id, err := r.store.NextSequence(ctx, r.mapping.Collection)
	if err != nil {
		return l, r.fail("save", "", ErrPersistence, err)
	}
	l.ID = id

	now := r.now().UTC().Truncate(time.Millisecond)
	l.CreatedDate = now
	l.ModifiedDate = now
	l.State = l.State.OrDefault()

	events := make([]entity.Event, 0, len(l.Events))
	for _, event := range l.Events {
		events = append(events, entity.NewEvent(event.Name, event.Instant))
	}
	l.Events = events
	return l, nil
}

// uniqueByName keeps the first reference of every name.
func uniqueByName[T any](refs []T, name func(T) string) []T {
	seen := make(map[string]bool, len(refs))
	out := make([]T, 0, len(refs))
	for _, ref := range refs {
		if seen[name(ref)] {
			continue
		}
		seen[name(ref)] = true
		out = append(out, ref)
	}
	return out
}

// mergeProperties folds properties sharing a name into one, attributes are
// collapsed by name with the last value winning.
func mergeProperties(props []entity.Property) []entity.Property {
	index := make(map[string]int, len(props))
	out := make([]entity.Property, 0, len(props))
	for _, prop := range props {
		i, ok := index[prop.Name]
		if !ok {
			i = len(out)
			index[prop.Name] = i
			out = append(out, entity.Property{Name: prop.Name, Owner: prop.Owner, State: prop.State})
		}
		for _, attr := range prop.Attributes {
			out[i] = out[i].WithAttribute(attr)
		}
	}
	return out
}

// SaveWithAttachments stores the payloads in the blob store first and then
// writes the log referencing them. Blobs of a log that could not be written
// are left behind and logged for manual reconciliation.
func (r *LogRepository) SaveWithAttachments(ctx context.Context, l entity.Log, uploads []Upload) (entity.Log, error) {
	if len(uploads) > 0 && r.blobs == nil {
		return entity.Log{}, r.fail("attach", l.Key(), ErrUnsupported, fmt.Errorf("no blob store configured"))
	}

	expanded, err := r.expand(ctx, l)
	if err != nil {
		return entity.Log{}, err
	}
	stamped, err := r.stamp(ctx, expanded)
	if err != nil {
		return entity.Log{}, err
	}

	stored := make([]blob.Object, 0, len(uploads))
	for _, upload := range uploads {
		obj, err := r.blobs.Put(ctx, upload.Content, upload.Filename, upload.ContentType)
		if err != nil {
			r.reportOrphans(stamped, stored, err)
			return entity.Log{}, r.fail("attach", stamped.Key(), ErrPersistence, err)
		}
		stored = append(stored, obj)
		stamped.Attachments = append(stamped.Attachments, entity.Attachment{
			ID:          obj.ID,
			Filename:    obj.Filename,
			ContentType: obj.ContentType,
			FileSize:    obj.Size,
		})
	}

	saved, err := r.Repository.Save(ctx, stamped)
	if err != nil {
		r.reportOrphans(stamped, stored, err)
		return entity.Log{}, err
	}
	return saved, nil
}

func (r *LogRepository) reportOrphans(l entity.Log, objects []blob.Object, cause error) {
	for _, obj := range objects {
		r.log.Error("Orphaned attachment blob '%s' (%s, %d bytes) of log '%s': %v", obj.ID, obj.Filename, obj.Size, l.Key(), cause)
	}
}

// OpenAttachment streams the payload of an attachment of the log. The caller
// closes the reader.
func (r *LogRepository) OpenAttachment(ctx context.Context, logID, attachmentID string) (entity.Attachment, io.ReadCloser, error) {
	if r.blobs == nil {
		return entity.Attachment{}, nil, r.fail("open attachment", logID, ErrUnsupported, fmt.Errorf("no blob store configured"))
	}

	l, found, err := r.FindByID(ctx, logID)
	if err != nil {
		return entity.Attachment{}, nil, err
	}
	if !found {
		return entity.Attachment{}, nil, r.fail("open attachment", logID, ErrNotFound, nil)
	}

	attachment, ok := l.Attachment(attachmentID)
	if !ok {
		return entity.Attachment{}, nil, &OperationError{Op: "open", Kind: "attachment", ID: attachmentID, Err: ErrNotFound}
	}

	rc, err := r.blobs.Get(ctx, attachment.ID)
	if errors.Is(err, blob.ErrNotFound) {
		return entity.Attachment{}, nil, &OperationError{Op: "open", Kind: "attachment", ID: attachmentID, Err: ErrNotFound, Cause: err}
	}
	if err != nil {
		return entity.Attachment{}, nil, &OperationError{Op: "open", Kind: "attachment", ID: attachmentID, Err: ErrLookup, Cause: err}
	}
	return attachment, rc, nil
}

// Search parses and compiles the raw parameters and runs the query. Malformed
// values fail with search.ErrInvalidParameter, unknown names are ignored.
func (r *LogRepository) Search(ctx context.Context, raw map[string][]string) (*SearchResult, error) {
	params, err := r.parser.Parse(raw)
	if err != nil {
		return nil, err
	}
	for _, name := range params.Ignored {
		r.log.Debug("Ignoring unknown search parameter '%s'", name)
	}
	return r.SearchParams(ctx, params)
}

func (r *LogRepository) SearchParams(ctx context.Context, params *search.Params) (*SearchResult, error) {
	req := search.Compile(params)
	req.Collection = r.mapping.Collection

	resp, err := r.store.Search(ctx, req)
	if err != nil {
		return nil, r.fail("search", "", ErrLookup, err)
	}
	logs, err := r.decodeHits(resp.Hits)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Logs: logs, TotalCount: resp.Total}, nil
}
