package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	config "github.com/mwantia/olog/internal/config/server"
	"github.com/mwantia/olog/pkg/blob"
	"github.com/mwantia/olog/pkg/db/store"
	"github.com/mwantia/olog/pkg/log"
	"github.com/mwantia/olog/pkg/repository"
	"github.com/mwantia/olog/pkg/search"
)

// Services bundles the opened document index, the attachment store and the
// repositories built on top of them.
type Services struct {
	Store      *store.SQLiteStore
	Blobs      blob.Store
	Logbooks   *repository.LogbookRepository
	Tags       *repository.TagRepository
	Properties *repository.PropertyRepository
	Logs       *repository.LogRepository
}

// OpenServices connects and migrates the index, opens the blob store and
// builds the repositories. Close releases everything again.
func OpenServices(ctx context.Context, cfg *config.BaseServerConfig, logger log.LoggerService) (*Services, error) {
	timeout, err := parseTimeout("metadata.timeout", cfg.Metadata.Timeout)
	if err != nil {
		return nil, err
	}

	logger.Debug("Opening document index '%s'...", cfg.Metadata.SQLite.Path)
	s, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:    cfg.Metadata.SQLite.Path,
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Connect(ctx); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to migrate document index: %w", err)
	}

	blobs, err := openBlobStore(ctx, cfg.Blob, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	parser, err := newSearchParser(cfg.Search)
	if err != nil {
		s.Close()
		return nil, err
	}

	repos := logger.Named("repository")
	meta := cfg.Metadata
	options := func(size int) repository.Options {
		return repository.Options{Refresh: meta.Refresh, PageSize: size}
	}

	svc := &Services{
		Store:      s,
		Blobs:      blobs,
		Logbooks:   repository.NewLogbookRepository(s, meta.Collections.Logbooks, options(meta.ResultSize.Logbooks), repos),
		Tags:       repository.NewTagRepository(s, meta.Collections.Tags, options(meta.ResultSize.Tags), repos),
		Properties: repository.NewPropertyRepository(s, meta.Collections.Properties, options(meta.ResultSize.Properties), repos),
	}
	svc.Logs = repository.NewLogRepository(s, repository.LogRepositoryConfig{
		Collection: meta.Collections.Logs,
		Options:    options(meta.ResultSize.Logs),
		Logbooks:   svc.Logbooks,
		Tags:       svc.Tags,
		Properties: svc.Properties,
		Blobs:      blobs,
		Parser:     parser,
	}, repos)

	return svc, nil
}

func (svc *Services) Close() error {
	return svc.Store.Close()
}

func openBlobStore(ctx context.Context, cfg config.BlobServerConfig, logger log.LoggerService) (blob.Store, error) {
	switch cfg.Type {
	case "filesystem":
		logger.Debug("Opening filesystem blob store '%s'...", cfg.Filesystem.Path)
		return blob.NewFilesystemStore(cfg.Filesystem.Path)
	case "s3":
		timeout, err := parseTimeout("blob.timeout", cfg.Timeout)
		if err != nil {
			return nil, err
		}
		logger.Debug("Opening s3 blob store '%s' at '%s'...", cfg.S3.Bucket, cfg.S3.Endpoint)
		return blob.NewS3Store(ctx, blob.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
			Timeout:   timeout,
		})
	}
	return nil, fmt.Errorf("unsupported blob type '%s'", cfg.Type)
}

func newSearchParser(cfg config.SearchServerConfig) (*search.Parser, error) {
	loc := time.Local
	if cfg.TimeZone != "" {
		var err error
		if loc, err = time.LoadLocation(cfg.TimeZone); err != nil {
			return nil, fmt.Errorf("invalid search.time_zone '%s': %w", cfg.TimeZone, err)
		}
	}

	order := search.SortDescending
	if strings.EqualFold(cfg.Sort, "relevance") {
		order = search.SortRelevance
	}

	return search.NewParser(search.Options{
		DefaultSize: cfg.DefaultSize,
		MaxSize:     cfg.MaxSize,
		DefaultSort: order,
		Time:        search.TimeParser{Location: loc},
	}), nil
}

// parseTimeout reads a duration setting, empty meaning unbounded.
func parseTimeout(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", key, value, err)
	}
	if d < 0 {
		return 0, errors.New(key + " must not be negative")
	}
	return d, nil
}
