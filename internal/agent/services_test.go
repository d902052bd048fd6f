package agent

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	config "github.com/mwantia/olog/internal/config/server"
	"github.com/mwantia/olog/pkg/entity"
	"github.com/mwantia/olog/pkg/log"
	"github.com/mwantia/olog/pkg/search"
)

func testConfig(t *testing.T) *config.BaseServerConfig {
	t.Helper()

	cfg := config.GetServerDefault()
	dir := t.TempDir()
	cfg.Metadata.SQLite.Path = filepath.Join(dir, "olog.db")
	cfg.Blob.Filesystem.Path = filepath.Join(dir, "attachments")
	cfg.Search.TimeZone = "UTC"
	return &cfg
}

func TestOpenServicesWiresRepositories(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLoggerServiceWithWriter("test", config.LogServerConfig{Level: "debug"}, &buf)
	ctx := context.Background()

	svc, err := OpenServices(ctx, testConfig(t), logger)
	if err != nil {
		t.Fatalf("failed to open services: %v", err)
	}
	defer svc.Close()

	if _, err := svc.Logbooks.Save(ctx, entity.NewLogbook("operations", "ops")); err != nil {
		t.Fatalf("failed to save logbook: %v", err)
	}
	saved, err := svc.Logs.Save(ctx, entity.CreateLog("first entry").WithLogbook(entity.Logbook{Name: "operations"}).Build())
	if err != nil {
		t.Fatalf("failed to save log: %v", err)
	}

	res, err := svc.Logs.Search(ctx, map[string][]string{"logbooks": {"operations"}})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.TotalCount != 1 || res.Logs[0].ID != saved.ID {
		t.Fatalf("expected the saved log to be found, got %+v", res)
	}
}

func TestOpenServicesRejectsBadSettings(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLoggerServiceWithWriter("test", config.LogServerConfig{}, &buf)

	tests := []struct {
		name   string
		modify func(*config.BaseServerConfig)
	}{
		{"timeout", func(c *config.BaseServerConfig) { c.Metadata.Timeout = "soon" }},
		{"blob type", func(c *config.BaseServerConfig) { c.Blob.Type = "tape" }},
		{"time zone", func(c *config.BaseServerConfig) { c.Search.TimeZone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(cfg)
			if svc, err := OpenServices(context.Background(), cfg, logger); err == nil {
				svc.Close()
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestNewSearchParser(t *testing.T) {
	parser, err := newSearchParser(config.SearchServerConfig{Sort: "relevance", TimeZone: "Europe/Berlin"})
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	params, err := parser.Parse(map[string][]string{"start": {"2024-01-15 12:00:00.000"}})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if params.Sort != search.SortRelevance {
		t.Fatalf("expected relevance as default sort, got %v", params.Sort)
	}

	start := params.Filters[0].(search.TimeParam).Start
	if want := time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Fatalf("expected start in the configured zone, got %v", start)
	}
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		value   string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"30s", 30 * time.Second, false},
		{"-1s", 0, true},
		{"eventually", 0, true},
	}

	for _, tt := range tests {
		got, err := parseTimeout("metadata.timeout", tt.value)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseTimeout(%q) = %v, %v", tt.value, got, err)
		}
	}
}
