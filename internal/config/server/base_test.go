package server

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if diff := cmp.Diff(GetServerDefault(), *cfg); diff != "" {
		t.Fatalf("loaded defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadServerConfigOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("blob.type", "s3")
	viper.Set("blob.s3.bucket", "attachments")
	viper.Set("metadata.result_size.logbooks", 25)

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Blob.Type != "s3" || cfg.Blob.S3.Bucket != "attachments" {
		t.Fatalf("expected s3 override, got %+v", cfg.Blob)
	}
	if cfg.Metadata.ResultSize.Logbooks != 25 || cfg.Metadata.ResultSize.Tags != 10 {
		t.Fatalf("unexpected result sizes %+v", cfg.Metadata.ResultSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*BaseServerConfig)
		want   string
	}{
		{name: "metadata type", modify: func(c *BaseServerConfig) { c.Metadata.Type = "postgres" }, want: "metadata type"},
		{name: "sqlite path", modify: func(c *BaseServerConfig) { c.Metadata.SQLite.Path = "" }, want: "metadata.sqlite.path"},
		{name: "blob type", modify: func(c *BaseServerConfig) { c.Blob.Type = "ftp" }, want: "blob type"},
		{name: "s3 bucket", modify: func(c *BaseServerConfig) { c.Blob.Type = "s3"; c.Blob.S3.Bucket = "" }, want: "blob.s3.bucket"},
		{name: "search sort", modify: func(c *BaseServerConfig) { c.Search.Sort = "random" }, want: "search sort"},
		{name: "log level", modify: func(c *BaseServerConfig) { c.Log.Level = "verbose" }, want: "log level"},
		{name: "log rotation", modify: func(c *BaseServerConfig) { c.Log.Rotation.MaxAge = -1 }, want: "log.rotation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetServerDefault()
			tt.modify(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
