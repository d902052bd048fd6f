package server

import (
	"fmt"

	"github.com/spf13/viper"
)

type BaseServerConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log      LogServerConfig      `mapstructure:"log"      yaml:"log"`
	Metadata MetadataServerConfig `mapstructure:"metadata" yaml:"metadata"`
	Blob     BlobServerConfig     `mapstructure:"blob"     yaml:"blob"`
	Search   SearchServerConfig   `mapstructure:"search"   yaml:"search"`
}

func LoadServerConfig() (*BaseServerConfig, error) {
	cfg := &BaseServerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate rejects settings the services could not start with
func (cfg *BaseServerConfig) Validate() error {
	if err := cfg.Log.Validate(); err != nil {
		return err
	}

	switch cfg.Metadata.Type {
	case "sqlite":
		if cfg.Metadata.SQLite.Path == "" {
			return fmt.Errorf("metadata.sqlite.path is required")
		}
	default:
		return fmt.Errorf("unsupported metadata type '%s'", cfg.Metadata.Type)
	}

	switch cfg.Blob.Type {
	case "filesystem":
		if cfg.Blob.Filesystem.Path == "" {
			return fmt.Errorf("blob.filesystem.path is required")
		}
	case "s3":
		if cfg.Blob.S3.Bucket == "" {
			return fmt.Errorf("blob.s3.bucket is required")
		}
	default:
		return fmt.Errorf("unsupported blob type '%s'", cfg.Blob.Type)
	}

	switch cfg.Search.Sort {
	case "created", "relevance":
	default:
		return fmt.Errorf("unsupported search sort '%s'", cfg.Search.Sort)
	}

	return nil
}
