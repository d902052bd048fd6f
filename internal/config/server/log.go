package server

import (
	"fmt"
	"strings"
)

// LogServerConfig controls the service logger. An empty level means INFO.
type LogServerConfig struct {
	Level      string                  `mapstructure:"level"       yaml:"level"`
	TimeFormat string                  `mapstructure:"time_format" yaml:"time_format"`
	File       string                  `mapstructure:"file"        yaml:"file"`
	NoColor    bool                    `mapstructure:"no_color"    yaml:"no_color"`
	JSON       bool                    `mapstructure:"json"        yaml:"json"`
	NoTerminal bool                    `mapstructure:"no_terminal" yaml:"no_terminal"`
	Rotation   LogServerRotationConfig `mapstructure:"rotation"    yaml:"rotation"`
}

// LogServerRotationConfig is handed to lumberjack when File is set
type LogServerRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"     yaml:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"  yaml:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"      yaml:"max_age"`
	Compress   bool `mapstructure:"compress"     yaml:"compress"`
}

func (cfg LogServerConfig) Validate() error {
	switch strings.ToUpper(strings.TrimSpace(cfg.Level)) {
	case "", "TRACE", "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "FATAL":
	default:
		return fmt.Errorf("unsupported log level '%s'", cfg.Level)
	}

	r := cfg.Rotation
	if r.MaxSize < 0 || r.MaxBackups < 0 || r.MaxAge < 0 {
		return fmt.Errorf("log.rotation values must not be negative")
	}
	return nil
}
