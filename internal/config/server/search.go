package server

// SearchServerConfig holds the log search defaults
type SearchServerConfig struct {
	DefaultSize int `mapstructure:"default_size" yaml:"default_size"`
	MaxSize     int `mapstructure:"max_size"     yaml:"max_size"`
	// Sort is either "created" (newest first) or "relevance"
	Sort string `mapstructure:"sort" yaml:"sort"`
	// TimeZone is applied to start/end values, empty for the local zone
	TimeZone string `mapstructure:"time_zone" yaml:"time_zone"`
}
