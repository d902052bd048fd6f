package server

// MetadataServerConfig holds the document index configuration
type MetadataServerConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	// Timeout bounds every single call against the index
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
	// Refresh makes every write a synchronous flush point
	Refresh     bool                      `mapstructure:"refresh"     yaml:"refresh"`
	SQLite      MetadataSQLiteConfig      `mapstructure:"sqlite"      yaml:"sqlite"`
	Collections MetadataCollectionsConfig `mapstructure:"collections" yaml:"collections"`
	ResultSize  MetadataResultSizeConfig  `mapstructure:"result_size" yaml:"result_size"`
}

// MetadataSQLiteConfig holds SQLite-specific configuration
type MetadataSQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// MetadataCollectionsConfig names the collection of every entity kind
type MetadataCollectionsConfig struct {
	Logs       string `mapstructure:"logs"       yaml:"logs"`
	Logbooks   string `mapstructure:"logbooks"   yaml:"logbooks"`
	Tags       string `mapstructure:"tags"       yaml:"tags"`
	Properties string `mapstructure:"properties" yaml:"properties"`
}

// MetadataResultSizeConfig bounds the directory listings of findAll
type MetadataResultSizeConfig struct {
	Logs       int `mapstructure:"logs"       yaml:"logs"`
	Logbooks   int `mapstructure:"logbooks"   yaml:"logbooks"`
	Tags       int `mapstructure:"tags"       yaml:"tags"`
	Properties int `mapstructure:"properties" yaml:"properties"`
}
