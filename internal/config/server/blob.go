package server

// BlobServerConfig holds the attachment store configuration
type BlobServerConfig struct {
	Type       string               `mapstructure:"type"       yaml:"type"`
	Timeout    string               `mapstructure:"timeout"    yaml:"timeout"`
	Filesystem BlobFilesystemConfig `mapstructure:"filesystem" yaml:"filesystem"`
	S3         BlobS3Config         `mapstructure:"s3"         yaml:"s3"`
}

type BlobFilesystemConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// BlobS3Config describes an S3-compatible bucket (AWS, MinIO, ...)
type BlobS3Config struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Region   string `mapstructure:"region"   yaml:"region"`
	Bucket   string `mapstructure:"bucket"   yaml:"bucket"`
	Prefix   string `mapstructure:"prefix"   yaml:"prefix"`
	UseSSL   bool   `mapstructure:"use_ssl"  yaml:"use_ssl"`

	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
}
