package server

import "github.com/spf13/viper"

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogServerRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},

		Metadata: MetadataServerConfig{
			Type:    "sqlite",
			Timeout: "30s",
			Refresh: true,
			SQLite: MetadataSQLiteConfig{
				Path: "./data/olog.db",
			},
			Collections: MetadataCollectionsConfig{
				Logs:       "olog_logs",
				Logbooks:   "olog_logbooks",
				Tags:       "olog_tags",
				Properties: "olog_properties",
			},
			ResultSize: MetadataResultSizeConfig{
				Logs:       10,
				Logbooks:   10,
				Tags:       10,
				Properties: 10,
			},
		},

		Blob: BlobServerConfig{
			Type:    "filesystem",
			Timeout: "60s",
			Filesystem: BlobFilesystemConfig{
				Path: "./data/attachments",
			},
			S3: BlobS3Config{
				Region: "us-east-1",
				Bucket: "olog",
				UseSSL: true,
			},
		},

		Search: SearchServerConfig{
			DefaultSize: 100,
			MaxSize:     1000,
			Sort:        "created",
			TimeZone:    "",
		},
	}
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("metadata.type", defaults.Metadata.Type)
	viper.SetDefault("metadata.timeout", defaults.Metadata.Timeout)
	viper.SetDefault("metadata.refresh", defaults.Metadata.Refresh)
	viper.SetDefault("metadata.sqlite.path", defaults.Metadata.SQLite.Path)
	viper.SetDefault("metadata.collections.logs", defaults.Metadata.Collections.Logs)
	viper.SetDefault("metadata.collections.logbooks", defaults.Metadata.Collections.Logbooks)
	viper.SetDefault("metadata.collections.tags", defaults.Metadata.Collections.Tags)
	viper.SetDefault("metadata.collections.properties", defaults.Metadata.Collections.Properties)
	viper.SetDefault("metadata.result_size.logs", defaults.Metadata.ResultSize.Logs)
	viper.SetDefault("metadata.result_size.logbooks", defaults.Metadata.ResultSize.Logbooks)
	viper.SetDefault("metadata.result_size.tags", defaults.Metadata.ResultSize.Tags)
	viper.SetDefault("metadata.result_size.properties", defaults.Metadata.ResultSize.Properties)

	viper.SetDefault("blob.type", defaults.Blob.Type)
	viper.SetDefault("blob.timeout", defaults.Blob.Timeout)
	viper.SetDefault("blob.filesystem.path", defaults.Blob.Filesystem.Path)
	viper.SetDefault("blob.s3.endpoint", defaults.Blob.S3.Endpoint)
	viper.SetDefault("blob.s3.region", defaults.Blob.S3.Region)
	viper.SetDefault("blob.s3.bucket", defaults.Blob.S3.Bucket)
	viper.SetDefault("blob.s3.prefix", defaults.Blob.S3.Prefix)
	viper.SetDefault("blob.s3.use_ssl", defaults.Blob.S3.UseSSL)
	viper.SetDefault("blob.s3.access_key", defaults.Blob.S3.AccessKey)
	viper.SetDefault("blob.s3.secret_key", defaults.Blob.S3.SecretKey)

	viper.SetDefault("search.default_size", defaults.Search.DefaultSize)
	viper.SetDefault("search.max_size", defaults.Search.MaxSize)
	viper.SetDefault("search.sort", defaults.Search.Sort)
	viper.SetDefault("search.time_zone", defaults.Search.TimeZone)
}
