package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/filekeeper/internal/flagx"
	"github.com/dmitrijs2005/filekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Pointer fields distinguish "absent" from a zero value so that a partial
// file only overrides what it names.
type JsonConfig struct {
	Port            *int            `json:"port"`
	Host            *string         `json:"host"`
	APIPrefix       *string         `json:"api_prefix"`
	DatabaseDSN     *string         `json:"database_dsn"`
	DatabaseName    *string         `json:"database_name"`
	AllowedOrigins  []string        `json:"allowed_origins"`
	BlobDriver      *string         `json:"blob_driver"`
	UploadDir       *string         `json:"upload_dir"`
	GridFSPrefix    *string         `json:"gridfs_prefix"`
	S3RootUser      *string         `json:"s3_root_user"`
	S3RootPassword  *string         `json:"s3_root_password"`
	S3Bucket        *string         `json:"s3_bucket"`
	S3Region        *string         `json:"s3_region"`
	S3BaseEndpoint  *string         `json:"s3_base_endpoint"`
	S3PathStyle     *bool           `json:"s3_path_style"`
	MaxUploadSize   *int64          `json:"max_upload_size"`
	BcryptCost      *int            `json:"bcrypt_cost"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`
	LogLevel        *string         `json:"log_level"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// parseJson loads the file named by -c/-config in args into config.
// No flag means nothing to load. An unreadable or malformed file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	set(&config.Port, c.Port)
	set(&config.Host, c.Host)
	set(&config.APIPrefix, c.APIPrefix)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.DatabaseName, c.DatabaseName)
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	set(&config.BlobDriver, c.BlobDriver)
	set(&config.UploadDir, c.UploadDir)
	set(&config.GridFSPrefix, c.GridFSPrefix)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.S3PathStyle, c.S3PathStyle)
	set(&config.MaxUploadSize, c.MaxUploadSize)
	set(&config.BcryptCost, c.BcryptCost)
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	set(&config.LogLevel, c.LogLevel)
}
