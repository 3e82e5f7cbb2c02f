package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// EnvConfig mirrors the environment variables the server understands.
// Non-string settings are pointers so that unset variables leave the lower
// layers untouched. DatabaseDSN also answers to MONGODB_URI, the name the
// original deployment used; DATABASE_DSN wins when both are set.
type EnvConfig struct {
	Port            *int           `env:"PORT"`
	Host            string         `env:"HOST"`
	APIPrefix       string         `env:"API_PREFIX"`
	DatabaseDSN     string         `env:"DATABASE_DSN,MONGODB_URI"`
	DatabaseName    string         `env:"DATABASE_NAME"`
	AllowedOrigins  string         `env:"ALLOWED_ORIGINS"`
	BlobDriver      string         `env:"BLOB_DRIVER"`
	UploadDir       string         `env:"UPLOAD_DIR"`
	GridFSPrefix    string         `env:"GRIDFS_PREFIX"`
	S3RootUser      string         `env:"S3_ROOT_USER"`
	S3RootPassword  string         `env:"S3_ROOT_PASSWORD"`
	S3Bucket        string         `env:"S3_BUCKET"`
	S3Region        string         `env:"S3_REGION"`
	S3BaseEndpoint  string         `env:"S3_BASE_ENDPOINT"`
	S3PathStyle     *bool          `env:"S3_PATH_STYLE"`
	MaxUploadSize   *int64         `env:"MAX_UPLOAD_SIZE"`
	BcryptCost      *int           `env:"BCRYPT_COST"`
	ShutdownTimeout *time.Duration `env:"SHUTDOWN_TIMEOUT"`
	LogLevel        string         `env:"LOG_LEVEL"`
}

// parseEnv loads dotenvPath (if it exists) into the process environment
// without overriding variables that are already set, then overlays every
// set variable onto config. Malformed values panic.
func parseEnv(config *Config, dotenvPath string) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	var e EnvConfig
	if _, err := env.UnmarshalFromEnviron(&e); err != nil {
		panic(err)
	}

	e.apply(config)
}

func (e *EnvConfig) apply(config *Config) {
	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&config.Port, e.Port)
	str(&config.Host, e.Host)
	str(&config.APIPrefix, e.APIPrefix)
	str(&config.DatabaseDSN, e.DatabaseDSN)
	str(&config.DatabaseName, e.DatabaseName)
	if e.AllowedOrigins != "" {
		config.AllowedOrigins = splitList(e.AllowedOrigins)
	}
	str(&config.BlobDriver, strings.ToLower(e.BlobDriver))
	str(&config.UploadDir, e.UploadDir)
	str(&config.GridFSPrefix, e.GridFSPrefix)
	str(&config.S3RootUser, e.S3RootUser)
	str(&config.S3RootPassword, e.S3RootPassword)
	str(&config.S3Bucket, e.S3Bucket)
	str(&config.S3Region, e.S3Region)
	str(&config.S3BaseEndpoint, e.S3BaseEndpoint)
	set(&config.S3PathStyle, e.S3PathStyle)
	set(&config.MaxUploadSize, e.MaxUploadSize)
	set(&config.BcryptCost, e.BcryptCost)
	set(&config.ShutdownTimeout, e.ShutdownTimeout)
	str(&config.LogLevel, e.LogLevel)
}
