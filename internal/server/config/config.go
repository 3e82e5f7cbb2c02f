// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/cryptox"
)

// Blob storage drivers.
const (
	BlobDriverFS     = "fs"
	BlobDriverS3     = "s3"
	BlobDriverGridFS = "gridfs"
	BlobDriverMemory = "memory"
)

// ErrMissingDatabaseDSN is returned by Validate when no catalog location is set.
var ErrMissingDatabaseDSN = errors.New("database DSN is required (DATABASE_DSN, MONGODB_URI or -d)")

// ErrNoAllowedOrigins is returned by Validate when the CORS allow-list is empty.
var ErrNoAllowedOrigins = errors.New("at least one allowed origin is required (ALLOWED_ORIGINS)")

// Config holds runtime settings for the filekeeper server.
//
// DatabaseDSN selects the catalog backend by scheme: postgres:// (pgx),
// mongodb:// (mgo) or memory://. BlobDriver selects where file bytes live.
type Config struct {
	Port      int
	Host      string
	APIPrefix string

	DatabaseDSN  string
	DatabaseName string

	AllowedOrigins []string

	BlobDriver   string
	UploadDir    string
	GridFSPrefix string

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3PathStyle    bool

	MaxUploadSize   int64
	BcryptCost      int
	ShutdownTimeout time.Duration
	LogLevel        string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Port = 5000
	c.Host = ""
	c.APIPrefix = "/api"
	c.DatabaseDSN = ""
	c.DatabaseName = "filekeeper"
	c.AllowedOrigins = []string{"http://localhost:5173", "https://portfolio-ypox.onrender.com"}
	c.BlobDriver = BlobDriverFS
	c.UploadDir = "./uploads"
	c.GridFSPrefix = "fs"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "vault"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3PathStyle = true
	c.MaxUploadSize = common.DefaultMaxUploadSize
	c.BcryptCost = cryptox.DefaultCost
	c.ShutdownTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// Addr is the listen address built from Host and Port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		return ErrMissingDatabaseDSN
	}
	switch c.BlobDriver {
	case BlobDriverFS, BlobDriverS3, BlobDriverGridFS, BlobDriverMemory:
	default:
		return fmt.Errorf("unknown blob driver %q", c.BlobDriver)
	}
	if c.BlobDriver == BlobDriverGridFS && !strings.HasPrefix(c.DatabaseDSN, "mongodb://") &&
		!strings.HasPrefix(c.DatabaseDSN, "mongodb+srv://") {
		return errors.New("gridfs blob driver requires a mongodb:// database DSN")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("invalid max upload size %d", c.MaxUploadSize)
	}
	if len(c.AllowedOrigins) == 0 {
		return ErrNoAllowedOrigins
	}
	for _, o := range c.AllowedOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("allowed origin %q must be * or start with http:// or https://", o)
		}
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (including ./.env) and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	args := os.Args[1:]
	parseJson(cfg, args)
	parseEnv(cfg, ".env")
	parseFlags(cfg, args)
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
