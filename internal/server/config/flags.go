package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/filekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-p int      HTTP port
//	-d string   database DSN (postgres://, mongodb:// or memory://)
//	-b string   blob driver (fs, s3, gridfs, memory)
//	-u string   upload directory for the fs driver
//	-l string   log level
//
// args is filtered with flagx.FilterArgs first so that -c/-config and any
// unrelated flags do not trip the parser.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-p", "-d", "-b", "-u", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.IntVar(&config.Port, "p", config.Port, "port to run server on")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BlobDriver, "b", config.BlobDriver, "blob storage driver")
	fs.StringVar(&config.UploadDir, "u", config.UploadDir, "upload directory")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
