package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/equiptracker/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-v string   log level
//	-m string   storage backend: memory, file, postgres, sqlite, badger, s3
//	-k string   state key
//	-f string   JSON data file (file backend)
//	-d string   PostgreSQL DSN (postgres backend)
//	-q string   SQLite database path (sqlite backend)
//	-z string   BadgerDB directory (badger backend)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-i int      reset interval, hours
//	-w string   static web directory
//
// -i only overrides the interval when given, so sub-hour values from the
// JSON file survive. Only the flags above are taken from args, so the -c/-config flag and any
// flags owned by other components do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.StorageBackend, "m", config.StorageBackend, "storage backend")
	fs.StringVar(&config.StateKey, "k", config.StateKey, "state key")
	fs.StringVar(&config.DataFile, "f", config.DataFile, "data file")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SQLitePath, "q", config.SQLitePath, "SQLite database path")
	fs.StringVar(&config.BadgerDir, "z", config.BadgerDir, "BadgerDB directory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	resetHours := fs.Int("i", int(config.ResetInterval.Hours()), "reset interval (in hours)")
	fs.StringVar(&config.StaticDir, "w", config.StaticDir, "static web directory")

	if err := fs.Parse(flagx.FilterArgs(args, flagx.AllowedFlags(fs))); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			config.ResetInterval = time.Duration(*resetHours) * time.Hour
		}
	})
	return nil
}
