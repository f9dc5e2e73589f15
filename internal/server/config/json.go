package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/equiptracker/internal/timex"
)

// JsonConfig is the on-disk shape of a configuration file. Every field is
// optional; only the fields present in the file override the current value.
type JsonConfig struct {
	EndpointAddrHTTP *string         `json:"endpoint_addr_http"`
	LogLevel         *string         `json:"log_level"`
	StorageBackend   *string         `json:"storage_backend"`
	StateKey         *string         `json:"state_key"`
	DataFile         *string         `json:"data_file"`
	DatabaseDSN      *string         `json:"database_dsn"`
	SQLitePath       *string         `json:"sqlite_path"`
	BadgerDir        *string         `json:"badger_dir"`
	S3RootUser       *string         `json:"s3_root_user"`
	S3RootPassword   *string         `json:"s3_root_password"`
	S3Bucket         *string         `json:"s3_bucket"`
	S3Region         *string         `json:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint"`
	ResetInterval    *timex.Duration `json:"reset_interval"`
	StaticDir        *string         `json:"static_dir"`
}

// ApplyJSONFile reads path and overlays its fields onto config.
func ApplyJSONFile(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.StateKey, c.StateKey)
	setString(&config.DataFile, c.DataFile)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SQLitePath, c.SQLitePath)
	setString(&config.BadgerDir, c.BadgerDir)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.StaticDir, c.StaticDir)
	if c.ResetInterval != nil {
		config.ResetInterval = c.ResetInterval.Duration
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
