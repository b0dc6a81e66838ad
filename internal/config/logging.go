package config

import (
	"git.home.luguber.info/inful/pagetree/internal/foundation/normalization"
)

// LogLevel enumerates the slog levels selectable in configuration.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = normalization.NewEnum("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel canonicalizes a level name; unknown names mean info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevels.Or(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormats = normalization.NewEnum("log format", map[string]LogFormat{
	"json":   LogFormatJSON,
	"text":   LogFormatText,
	"logfmt": LogFormatText,
}, LogFormatText)

// NormalizeLogFormat canonicalizes a format name; unknown names mean text.
func NormalizeLogFormat(raw string) LogFormat {
	return logFormats.Or(raw)
}

// StorageDriver enumerates the persistence backends.
type StorageDriver string

const (
	StorageDriverSQLite StorageDriver = "sqlite"
	StorageDriverMemory StorageDriver = "memory"
)

var storageDrivers = normalization.NewEnum("storage driver", map[string]StorageDriver{
	"sqlite":  StorageDriverSQLite,
	"sqlite3": StorageDriverSQLite,
	"memory":  StorageDriverMemory,
}, StorageDriverSQLite)

// NormalizeStorageDriver canonicalizes a driver name, reporting unknown input as an error.
func NormalizeStorageDriver(raw string) (StorageDriver, error) {
	return storageDrivers.Parse(raw)
}
