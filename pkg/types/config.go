package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend      string       `json:"backend" yaml:"backend"`
	DataDir      string       `json:"data_dir" yaml:"data_dir"`
	SQLiteConfig SQLiteConfig `json:"sqlite" yaml:"sqlite"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// JSONL sync strategies for the SQLite backend.
const (
	SyncImmediate = "immediate" // persist JSONL after every write
	SyncOnClose   = "on_close"  // queue writes until Detach
	SyncBatch     = "batch"     // flush after BatchSize writes or every BatchInterval seconds
)

// Defaults applied by the SQLiteConfig getters when a field is unset.
const (
	DefaultBatchSize     = 10
	DefaultBatchInterval = 5
)

// SQLiteConfig holds SQLite backend options.
type SQLiteConfig struct {
	SyncStrategy  string `json:"sync_strategy" yaml:"sync_strategy"`
	BatchSize     int    `json:"batch_size" yaml:"batch_size"`
	BatchInterval int    `json:"batch_interval" yaml:"batch_interval"` // seconds
}

// GetSyncStrategy returns the sync strategy, defaulting to SyncImmediate.
func (c SQLiteConfig) GetSyncStrategy() string {
	if c.SyncStrategy == "" {
		return SyncImmediate
	}
	return c.SyncStrategy
}

// GetBatchSize returns the batch size, defaulting to DefaultBatchSize.
func (c SQLiteConfig) GetBatchSize() int {
	if c.BatchSize == 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// GetBatchInterval returns the batch interval in seconds, defaulting to
// DefaultBatchInterval.
func (c SQLiteConfig) GetBatchInterval() int {
	if c.BatchInterval == 0 {
		return DefaultBatchInterval
	}
	return c.BatchInterval
}

// Validate checks the SQLite options.
func (c SQLiteConfig) Validate() error {
	switch c.GetSyncStrategy() {
	case SyncImmediate, SyncOnClose, SyncBatch:
	default:
		return ErrSyncStrategyUnknown
	}
	if c.BatchSize < 0 {
		return ErrBatchSizeInvalid
	}
	if c.BatchInterval < 0 {
		return ErrBatchIntervalInvalid
	}
	return nil
}

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrSyncStrategyUnknown  = errors.New("unknown sync strategy")
	ErrBatchSizeInvalid     = errors.New("batch size must be positive")
	ErrBatchIntervalInvalid = errors.New("batch interval must be positive")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return c.SQLiteConfig.Validate()
}
