package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/docflow/internal/flow"
	"github.com/mesh-intelligence/docflow/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeySyncStrategy  = "sync_strategy"
	cfgKeyBatchSize     = "batch_size"
	cfgKeyBatchInterval = "batch_interval"
	cfgKeyMaxFlowNodes  = "max_flow_nodes"
	cfgKeyColumnWidth   = "layout.column_width"
	cfgKeyRowHeight     = "layout.row_height"
	cfgKeyListenAddr    = "listen_addr"

	defaultListenAddr = ":8080"
)

// settings is the effective configuration after defaults, config.yaml, and
// flags have been applied.
type settings struct {
	Backend       string
	DataDir       string
	SyncStrategy  string
	BatchSize     int
	BatchInterval int
	MaxFlowNodes  int
	Layout        flow.LayoutOptions
	ListenAddr    string
}

// storeConfig converts the settings into a store configuration.
func (s settings) storeConfig() types.Config {
	return types.Config{
		Backend: s.Backend,
		DataDir: s.DataDir,
		SQLiteConfig: types.SQLiteConfig{
			SyncStrategy:  s.SyncStrategy,
			BatchSize:     s.BatchSize,
			BatchInterval: s.BatchInterval,
		},
	}
}

// loadConfig reads config.yaml from configDir. A missing directory or file
// is not an error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetDefault(cfgKeyBatchSize, types.DefaultBatchSize)
	v.SetDefault(cfgKeyBatchInterval, types.DefaultBatchInterval)
	v.SetDefault(cfgKeyMaxFlowNodes, flow.DefaultMaxNodes)
	v.SetDefault(cfgKeyColumnWidth, flow.DefaultColumnWidth)
	v.SetDefault(cfgKeyRowHeight, flow.DefaultRowHeight)
	v.SetDefault(cfgKeyListenAddr, defaultListenAddr)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// settingsFrom extracts and validates settings from v.
func settingsFrom(v *viper.Viper) (settings, error) {
	s := settings{
		Backend:       v.GetString(cfgKeyBackend),
		DataDir:       v.GetString(cfgKeyDataDir),
		SyncStrategy:  v.GetString(cfgKeySyncStrategy),
		BatchSize:     v.GetInt(cfgKeyBatchSize),
		BatchInterval: v.GetInt(cfgKeyBatchInterval),
		MaxFlowNodes:  v.GetInt(cfgKeyMaxFlowNodes),
		Layout: flow.LayoutOptions{
			ColumnWidth: v.GetFloat64(cfgKeyColumnWidth),
			RowHeight:   v.GetFloat64(cfgKeyRowHeight),
		},
		ListenAddr: v.GetString(cfgKeyListenAddr),
	}
	if s.MaxFlowNodes < 0 {
		return settings{}, fmt.Errorf("config: %s must not be negative", cfgKeyMaxFlowNodes)
	}
	if err := s.storeConfig().SQLiteConfig.Validate(); err != nil {
		return settings{}, fmt.Errorf("config: %w", err)
	}
	return s, nil
}

// configFile is the structure written to config.yaml by init.
type configFile struct {
	Backend      string        `yaml:"backend"`
	DataDir      string        `yaml:"data_dir,omitempty"`
	SyncStrategy string        `yaml:"sync_strategy"`
	MaxFlowNodes int           `yaml:"max_flow_nodes"`
	Layout       layoutSection `yaml:"layout"`
	ListenAddr   string        `yaml:"listen_addr"`
}

type layoutSection struct {
	ColumnWidth float64 `yaml:"column_width"`
	RowHeight   float64 `yaml:"row_height"`
}

// writeConfigIfMissing creates config.yaml from s if the file does not
// exist. An existing file is left untouched.
func writeConfigIfMissing(configDir string, s settings) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		Backend:      s.Backend,
		DataDir:      s.DataDir,
		SyncStrategy: s.SyncStrategy,
		MaxFlowNodes: s.MaxFlowNodes,
		Layout:       layoutSection{ColumnWidth: s.Layout.ColumnWidth, RowHeight: s.Layout.RowHeight},
		ListenAddr:   s.ListenAddr,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# docflow configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
