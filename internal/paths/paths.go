// Package paths resolves configuration and data directory locations.
//
// Both directories follow the same precedence: an explicit flag, then the
// environment, then a project-local directory under the working directory
// when one exists, then the per-user platform directory. The data directory
// additionally honors data_dir from config.yaml, ranked below the flag.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user platform directories.
const appName = "docflow"

// Project-local directory names, relative to the working directory.
const (
	DefaultConfigDirName = ".docflow"
	DefaultDataDirName   = ".docflow-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "DOCFLOW_CONFIG_DIR"
	EnvDataDir   = "DOCFLOW_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/docflow (fallback ~/.config/docflow)
// macOS:   ~/Library/Application Support/docflow
// Windows: %APPDATA%/docflow
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/docflow (fallback ~/.local/share/docflow)
// macOS:   ~/Library/Application Support/docflow/data
// Windows: %APPDATA%/docflow/data
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	// The config directory is shared on macOS and Windows, so keep the
	// JSONL files in a subdirectory next to config.yaml.
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "data"), nil
}

func xdgDir(env, homeFallback string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeFallback, appName), nil
}

// LocalConfigDir returns $(CWD)/.docflow.
func LocalConfigDir() (string, error) {
	return local(DefaultConfigDirName)
}

// LocalDataDir returns $(CWD)/.docflow-db.
func LocalDataDir() (string, error) {
	return local(DefaultDataDirName)
}

func local(name string) (string, error) {
	cwd, err := platformDir.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}

// ResolveConfigDir returns the configuration directory:
// flag > DOCFLOW_CONFIG_DIR > $(CWD)/.docflow if present > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return existingLocalOr(LocalConfigDir, DefaultConfigDir)
}

// ResolveDataDir returns the data directory:
// flag > config.yaml data_dir > DOCFLOW_DATA_DIR > $(CWD)/.docflow-db if
// present > DefaultDataDir().
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return existingLocalOr(LocalDataDir, DefaultDataDir)
}

func existingLocalOr(localDir, platform func() (string, error)) (string, error) {
	dir, err := localDir()
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir, nil
	}
	return platform()
}
