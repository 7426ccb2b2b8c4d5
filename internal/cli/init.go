package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docflow/internal/paths"
)

func (a *app) newInitCmd() *cobra.Command {
	var user bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize docflow storage",
		Long: "Create the configuration and data directories, write a default config.yaml,\n" +
			"and initialize the store. Without --user, directories not set by flag or\n" +
			"environment are created under the working directory.",
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runInit(cmd, user)
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "initialize in the per-user platform directories")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, user bool) error {
	configDir := a.configDir
	s := a.settings
	if !user {
		var err error
		if a.flags.configDir == "" && os.Getenv(paths.EnvConfigDir) == "" {
			if configDir, err = paths.LocalConfigDir(); err != nil {
				return fmt.Errorf("resolve config dir: %w", err)
			}
		}
		if a.flags.dataDir == "" && a.configDataDir == "" && os.Getenv(paths.EnvDataDir) == "" {
			if s.DataDir, err = paths.LocalDataDir(); err != nil {
				return fmt.Errorf("resolve data dir: %w", err)
			}
		}
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	written, err := writeConfigIfMissing(configDir, s)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if written {
		a.logger.Debug("wrote default config", "dir", configDir)
	}

	store := a.newStore()
	if err := store.Attach(s.storeConfig()); err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := store.Detach(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	if a.flags.jsonMode {
		return printJSON(cmd, map[string]string{"config_dir": configDir, "data_dir": s.DataDir})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "docflow initialized\nconfig: %s\ndata:   %s\n", configDir, s.DataDir)
	return nil
}
