// Package cli implements the docflow command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docflow/internal/logging"
	"github.com/mesh-intelligence/docflow/internal/paths"
	"github.com/mesh-intelligence/docflow/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by the subcommands of one root command.
type app struct {
	flags     rootFlags
	configDir string

	// configDataDir is data_dir as written in config.yaml, before resolution.
	configDataDir string
	settings      settings
	logger        *log.Logger
}

// NewRootCmd creates the top-level "docflow" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "docflow",
		Short: "Link documents and trace their flow",
		Long: "docflow records typed links between incoming and outgoing documents\n" +
			"and computes the flow of related documents around any one of them.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.docflow or the user config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.docflow-db or the user data dir)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newDocCmd())
	root.AddCommand(a.newLinkCmd())
	root.AddCommand(a.newFlowCmd())
	root.AddCommand(a.newServeCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, NewRootCmd(), os.Args[1:])
	stop()
	os.Exit(code)
}

// run executes root with args and maps the outcome to an exit code.
func run(ctx context.Context, root *cobra.Command, args []string) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	return exitCode(err)
}

// exitCode classifies err: argument, lookup, and conflict errors are the
// user's; everything else is a system error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrInvalidArgument),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrConflict),
		errors.Is(err, types.ErrResourceExhausted),
		errors.Is(err, errUsage):
		return exitUserError
	default:
		return exitSysError
	}
}

// errUsage marks command-line mistakes cobra does not catch itself.
var errUsage = errors.New("usage")

// setup resolves directories, loads config.yaml, and attaches a logger to
// the command context.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level := log.InfoLevel
	if a.flags.verbose {
		level = log.DebugLevel
	}
	a.logger = logging.New(cmd.ErrOrStderr(), level)
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.configDir = configDir

	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	s, err := settingsFrom(v)
	if err != nil {
		return err
	}

	a.configDataDir = s.DataDir
	s.DataDir, err = paths.ResolveDataDir(a.flags.dataDir, s.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	a.settings = s

	a.logger.Debug("configuration loaded", "config_dir", configDir, "data_dir", s.DataDir, "sync", s.SyncStrategy)
	return nil
}
