package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	pkgsqlite "github.com/mesh-intelligence/docflow/pkg/sqlite"
	"github.com/mesh-intelligence/docflow/pkg/types"
)

// cliDateLayout is the date format accepted on the command line.
const cliDateLayout = "2006-01-02"

func (a *app) newStore() types.Store {
	return pkgsqlite.NewBackend(a.logger)
}

// openStore creates and attaches a store. The caller must Detach it.
func (a *app) openStore() (types.Store, error) {
	store := a.newStore()
	if err := store.Attach(a.settings.storeConfig()); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	return store, nil
}

// withStore opens the store, runs fn, and detaches, reporting the first error.
func (a *app) withStore(fn func(types.Store) error) (err error) {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if derr := store.Detach(); derr != nil && err == nil {
			err = fmt.Errorf("detach store: %w", derr)
		}
	}()
	return fn(store)
}

// parseRef builds a document reference from command arguments.
func parseRef(kind, id string) (types.DocumentRef, error) {
	k, err := types.ParseDocumentKind(kind)
	if err != nil {
		return types.DocumentRef{}, err
	}
	ref := types.Ref(k, id)
	return ref, ref.Validate()
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(cliDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be formatted YYYY-MM-DD", types.ErrInvalidArgument, s)
	}
	return t, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// exactArgs is cobra.ExactArgs with the error marked as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
		return nil
	}
}
