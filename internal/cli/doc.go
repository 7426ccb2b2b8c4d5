package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docflow/pkg/types"
)

func (a *app) newDocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Manage document metadata in the catalog",
	}
	cmd.AddCommand(a.newDocPutCmd())
	cmd.AddCommand(a.newDocShowCmd())
	return cmd
}

func (a *app) newDocPutCmd() *cobra.Command {
	var info struct {
		number, date, subject, counterpart string
	}
	cmd := &cobra.Command{
		Use:   "put <kind> <id>",
		Short: "Register or replace a document's metadata",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0], args[1])
			if err != nil {
				return err
			}
			date, err := parseDate(info.date)
			if err != nil {
				return err
			}
			doc := types.Document{
				DocumentRef: ref,
				DocumentInfo: types.DocumentInfo{
					Number:          info.number,
					Date:            date,
					Subject:         info.subject,
					CounterpartName: info.counterpart,
				},
			}

			err = a.withStore(func(store types.Store) error {
				return store.PutDocument(cmd.Context(), doc)
			})
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd, doc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s (%s)\n", ref, doc.Label())
			return nil
		},
	}
	cmd.Flags().StringVar(&info.number, "number", "", "registration number")
	cmd.Flags().StringVar(&info.date, "date", "", "registration date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&info.subject, "subject", "", "subject line")
	cmd.Flags().StringVar(&info.counterpart, "counterpart", "", "sender (incoming) or recipient (outgoing)")
	return cmd
}

func (a *app) newDocShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <kind> <id>",
		Short: "Show a document's metadata",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0], args[1])
			if err != nil {
				return err
			}
			var doc types.Document
			err = a.withStore(func(store types.Store) error {
				info, err := store.ResolveDocument(cmd.Context(), ref)
				doc = types.Document{DocumentRef: ref, DocumentInfo: info}
				return err
			})
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd, doc)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n", ref)
			fmt.Fprintf(w, "  number:      %s\n", doc.Label())
			fmt.Fprintf(w, "  date:        %s\n", formatDate(doc))
			fmt.Fprintf(w, "  subject:     %s\n", doc.Subject)
			fmt.Fprintf(w, "  counterpart: %s\n", doc.CounterpartName)
			return nil
		},
	}
}
