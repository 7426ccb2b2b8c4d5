package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docflow/internal/links"
	"github.com/mesh-intelligence/docflow/pkg/types"
)

const defaultActor = "cli"

func (a *app) newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Create, remove, and list links between documents",
	}
	cmd.AddCommand(a.newLinkAddCmd())
	cmd.AddCommand(a.newLinkRmCmd())
	cmd.AddCommand(a.newLinkGetCmd())
	cmd.AddCommand(a.newLinkLsCmd())
	return cmd
}

func (a *app) newLinkAddCmd() *cobra.Command {
	var linkType, actor string
	cmd := &cobra.Command{
		Use:   "add <source-kind> <source-id> <target-kind> <target-id>",
		Short: "Link a source document to a target document",
		Args:  exactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := parseRef(args[0], args[1])
			if err != nil {
				return err
			}
			dst, err := parseRef(args[2], args[3])
			if err != nil {
				return err
			}

			var link *types.Link
			err = a.withStore(func(store types.Store) error {
				link, err = store.CreateLink(cmd.Context(), types.NewLink{
					Source:   src,
					Target:   dst,
					LinkType: types.LinkType(linkType),
					ActorID:  actor,
				})
				return err
			})
			if err != nil {
				return err
			}
			a.logger.Debug("link created", "id", link.LinkID, "actor", actor)

			if a.flags.jsonMode {
				return printJSON(cmd, link)
			}
			fmt.Fprintln(cmd.OutOrStdout(), link.LinkID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&linkType, "type", "t", string(types.LinkTypeRelated), "link type: reply, follow_up, or related")
	cmd.Flags().StringVar(&actor, "actor", defaultActor, "ID of the user creating the link")
	return cmd
}

func (a *app) newLinkRmCmd() *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "rm <link-id>",
		Short: "Delete a link",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.withStore(func(store types.Store) error {
				return store.DeleteLink(cmd.Context(), args[0], actor)
			})
			if err != nil {
				return err
			}
			a.logger.Info("link deleted", "id", args[0], "actor", actor)
			if a.flags.jsonMode {
				return printJSON(cmd, map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", defaultActor, "ID of the user deleting the link")
	return cmd
}

func (a *app) newLinkGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <link-id>",
		Short: "Show a link",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var link *types.Link
			err := a.withStore(func(store types.Store) error {
				var err error
				link, err = store.GetLink(cmd.Context(), args[0])
				return err
			})
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd, link)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %s %s  by %s at %s\n",
				link.LinkID, link.Source(), link.LinkType.Label(), link.Target(),
				link.CreatedBy, link.CreatedAt.Format(time.RFC3339))
			return nil
		},
	}
}

func (a *app) newLinkLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <kind> <id>",
		Short: "List the links of a document",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0], args[1])
			if err != nil {
				return err
			}

			var views []types.LinkView
			err = a.withStore(func(store types.Store) error {
				svc := links.NewService(store, store, links.WithLogger(a.logger))
				views, err = svc.GetLinksFor(cmd.Context(), ref)
				return err
			})
			if err != nil {
				return err
			}

			if a.flags.jsonMode {
				return printJSON(cmd, views)
			}
			w := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintf(w, "No links for %s\n", ref)
				return nil
			}
			for _, v := range views {
				fmt.Fprintf(w, "%s %-10s %-12s %-20s %s  %s\n",
					v.Direction, v.LinkType.Label(), v.Counterpart.Label(),
					v.Counterpart.DocumentRef, v.Counterpart.Subject, v.LinkID)
			}
			return nil
		},
	}
}
