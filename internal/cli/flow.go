package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docflow/internal/flow"
	"github.com/mesh-intelligence/docflow/internal/links"
	"github.com/mesh-intelligence/docflow/pkg/types"
)

func (a *app) newFlowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flow <kind> <id>",
		Short: "Show the flow of documents linked to a document",
		Long: "Walk every link reachable from the document, in either direction, and\n" +
			"print the documents by layer together with the links between them.",
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0], args[1])
			if err != nil {
				return err
			}

			var view *types.FlowView
			err = a.withStore(func(store types.Store) error {
				view, err = a.flowService(store).GetDocumentFlow(cmd.Context(), ref)
				return err
			})
			if err != nil {
				return err
			}

			if a.flags.jsonMode {
				return printJSON(cmd, view)
			}
			printFlow(cmd, view)
			return nil
		},
	}
}

// flowService composes the link and flow services over store.
func (a *app) flowService(store types.Store) *flow.Service {
	linkSvc := links.NewService(store, store, links.WithLogger(a.logger))
	return flow.NewService(linkSvc, store,
		flow.WithLogger(a.logger),
		flow.WithMaxNodes(a.settings.MaxFlowNodes),
		flow.WithLayout(a.settings.Layout),
	)
}

func printFlow(cmd *cobra.Command, view *types.FlowView) {
	w := cmd.OutOrStdout()

	nodes := append([]types.NodeView(nil), view.Nodes...)
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Layer != nodes[j].Layer {
			return nodes[i].Layer < nodes[j].Layer
		}
		return nodes[i].Slot < nodes[j].Slot
	})

	fmt.Fprintf(w, "Flow of %s: %d documents, %d links\n", view.Root, len(view.Nodes), len(view.Edges))
	layer, first := 0, true
	for _, n := range nodes {
		if first || n.Layer != layer {
			layer, first = n.Layer, false
			fmt.Fprintf(w, "layer %d\n", layer)
		}
		marker := " "
		if n.ID == view.Root.ID && n.Kind == view.Root.Kind {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %-12s %s/%s  %s  %s\n", marker, n.Label, n.Kind, n.ID, n.Date, n.Subject)
	}
	if len(view.Edges) > 0 {
		fmt.Fprintln(w, "links")
		for _, e := range view.Edges {
			fmt.Fprintf(w, "   %s/%s -[%s]-> %s/%s\n", e.SourceKind, e.Source, e.Label, e.TargetKind, e.Target)
		}
	}
}

func formatDate(d types.Document) string {
	if d.Date.IsZero() {
		return ""
	}
	return d.Date.Format(flow.DateFormat)
}
