// Package flow computes the document flow of a root document: the connected
// component reachable through links, and a deterministic layered layout of
// that component.
package flow

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/docflow/pkg/types"
)

// DefaultMaxNodes caps the number of documents a single traversal may visit.
const DefaultMaxNodes = 1000

// LinkSource lists the links incident to a document together with the
// counterpart metadata. *links.Service implements it.
type LinkSource interface {
	GetLinksFor(ctx context.Context, ref types.DocumentRef) ([]types.LinkView, error)
}

// Traverse walks the link graph breadth-first from root, ignoring link
// direction, and returns every reachable document and every link touching
// them. Nodes are in discovery order with the root first; edges are in
// discovery order and deduplicated by link ID.
//
// maxNodes bounds the number of nodes; 0 disables the bound. Exceeding it
// returns ErrFlowTooLarge. Cancellation is checked before each hop and the
// partial graph is discarded.
func Traverse(ctx context.Context, src LinkSource, root types.Document, maxNodes int) (*types.Graph, error) {
	if err := root.DocumentRef.Validate(); err != nil {
		return nil, err
	}

	visited := map[types.DocumentRef]bool{root.DocumentRef: true}
	seenEdges := make(map[string]bool)
	frontier := []types.DocumentRef{root.DocumentRef}
	g := &types.Graph{
		Root:  root.DocumentRef,
		Nodes: []types.Document{root},
		Edges: []types.Link{},
	}

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d := frontier[0]
		frontier = frontier[1:]

		views, err := src.GetLinksFor(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("traversing from %s: %w", d, err)
		}

		for _, v := range views {
			if !seenEdges[v.LinkID] {
				seenEdges[v.LinkID] = true
				g.Edges = append(g.Edges, v.Link)
			}

			other := v.Counterpart.DocumentRef
			if visited[other] {
				continue
			}
			if maxNodes > 0 && len(g.Nodes) >= maxNodes {
				return nil, fmt.Errorf("%w: more than %d documents reachable from %s",
					types.ErrFlowTooLarge, maxNodes, root.DocumentRef)
			}
			visited[other] = true
			g.Nodes = append(g.Nodes, v.Counterpart)
			frontier = append(frontier, other)
		}
	}

	return g, nil
}
