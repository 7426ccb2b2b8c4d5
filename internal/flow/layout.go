package flow

import "github.com/mesh-intelligence/docflow/pkg/types"

// Default layout spacing.
const (
	DefaultColumnWidth = 350
	DefaultRowHeight   = 150
)

// LayoutOptions sets the spacing between layers (columns) and between
// documents within a layer (rows).
type LayoutOptions struct {
	ColumnWidth float64
	RowHeight   float64
}

// DefaultLayoutOptions returns the default spacing.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{ColumnWidth: DefaultColumnWidth, RowHeight: DefaultRowHeight}
}

func (o LayoutOptions) withDefaults() LayoutOptions {
	if o.ColumnWidth <= 0 {
		o.ColumnWidth = DefaultColumnWidth
	}
	if o.RowHeight <= 0 {
		o.RowHeight = DefaultRowHeight
	}
	return o
}

// Layout assigns every node a layer and a slot and converts them to
// coordinates. The root sits on layer 0; a neighbour reached through a link
// it is the source of goes one layer right, one it is the target of goes one
// layer left. The first assignment wins, following edges in the given order.
// Nodes the root cannot reach are put on layer 0 after the reached ones.
//
// Within a layer nodes are stacked in placement order and centered on y=0.
// The result is in the order of nodes. Layout is a pure function: the same
// input always yields the same output.
func Layout(root types.DocumentRef, nodes []types.Document, edges []types.Link, opts LayoutOptions) []types.LayoutNode {
	opts = opts.withDefaults()

	known := make(map[types.DocumentRef]bool, len(nodes))
	for _, n := range nodes {
		known[n.DocumentRef] = true
	}

	adj := make(map[types.DocumentRef][]types.Link, len(nodes))
	for _, e := range edges {
		src, dst := e.Source(), e.Target()
		if !known[src] || !known[dst] || src == dst {
			continue
		}
		adj[src] = append(adj[src], e)
		adj[dst] = append(adj[dst], e)
	}

	layer := make(map[types.DocumentRef]int, len(nodes))
	var order []types.DocumentRef
	if known[root] {
		layer[root] = 0
		order = append(order, root)
		for i := 0; i < len(order); i++ {
			u := order[i]
			for _, e := range adj[u] {
				v, _ := e.Other(u)
				if _, placed := layer[v]; placed {
					continue
				}
				if e.Source() == u {
					layer[v] = layer[u] + 1
				} else {
					layer[v] = layer[u] - 1
				}
				order = append(order, v)
			}
		}
	}
	for _, n := range nodes {
		if _, placed := layer[n.DocumentRef]; !placed {
			layer[n.DocumentRef] = 0
			order = append(order, n.DocumentRef)
		}
	}

	slot := make(map[types.DocumentRef]int, len(order))
	bucketSize := make(map[int]int)
	for _, ref := range order {
		l := layer[ref]
		slot[ref] = bucketSize[l]
		bucketSize[l]++
	}

	out := make([]types.LayoutNode, 0, len(nodes))
	for _, n := range nodes {
		l, s := layer[n.DocumentRef], slot[n.DocumentRef]
		size := bucketSize[l]
		out = append(out, types.LayoutNode{
			Document: n,
			Layer:    l,
			Slot:     s,
			X:        float64(l) * opts.ColumnWidth,
			Y:        float64(s)*opts.RowHeight - float64(size-1)*opts.RowHeight/2,
		})
	}
	return out
}
