package types

// Graph is the connected component reachable from a root document. Nodes
// are in discovery order with the root first; edges are deduplicated by
// link ID in discovery order.
type Graph struct {
	Root  DocumentRef
	Nodes []Document
	Edges []Link
}

// LayoutNode is a document with its computed position.
type LayoutNode struct {
	Document
	Layer int
	Slot  int
	X     float64
	Y     float64
}

// NodeView is a positioned flow node as handed to a renderer.
type NodeView struct {
	ID              string       `json:"id"`
	Kind            DocumentKind `json:"kind"`
	Label           string       `json:"label"`
	Date            string       `json:"date"`
	CounterpartName string       `json:"counterpart_name"`
	Subject         string       `json:"subject"`
	Layer           int          `json:"layer"`
	Slot            int          `json:"slot"`
	X               float64      `json:"x"`
	Y               float64      `json:"y"`
}

// EdgeView is a flow edge as handed to a renderer.
type EdgeView struct {
	ID         string       `json:"id"`
	Source     string       `json:"source"`
	SourceKind DocumentKind `json:"source_kind"`
	Target     string       `json:"target"`
	TargetKind DocumentKind `json:"target_kind"`
	LinkType   LinkType     `json:"link_type"`
	Label      string       `json:"label"`
}

// FlowView is the positioned flow of a root document.
type FlowView struct {
	Root  DocumentRef `json:"root"`
	Nodes []NodeView  `json:"nodes"`
	Edges []EdgeView  `json:"edges"`
}
