package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/mesh-intelligence/docflow/internal/logging"
	"github.com/mesh-intelligence/docflow/pkg/types"
)

// DateFormat is the layout used for document dates in flow views.
const DateFormat = "02.01.2006"

// Service builds positioned flow views for root documents.
type Service struct {
	links    LinkSource
	resolver types.DocumentResolver
	logger   *log.Logger
	maxNodes int
	layout   LayoutOptions
	group    singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMaxNodes sets the traversal node cap; 0 disables it.
func WithMaxNodes(n int) Option {
	return func(s *Service) { s.maxNodes = n }
}

// WithLayout sets the layout spacing.
func WithLayout(o LayoutOptions) Option {
	return func(s *Service) { s.layout = o }
}

// NewService creates a flow service.
func NewService(src LinkSource, resolver types.DocumentResolver, opts ...Option) *Service {
	s := &Service{
		links:    src,
		resolver: resolver,
		maxNodes: DefaultMaxNodes,
		layout:   DefaultLayoutOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxNodes < 0 {
		s.maxNodes = 0
	}
	s.logger = logging.OrDiscard(s.logger)
	return s
}

// GetDocumentFlow returns the positioned flow of ref. A root whose metadata
// cannot be resolved still gets a flow, labeled with the placeholder.
// Concurrent requests for the same root share one computation, which is
// detached from any single caller: a caller whose ctx is done returns
// ctx.Err() while the others keep waiting for the result.
func (s *Service) GetDocumentFlow(ctx context.Context, ref types.DocumentRef) (*types.FlowView, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	ch := s.group.DoChan(ref.String(), func() (any, error) {
		return s.compute(context.WithoutCancel(ctx), ref)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	view, ok := res.Val.(*types.FlowView)
	if !ok {
		return nil, fmt.Errorf("unexpected flow result type %T", res.Val)
	}
	if res.Shared {
		s.logger.Debug("flow computation shared", "root", ref)
	}
	return cloneView(view), nil
}

func (s *Service) compute(ctx context.Context, ref types.DocumentRef) (*types.FlowView, error) {
	root := types.Document{DocumentRef: ref}
	info, err := s.resolver.ResolveDocument(ctx, ref)
	if err != nil {
		s.logger.Warn("flow root unresolved, using placeholder", "doc", ref, "err", err)
	} else {
		root.DocumentInfo = info
	}

	g, err := Traverse(ctx, s.links, root, s.maxNodes)
	if err != nil {
		return nil, err
	}
	placed := Layout(g.Root, g.Nodes, g.Edges, s.layout)
	s.logger.Debug("flow computed", "root", ref, "nodes", len(g.Nodes), "edges", len(g.Edges))
	return BuildView(g, placed), nil
}

// BuildView converts a traversed graph and its layout into renderer views.
func BuildView(g *types.Graph, placed []types.LayoutNode) *types.FlowView {
	view := &types.FlowView{
		Root:  g.Root,
		Nodes: make([]types.NodeView, 0, len(placed)),
		Edges: make([]types.EdgeView, 0, len(g.Edges)),
	}
	for _, n := range placed {
		view.Nodes = append(view.Nodes, types.NodeView{
			ID:              n.ID,
			Kind:            n.Kind,
			Label:           n.Label(),
			Date:            formatDate(n.Date),
			CounterpartName: n.CounterpartName,
			Subject:         n.Subject,
			Layer:           n.Layer,
			Slot:            n.Slot,
			X:               n.X,
			Y:               n.Y,
		})
	}
	for _, e := range g.Edges {
		view.Edges = append(view.Edges, types.EdgeView{
			ID:         e.LinkID,
			Source:     e.SourceID,
			SourceKind: e.SourceKind,
			Target:     e.TargetID,
			TargetKind: e.TargetKind,
			LinkType:   e.LinkType,
			Label:      e.LinkType.Label(),
		})
	}
	return view
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateFormat)
}

func cloneView(v *types.FlowView) *types.FlowView {
	out := &types.FlowView{Root: v.Root}
	out.Nodes = append([]types.NodeView{}, v.Nodes...)
	out.Edges = append([]types.EdgeView{}, v.Edges...)
	return out
}
