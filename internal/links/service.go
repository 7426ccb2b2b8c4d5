// Package links answers "what is linked to document X": it lists the links
// incident to a document and attaches the display metadata of the document
// on the other side of each link.
package links

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/docflow/internal/logging"
	"github.com/mesh-intelligence/docflow/pkg/types"
)

// DefaultResolveConcurrency bounds concurrent counterpart lookups per call.
const DefaultResolveConcurrency = 8

// LinkLister is the subset of types.LinkStore the service reads from.
type LinkLister interface {
	LinksFor(ctx context.Context, ref types.DocumentRef) ([]types.Link, error)
}

// Service lists enriched links for a document.
type Service struct {
	store       LinkLister
	resolver    types.DocumentResolver
	logger      *log.Logger
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used to report degraded counterparts.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithConcurrency bounds concurrent counterpart lookups. Values below 1 are
// ignored.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates a Service reading links from store and metadata from
// resolver.
func NewService(store LinkLister, resolver types.DocumentResolver, opts ...Option) *Service {
	s := &Service{
		store:       store,
		resolver:    resolver,
		concurrency: DefaultResolveConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDiscard(s.logger)
	return s
}

// GetLinksFor returns every link where ref is the source or the target, in
// the store's order (creation time ascending). Each result carries the
// counterpart's metadata; a counterpart that cannot be resolved degrades to
// placeholder metadata instead of failing the list. Only an invalid ref or a
// storage error fails the call.
func (s *Service) GetLinksFor(ctx context.Context, ref types.DocumentRef) ([]types.LinkView, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	links, err := s.store.LinksFor(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("listing links for %s: %w", ref, err)
	}

	views := make([]types.LinkView, len(links))
	for i, l := range links {
		other, ok := l.Other(ref)
		if !ok {
			return nil, fmt.Errorf("store returned link %s not incident to %s", l.LinkID, ref)
		}
		dir := types.DirectionOutgoing
		if l.Target() == ref {
			dir = types.DirectionIncoming
		}
		views[i] = types.LinkView{
			Link:        l,
			Direction:   dir,
			Counterpart: types.Document{DocumentRef: other},
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range views {
		g.Go(func() error {
			views[i].Counterpart.DocumentInfo = s.resolve(gctx, views[i].Counterpart.DocumentRef)
			return nil
		})
	}

	// Resolution never returns an error; Wait only joins the goroutines.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

// resolve looks up metadata for ref, returning an empty DocumentInfo (which
// renders as the placeholder) when the lookup fails.
func (s *Service) resolve(ctx context.Context, ref types.DocumentRef) types.DocumentInfo {
	info, err := s.resolver.ResolveDocument(ctx, ref)
	if err != nil {
		s.logger.Warn("counterpart unresolved, using placeholder", "doc", ref, "err", err)
		return types.DocumentInfo{}
	}
	return info
}
