package flow

import (
	"context"
	"sync/atomic"

	"github.com/mesh-intelligence/docflow/pkg/types"
)

// graphSource serves LinkViews from an in-memory link list, in list order.
type graphSource struct {
	docs  map[types.DocumentRef]types.DocumentInfo
	links []types.Link
	err   error
	calls atomic.Int32
	// onCall runs before every lookup; tests use it to cancel mid-walk.
	onCall func(n int32)
}

func (g *graphSource) GetLinksFor(_ context.Context, ref types.DocumentRef) ([]types.LinkView, error) {
	n := g.calls.Add(1)
	if g.onCall != nil {
		g.onCall(n)
	}
	if g.err != nil {
		return nil, g.err
	}
	views := []types.LinkView{}
	for _, l := range g.links {
		other, ok := l.Other(ref)
		if !ok {
			continue
		}
		dir := types.DirectionOutgoing
		if l.Target() == ref {
			dir = types.DirectionIncoming
		}
		views = append(views, types.LinkView{
			Link:        l,
			Direction:   dir,
			Counterpart: types.Document{DocumentRef: other, DocumentInfo: g.docs[other]},
		})
	}
	return views, nil
}

func (g *graphSource) ResolveDocument(_ context.Context, ref types.DocumentRef) (types.DocumentInfo, error) {
	info, ok := g.docs[ref]
	if !ok {
		return types.DocumentInfo{}, types.ErrDocumentNotFound
	}
	return info, nil
}

func in(id string) types.DocumentRef  { return types.Ref(types.KindIncoming, id) }
func out(id string) types.DocumentRef { return types.Ref(types.KindOutgoing, id) }

func edge(id string, src, dst types.DocumentRef, lt types.LinkType) types.Link {
	return types.Link{
		LinkID:     id,
		SourceKind: src.Kind, SourceID: src.ID,
		TargetKind: dst.Kind, TargetID: dst.ID,
		LinkType: lt,
	}
}

func doc(ref types.DocumentRef) types.Document {
	return types.Document{DocumentRef: ref}
}

func refs(nodes []types.Document) []types.DocumentRef {
	out := make([]types.DocumentRef, len(nodes))
	for i, n := range nodes {
		out[i] = n.DocumentRef
	}
	return out
}

func linkIDs(links []types.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.LinkID
	}
	return out
}
