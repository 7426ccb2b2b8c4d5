package links

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docflow/pkg/types"
)

type fakeStore struct {
	links []types.Link
	err   error
}

func (f *fakeStore) LinksFor(_ context.Context, ref types.DocumentRef) ([]types.Link, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []types.Link
	for _, l := range f.links {
		if l.Source() == ref || l.Target() == ref {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeResolver struct {
	docs  map[types.DocumentRef]types.DocumentInfo
	calls atomic.Int32
}

func (f *fakeResolver) ResolveDocument(_ context.Context, ref types.DocumentRef) (types.DocumentInfo, error) {
	f.calls.Add(1)
	info, ok := f.docs[ref]
	if !ok {
		return types.DocumentInfo{}, types.ErrDocumentNotFound
	}
	return info, nil
}

var (
	inA  = types.Ref(types.KindIncoming, "a")
	outB = types.Ref(types.KindOutgoing, "b")
	inC  = types.Ref(types.KindIncoming, "c")
)

func link(id string, src, dst types.DocumentRef, lt types.LinkType) types.Link {
	return types.Link{
		LinkID:     id,
		SourceKind: src.Kind, SourceID: src.ID,
		TargetKind: dst.Kind, TargetID: dst.ID,
		LinkType: lt,
	}
}

func TestGetLinksFor_DirectionAndCounterpart(t *testing.T) {
	store := &fakeStore{links: []types.Link{
		link("l1", inA, outB, types.LinkTypeReply),
		link("l2", inC, inA, types.LinkTypeFollowUp),
	}}
	resolver := &fakeResolver{docs: map[types.DocumentRef]types.DocumentInfo{
		outB: {Number: "OUT-7", Subject: "Answer"},
		inC:  {Number: "IN-3", Subject: "Request"},
	}}
	svc := NewService(store, resolver)

	views, err := svc.GetLinksFor(context.Background(), inA)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "l1", views[0].LinkID)
	assert.Equal(t, types.DirectionOutgoing, views[0].Direction)
	assert.Equal(t, outB, views[0].Counterpart.DocumentRef)
	assert.Equal(t, "OUT-7", views[0].Counterpart.Label())

	assert.Equal(t, "l2", views[1].LinkID)
	assert.Equal(t, types.DirectionIncoming, views[1].Direction)
	assert.Equal(t, inC, views[1].Counterpart.DocumentRef)
	assert.Equal(t, "Request", views[1].Counterpart.Subject)
}

func TestGetLinksFor_UnresolvedCounterpartUsesPlaceholder(t *testing.T) {
	store := &fakeStore{links: []types.Link{
		link("l1", inA, outB, types.LinkTypeReply),
		link("l2", inA, inC, types.LinkTypeRelated),
	}}
	resolver := &fakeResolver{docs: map[types.DocumentRef]types.DocumentInfo{
		inC: {Number: "IN-3"},
	}}
	svc := NewService(store, resolver)

	views, err := svc.GetLinksFor(context.Background(), inA)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, types.PlaceholderNumber, views[0].Counterpart.Label())
	assert.Equal(t, "IN-3", views[1].Counterpart.Label())
}

func TestGetLinksFor_StableOrder(t *testing.T) {
	var links []types.Link
	docs := map[types.DocumentRef]types.DocumentInfo{}
	for _, id := range []string{"k", "b", "x", "d", "m", "a", "q", "e", "z", "c"} {
		other := types.Ref(types.KindOutgoing, id)
		links = append(links, link("link-"+id, inA, other, types.LinkTypeRelated))
		docs[other] = types.DocumentInfo{Number: id}
	}
	svc := NewService(&fakeStore{links: links}, &fakeResolver{docs: docs}, WithConcurrency(3))

	for i := 0; i < 5; i++ {
		views, err := svc.GetLinksFor(context.Background(), inA)
		require.NoError(t, err)
		require.Len(t, views, len(links))
		for j, v := range views {
			assert.Equal(t, links[j].LinkID, v.LinkID)
			assert.Equal(t, links[j].TargetID, v.Counterpart.Number)
		}
	}
}

func TestGetLinksFor_Errors(t *testing.T) {
	storeErr := errors.New("disk on fire")
	svc := NewService(&fakeStore{err: storeErr}, &fakeResolver{})

	_, err := svc.GetLinksFor(context.Background(), inA)
	assert.ErrorIs(t, err, storeErr)

	_, err = svc.GetLinksFor(context.Background(), types.Ref(types.KindIncoming, ""))
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestGetLinksFor_NoLinks(t *testing.T) {
	resolver := &fakeResolver{}
	svc := NewService(&fakeStore{}, resolver)

	views, err := svc.GetLinksFor(context.Background(), inA)
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.NotNil(t, views)
	assert.Zero(t, resolver.calls.Load())
}

// rawStore returns its links without filtering by ref.
type rawStore []types.Link

func (r rawStore) LinksFor(context.Context, types.DocumentRef) ([]types.Link, error) {
	return r, nil
}

func TestGetLinksFor_NonIncidentLinkFailsBeforeResolving(t *testing.T) {
	store := rawStore{
		link("l1", inA, outB, types.LinkTypeReply),
		link("l2", outB, inC, types.LinkTypeRelated),
	}
	resolver := &fakeResolver{}
	svc := NewService(store, resolver)

	views, err := svc.GetLinksFor(context.Background(), inA)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "l2")
	assert.Nil(t, views)
	assert.Zero(t, resolver.calls.Load())
}
