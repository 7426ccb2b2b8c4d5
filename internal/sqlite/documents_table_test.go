package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docflow/pkg/types"
)

func TestPutDocument_ResolveRoundTrip(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()
	ref := types.Ref(types.KindIncoming, "in-1")
	date := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)

	require.NoError(t, b.PutDocument(ctx, types.Document{
		DocumentRef: ref,
		DocumentInfo: types.DocumentInfo{
			Number:          "01-12/45",
			Date:            date,
			Subject:         "Budget request",
			CounterpartName: "Ministry of Finance",
		},
	}))

	info, err := b.ResolveDocument(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "01-12/45", info.Number)
	assert.True(t, date.Equal(info.Date))
	assert.Equal(t, "Budget request", info.Subject)
	assert.Equal(t, "Ministry of Finance", info.CounterpartName)

	// Put replaces existing metadata.
	require.NoError(t, b.PutDocument(ctx, types.Document{
		DocumentRef:  ref,
		DocumentInfo: types.DocumentInfo{Number: "01-12/46"},
	}))
	info, err = b.ResolveDocument(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "01-12/46", info.Number)
	assert.True(t, info.Date.IsZero())
}

func TestResolveDocument_NotFound(t *testing.T) {
	b := setupBackend(t)
	_, err := b.ResolveDocument(context.Background(), types.Ref(types.KindOutgoing, "missing"))
	assert.ErrorIs(t, err, types.ErrDocumentNotFound)
}

func TestPutDocument_InvalidRef(t *testing.T) {
	b := setupBackend(t)
	err := b.PutDocument(context.Background(), types.Document{DocumentRef: types.Ref(types.KindIncoming, "")})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}
