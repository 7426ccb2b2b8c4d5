package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docflow/pkg/types"
)

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

// setupBackend attaches a backend to a fresh temp directory with a stepping
// clock and detaches it on cleanup.
func setupBackend(t *testing.T, opts ...Option) *Backend {
	t.Helper()
	return attachAt(t, t.TempDir(), types.SQLiteConfig{}, opts...)
}

func attachAt(t *testing.T, dir string, sc types.SQLiteConfig, opts ...Option) *Backend {
	t.Helper()
	opts = append([]Option{WithClock(stepClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), time.Second))}, opts...)
	b := NewBackend(opts...)
	require.NoError(t, b.Attach(types.Config{
		Backend:      types.BackendSQLite,
		DataDir:      dir,
		SQLiteConfig: sc,
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}

// putDocs registers documents with a number derived from the ID.
func putDocs(t *testing.T, b *Backend, refs ...types.DocumentRef) {
	t.Helper()
	for _, ref := range refs {
		require.NoError(t, b.PutDocument(context.Background(), types.Document{
			DocumentRef:  ref,
			DocumentInfo: types.DocumentInfo{Number: "N-" + ref.ID, Subject: "subject " + ref.ID},
		}))
	}
}

func linkReq(src, dst types.DocumentRef, lt types.LinkType) types.NewLink {
	return types.NewLink{Source: src, Target: dst, LinkType: lt, ActorID: "clerk"}
}
