package types

import "context"

// LinkStore persists links and enforces the self-link, existence, and
// uniqueness invariants atomically.
type LinkStore interface {
	// CreateLink validates and inserts a new link. Returns an error wrapping
	// ErrInvalidArgument, ErrNotFound (either document missing), or
	// ErrConflict (same source, target, and type already linked).
	CreateLink(ctx context.Context, req NewLink) (*Link, error)

	// DeleteLink removes the link with the given ID.
	// Returns ErrLinkNotFound if it does not exist. Authorization is the
	// caller's responsibility; actorID is only recorded.
	DeleteLink(ctx context.Context, linkID, actorID string) error

	// GetLink retrieves a single link.
	GetLink(ctx context.Context, linkID string) (*Link, error)

	// LinksFor returns every link where ref is the source or the target,
	// ordered by creation time ascending with the link ID as tie-breaker.
	LinksFor(ctx context.Context, ref DocumentRef) ([]Link, error)
}

// DocumentResolver looks up the display metadata of a document. It is the
// graph engine's only dependency on the document subsystem.
type DocumentResolver interface {
	// ResolveDocument returns ErrDocumentNotFound when the document is unknown.
	ResolveDocument(ctx context.Context, ref DocumentRef) (DocumentInfo, error)
}

// DocumentCatalog registers document metadata. The SQLite backend provides
// one so the engine can run without the full document subsystem.
type DocumentCatalog interface {
	DocumentResolver

	// PutDocument creates or replaces the metadata for doc.
	PutDocument(ctx context.Context, doc Document) error
}

// Store is a backend that holds both links and the document catalog.
// Callers attach to a backend, use it, and detach when done.
type Store interface {
	LinkStore
	DocumentCatalog

	// Attach connects the store to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent. After Detach, operations
	// return ErrStoreDetached.
	Detach() error
}
