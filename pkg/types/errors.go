package types

import (
	"errors"
	"fmt"
)

// Error categories. Every error the graph engine returns to callers wraps one
// of these, so callers can branch with errors.Is.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrResourceExhausted = errors.New("resource exhausted")
)

// Argument errors.
var (
	ErrInvalidID       = fmt.Errorf("%w: empty id", ErrInvalidArgument)
	ErrInvalidKind     = fmt.Errorf("%w: unknown document kind", ErrInvalidArgument)
	ErrInvalidLinkType = fmt.Errorf("%w: unknown link type", ErrInvalidArgument)
	ErrSelfLink        = fmt.Errorf("%w: document cannot link to itself", ErrInvalidArgument)
)

// Lookup errors.
var (
	ErrDocumentNotFound = fmt.Errorf("document %w", ErrNotFound)
	ErrLinkNotFound     = fmt.Errorf("link %w", ErrNotFound)
)

// ErrDuplicateLink is returned when the same (source, target, link type)
// already exists.
var ErrDuplicateLink = fmt.Errorf("%w: link already exists", ErrConflict)

// ErrFlowTooLarge is returned when a traversal exceeds the configured node cap.
var ErrFlowTooLarge = fmt.Errorf("%w: flow exceeds node limit", ErrResourceExhausted)

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)
