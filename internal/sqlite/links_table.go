package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/docflow/pkg/types"
)

const linkColumns = "link_id, source_kind, source_id, target_kind, target_id, link_type, created_by, created_at"

// CreateLink validates req, checks that both documents exist and that the
// same (source, target, type) is not already linked, then inserts the link.
// The checks and the insert share one transaction under the write lock;
// the UNIQUE index backs the duplicate check.
func (b *Backend) CreateLink(ctx context.Context, req types.NewLink) (*types.Link, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ref := range []types.DocumentRef{req.Source, req.Target} {
		ok, err := documentExists(ctx, tx, ref)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", types.ErrDocumentNotFound, ref)
		}
	}

	var dupID string
	err = tx.QueryRowContext(ctx,
		`SELECT link_id FROM links
		 WHERE source_kind = ? AND source_id = ? AND target_kind = ? AND target_id = ? AND link_type = ?`,
		req.Source.Kind, req.Source.ID, req.Target.Kind, req.Target.ID, req.LinkType,
	).Scan(&dupID)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrDuplicateLink, dupID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("checking link uniqueness: %w", err)
	}

	createdAt, createdAtStr := b.timestamp()
	link := &types.Link{
		LinkID:     generateUUID(),
		SourceKind: req.Source.Kind,
		SourceID:   req.Source.ID,
		TargetKind: req.Target.Kind,
		TargetID:   req.Target.ID,
		LinkType:   req.LinkType,
		CreatedBy:  req.ActorID,
		CreatedAt:  createdAt,
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO links ("+linkColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		link.LinkID, link.SourceKind, link.SourceID, link.TargetKind, link.TargetID,
		link.LinkType, link.CreatedBy, createdAtStr,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, types.ErrDuplicateLink
		}
		return nil, fmt.Errorf("inserting link: %w", err)
	}

	if err := b.commitAndPersist(tx, "links", "save"); err != nil {
		return nil, err
	}

	b.logger.Debug("link created", "link", link.LinkID, "source", req.Source, "target", req.Target,
		"type", link.LinkType, "actor", req.ActorID)
	return link, nil
}

// DeleteLink removes a link by ID. Returns ErrLinkNotFound if no row matched.
func (b *Backend) DeleteLink(ctx context.Context, linkID, actorID string) error {
	if linkID == "" {
		return types.ErrInvalidID
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM links WHERE link_id = ?", linkID)
	if err != nil {
		return fmt.Errorf("deleting link: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting link: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", types.ErrLinkNotFound, linkID)
	}

	if err := b.commitAndPersist(tx, "links", "delete"); err != nil {
		return err
	}

	b.logger.Debug("link deleted", "link", linkID, "actor", actorID)
	return nil
}

// GetLink retrieves a link by ID.
func (b *Backend) GetLink(ctx context.Context, linkID string) (*types.Link, error) {
	if linkID == "" {
		return nil, types.ErrInvalidID
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	row := b.db.QueryRowContext(ctx, "SELECT "+linkColumns+" FROM links WHERE link_id = ?", linkID)
	link, err := hydrateLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", types.ErrLinkNotFound, linkID)
		}
		return nil, fmt.Errorf("getting link %s: %w", linkID, err)
	}
	return link, nil
}

// LinksFor returns the links where ref is source or target, ordered by
// created_at then link_id. The order is part of the contract: flow layout
// depends on it to be reproducible.
func (b *Backend) LinksFor(ctx context.Context, ref types.DocumentRef) ([]types.Link, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.QueryContext(ctx,
		"SELECT "+linkColumns+` FROM links
		 WHERE (source_kind = ? AND source_id = ?) OR (target_kind = ? AND target_id = ?)
		 ORDER BY created_at ASC, link_id ASC`,
		ref.Kind, ref.ID, ref.Kind, ref.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching links for %s: %w", ref, err)
	}
	defer rows.Close()

	links := []types.Link{}
	for rows.Next() {
		link, err := hydrateLink(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating link: %w", err)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", err)
	}
	return links, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// hydrateLink converts a row selected with linkColumns into a *types.Link.
func hydrateLink(row rowScanner) (*types.Link, error) {
	var l types.Link
	var sourceKind, targetKind, linkType, createdAt string
	if err := row.Scan(&l.LinkID, &sourceKind, &l.SourceID, &targetKind, &l.TargetID,
		&linkType, &l.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	l.SourceKind = types.DocumentKind(sourceKind)
	l.TargetKind = types.DocumentKind(targetKind)
	l.LinkType = types.LinkType(linkType)

	t, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	l.CreatedAt = t
	return &l, nil
}

// parseTime accepts the stored layout and plain RFC3339 from older files.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
