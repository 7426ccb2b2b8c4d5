package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/docflow/pkg/types"
)

// PutDocument registers or replaces the display metadata of a document.
func (b *Backend) PutDocument(ctx context.Context, doc types.Document) error {
	if err := doc.DocumentRef.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	date := ""
	if !doc.Date.IsZero() {
		date = doc.Date.UTC().Format(timeLayout)
	}
	_, updatedAt := b.timestamp()

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (kind, document_id, number, date, subject, counterpart_name, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (kind, document_id) DO UPDATE SET
		   number = excluded.number,
		   date = excluded.date,
		   subject = excluded.subject,
		   counterpart_name = excluded.counterpart_name,
		   updated_at = excluded.updated_at`,
		doc.Kind, doc.ID, doc.Number, date, doc.Subject, doc.CounterpartName, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving document %s: %w", doc.DocumentRef, err)
	}

	return b.commitAndPersist(tx, "documents", "save")
}

// ResolveDocument returns the metadata of a registered document, or
// ErrDocumentNotFound.
func (b *Backend) ResolveDocument(ctx context.Context, ref types.DocumentRef) (types.DocumentInfo, error) {
	if err := ref.Validate(); err != nil {
		return types.DocumentInfo{}, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.DocumentInfo{}, types.ErrStoreDetached
	}

	var info types.DocumentInfo
	var date string
	err := b.db.QueryRowContext(ctx,
		`SELECT number, date, subject, counterpart_name FROM documents
		 WHERE kind = ? AND document_id = ?`,
		ref.Kind, ref.ID,
	).Scan(&info.Number, &date, &info.Subject, &info.CounterpartName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.DocumentInfo{}, fmt.Errorf("%w: %s", types.ErrDocumentNotFound, ref)
		}
		return types.DocumentInfo{}, fmt.Errorf("resolving document %s: %w", ref, err)
	}

	if info.Date, err = parseTime(date); err != nil {
		return types.DocumentInfo{}, fmt.Errorf("parsing date of %s: %w", ref, err)
	}
	return info, nil
}

// documentExists reports whether ref is registered, inside tx.
func documentExists(ctx context.Context, tx *sql.Tx, ref types.DocumentRef) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM documents WHERE kind = ? AND document_id = ?",
		ref.Kind, ref.ID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking document %s: %w", ref, err)
	}
	return true, nil
}
