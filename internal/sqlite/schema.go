// Package sqlite implements the SQLite backend for the docflow link graph.
package sqlite

// Schema DDL. Documents are keyed by (kind, document_id); links carry a
// UNIQUE index over (source, target, link_type) so duplicate inserts fail
// atomically even without the pre-check in CreateLink.
const (
	createDocuments = `CREATE TABLE documents (
    kind TEXT NOT NULL,
    document_id TEXT NOT NULL,
    number TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL DEFAULT '',
    subject TEXT NOT NULL DEFAULT '',
    counterpart_name TEXT NOT NULL DEFAULT '',
    updated_at TEXT NOT NULL,
    PRIMARY KEY (kind, document_id),
    CHECK (document_id <> '')
);`

	createLinks = `CREATE TABLE links (
    link_id TEXT PRIMARY KEY,
    source_kind TEXT NOT NULL,
    source_id TEXT NOT NULL,
    target_kind TEXT NOT NULL,
    target_id TEXT NOT NULL,
    link_type TEXT NOT NULL,
    created_by TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    CHECK (link_id <> '' AND source_id <> '' AND target_id <> ''),
    CHECK (NOT (source_kind = target_kind AND source_id = target_id))
);`

	createLinksUnique = `CREATE UNIQUE INDEX idx_links_unique
    ON links (source_kind, source_id, target_kind, target_id, link_type);`

	createLinksBySource = `CREATE INDEX idx_links_source ON links (source_kind, source_id);`

	createLinksByTarget = `CREATE INDEX idx_links_target ON links (target_kind, target_id);`
)

// schemaStatements lists the DDL in execution order.
var schemaStatements = []string{
	createDocuments,
	createLinks,
	createLinksUnique,
	createLinksBySource,
	createLinksByTarget,
}

// timeLayout is fixed-width so that lexical order of stored timestamps equals
// chronological order; LinksFor relies on this for its ORDER BY.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
