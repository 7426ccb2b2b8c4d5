package types

import (
	"fmt"
	"time"
)

// DocumentKind distinguishes registered incoming and outgoing correspondence.
type DocumentKind string

// Document kinds.
const (
	KindIncoming DocumentKind = "incoming"
	KindOutgoing DocumentKind = "outgoing"
)

// Valid reports whether k is one of the known document kinds.
func (k DocumentKind) Valid() bool {
	return k == KindIncoming || k == KindOutgoing
}

// ParseDocumentKind converts a string into a DocumentKind.
// Returns ErrInvalidKind for anything other than incoming or outgoing.
func ParseDocumentKind(s string) (DocumentKind, error) {
	k := DocumentKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// DocumentRef is the identity of a document inside the graph. It is
// comparable and used as the key of visited sets and layer maps.
type DocumentRef struct {
	ID   string       `json:"id"`
	Kind DocumentKind `json:"kind"`
}

// Ref builds a DocumentRef.
func Ref(kind DocumentKind, id string) DocumentRef {
	return DocumentRef{ID: id, Kind: kind}
}

// Validate checks that the reference has an ID and a known kind.
func (r DocumentRef) Validate() error {
	if r.ID == "" {
		return ErrInvalidID
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, r.Kind)
	}
	return nil
}

func (r DocumentRef) String() string {
	return string(r.Kind) + "/" + r.ID
}

// DocumentInfo is the display metadata the document subsystem supplies for
// a document. CounterpartName is the sender for incoming documents and the
// recipient for outgoing ones.
type DocumentInfo struct {
	Number          string    `json:"number"`
	Date            time.Time `json:"date"`
	Subject         string    `json:"subject"`
	CounterpartName string    `json:"counterpart_name"`
}

// Document is a DocumentRef with its display metadata.
type Document struct {
	DocumentRef
	DocumentInfo
}

// PlaceholderNumber is shown when a document number cannot be resolved.
const PlaceholderNumber = "???"

// Label returns the document number, or PlaceholderNumber when it is unknown.
func (d Document) Label() string {
	if d.Number == "" {
		return PlaceholderNumber
	}
	return d.Number
}
