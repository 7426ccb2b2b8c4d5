package types

import "time"

// LinkType is the semantic tag of a link. It does not affect reachability.
type LinkType string

// Link types accepted on creation. Values outside this set may still be read
// back from storage written by newer versions and are passed through as-is.
const (
	LinkTypeReply    LinkType = "reply"     // target answers source
	LinkTypeFollowUp LinkType = "follow_up" // source is issued in execution of target
	LinkTypeRelated  LinkType = "related"   // free association
)

// ValidLinkType reports whether t is one of the link types accepted on creation.
func ValidLinkType(t LinkType) bool {
	switch t {
	case LinkTypeReply, LinkTypeFollowUp, LinkTypeRelated:
		return true
	}
	return false
}

// Label maps a link type to its display string. Unknown types are returned
// unchanged.
func (t LinkType) Label() string {
	switch t {
	case LinkTypeReply:
		return "reply"
	case LinkTypeFollowUp:
		return "follow-up"
	case LinkTypeRelated:
		return "related"
	default:
		return string(t)
	}
}

// Link represents a directed edge between two documents.
type Link struct {
	// LinkID is a UUID v7, generated on creation.
	LinkID string `json:"link_id"`

	SourceKind DocumentKind `json:"source_kind"`
	SourceID   string       `json:"source_id"`
	TargetKind DocumentKind `json:"target_kind"`
	TargetID   string       `json:"target_id"`

	LinkType LinkType `json:"link_type"`

	// CreatedBy is the actor that created the link.
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Source returns the reference of the link's source document.
func (l Link) Source() DocumentRef {
	return DocumentRef{ID: l.SourceID, Kind: l.SourceKind}
}

// Target returns the reference of the link's target document.
func (l Link) Target() DocumentRef {
	return DocumentRef{ID: l.TargetID, Kind: l.TargetKind}
}

// Other returns the end of the link that is not d. The second result is
// false when d is not an end of the link.
func (l Link) Other(d DocumentRef) (DocumentRef, bool) {
	switch d {
	case l.Source():
		return l.Target(), true
	case l.Target():
		return l.Source(), true
	}
	return DocumentRef{}, false
}

// NewLink carries the arguments of LinkStore.CreateLink.
type NewLink struct {
	Source   DocumentRef
	Target   DocumentRef
	LinkType LinkType
	ActorID  string
}

// Validate checks the argument invariants that do not need storage: known
// kinds, non-empty IDs, an accepted link type, and no self-link.
func (n NewLink) Validate() error {
	if err := n.Source.Validate(); err != nil {
		return err
	}
	if err := n.Target.Validate(); err != nil {
		return err
	}
	if !ValidLinkType(n.LinkType) {
		return ErrInvalidLinkType
	}
	if n.Source == n.Target {
		return ErrSelfLink
	}
	return nil
}

// Direction tells how a link reads from the point of view of one document.
type Direction string

// Directions.
const (
	DirectionOutgoing Direction = "->" // the document is the link's source
	DirectionIncoming Direction = "<-" // the document is the link's target
)

// LinkView is a link incident to a document, enriched with the metadata of
// the document on the other side.
type LinkView struct {
	Link
	Direction   Direction `json:"direction"`
	Counterpart Document  `json:"counterpart"`
}
