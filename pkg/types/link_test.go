package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkTypeLabel(t *testing.T) {
	tests := []struct {
		in   LinkType
		want string
	}{
		{LinkTypeReply, "reply"},
		{LinkTypeFollowUp, "follow-up"},
		{LinkTypeRelated, "related"},
		{LinkType("supersedes"), "supersedes"},
		{LinkType(""), ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Label())
		})
	}
}

func TestValidLinkType(t *testing.T) {
	assert.True(t, ValidLinkType(LinkTypeReply))
	assert.True(t, ValidLinkType(LinkTypeFollowUp))
	assert.True(t, ValidLinkType(LinkTypeRelated))
	assert.False(t, ValidLinkType("follow-up"))
	assert.False(t, ValidLinkType(""))
}

func TestLinkOther(t *testing.T) {
	l := Link{
		SourceKind: KindIncoming, SourceID: "a",
		TargetKind: KindOutgoing, TargetID: "b",
	}

	other, ok := l.Other(Ref(KindIncoming, "a"))
	require.True(t, ok)
	assert.Equal(t, Ref(KindOutgoing, "b"), other)

	other, ok = l.Other(Ref(KindOutgoing, "b"))
	require.True(t, ok)
	assert.Equal(t, Ref(KindIncoming, "a"), other)

	// Same ID with the wrong kind is a different document.
	_, ok = l.Other(Ref(KindOutgoing, "a"))
	assert.False(t, ok)
}

func TestNewLinkValidate(t *testing.T) {
	a := Ref(KindIncoming, "a")
	b := Ref(KindOutgoing, "b")

	tests := []struct {
		name    string
		req     NewLink
		wantErr error
	}{
		{
			name: "valid",
			req:  NewLink{Source: a, Target: b, LinkType: LinkTypeReply},
		},
		{
			name:    "self-link",
			req:     NewLink{Source: a, Target: a, LinkType: LinkTypeReply},
			wantErr: ErrSelfLink,
		},
		{
			name: "same id different kind is not a self-link",
			req:  NewLink{Source: a, Target: Ref(KindOutgoing, "a"), LinkType: LinkTypeRelated},
		},
		{
			name:    "empty source id",
			req:     NewLink{Source: Ref(KindIncoming, ""), Target: b, LinkType: LinkTypeReply},
			wantErr: ErrInvalidID,
		},
		{
			name:    "unknown target kind",
			req:     NewLink{Source: a, Target: Ref("memo", "b"), LinkType: LinkTypeReply},
			wantErr: ErrInvalidKind,
		},
		{
			name:    "unknown link type",
			req:     NewLink{Source: a, Target: b, LinkType: "supersedes"},
			wantErr: ErrInvalidLinkType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestErrorCategories(t *testing.T) {
	assert.ErrorIs(t, ErrDocumentNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrLinkNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrDuplicateLink, ErrConflict)
	assert.ErrorIs(t, ErrFlowTooLarge, ErrResourceExhausted)
	assert.NotErrorIs(t, ErrSelfLink, ErrNotFound)
}

func TestParseDocumentKind(t *testing.T) {
	k, err := ParseDocumentKind("incoming")
	require.NoError(t, err)
	assert.Equal(t, KindIncoming, k)

	_, err = ParseDocumentKind("internal")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestDocumentLabel(t *testing.T) {
	assert.Equal(t, PlaceholderNumber, Document{}.Label())
	assert.Equal(t, "12/3", Document{DocumentInfo: DocumentInfo{Number: "12/3"}}.Label())
}
