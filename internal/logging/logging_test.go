package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.DebugLevel)

	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))

	FromContext(ctx).Debug("hello", "doc", "incoming/1")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "incoming/1")
}

func TestFromContextDefault(t *testing.T) {
	assert.Same(t, log.Default(), FromContext(context.Background()))
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))

	l := Discard()
	assert.Same(t, l, OrDiscard(l))
}
