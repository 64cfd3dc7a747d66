package faults

import (
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	t.Run("direct fault", func(t *testing.T) {
		t.Parallel()
		err := New(KindValidation, CodeInvalidICO, "bad ico")
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Equal(t, CodeInvalidICO, CodeOf(err))
	})

	t.Run("wrapped fault keeps kind", func(t *testing.T) {
		t.Parallel()
		inner := Newf(KindIllegalTransition, CodeBadTransition, "cannot approve in %s", "error")
		wrapped := fmt.Errorf("handler: %w", inner)
		assert.Equal(t, KindIllegalTransition, KindOf(wrapped))
		assert.Equal(t, CodeBadTransition, CodeOf(wrapped))
	})

	t.Run("unclassified error", func(t *testing.T) {
		t.Parallel()
		err := eris.New("plain failure")
		assert.Equal(t, Kind(""), KindOf(err))
		assert.Equal(t, "", CodeOf(err))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, Kind(""), KindOf(nil))
	})
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := eris.New("registry returned 500")
	err := Wrap(KindEnrichment, CodeRegistryLookup, cause, "lookup failed")

	assert.True(t, IsKind(err, KindEnrichment))
	assert.False(t, IsKind(err, KindValidation))
	assert.Contains(t, err.Error(), "lookup failed")
}
