package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dobby152/askelio-sub001/internal/normalize"
	"github.com/dobby152/askelio-sub001/internal/provider"
)

func TestParseFields(t *testing.T) {
	t.Parallel()

	t.Run("plain array", func(t *testing.T) {
		t.Parallel()
		fields, err := parseFields(`[{"name":"vendor.ico","value":"27074358","confidence":0.97}]`)
		require.NoError(t, err)
		require.Len(t, fields, 1)
		assert.Equal(t, "vendor.ico", fields[0].Name)
	})

	t.Run("array inside prose and fences", func(t *testing.T) {
		t.Parallel()
		text := "Here are the extracted fields:\n```json\n[{\"name\":\"total_amount\",\"value\":\"1210.00\",\"confidence\":0.9}]\n```\nLet me know if you need more."
		fields, err := parseFields(text)
		require.NoError(t, err)
		require.Len(t, fields, 1)
		assert.Equal(t, "total_amount", fields[0].Name)
	})

	t.Run("no array is an error", func(t *testing.T) {
		t.Parallel()
		_, err := parseFields("I could not read this document.")
		assert.Error(t, err)
	})

	t.Run("malformed array is an error", func(t *testing.T) {
		t.Parallel()
		_, err := parseFields(`[{"name": broken]`)
		assert.Error(t, err)
	})
}

func TestAverageConfidence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, averageConfidence(nil))
	fields := []normalize.RawField{{Confidence: 0.8}, {Confidence: 0.6}}
	assert.InDelta(t, 0.7, averageConfidence(fields), 1e-9)
}

func TestDocumentBlock(t *testing.T) {
	t.Parallel()

	t.Run("pdf", func(t *testing.T) {
		t.Parallel()
		_, err := documentBlock(provider.Input{ContentType: "application/pdf", Data: []byte("%PDF")})
		assert.NoError(t, err)
	})

	t.Run("image", func(t *testing.T) {
		t.Parallel()
		_, err := documentBlock(provider.Input{ContentType: "image/png", Data: []byte{0x89, 0x50}})
		assert.NoError(t, err)
	})

	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()
		_, err := documentBlock(provider.Input{ContentType: "text/html"})
		assert.Error(t, err)
	})
}

func TestProviderIdentity(t *testing.T) {
	t.Parallel()

	p := New("test-key", "claude-sonnet-4-5-20250929")
	assert.Equal(t, "claude", p.Name())
	assert.False(t, p.Fallback())
}
