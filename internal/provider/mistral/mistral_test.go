package mistral

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dobby152/askelio-sub001/internal/provider"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ocrRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pixtral-large-latest", req.Model)
		assert.Contains(t, req.Document.DocumentURL, "data:application/pdf;base64,")

		json.NewEncoder(w).Encode(ocrResponse{Pages: []ocrPage{ //nolint:errcheck
			{Index: 0, Markdown: "FAKTURA č. FV-2026-001\nIČO: 27074358"},
			{Index: 1, Markdown: "Celkem: 1 210,00"},
		}})
	}))
	t.Cleanup(srv.Close)

	p := New("test-key", "").WithEndpoint(srv.URL)
	res, err := p.Extract(context.Background(), provider.Input{
		Filename:    "invoice.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4"),
	})
	require.NoError(t, err)

	assert.Equal(t, "mistral", res.Provider)
	assert.Equal(t, ocrConfidence, res.Confidence)
	assert.Positive(t, res.TextLength)

	byName := make(map[string]string)
	for _, f := range res.Fields {
		byName[f.Name] = f.Value
	}
	assert.Equal(t, "27074358", byName["vendor.ico"])
	assert.Equal(t, "FV-2026-001", byName["invoice_number"])
	assert.Equal(t, "1210.00", byName["total_amount"])
}

func TestExtractAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	p := New("bad-key", "").WithEndpoint(srv.URL)
	_, err := p.Extract(context.Background(), provider.Input{ContentType: "image/png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestProviderIdentity(t *testing.T) {
	t.Parallel()

	p := New("k", "custom-model")
	assert.Equal(t, "mistral", p.Name())
	assert.False(t, p.Fallback())
	assert.Equal(t, "custom-model", p.model)
}
