package ares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const subjectJSON = `{
	"ico": "27074358",
	"obchodniJmeno": "Acme s.r.o.",
	"dic": "CZ27074358",
	"pravniForma": "112",
	"sidlo": {"textovaAdresa": "Dlouhá 1, 110 00 Praha 1"},
	"datumZaniku": "",
	"seznamRegistraci": {"stavZdrojeDph": "AKTIVNI"}
}`

func TestLookup(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/27074358", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(subjectJSON)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))
	record, err := c.Lookup(context.Background(), "27074358")
	require.NoError(t, err)

	assert.Equal(t, "27074358", record.ICO)
	assert.Equal(t, "Acme s.r.o.", record.Name)
	assert.Equal(t, "CZ27074358", record.DIC)
	assert.Equal(t, "Dlouhá 1, 110 00 Praha 1", record.Address)
	assert.True(t, record.IsActive)
	assert.True(t, record.IsVATPayer)
}

func TestLookupDissolvedSubject(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ico":"00000019","obchodniJmeno":"Zaniklá firma","datumZaniku":"2020-06-30","seznamRegistraci":{"stavZdrojeDph":"NEEXISTUJICI"}}`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithBaseURL(srv.URL))
	record, err := c.Lookup(context.Background(), "00000019")
	require.NoError(t, err)
	assert.False(t, record.IsActive)
	assert.False(t, record.IsVATPayer)
}

func TestLookupNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"kod":"NENALEZENO"}`, http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Lookup(context.Background(), "99999999")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLookupServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Lookup(context.Background(), "27074358")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "500")
}

func TestLookupRespectsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(WithRateLimit(0.001))
	_, err := c.Lookup(ctx, "27074358")
	assert.Error(t, err)
}
