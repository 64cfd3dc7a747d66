// Package ares provides a client for the Czech ARES business registry,
// keyed by the 8-digit IČO company registration number.
package ares

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://ares.gov.cz/ekonomicke-subjekty-v-be/rest/ekonomicke-subjekty"

// CompanyRecord is the registry view of one economic subject.
type CompanyRecord struct {
	ICO        string `json:"ico"`
	Name       string `json:"name"`
	DIC        string `json:"dic,omitempty"`
	Address    string `json:"address,omitempty"`
	LegalForm  string `json:"legal_form,omitempty"`
	IsActive   bool   `json:"is_active"`
	IsVATPayer bool   `json:"is_vat_payer"`
}

// Client looks up company records in ARES.
type Client interface {
	Lookup(ctx context.Context, ico string) (*CompanyRecord, error)
}

// ErrNotFound is returned when the registry has no subject for the id.
var ErrNotFound = eris.New("ares: subject not found")

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the ARES endpoint (used in tests).
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithRateLimit caps requests per second against the public registry.
func WithRateLimit(rps float64) Option {
	return func(c *client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

type client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an ARES client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// aresSubject mirrors the relevant slice of the ARES REST response.
type aresSubject struct {
	ICO           string `json:"ico"`
	ObchodniJmeno string `json:"obchodniJmeno"`
	DIC           string `json:"dic"`
	PravniForma   string `json:"pravniForma"`
	Sidlo         struct {
		TextovaAdresa string `json:"textovaAdresa"`
	} `json:"sidlo"`
	DatumZaniku      string `json:"datumZaniku"`
	SeznamRegistraci struct {
		StavZdrojeDph string `json:"stavZdrojeDph"`
	} `json:"seznamRegistraci"`
}

func (c *client) Lookup(ctx context.Context, ico string) (*CompanyRecord, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "ares: rate limit wait")
		}
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, ico)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "ares: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "ares: lookup call")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ares: read response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, eris.Errorf("ares: registry returned %d: %s", resp.StatusCode, string(body))
	}

	var subject aresSubject
	if err := json.Unmarshal(body, &subject); err != nil {
		return nil, eris.Wrap(err, "ares: unmarshal response")
	}

	return &CompanyRecord{
		ICO:        subject.ICO,
		Name:       subject.ObchodniJmeno,
		DIC:        subject.DIC,
		Address:    subject.Sidlo.TextovaAdresa,
		LegalForm:  subject.PravniForma,
		IsActive:   subject.DatumZaniku == "",
		IsVATPayer: subject.SeznamRegistraci.StavZdrojeDph == "AKTIVNI",
	}, nil
}
