// Package mistral implements the Mistral OCR extraction provider.
package mistral

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/dobby152/askelio-sub001/internal/provider"
)

const (
	defaultEndpoint = "https://api.mistral.ai/v1/ocr"
	defaultModel    = "pixtral-large-latest"

	// OCR markdown carries no per-field scores; the document-level
	// confidence applies to every parsed field.
	ocrConfidence = 0.8
)

// Provider extracts invoice fields via the Mistral OCR API followed by the
// shared line-pattern parser.
type Provider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// New creates the Mistral provider. If model is empty the default is used.
func New(apiKey, model string) *Provider {
	if model == "" {
		model = defaultModel
	}
	return &Provider{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// WithEndpoint overrides the API endpoint (used in tests).
func (p *Provider) WithEndpoint(url string) *Provider {
	p.endpoint = url
	return p
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "mistral" }

// Fallback implements provider.Provider. Mistral is a primary provider.
func (p *Provider) Fallback() bool { return false }

type ocrRequest struct {
	Model    string      `json:"model"`
	Document ocrDocument `json:"document"`
}

type ocrDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

type ocrResponse struct {
	Pages []ocrPage `json:"pages"`
}

type ocrPage struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

// Extract sends the document to Mistral OCR and parses fields from the
// returned markdown.
func (p *Provider) Extract(ctx context.Context, in provider.Input) (*provider.Result, error) {
	dataURL := "data:" + in.ContentType + ";base64," + base64.StdEncoding.EncodeToString(in.Data)

	body, err := json.Marshal(ocrRequest{
		Model:    p.model,
		Document: ocrDocument{Type: "document_url", DocumentURL: dataURL},
	})
	if err != nil {
		return nil, eris.Wrap(err, "mistral: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "mistral: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "mistral: OCR call")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "mistral: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("mistral: OCR returned %d: %s", resp.StatusCode, string(respBody))
	}

	var ocrResp ocrResponse
	if err := json.Unmarshal(respBody, &ocrResp); err != nil {
		return nil, eris.Wrap(err, "mistral: unmarshal response")
	}

	var sb strings.Builder
	for i, page := range ocrResp.Pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(page.Markdown)
	}
	text := sb.String()

	return &provider.Result{
		Provider:   p.Name(),
		Fields:     provider.ParseText(text, ocrConfidence),
		Confidence: ocrConfidence,
		TextLength: len(text),
	}, nil
}
