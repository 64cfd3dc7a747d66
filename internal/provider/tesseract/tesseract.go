// Package tesseract implements a local OCR fallback provider backed by the
// gosseract Tesseract binding. It is the cheapest and least capable
// provider and therefore last in the default priority order.
package tesseract

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rotisserie/eris"

	"github.com/dobby152/askelio-sub001/internal/provider"
)

// Provider extracts invoice fields via local Tesseract OCR followed by the
// shared line-pattern parser.
type Provider struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// New creates the Tesseract provider. Languages defaults to Czech+English.
func New(languages []string) *Provider {
	if len(languages) == 0 {
		languages = []string{"ces", "eng"}
	}
	return &Provider{
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "tesseract" }

// Fallback implements provider.Provider. Tesseract only runs when fallbacks
// are enabled.
func (p *Provider) Fallback() bool { return true }

// Extract runs OCR on the document image and parses candidate fields from
// the recognized text. Word-level confidences are averaged into the
// document confidence.
func (p *Provider) Extract(ctx context.Context, in provider.Input) (*provider.Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c := p.clientFactory()
	defer c.Close() //nolint:errcheck

	if err := c.SetImageFromBytes(in.Data); err != nil {
		return nil, eris.Wrap(err, "tesseract: set image")
	}
	if err := c.SetLanguage(p.languages...); err != nil {
		return nil, eris.Wrap(err, "tesseract: set languages")
	}

	text, err := c.Text()
	if err != nil {
		return nil, eris.Wrap(err, "tesseract: recognize text")
	}
	text = strings.TrimSpace(text)

	confidence := wordConfidence(c)

	return &provider.Result{
		Provider:   p.Name(),
		Fields:     provider.ParseText(text, confidence),
		Confidence: confidence,
		TextLength: len(text),
	}, nil
}

// wordConfidence averages per-word recognition confidence, scaled to [0,1].
func wordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}
