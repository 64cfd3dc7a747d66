// Package anthropic implements the Claude vision extraction provider. It is
// the most capable provider in the default priority order and returns
// structured fields directly rather than plain OCR text.
package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dobby152/askelio-sub001/internal/normalize"
	"github.com/dobby152/askelio-sub001/internal/provider"
)

const extractionPrompt = `Extract all invoice fields from this document.
Respond with a JSON array only, no prose. Each element:
{"name": "<field name>", "value": "<string value>", "confidence": <0..1>}
Use these field names where applicable: vendor.name, vendor.ico, vendor.dic,
vendor.address, customer.name, customer.ico, customer.dic, total_amount,
subtotal, tax, date, due_date, invoice_number, payment_method,
variable_symbol, bank_account, currency.`

// Provider extracts invoice fields with the Claude API.
type Provider struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// New creates the Claude provider. An empty model falls back to the
// configured default at the call site.
func New(apiKey, model string) *Provider {
	return &Provider{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 2048,
	}
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "claude" }

// Fallback implements provider.Provider. Claude is a primary provider.
func (p *Provider) Fallback() bool { return false }

// Extract sends the document image to Claude and parses the structured
// field list from the response.
func (p *Provider) Extract(ctx context.Context, in provider.Input) (*provider.Result, error) {
	block, err := documentBlock(in)
	if err != nil {
		return nil, err
	}

	msg, err := p.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(
				block,
				sdk.NewTextBlock(extractionPrompt),
			),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "claude: create message")
	}

	var text strings.Builder
	for _, c := range msg.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}

	fields, err := parseFields(text.String())
	if err != nil {
		return nil, err
	}

	zap.L().Debug("claude: extraction complete",
		zap.String("model", p.model),
		zap.Int("fields", len(fields)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	return &provider.Result{
		Provider:   p.Name(),
		Fields:     fields,
		Confidence: averageConfidence(fields),
		TextLength: text.Len(),
	}, nil
}

// documentBlock wraps the upload as an image or PDF content block.
func documentBlock(in provider.Input) (sdk.ContentBlockParamUnion, error) {
	encoded := base64.StdEncoding.EncodeToString(in.Data)
	switch in.ContentType {
	case "application/pdf":
		return sdk.NewDocumentBlock(sdk.Base64PDFSourceParam{Data: encoded}), nil
	case "image/png", "image/jpeg":
		return sdk.NewImageBlockBase64(in.ContentType, encoded), nil
	default:
		return sdk.ContentBlockParamUnion{}, eris.Errorf("claude: unsupported content type %q", in.ContentType)
	}
}

// parseFields decodes the model's JSON array, tolerating surrounding prose
// or markdown fences. A response without a parseable array yields an error
// so the provider run is recorded as failed.
func parseFields(text string) ([]normalize.RawField, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, eris.New("claude: no field array in response")
	}
	var fields []normalize.RawField
	if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err != nil {
		return nil, eris.Wrap(err, "claude: parse field array")
	}
	return fields, nil
}

func averageConfidence(fields []normalize.RawField) float64 {
	if len(fields) == 0 {
		return 0
	}
	var sum float64
	for _, f := range fields {
		sum += f.Confidence
	}
	return sum / float64(len(fields))
}
