package model

// FieldType is the semantic category of an extracted field.
type FieldType string

const (
	FieldVendor        FieldType = "vendor"
	FieldCustomer      FieldType = "customer"
	FieldAmount        FieldType = "amount"
	FieldDate          FieldType = "date"
	FieldInvoiceNumber FieldType = "invoice_number"
	FieldTax           FieldType = "tax"
	FieldSubtotal      FieldType = "subtotal"
	FieldDueDate       FieldType = "due_date"
	FieldPaymentMethod FieldType = "payment_method"
	FieldItem          FieldType = "item"
)

// SourceManual marks a field value supplied by a human reviewer. Manual
// values outrank every provider and registry source.
const SourceManual = "manual"

// Alternative is one ranked reconciliation candidate. Alternatives hold the
// full candidate list in descending confidence order, winner first, and are
// immutable once extraction completes.
type Alternative struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Provider   string  `json:"provider"`
}

// FieldRecord is a single canonical field on a document. Value always equals
// either Alternatives[0] or a human-supplied override.
type FieldRecord struct {
	ID             string        `json:"id"`
	Key            string        `json:"key"` // canonical field name, e.g. "vendor.ico"
	Type           FieldType     `json:"type"`
	Label          string        `json:"label"`
	Value          string        `json:"value"`
	Confidence     float64       `json:"confidence"`
	SourceProvider string        `json:"source_provider"`
	RawText        string        `json:"raw_text,omitempty"`
	Alternatives   []Alternative `json:"alternatives,omitempty"`
	Editable       bool          `json:"editable"`
	Enriched       bool          `json:"enriched"`
}

// ProviderResult records the outcome of a single extraction provider run.
// Produced once per provider per document; never mutated.
type ProviderResult struct {
	Provider         string  `json:"provider"`
	Confidence       float64 `json:"confidence"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
	Success          bool    `json:"success"`
	TextLength       int     `json:"text_length"`
	Error            string  `json:"error,omitempty"`
}
