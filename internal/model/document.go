package model

import "time"

// DocumentStatus is the review lifecycle state of a document.
type DocumentStatus string

const (
	StatusProcessing  DocumentStatus = "processing"
	StatusNeedsReview DocumentStatus = "needs_review"
	StatusCompleted   DocumentStatus = "completed"
	StatusError       DocumentStatus = "error"
)

// EnrichmentSubject identifies which party a registry lookup enriches.
type EnrichmentSubject string

const (
	SubjectVendor   EnrichmentSubject = "vendor"
	SubjectCustomer EnrichmentSubject = "customer"
)

// EnrichmentResult records one registry lookup attempt for a subject.
// At most one current result exists per subject; re-validation replaces it.
type EnrichmentResult struct {
	Subject    EnrichmentSubject `json:"subject"`
	RegistryID string            `json:"registry_id"`
	EnrichedAt time.Time         `json:"enriched_at"`
	Notes      []string          `json:"notes,omitempty"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
}

// EditEntry is one append-only edit log record.
type EditEntry struct {
	FieldID   string    `json:"field_id"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	Timestamp time.Time `json:"timestamp"`
}

// Document is the unit of work flowing through extraction, reconciliation,
// enrichment and review. Once status is completed it is read-only.
type Document struct {
	ID              string             `json:"id"`
	Filename        string             `json:"filename,omitempty"`
	Fields          []FieldRecord      `json:"fields"`
	ProviderResults []ProviderResult   `json:"provider_results"`
	Enrichment      []EnrichmentResult `json:"enrichment,omitempty"`
	Status          DocumentStatus     `json:"status"`
	EditHistory     []EditEntry        `json:"edit_history,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// FieldByID returns the field with the given id, or nil.
func (d *Document) FieldByID(id string) *FieldRecord {
	for i := range d.Fields {
		if d.Fields[i].ID == id {
			return &d.Fields[i]
		}
	}
	return nil
}

// FieldByKey returns the field with the given canonical key, or nil.
func (d *Document) FieldByKey(key string) *FieldRecord {
	for i := range d.Fields {
		if d.Fields[i].Key == key {
			return &d.Fields[i]
		}
	}
	return nil
}

// AggregateConfidence is the arithmetic mean of all current field
// confidences. An empty document yields 0.
func (d *Document) AggregateConfidence() float64 {
	if len(d.Fields) == 0 {
		return 0
	}
	var sum float64
	for _, f := range d.Fields {
		sum += f.Confidence
	}
	return sum / float64(len(d.Fields))
}

// SetEnrichment installs the current enrichment result for its subject,
// replacing any previous result for the same subject.
func (d *Document) SetEnrichment(res EnrichmentResult) {
	for i := range d.Enrichment {
		if d.Enrichment[i].Subject == res.Subject {
			d.Enrichment[i] = res
			return
		}
	}
	d.Enrichment = append(d.Enrichment, res)
}

// EnrichmentFor returns the current enrichment result for a subject, or nil.
func (d *Document) EnrichmentFor(subject EnrichmentSubject) *EnrichmentResult {
	for i := range d.Enrichment {
		if d.Enrichment[i].Subject == subject {
			return &d.Enrichment[i]
		}
	}
	return nil
}

// SucceededProviders counts provider results marked successful.
func (d *Document) SucceededProviders() int {
	var n int
	for _, pr := range d.ProviderResults {
		if pr.Success {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so stored documents cannot be mutated through
// shared slices.
func (d *Document) Clone() *Document {
	cp := *d
	cp.Fields = make([]FieldRecord, len(d.Fields))
	for i, f := range d.Fields {
		cp.Fields[i] = f
		if len(f.Alternatives) > 0 {
			cp.Fields[i].Alternatives = append([]Alternative(nil), f.Alternatives...)
		}
	}
	cp.ProviderResults = append([]ProviderResult(nil), d.ProviderResults...)
	cp.EditHistory = append([]EditEntry(nil), d.EditHistory...)
	cp.Enrichment = make([]EnrichmentResult, len(d.Enrichment))
	for i, e := range d.Enrichment {
		cp.Enrichment[i] = e
		if len(e.Notes) > 0 {
			cp.Enrichment[i].Notes = append([]string(nil), e.Notes...)
		}
	}
	return &cp
}
