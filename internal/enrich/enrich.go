// Package enrich merges company-registry lookups into vendor/customer
// fields without destroying higher-confidence extracted data.
package enrich

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dobby152/askelio-sub001/internal/faults"
	"github.com/dobby152/askelio-sub001/internal/model"
	"github.com/dobby152/askelio-sub001/pkg/ares"
)

// DefaultTrust is the confidence assigned to registry data. Fields already
// at or above this confidence are never overwritten by enrichment.
const DefaultTrust = 0.95

const registrySource = "ares"

// Merger applies registry lookups to documents.
type Merger struct {
	registry ares.Client
	trust    float64
	now      func() time.Time
}

// Option configures a Merger.
type Option func(*Merger)

// WithTrust overrides the enrichment-trust threshold.
func WithTrust(trust float64) Option {
	return func(m *Merger) { m.trust = trust }
}

// WithNow fixes the clock for testing.
func WithNow(now func() time.Time) Option {
	return func(m *Merger) { m.now = now }
}

// NewMerger creates a Merger backed by the given registry client.
func NewMerger(registry ares.Client, opts ...Option) *Merger {
	m := &Merger{
		registry: registry,
		trust:    DefaultTrust,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enrich looks up the subject's registry id and merges the result into the
// document. The id is read from the subject's ico field and validated
// locally before any network call. A lookup failure is recorded in the
// returned EnrichmentResult and never mutates fields. Enrichment against a
// completed document is discarded to preserve the terminal-state invariant.
func (m *Merger) Enrich(ctx context.Context, doc *model.Document, subject model.EnrichmentSubject) (*model.EnrichmentResult, error) {
	if doc.Status == model.StatusCompleted {
		zap.L().Debug("enrich: dropping result for completed document",
			zap.String("document_id", doc.ID),
			zap.String("subject", string(subject)),
		)
		return nil, nil
	}

	icoKey := fmt.Sprintf("%s.ico", subject)
	icoField := doc.FieldByKey(icoKey)
	if icoField == nil {
		return nil, faults.Newf(faults.KindValidation, faults.CodeInvalidICO,
			"enrich: document %s has no %s field", doc.ID, icoKey)
	}
	ico := icoField.Value
	if err := ValidateICO(ico); err != nil {
		return nil, err
	}

	res := model.EnrichmentResult{
		Subject:    subject,
		RegistryID: ico,
		EnrichedAt: m.now().UTC(),
	}

	record, err := m.registry.Lookup(ctx, ico)
	if err != nil {
		res.Success = false
		res.Error = err.Error()
		doc.SetEnrichment(res)
		doc.UpdatedAt = m.now().UTC()
		zap.L().Warn("enrich: registry lookup failed",
			zap.String("document_id", doc.ID),
			zap.String("ico", ico),
			zap.Error(err),
		)
		return &res, nil
	}

	m.merge(doc, subject, record, &res)
	icoField.Enriched = true

	res.Success = true
	doc.SetEnrichment(res)
	doc.UpdatedAt = m.now().UTC()

	zap.L().Info("enrich: registry data merged",
		zap.String("document_id", doc.ID),
		zap.String("subject", string(subject)),
		zap.String("ico", ico),
		zap.Int("notes", len(res.Notes)),
	)
	return &res, nil
}

// merge applies one registry value per mapped field under the trust policy:
// registry data overwrites a field only when the field is absent or its
// confidence is below the trust threshold. Fields at or above the threshold,
// and fields holding a human override, are annotated enriched for
// informational display but keep their value.
func (m *Merger) merge(doc *model.Document, subject model.EnrichmentSubject, record *ares.CompanyRecord, res *model.EnrichmentResult) {
	fieldType := model.FieldVendor
	if subject == model.SubjectCustomer {
		fieldType = model.FieldCustomer
	}

	type mergeTarget struct {
		key   string
		label string
		value string
		match func(existing string) bool
	}
	targets := []mergeTarget{
		{
			key: fmt.Sprintf("%s.name", subject), label: labelFor(subject, "name"),
			value: record.Name,
			match: func(existing string) bool { return namesMatch(existing, record.Name) },
		},
		{
			key: fmt.Sprintf("%s.dic", subject), label: labelFor(subject, "dic"),
			value: record.DIC,
			match: func(existing string) bool { return foldName(existing) == foldName(record.DIC) },
		},
		{
			key: fmt.Sprintf("%s.address", subject), label: labelFor(subject, "address"),
			value: record.Address,
			match: func(existing string) bool { return namesMatch(existing, record.Address) },
		},
		{
			key: fmt.Sprintf("%s.legal_form", subject), label: labelFor(subject, "legal_form"),
			value: record.LegalForm,
			match: func(existing string) bool { return foldName(existing) == foldName(record.LegalForm) },
		},
	}

	for _, t := range targets {
		if t.value == "" {
			continue
		}
		field := doc.FieldByKey(t.key)
		switch {
		case field == nil:
			doc.Fields = append(doc.Fields, model.FieldRecord{
				ID:             fmt.Sprintf("f%d", len(doc.Fields)+1),
				Key:            t.key,
				Type:           fieldType,
				Label:          t.label,
				Value:          t.value,
				Confidence:     m.trust,
				SourceProvider: registrySource,
				Editable:       true,
				Enriched:       true,
			})
			res.Notes = append(res.Notes, fmt.Sprintf("%s added from registry", t.key))

		case field.SourceProvider != model.SourceManual && field.Confidence < m.trust:
			if field.Value != t.value {
				res.Notes = append(res.Notes, fmt.Sprintf("%s replaced %q with registry value", t.key, field.Value))
			}
			field.Value = t.value
			field.Confidence = m.trust
			field.SourceProvider = registrySource
			field.Enriched = true

		default:
			// Trusted extraction or a human override wins; only cross-validate.
			field.Enriched = true
			if t.match(field.Value) {
				res.Notes = append(res.Notes, fmt.Sprintf("%s confirmed by registry", t.key))
			} else {
				res.Notes = append(res.Notes, fmt.Sprintf("%s differs from registry value %q", t.key, t.value))
			}
		}
	}

	if !record.IsActive {
		res.Notes = append(res.Notes, "subject is no longer active in the registry")
	}
	if record.IsVATPayer {
		res.Notes = append(res.Notes, "subject is a registered VAT payer")
	}
}

func labelFor(subject model.EnrichmentSubject, part string) string {
	party := "dodavatele"
	if subject == model.SubjectCustomer {
		party = "odběratele"
	}
	switch part {
	case "name":
		if subject == model.SubjectCustomer {
			return "Odběratel"
		}
		return "Dodavatel"
	case "dic":
		return "DIČ " + party
	case "address":
		return "Adresa " + party
	case "legal_form":
		return "Právní forma " + party
	default:
		return part
	}
}
