package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dobby152/askelio-sub001/internal/faults"
	"github.com/dobby152/askelio-sub001/internal/model"
	"github.com/dobby152/askelio-sub001/pkg/ares"
)

type fakeRegistry struct {
	record *ares.CompanyRecord
	err    error
	calls  int
}

func (f *fakeRegistry) Lookup(ctx context.Context, ico string) (*ares.CompanyRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
}

func reviewDoc(fields ...model.FieldRecord) *model.Document {
	return &model.Document{
		ID:     "doc-1",
		Status: model.StatusNeedsReview,
		Fields: fields,
	}
}

func TestEnrichMergesRegistryData(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{record: &ares.CompanyRecord{
		ICO:        "27074358",
		Name:       "Acme s.r.o.",
		DIC:        "CZ27074358",
		Address:    "Dlouhá 1, Praha",
		LegalForm:  "Společnost s ručením omezeným",
		IsActive:   true,
		IsVATPayer: true,
	}}
	m := NewMerger(registry, WithNow(fixedNow))

	doc := reviewDoc(
		model.FieldRecord{ID: "f1", Key: "vendor.ico", Value: "27074358", Confidence: 0.9, Editable: true},
		model.FieldRecord{ID: "f2", Key: "vendor.name", Value: "Acme", Confidence: 0.6, Editable: true},
	)

	res, err := m.Enrich(context.Background(), doc, model.SubjectVendor)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Success)
	assert.Equal(t, "27074358", res.RegistryID)

	// Low-confidence name is overwritten at trust confidence.
	name := doc.FieldByKey("vendor.name")
	require.NotNil(t, name)
	assert.Equal(t, "Acme s.r.o.", name.Value)
	assert.Equal(t, DefaultTrust, name.Confidence)
	assert.Equal(t, "ares", name.SourceProvider)
	assert.True(t, name.Enriched)

	// Absent dic/address/legal_form are appended from the registry.
	dic := doc.FieldByKey("vendor.dic")
	require.NotNil(t, dic)
	assert.Equal(t, "CZ27074358", dic.Value)
	assert.True(t, dic.Enriched)
	require.NotNil(t, doc.FieldByKey("vendor.address"))
	require.NotNil(t, doc.FieldByKey("vendor.legal_form"))

	assert.True(t, doc.FieldByKey("vendor.ico").Enriched)
	require.NotNil(t, doc.EnrichmentFor(model.SubjectVendor))
	assert.Contains(t, res.Notes, "subject is a registered VAT payer")
}

func TestEnrichTrustedFieldKeepsValue(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{record: &ares.CompanyRecord{
		ICO:      "27074358",
		Name:     "Acme s.r.o.",
		IsActive: true,
	}}
	m := NewMerger(registry, WithNow(fixedNow))

	doc := reviewDoc(
		model.FieldRecord{ID: "f1", Key: "vendor.ico", Value: "27074358", Confidence: 0.99, Editable: true},
		model.FieldRecord{ID: "f2", Key: "vendor.name", Value: "Acme", Confidence: 0.96, Editable: true},
	)

	res, err := m.Enrich(context.Background(), doc, model.SubjectVendor)
	require.NoError(t, err)
	require.NotNil(t, res)

	name := doc.FieldByKey("vendor.name")
	assert.Equal(t, "Acme", name.Value)
	assert.Equal(t, 0.96, name.Confidence)
	assert.True(t, name.Enriched)
	assert.Contains(t, res.Notes, "vendor.name confirmed by registry")
}

func TestEnrichManualOverrideKeepsValue(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{record: &ares.CompanyRecord{
		ICO:      "27074358",
		Name:     "Acme s.r.o.",
		IsActive: true,
	}}
	m := NewMerger(registry, WithNow(fixedNow))

	doc := reviewDoc(
		model.FieldRecord{ID: "f1", Key: "vendor.ico", Value: "27074358", Confidence: 0.9, Editable: true},
		model.FieldRecord{ID: "f2", Key: "vendor.name", Value: "Acme Corrected", Confidence: 0.6,
			SourceProvider: model.SourceManual, Editable: true},
	)

	res, err := m.Enrich(context.Background(), doc, model.SubjectVendor)
	require.NoError(t, err)
	require.NotNil(t, res)

	// A reviewer's value survives even below the trust threshold.
	name := doc.FieldByKey("vendor.name")
	assert.Equal(t, "Acme Corrected", name.Value)
	assert.Equal(t, model.SourceManual, name.SourceProvider)
	assert.True(t, name.Enriched)
	assert.Contains(t, res.Notes, `vendor.name differs from registry value "Acme s.r.o."`)
}

func TestEnrichLookupFailureRecordedWithoutMutation(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{err: eris.New("registry unavailable")}
	m := NewMerger(registry, WithNow(fixedNow))

	doc := reviewDoc(
		model.FieldRecord{ID: "f1", Key: "vendor.ico", Value: "27074358", Confidence: 0.9, Editable: true},
		model.FieldRecord{ID: "f2", Key: "vendor.name", Value: "Acme", Confidence: 0.5, Editable: true},
	)

	res, err := m.Enrich(context.Background(), doc, model.SubjectVendor)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "registry unavailable")

	// Fields are untouched; the failure is only recorded for display.
	assert.Equal(t, "Acme", doc.FieldByKey("vendor.name").Value)
	assert.Equal(t, 0.5, doc.FieldByKey("vendor.name").Confidence)
	recorded := doc.EnrichmentFor(model.SubjectVendor)
	require.NotNil(t, recorded)
	assert.False(t, recorded.Success)
}

func TestEnrichInvalidICOSkipsNetwork(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{}
	m := NewMerger(registry)

	doc := reviewDoc(
		model.FieldRecord{ID: "f1", Key: "vendor.ico", Value: "12345678", Confidence: 0.9, Editable: true},
	)

	_, err := m.Enrich(context.Background(), doc, model.SubjectVendor)
	require.Error(t, err)
	assert.Equal(t, faults.CodeInvalidICO, faults.CodeOf(err))
	assert.Equal(t, 0, registry.calls)
}

func TestEnrichMissingICOField(t *testing.T) {
	t.Parallel()

	m := NewMerger(&fakeRegistry{})
	doc := reviewDoc(model.FieldRecord{ID: "f1", Key: "vendor.name", Value: "Acme"})

	_, err := m.Enrich(context.Background(), doc, model.SubjectVendor)
	require.Error(t, err)
	assert.True(t, faults.IsKind(err, faults.KindValidation))
}

func TestEnrichCompletedDocumentDropped(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{record: &ares.CompanyRecord{ICO: "27074358", Name: "Acme"}}
	m := NewMerger(registry)

	doc := reviewDoc(model.FieldRecord{ID: "f1", Key: "vendor.ico", Value: "27074358"})
	doc.Status = model.StatusCompleted

	res, err := m.Enrich(context.Background(), doc, model.SubjectVendor)
	assert.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 0, registry.calls)
	assert.Empty(t, doc.Enrichment)
}

func TestEnrichCustomTrust(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{record: &ares.CompanyRecord{ICO: "27074358", Name: "Acme s.r.o.", IsActive: true}}
	m := NewMerger(registry, WithTrust(0.8), WithNow(fixedNow))

	doc := reviewDoc(
		model.FieldRecord{ID: "f1", Key: "vendor.ico", Value: "27074358", Confidence: 0.9, Editable: true},
		model.FieldRecord{ID: "f2", Key: "vendor.name", Value: "Acme", Confidence: 0.85, Editable: true},
	)

	_, err := m.Enrich(context.Background(), doc, model.SubjectVendor)
	require.NoError(t, err)

	// 0.85 is above the lowered threshold, so extraction wins.
	assert.Equal(t, "Acme", doc.FieldByKey("vendor.name").Value)
}
