package normalize

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/dobby152/askelio-sub001/internal/model"
)

// FieldMapping maps one raw provider field name to its canonical identity.
type FieldMapping struct {
	Type  model.FieldType `yaml:"type"`
	Label string          `yaml:"label"`
	// Key is the canonical field key aliases collapse to. Empty means the
	// raw name already is the canonical key.
	Key string `yaml:"key,omitempty"`
}

// Mapping is the fixed lookup table from raw field names to canonical
// (type, label) pairs. Unknown names fall through to type item.
type Mapping struct {
	byName map[string]FieldMapping
}

// metadataFields are provider bookkeeping entries, never document fields.
var metadataFields = map[string]bool{
	"extracted_at":      true,
	"extraction_method": true,
}

// defaultMappings covers the field names the Czech and English invoice
// providers are known to emit.
var defaultMappings = map[string]FieldMapping{
	"vendor.name":       {Type: model.FieldVendor, Label: "Dodavatel"},
	"vendor_name":       {Type: model.FieldVendor, Label: "Dodavatel", Key: "vendor.name"},
	"vendor.ico":        {Type: model.FieldVendor, Label: "IČO dodavatele"},
	"vendor_ico":        {Type: model.FieldVendor, Label: "IČO dodavatele", Key: "vendor.ico"},
	"vendor.dic":        {Type: model.FieldVendor, Label: "DIČ dodavatele"},
	"vendor_dic":        {Type: model.FieldVendor, Label: "DIČ dodavatele", Key: "vendor.dic"},
	"vendor.address":    {Type: model.FieldVendor, Label: "Adresa dodavatele"},
	"vendor.legal_form": {Type: model.FieldVendor, Label: "Právní forma dodavatele"},
	"customer.name":     {Type: model.FieldCustomer, Label: "Odběratel"},
	"customer_name":     {Type: model.FieldCustomer, Label: "Odběratel", Key: "customer.name"},
	"customer.ico":      {Type: model.FieldCustomer, Label: "IČO odběratele"},
	"customer_ico":      {Type: model.FieldCustomer, Label: "IČO odběratele", Key: "customer.ico"},
	"customer.dic":      {Type: model.FieldCustomer, Label: "DIČ odběratele"},
	"customer_dic":      {Type: model.FieldCustomer, Label: "DIČ odběratele", Key: "customer.dic"},
	"customer.address":  {Type: model.FieldCustomer, Label: "Adresa odběratele"},
	"total_amount":      {Type: model.FieldAmount, Label: "Celková částka"},
	"amount":            {Type: model.FieldAmount, Label: "Celková částka", Key: "total_amount"},
	"date":              {Type: model.FieldDate, Label: "Datum vystavení"},
	"issue_date":        {Type: model.FieldDate, Label: "Datum vystavení", Key: "date"},
	"invoice_number":    {Type: model.FieldInvoiceNumber, Label: "Číslo faktury"},
	"tax":               {Type: model.FieldTax, Label: "DPH"},
	"vat_amount":        {Type: model.FieldTax, Label: "DPH", Key: "tax"},
	"subtotal":          {Type: model.FieldSubtotal, Label: "Základ daně"},
	"due_date":          {Type: model.FieldDueDate, Label: "Datum splatnosti"},
	"payment_method":    {Type: model.FieldPaymentMethod, Label: "Způsob úhrady"},
	"variable_symbol":   {Type: model.FieldItem, Label: "Variabilní symbol"},
	"bank_account":      {Type: model.FieldItem, Label: "Bankovní účet"},
	"currency":          {Type: model.FieldItem, Label: "Měna"},
}

// DefaultMapping returns the built-in lookup table.
func DefaultMapping() *Mapping {
	byName := make(map[string]FieldMapping, len(defaultMappings))
	for k, v := range defaultMappings {
		byName[k] = v
	}
	return &Mapping{byName: byName}
}

// LoadMapping extends the default table with entries from a YAML file of
// the form `field_name: {type: vendor, label: "..."}`.
func LoadMapping(path string) (*Mapping, error) {
	m := DefaultMapping()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "normalize: read mapping %s", path)
	}
	var extra map[string]FieldMapping
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, eris.Wrap(err, "normalize: parse mapping")
	}
	for name, fm := range extra {
		m.byName[name] = fm
	}
	return m, nil
}

// Lookup resolves a raw field name. Unknown names map to type item with the
// raw name as label, per the canonical-set contract.
func (m *Mapping) Lookup(name string) FieldMapping {
	if fm, ok := m.byName[name]; ok {
		return fm
	}
	return FieldMapping{Type: model.FieldItem, Label: name}
}

// IsMetadata reports whether the raw field is provider bookkeeping to skip.
func (m *Mapping) IsMetadata(name string) bool {
	return metadataFields[name]
}
