package provider

import (
	"regexp"
	"strings"

	"github.com/dobby152/askelio-sub001/internal/normalize"
)

// Line-oriented patterns for Czech and English invoice text. OCR providers
// that return plain text run through these to produce candidate fields; the
// structured AI provider bypasses them.
var (
	icoPattern     = regexp.MustCompile(`(?i)I[ČC]O?\s*[:.]?\s*(\d{8})\b`)
	dicPattern     = regexp.MustCompile(`(?i)DI[ČC]\s*[:.]?\s*(CZ\d{8,10})\b`)
	amountPattern  = regexp.MustCompile(`(?i)(?:celkem|total|k\s*úhradě)\s*[:.]?\s*([\d\s]+[,.]\d{2})`)
	invoicePattern = regexp.MustCompile(`(?i)(?:faktura|invoice)\s*(?:č\.|c\.|no\.?|#)?\s*[:.]?\s*([A-Z0-9][A-Z0-9/-]{2,})`)
	datePattern    = regexp.MustCompile(`(?i)(?:datum vystavení|issue date|date of issue)\s*[:.]?\s*(\d{1,2}\.\s?\d{1,2}\.\s?\d{4}|\d{4}-\d{2}-\d{2})`)
	duePattern     = regexp.MustCompile(`(?i)(?:splatnost|due date)\s*[:.]?\s*(\d{1,2}\.\s?\d{1,2}\.\s?\d{4}|\d{4}-\d{2}-\d{2})`)
	vsPattern      = regexp.MustCompile(`(?i)(?:variabilní symbol|var\.?\s*symbol|VS)\s*[:.]?\s*(\d{1,10})\b`)
)

// ParseText extracts candidate invoice fields from OCR plain text. Each
// match carries the OCR confidence for the document as a whole; a second
// ICO occurrence is attributed to the customer.
func ParseText(text string, confidence float64) []normalize.RawField {
	var fields []normalize.RawField
	add := func(name, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		fields = append(fields, normalize.RawField{
			Name:       name,
			Value:      value,
			Confidence: confidence,
		})
	}

	icos := icoPattern.FindAllStringSubmatch(text, 2)
	if len(icos) > 0 {
		add("vendor.ico", icos[0][1])
	}
	if len(icos) > 1 && icos[1][1] != icos[0][1] {
		add("customer.ico", icos[1][1])
	}

	dics := dicPattern.FindAllStringSubmatch(text, 2)
	if len(dics) > 0 {
		add("vendor.dic", dics[0][1])
	}
	if len(dics) > 1 && dics[1][1] != dics[0][1] {
		add("customer.dic", dics[1][1])
	}

	if m := amountPattern.FindStringSubmatch(text); m != nil {
		add("total_amount", normalizeAmount(m[1]))
	}
	if m := invoicePattern.FindStringSubmatch(text); m != nil {
		add("invoice_number", m[1])
	}
	if m := datePattern.FindStringSubmatch(text); m != nil {
		add("date", m[1])
	}
	if m := duePattern.FindStringSubmatch(text); m != nil {
		add("due_date", m[1])
	}
	if m := vsPattern.FindStringSubmatch(text); m != nil {
		add("variable_symbol", m[1])
	}

	return fields
}

// normalizeAmount strips thousands spacing (including non-breaking spaces)
// and unifies the decimal comma.
func normalizeAmount(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)
	return strings.ReplaceAll(s, ",", ".")
}
