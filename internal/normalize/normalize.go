// Package normalize turns heterogeneous per-provider field payloads into
// the canonical FieldRecord set. It is a pure transform: a payload that
// cannot be parsed yields zero fields for that provider, never an error.
package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/dobby152/askelio-sub001/internal/model"
)

// RawField is one field as reported by a provider, before normalization.
type RawField struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence,omitempty"`
}

// ParsePayload leniently decodes a provider payload. Two shapes are
// accepted: a JSON array of {name, value, confidence} objects, or a flat
// JSON object of name -> value pairs. Anything else yields zero fields.
func ParsePayload(provider string, data []byte) []RawField {
	if len(data) == 0 {
		return nil
	}

	var list []RawField
	if err := json.Unmarshal(data, &list); err == nil {
		return list
	}

	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		zap.L().Warn("normalize: unparseable provider payload",
			zap.String("provider", provider),
			zap.Int("bytes", len(data)),
		)
		return nil
	}

	names := make([]string, 0, len(flat))
	for name := range flat {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]RawField, 0, len(flat))
	for _, name := range names {
		fields = append(fields, RawField{
			Name:  name,
			Value: fmt.Sprintf("%v", flat[name]),
		})
	}
	return fields
}

// Normalize maps each provider's raw fields into FieldRecords. Metadata
// fields are skipped, empty values dropped, and ids are assigned from
// insertion order so edits stay addressable. Providers are walked in the
// given order to keep ids deterministic.
func Normalize(providerOrder []string, payloads map[string][]RawField, mapping *Mapping) []model.FieldRecord {
	if mapping == nil {
		mapping = DefaultMapping()
	}

	order := providerOrder
	if len(order) == 0 {
		order = make([]string, 0, len(payloads))
		for name := range payloads {
			order = append(order, name)
		}
		sort.Strings(order)
	}

	var records []model.FieldRecord
	for _, providerName := range order {
		raw, ok := payloads[providerName]
		if !ok {
			continue
		}
		for _, rf := range raw {
			if mapping.IsMetadata(rf.Name) {
				continue
			}
			if strings.TrimSpace(rf.Value) == "" {
				continue
			}
			fm := mapping.Lookup(rf.Name)
			key := fm.Key
			if key == "" {
				key = rf.Name
			}
			records = append(records, model.FieldRecord{
				ID:             fmt.Sprintf("f%d", len(records)+1),
				Key:            key,
				Type:           fm.Type,
				Label:          fm.Label,
				Value:          strings.TrimSpace(rf.Value),
				Confidence:     clamp01(rf.Confidence),
				SourceProvider: providerName,
				Editable:       true,
			})
		}
	}
	return records
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
