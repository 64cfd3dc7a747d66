package pipeline

import (
	"github.com/dobby152/askelio-sub001/internal/faults"
	"github.com/dobby152/askelio-sub001/internal/provider"
)

// validate rejects an upload locally before any provider is contacted.
// Checks run cheapest first: content type, size, then cost ceiling.
func (p *Pipeline) validate(in provider.Input, providers []string) error {
	if !p.typeAllowed(in.ContentType) {
		return faults.Newf(faults.KindValidation, faults.CodeUnsupportedFile,
			"pipeline: unsupported content type %q", in.ContentType)
	}

	maxBytes := int64(p.opts.MaxFileSizeMB) << 20
	if maxBytes > 0 && int64(len(in.Data)) > maxBytes {
		return faults.Newf(faults.KindValidation, faults.CodeFileTooLarge,
			"pipeline: file %s is %d bytes, limit %d", in.Filename, len(in.Data), maxBytes)
	}

	estimate := p.calculator.Estimate(int64(len(in.Data)), providers)
	return p.calculator.CheckCeiling(estimate, p.opts.MaxCostUSD)
}

func (p *Pipeline) typeAllowed(contentType string) bool {
	if len(p.opts.AllowedTypes) == 0 {
		return true
	}
	for _, t := range p.opts.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
