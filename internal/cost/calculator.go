// Package cost estimates processing cost before any provider is contacted,
// so uploads exceeding the caller's ceiling are rejected locally.
package cost

import (
	"github.com/dobby152/askelio-sub001/internal/faults"
)

// ProviderRate holds per-provider document pricing.
type ProviderRate struct {
	PerDocument float64 `yaml:"per_document" mapstructure:"per_document"`
	PerMB       float64 `yaml:"per_mb" mapstructure:"per_mb"`
}

// Rates holds per-provider pricing configuration.
type Rates struct {
	Providers map[string]ProviderRate `yaml:"providers" mapstructure:"providers"`
}

// DefaultRates returns the default pricing rates per provider.
func DefaultRates() Rates {
	return Rates{
		Providers: map[string]ProviderRate{
			"claude":    {PerDocument: 0.02, PerMB: 0.01},
			"mistral":   {PerDocument: 0.005, PerMB: 0.002},
			"tesseract": {PerDocument: 0, PerMB: 0},
		},
	}
}

// Calculator computes extraction cost estimates.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Estimate returns the expected cost in USD of running the named providers
// over a document of the given size. Unknown providers cost nothing.
func (c *Calculator) Estimate(sizeBytes int64, providers []string) float64 {
	mb := float64(sizeBytes) / (1 << 20)
	var total float64
	for _, name := range providers {
		rate, ok := c.rates.Providers[name]
		if !ok {
			continue
		}
		total += rate.PerDocument + rate.PerMB*mb
	}
	return total
}

// CheckCeiling rejects an estimate above the caller's max cost. A ceiling
// of zero or below disables the check.
func (c *Calculator) CheckCeiling(estimate, maxCost float64) error {
	if maxCost <= 0 {
		return nil
	}
	if estimate > maxCost {
		return faults.Newf(faults.KindValidation, faults.CodeCostExceeded,
			"cost: estimate %.4f USD exceeds ceiling %.4f USD", estimate, maxCost)
	}
	return nil
}
