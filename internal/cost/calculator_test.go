package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dobby152/askelio-sub001/internal/faults"
)

func TestEstimate(t *testing.T) {
	t.Parallel()

	c := NewCalculator(DefaultRates())

	t.Run("per document plus per megabyte", func(t *testing.T) {
		t.Parallel()
		// 2 MB through claude: 0.02 + 2*0.01
		got := c.Estimate(2<<20, []string{"claude"})
		assert.InDelta(t, 0.04, got, 1e-9)
	})

	t.Run("multiple providers sum", func(t *testing.T) {
		t.Parallel()
		got := c.Estimate(1<<20, []string{"claude", "mistral", "tesseract"})
		assert.InDelta(t, 0.03+0.007, got, 1e-9)
	})

	t.Run("unknown provider costs nothing", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0.0, c.Estimate(1<<20, []string{"exotic"}))
	})
}

func TestCheckCeiling(t *testing.T) {
	t.Parallel()

	c := NewCalculator(DefaultRates())

	t.Run("under ceiling passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, c.CheckCeiling(0.05, 1.0))
	})

	t.Run("over ceiling rejected", func(t *testing.T) {
		t.Parallel()
		err := c.CheckCeiling(1.5, 1.0)
		assert.Error(t, err)
		assert.Equal(t, faults.CodeCostExceeded, faults.CodeOf(err))
		assert.True(t, faults.IsKind(err, faults.KindValidation))
	})

	t.Run("zero ceiling disables check", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, c.CheckCeiling(99.0, 0))
	})
}
