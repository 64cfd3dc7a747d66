package enrich

import (
	"github.com/dobby152/askelio-sub001/internal/faults"
)

// ValidateICO checks that the id is exactly 8 digits and passes the
// weighted mod-11 checksum the registry enforces. Both failure modes map
// to the invalid_ico validation fault; no network call is ever made for
// an invalid id.
func ValidateICO(ico string) error {
	if len(ico) != 8 {
		return faults.Newf(faults.KindValidation, faults.CodeInvalidICO,
			"enrich: ico %q must be exactly 8 digits", ico)
	}
	digits := make([]int, 8)
	for i := 0; i < 8; i++ {
		c := ico[i]
		if c < '0' || c > '9' {
			return faults.Newf(faults.KindValidation, faults.CodeInvalidICO,
				"enrich: ico %q contains a non-digit", ico)
		}
		digits[i] = int(c - '0')
	}

	// Weighted checksum: first seven digits weighted 8..2, check digit is
	// (11 - sum mod 11) mod 10.
	var sum int
	for i := 0; i < 7; i++ {
		sum += digits[i] * (8 - i)
	}
	check := (11 - sum%11) % 10
	if digits[7] != check {
		return faults.Newf(faults.KindValidation, faults.CodeInvalidICO,
			"enrich: ico %q fails checksum", ico)
	}
	return nil
}
