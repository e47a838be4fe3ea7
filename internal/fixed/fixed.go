// Package fixed provides decimal-lattice arithmetic helpers.
//
// Candidate values and running sums are kept on a decimal lattice to avoid
// binary floating-point drift: a naive `for v := min; v <= max; v += step`
// loop accumulates error (0.1+0.1+0.1 != 0.3 in float64). All externally
// visible values are rounded to 6 decimal places before comparison or
// emission.
package fixed

import (
	"math"
	"strconv"
	"strings"
)

// Places is the number of decimal places values are rounded to before
// comparison or emission.
const Places = 6

// Round6 rounds x to 6 decimal places.
func Round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

// DecimalPlaces returns the number of decimal digits needed to represent x
// exactly in its shortest decimal form.
func DecimalPlaces(x float64) int {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return len(s) - i - 1
}

// Scale returns the power-of-ten factor that turns all given values into
// exact integers after multiplication and rounding.
func Scale(values ...float64) float64 {
	d := 0
	for _, v := range values {
		if p := DecimalPlaces(v); p > d {
			d = p
		}
	}
	return math.Pow10(d)
}

// FormatValue renders a lattice value in its shortest decimal form, suitable
// for CSV export and display.
func FormatValue(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
