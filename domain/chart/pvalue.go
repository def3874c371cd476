package chart

import "strconv"

// FormatPValue renders p in scientific notation with two decimals of
// mantissa, e.g. 0.0000432 -> "4.32e-05".
func FormatPValue(p float64) string {
	return strconv.FormatFloat(p, 'e', 2, 64)
}
