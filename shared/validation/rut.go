package validation

import (
	"strconv"
	"strings"
)

// NormalizeRut strips dots, dashes and spaces and upper-cases the check digit.
func NormalizeRut(rut string) string {
	r := strings.NewReplacer(".", "", "-", "", " ", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(rut)))
}

// RutCheckDigit computes the modulo-11 check digit for the numeric body of a RUT.
// Multipliers cycle 2..7 from the rightmost digit; 11 maps to "0" and 10 to "K".
func RutCheckDigit(body string) (string, bool) {
	if body == "" {
		return "", false
	}
	sum, mul := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return "", false
		}
		sum += int(c-'0') * mul
		mul++
		if mul > 7 {
			mul = 2
		}
	}
	switch dv := 11 - sum%11; dv {
	case 11:
		return "0", true
	case 10:
		return "K", true
	default:
		return strconv.Itoa(dv), true
	}
}

// ValidRut reports whether rut (any common formatting) carries a correct check digit.
func ValidRut(rut string) bool {
	clean := NormalizeRut(rut)
	if len(clean) < 2 {
		return false
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1:]
	expected, ok := RutCheckDigit(body)
	return ok && expected == dv
}

// FormatRut renders a RUT as 12.345.678-5. Invalid input is returned normalised.
func FormatRut(rut string) string {
	clean := NormalizeRut(rut)
	if len(clean) < 2 {
		return clean
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1:]

	var b strings.Builder
	for i, c := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String() + "-" + dv
}
