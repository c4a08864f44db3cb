package parcel

import (
	"strconv"
	"strings"
)

// Str returns a pointer to s, or nil when s is empty after trimming.
func Str(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// Deref returns *s or "" when s is nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OrZero returns *v or 0 when v is nil.
func OrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// FlagValue returns 1 for a set flag and 0 for an unset or missing one.
func FlagValue(b *bool) float64 {
	if b != nil && *b {
		return 1
	}
	return 0
}

// ParseNumber parses a numeric field leniently. Thousands separators are
// stripped. An empty string is missing (ok == false); any other unparseable
// text counts as zero.
func ParseNumber(s string) (v float64, ok bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, true
	}
	return f, true
}

// Number is ParseNumber returning a nullable pointer.
func Number(s string) *float64 {
	v, ok := ParseNumber(s)
	if !ok {
		return nil
	}
	return &v
}

// Flag parses a 0/1 flag column. Empty is missing; any non-zero number
// (including "1.0") is set.
func Flag(s string) *bool {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return nil
	case "true", "t", "yes", "y":
		return Bool(true)
	case "false", "f", "no", "n":
		return Bool(false)
	}
	v, ok := ParseNumber(s)
	if !ok {
		return nil
	}
	return Bool(v != 0)
}

// PrimaryCode returns the authoritative entry of a semicolon-joined zoning
// code list: the text before the first semicolon, trimmed.
func PrimaryCode(code string) string {
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}
	return strings.TrimSpace(code)
}

// FormatFloat renders a number for the on-disk tables. Nil renders empty.
func FormatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FormatFlag renders a flag as "0"/"1". Nil renders empty.
func FormatFlag(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "1"
	}
	return "0"
}
