package utils

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func NewFalse() *bool {
	b := false
	return &b
}

// GetTypeName returns the bare struct name of T, used for cache keys.
func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

// The gestionale and the PDF extractors both report dates as DD/MM/YYYY,
// occasionally with a dash separator.
var italianDateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
}

// ParseItalianDate parses an upstream date string, returning nil for empty or
// unparseable values (enrichment fields tolerate "not yet populated").
func ParseItalianDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range italianDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// Comma-less amounts with dots in groups of three ("1.234", "12.345.678") are
// Italian thousands grouping, not decimal points.
var thousandsGroupedPattern = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)

// ParseAmount parses an upstream monetary string ("1.234,56" or "1234.56")
// into a decimal, returning zero for blank or malformed values.
func ParseAmount(value string) decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero
	}
	// Italian formatting: thousands dot, decimal comma.
	if strings.Contains(value, ",") {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.ReplaceAll(value, ",", ".")
	} else if thousandsGroupedPattern.MatchString(value) {
		value = strings.ReplaceAll(value, ".", "")
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}
