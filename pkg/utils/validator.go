package utils

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/finhealth/finhealth/pkg/constants"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return len(s) <= 254 && emailPattern.MatchString(s)
}

// IsValidUUID reports whether s parses as a UUID.
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// IsValidMonth reports whether s is a YYYY-MM month key.
func IsValidMonth(s string) bool {
	_, err := time.Parse(constants.MonthLayout, s)
	return err == nil
}

// IsValidFiscalMonth reports whether m is a calendar month number.
func IsValidFiscalMonth(m int) bool {
	return m >= 1 && m <= 12
}

// NormalizeMonth parses common month spellings ("2024-03", "2024/03",
// "Mar 2024", "03-2024") into the canonical YYYY-MM key.
func NormalizeMonth(s string) (string, bool) {
	layouts := []string{
		constants.MonthLayout,
		"2006/01",
		"01-2006",
		"01/2006",
		"Jan 2006",
		"January 2006",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(constants.MonthLayout), true
		}
	}
	return "", false
}
