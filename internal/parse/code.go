// Package parse validates and extracts vehicle and storage-slot identifiers.
package parse

import (
	"fmt"
	"regexp"
	"strings"

	"vehicle-storage-backend/internal/apperr"
)

var (
	// VINs are 17 characters from the digit/letter alphabet without I, O, Q.
	vinRe   = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
	vinFind = regexp.MustCompile(`[A-HJ-NPR-Z0-9]{17}`)

	// Storage codes are two letters followed by five digits, e.g. LK12345.
	storageRe   = regexp.MustCompile(`([A-Z]{2}\d{5})`)
	storageFind = regexp.MustCompile(`\b[A-Z]{2}\d{5}\b`)

	stripRe = regexp.MustCompile(`[\s\-]`)
)

// ValidateVIN uppercases and trims raw and returns it unchanged if it is a
// well-formed 17-character VIN.
func ValidateVIN(raw string) (string, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if !vinRe.MatchString(v) {
		return "", fmt.Errorf("%w: vin %q must be 17 characters without I, O, Q", apperr.ErrValidation, raw)
	}
	return v, nil
}

// ValidateStorageCode uppercases raw, strips whitespace and hyphens, and
// returns the first two-letters-five-digits code it contains.
func ValidateStorageCode(raw string) (string, error) {
	l := strings.ToUpper(strings.TrimSpace(raw))
	l = stripRe.ReplaceAllString(l, "")
	m := storageRe.FindStringSubmatch(l)
	if m == nil {
		return "", fmt.Errorf("%w: storage code %q must contain 2 letters followed by 5 digits", apperr.ErrValidation, raw)
	}
	return m[1], nil
}

// Extracted holds identifiers found in a block of recognized text. Either
// field may be empty; at least one is set.
type Extracted struct {
	VIN         string
	StorageCode string
}

// ExtractFromText scans uppercased free text for the first VIN-shaped and the
// first storage-code-shaped substring. The two scans are independent, first
// match wins for each, and there is no cross-validation between them.
func ExtractFromText(text string) (Extracted, error) {
	upper := strings.ToUpper(text)

	var out Extracted
	if m := vinFind.FindString(upper); m != "" {
		if vin, err := ValidateVIN(m); err == nil {
			out.VIN = vin
		}
	}
	if m := storageFind.FindString(upper); m != "" {
		if code, err := ValidateStorageCode(m); err == nil {
			out.StorageCode = code
		}
	}

	if out.VIN == "" && out.StorageCode == "" {
		return Extracted{}, apperr.ErrExtraction
	}
	return out, nil
}
