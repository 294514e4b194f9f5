package validate

import (
	"regexp"
	"strings"

	"shopreel/internal/domain"
)

var (
	reZIP   = regexp.MustCompile(`^[0-9]{5,6}$`)
	rePhone = regexp.MustCompile(`^[6-9]\d{9}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reCode  = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)
)

const (
	MinQuantity = 1
	MaxQuantity = 10
)

// ID validates a simple resource identifier.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Quantity(n int) bool { return n >= MinQuantity && n <= MaxQuantity }

func Phone(s string) bool { return rePhone.MatchString(s) }

// PromoCode normalizes and validates a code's shape. Emptiness is handled
// by the caller (no code means no discount).
func PromoCode(s string) (string, bool) {
	s = domain.NormalizeCode(s)
	return s, reCode.MatchString(s)
}

// Address checks snapshot completeness and, when present, the alternate
// phone format. Returns a per-field message map; empty means valid.
func Address(a domain.AddressSnapshot) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(a.Street) == "" {
		errs["address"] = "Street address is required"
	}
	if strings.TrimSpace(a.City) == "" {
		errs["city"] = "City is required"
	}
	if strings.TrimSpace(a.State) == "" {
		errs["state"] = "State is required"
	}
	if strings.TrimSpace(a.ZipCode) == "" {
		errs["zipCode"] = "Zip code is required"
	} else if !reZIP.MatchString(a.ZipCode) {
		errs["zipCode"] = "Invalid zip code"
	}
	if a.AlternatePhone != "" && !Phone(a.AlternatePhone) {
		errs["alternatePhone"] = "Invalid alternate phone number"
	}
	return errs
}
