package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// 17-char VIN alphabet excludes I, O and Q.
	reVIN   = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reCode  = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,31}$`)
	rePhone = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	reCond  = regexp.MustCompile(`^(new|used|certified_pre_owned)$`)
	reFuel  = regexp.MustCompile(`^(petrol|diesel|cng|electric|hybrid|lpg)$`)
	reTrans = regexp.MustCompile(`^(manual|automatic|amt|cvt|dct)$`)
)

// VIN trims/uppercases and checks the 17-character structure. Check-digit
// enforcement is a policy decision that lives in the VIN service.
func VIN(s string) (string, bool) {
	s = strings.ToUpper(strings.Join(strings.Fields(s), ""))
	return s, reVIN.MatchString(s)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 80 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a resource identifier (partner/vehicle ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// StoreCode validates a partner's short code used in slugs and asset paths.
func StoreCode(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, reCode.MatchString(s)
}

func Phone(s string) (string, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	return s, rePhone.MatchString(s)
}

func Condition(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, s != "" && reCond.MatchString(s)
}

func Fuel(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, s != "" && reFuel.MatchString(s)
}

func Transmission(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, s != "" && reTrans.MatchString(s)
}

// Year accepts model years from the dawn of VINs through next year's models.
func Year(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1980 || n > 2100 {
		return 0, false
	}
	return n, true
}

func Price(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return f, true
}

func Mileage(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 60 {
		return "", false
	}
	return s, true
}
