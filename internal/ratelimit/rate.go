package ratelimit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidRate = errors.New("invalid rate")

// Rate is a number of admissions per fixed period, written "N/period".
type Rate struct {
	Limit  int
	Period time.Duration
}

var periodUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
}

// ParseRate parses strings such as "100/h", "5/m" or "10/15m".
func ParseRate(raw string) (Rate, error) {
	countPart, periodPart, ok := strings.Cut(strings.TrimSpace(raw), "/")
	periodPart = strings.ToLower(strings.TrimSpace(periodPart))
	if !ok || periodPart == "" {
		return Rate{}, fmt.Errorf("%w: %q", ErrInvalidRate, raw)
	}

	limit, err := strconv.Atoi(strings.TrimSpace(countPart))
	if err != nil || limit <= 0 {
		return Rate{}, fmt.Errorf("%w: bad count in %q", ErrInvalidRate, raw)
	}

	unit, ok := periodUnits[periodPart[len(periodPart)-1]]
	if !ok {
		return Rate{}, fmt.Errorf("%w: bad period unit in %q", ErrInvalidRate, raw)
	}
	multiplier := 1
	if digits := periodPart[:len(periodPart)-1]; digits != "" {
		multiplier, err = strconv.Atoi(digits)
		if err != nil || multiplier <= 0 {
			return Rate{}, fmt.Errorf("%w: bad period in %q", ErrInvalidRate, raw)
		}
	}

	return Rate{Limit: limit, Period: time.Duration(multiplier) * unit}, nil
}

// Validate rejects rates that cannot form a window.
func (r Rate) Validate() error {
	if r.Limit <= 0 || r.Period <= 0 {
		return fmt.Errorf("%w: limit %d period %s", ErrInvalidRate, r.Limit, r.Period)
	}
	return nil
}

// MustParseRate is ParseRate for constant inputs.
func MustParseRate(raw string) Rate {
	r, err := ParseRate(raw)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rate) String() string {
	return fmt.Sprintf("%d/%s", r.Limit, r.Period)
}
