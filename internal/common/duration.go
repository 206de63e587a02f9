package common

import (
	"fmt"
	"strings"
	"time"

	iso8601arse "github.com/senseyeio/duration"
)

// ValidateDuration parses a Go or ISO 8601 duration and enforces a minimum.
func ValidateDuration(duration string, minimum time.Duration) (time.Duration, error) {
	w, err := ParseDuration(duration)
	if err != nil {
		return 0, err
	}
	if w < minimum {
		return 0, fmt.Errorf("duration must be at least %s", minimum)
	}
	return w, nil
}

// ParseDuration accepts "15m", "PT15M" or a bare number of seconds.
func ParseDuration(duration string) (time.Duration, error) {

	duration = strings.TrimSpace(duration)

	if parsedDuration, err := time.ParseDuration(duration); err == nil {
		return parsedDuration, nil
	} else if IsAllDigits(duration) {
		parsedSeconds, _ := time.ParseDuration(duration + "s")
		return parsedSeconds, nil
	} else if isoDuration, err := iso8601arse.ParseISO8601(duration); err == nil {
		referenceTime := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		shiftedTime := isoDuration.Shift(referenceTime)
		return shiftedTime.Sub(referenceTime), nil
	}

	return 0, fmt.Errorf("invalid duration format: %s. Expect ISO 8601 or duration string", duration)
}
