package common

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetenvOrDefault returns the trimmed value of key, or defaultValue when the
// variable is unset or blank.
func GetenvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}

	return value
}

// GetenvFirst returns the first non-blank value among keys.
func GetenvFirst(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}

	return ""
}

// GetenvBoolOrDefault parses key as a bool.
func GetenvBoolOrDefault(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}

	return value
}

// GetenvIntOrDefault parses key as a base-10 integer.
func GetenvIntOrDefault(key string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// maxSeconds is the largest whole number of seconds a time.Duration holds.
const maxSeconds = math.MaxInt64 / int64(time.Second)

// SecondsToDuration converts whole seconds to a duration, saturating at the
// largest representable value instead of wrapping.
func SecondsToDuration(seconds int64) time.Duration {
	switch {
	case seconds > maxSeconds:
		return time.Duration(maxSeconds) * time.Second
	case seconds < -maxSeconds:
		return -time.Duration(maxSeconds) * time.Second
	default:
		return time.Duration(seconds) * time.Second
	}
}

// GetenvSecondsOrDefault reads key as a non-negative number of whole seconds.
// Negative or unparsable values yield defaultValue. Huge values saturate.
func GetenvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	seconds := GetenvIntOrDefault(key, -1)
	if seconds < 0 {
		return defaultValue
	}

	return SecondsToDuration(seconds)
}
