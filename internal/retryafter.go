package internal

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const retryAfterHTTPHeader = "Retry-After"

// OptionalDuration is a duration that may be absent.
type OptionalDuration struct {
	Duration time.Duration
	// true if Duration holds a value.
	Defined bool
}

func parseDelaySeconds(s string) (time.Duration, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return time.Duration(n) * time.Second, true
}

func parseHTTPDate(s string, now time.Time) (time.Duration, bool) {
	t, err := http.ParseTime(s)
	if err != nil {
		return 0, false
	}
	d := t.Sub(now)
	if d < 0 {
		d = 0
	}
	return d, true
}

// ExtractRetryAfterHeader reads the Retry-After header of a response. Both the
// delay-seconds and the HTTP-date forms are accepted.
func ExtractRetryAfterHeader(resp *http.Response) OptionalDuration {
	if resp == nil {
		return OptionalDuration{}
	}
	return ParseRetryAfter(resp.Header.Get(retryAfterHTTPHeader), time.Now())
}

// ParseRetryAfter parses a Retry-After value relative to now.
func ParseRetryAfter(value string, now time.Time) OptionalDuration {
	value = strings.TrimSpace(value)
	if value == "" {
		return OptionalDuration{}
	}
	if d, ok := parseDelaySeconds(value); ok {
		return OptionalDuration{Duration: d, Defined: true}
	}
	if d, ok := parseHTTPDate(value, now); ok {
		return OptionalDuration{Duration: d, Defined: true}
	}
	return OptionalDuration{}
}
