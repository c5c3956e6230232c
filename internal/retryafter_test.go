package internal

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  OptionalDuration
	}{
		{name: "empty", value: "", want: OptionalDuration{}},
		{name: "seconds", value: "120", want: OptionalDuration{Duration: 2 * time.Minute, Defined: true}},
		{name: "negative seconds", value: "-5", want: OptionalDuration{}},
		{name: "http date", value: now.Add(30 * time.Second).Format(http.TimeFormat), want: OptionalDuration{Duration: 30 * time.Second, Defined: true}},
		{name: "date in the past", value: now.Add(-time.Hour).Format(http.TimeFormat), want: OptionalDuration{Duration: 0, Defined: true}},
		{name: "garbage", value: "soon", want: OptionalDuration{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRetryAfter(tt.value, now))
		})
	}
}

func TestExtractRetryAfterHeader(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "3")
	assert.Equal(t, OptionalDuration{Duration: 3 * time.Second, Defined: true}, ExtractRetryAfterHeader(resp))
	assert.False(t, ExtractRetryAfterHeader(nil).Defined)
}
