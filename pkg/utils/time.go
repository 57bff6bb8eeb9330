package utils

import "time"

// Timestamps are stored as RFC3339 strings so DynamoDB range keys sort
// chronologically.

func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
