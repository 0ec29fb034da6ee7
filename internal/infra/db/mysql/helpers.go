package mysql

import (
	"encoding/json"
	"strings"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// dashToEmpty reverses stringOrDash on read
func dashToEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

// jsonOrEmptyObject ensure valid json; if invalid, wrap as string field
func jsonOrEmptyObject(details string) string {
	if strings.TrimSpace(details) == "" {
		return "{}"
	}
	var js any
	if json.Unmarshal([]byte(details), &js) != nil {
		b, _ := json.Marshal(map[string]string{"raw": details})
		return string(b)
	}
	return details
}
