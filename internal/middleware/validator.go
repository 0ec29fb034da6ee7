package middleware

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

// Input validation and sanitization utilities

var (
	rxFileName = regexp.MustCompile(`^[^/\\\x00]{1,255}$`)
	rxScanID   = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)
)

// ValidateLanguage normalizes the language, defaulting to python
func ValidateLanguage(lang string) (analysis.Language, error) {
	l := analysis.Language(strings.ToLower(strings.TrimSpace(lang)))
	if l == "" {
		return analysis.LanguagePython, nil
	}
	if !l.Valid() {
		return "", fmt.Errorf("invalid language: %s (allowed: python, javascript)", lang)
	}
	return l, nil
}

// ValidateURL validates repository URLs
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (allowed: http, https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	// SSRF protection on literal hosts
	host := strings.ToLower(u.Hostname())
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("localhost/internal IPs are not allowed")
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsUnspecified() {
			return fmt.Errorf("localhost/internal IPs are not allowed")
		}
		if ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return fmt.Errorf("private IP ranges are not allowed")
		}
	}

	return nil
}

// ValidateFileName accepts a bare file name as used by the result cache
func ValidateFileName(name string) error {
	if !rxFileName.MatchString(name) {
		return fmt.Errorf("invalid file name %q", name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("path traversal detected")
	}
	return nil
}

// ValidateScanID backend ids are opaque but must be path-safe
func ValidateScanID(scanID string) error {
	if scanID == "" {
		return fmt.Errorf("scan ID cannot be empty")
	}
	if !rxScanID.MatchString(scanID) {
		return fmt.Errorf("invalid scan ID format")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidatePage validates page number
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}
