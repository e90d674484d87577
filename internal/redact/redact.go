// Package redact bounds and sanitizes diagnostic strings before they are
// logged or shown to a caller. Provider error bodies and raw model text
// can be arbitrarily large and may echo credentials back; everything
// user-visible passes through here first.
package redact

import "regexp"

// RedactedKeyPlaceholder replaces anything that looks like a credential.
const RedactedKeyPlaceholder = "[REDACTED_KEY]"

// MaxDiagnosticLength caps how much of a raw upstream diagnostic is kept
// for display.
const MaxDiagnosticLength = 500

var (
	// API keys and bearer tokens in echoed request fragments.
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|bearer|x-api-key)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// Common provider key shapes (OpenAI sk-..., Anthropic sk-ant-...,
	// Google AIza...).
	keyShapeRegex = regexp.MustCompile(`\b(?:sk-[A-Za-z0-9_-]{8,}|AIza[A-Za-z0-9_-]{8,})\b`)
)

// Diagnostic sanitizes and truncates an upstream diagnostic string.
func Diagnostic(s string) string {
	s = apiKeyRegex.ReplaceAllString(s, "${1}${2}"+RedactedKeyPlaceholder)
	s = keyShapeRegex.ReplaceAllString(s, RedactedKeyPlaceholder)
	return Truncate(s, MaxDiagnosticLength)
}

// Error sanitizes an error's message. A nil error yields the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return Diagnostic(err.Error())
}

// Truncate cuts s to at most max bytes, appending an ellipsis marker when
// anything was dropped.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
