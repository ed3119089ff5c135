package data

import "strings"

// CleanSymbol normalizes a symbol for cache keys and API responses:
// uppercase, trimmed, without the exchange suffix.
func CleanSymbol(symbol, suffix string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if suffix != "" {
		s = strings.TrimSuffix(s, strings.ToUpper(suffix))
	}
	return s
}

// ProviderSymbol formats a symbol for provider queries, appending the
// exchange suffix when it is not already present.
func ProviderSymbol(symbol, suffix string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if suffix == "" || strings.HasSuffix(s, strings.ToUpper(suffix)) {
		return s
	}
	return s + strings.ToUpper(suffix)
}
