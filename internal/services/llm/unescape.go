package llm

import (
	"regexp"
	"strconv"
	"strings"
)

var unicodeEscapeRe = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)

// unescapeStrings walks an extracted value and rewrites literal escape
// sequences inside string leaves into their real characters. Models sometimes
// double-encode string content, leaving `\n` and friends as two-character
// sequences even after JSON decoding. Total function; containers are updated
// in place.
func unescapeStrings(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = unescapeStrings(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = unescapeStrings(e)
		}
		return t
	case string:
		return unescapeString(t)
	default:
		return v
	}
}

// unescapeString applies the specific sequences first and bare backslashes
// last; doing it in the other order would eat the backslash that introduces
// the specific sequences. Not idempotent for strings that legitimately
// contain literal backslash pairs.
func unescapeString(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\r`, "\r")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = unicodeEscapeRe.ReplaceAllStringFunc(s, func(m string) string {
		code, err := strconv.ParseUint(m[2:], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(code))
	})
	return strings.ReplaceAll(s, `\\`, `\`)
}
