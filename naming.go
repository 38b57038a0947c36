package jsonkit

import (
	"strings"
	"unicode"
)

// NamingStyle maps a Go field name or map key to its wire key. It must be a
// pure function.
type NamingStyle func(name string) string

// Built-in naming styles.
var (
	// Raw leaves names untouched.
	Raw NamingStyle = func(s string) string { return s }
	// LowerCamel: "UserID" -> "userId".
	LowerCamel NamingStyle = func(s string) string { return camel(s, false) }
	// UpperCamel: "user_id" -> "UserId".
	UpperCamel NamingStyle = func(s string) string { return camel(s, true) }
	// LowerUnderscore: "UserID" -> "user_id".
	LowerUnderscore NamingStyle = func(s string) string { return underscore(s, false) }
	// UpperUnderscore: "UserID" -> "USER_ID".
	UpperUnderscore NamingStyle = func(s string) string { return underscore(s, true) }
)

// NamingStyleByName returns a built-in style: raw, lower_camel, upper_camel,
// lower_underscore or upper_underscore.
func NamingStyleByName(name string) (NamingStyle, bool) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "_")) {
	case "", "raw":
		return Raw, true
	case "lower_camel", "camel":
		return LowerCamel, true
	case "upper_camel", "pascal":
		return UpperCamel, true
	case "lower_underscore", "snake":
		return LowerUnderscore, true
	case "upper_underscore":
		return UpperUnderscore, true
	}
	return nil, false
}

// splitWords breaks an identifier at underscores, hyphens, spaces and case
// transitions. Acronym runs stay together: "HTTPServer" -> [HTTP Server].
func splitWords(s string) []string {
	var words []string
	rs := []rune(s)
	start := 0
	flush := func(end int) {
		if end > start {
			words = append(words, string(rs[start:end]))
		}
	}
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '_' || r == '-' || r == ' ' {
			flush(i)
			start = i + 1
			continue
		}
		if i == start {
			continue
		}
		prev := rs[i-1]
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush(i)
			start = i
		case unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(rs))
	return words
}

func camel(s string, upperFirst bool) string {
	words := splitWords(s)
	var b strings.Builder
	for i, w := range words {
		lw := strings.ToLower(w)
		if i == 0 && !upperFirst {
			b.WriteString(lw)
			continue
		}
		rs := []rune(lw)
		rs[0] = unicode.ToUpper(rs[0])
		b.WriteString(string(rs))
	}
	return b.String()
}

func underscore(s string, upper bool) string {
	words := splitWords(s)
	for i, w := range words {
		if upper {
			words[i] = strings.ToUpper(w)
		} else {
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, "_")
}
