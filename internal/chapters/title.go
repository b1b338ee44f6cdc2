// Package chapters holds chapter title normalization and the
// filename-safe sanitizer shared by the checkpoint and debug sinks.
package chapters

import (
	"regexp"
	"strings"
	"unicode"
)

// Promotional strings some sites inject into link text and headings.
var promoTokens = []string{
	"立即阅读",
	"全文阅读",
	"最新章节",
}

var (
	reMarker     = regexp.MustCompile(`^第\s*([0-9零一二两三四五六七八九十百千万]+)\s*章\s*[:：、.\-]*\s*`)
	reUnderscore = regexp.MustCompile(`_+`)
)

// NormalizeTitle canonicalizes a raw chapter title: promo decoration is
// stripped, whitespace runs collapse to a single space, and 第N章-style
// markers get one canonical spacing. Numeric tokens are kept as-is since
// on some sites they are the only ordering information. The result is
// stable under re-normalization.
func NormalizeTitle(raw string) string {
	s := raw
	for _, tok := range promoTokens {
		s = strings.ReplaceAll(s, tok, "")
	}

	s = strings.Join(strings.Fields(s), " ")

	if m := reMarker.FindStringSubmatch(s); m != nil {
		rest := strings.TrimSpace(s[len(m[0]):])
		if rest == "" {
			return "第" + m[1] + "章"
		}
		return "第" + m[1] + "章 " + rest
	}

	return s
}

// Sanitize produces a filename-safe slug from s.
func Sanitize(s string) string {
	s = strings.ToLower(s)

	repl := []string{
		"•", "_",
		"-", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		".", "_",
		" ", "_",
		"(", "",
		")", "",
	}
	for i := 0; i < len(repl); i += 2 {
		s = strings.ReplaceAll(s, repl[i], repl[i+1])
	}

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}
	s = string(clean)

	s = reUnderscore.ReplaceAllString(s, "_")

	return strings.Trim(s, "_")
}
