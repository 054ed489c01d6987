package service

import (
	"strings"
)

// minKeywordLen: короче этого слова описания не индексируются.
const minKeywordLen = 4

// normalizeText: нижний регистр, всё кроме [a-z0-9 ] → пробел.
func normalizeText(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		if isAlnum(r) || r == ' ' {
			return r
		}
		return ' '
	}, s)
}

// keywords: слова нормализованного текста длиной от minKeywordLen, с повторами.
func keywords(s string) []string {
	f := strings.Fields(normalizeText(s))
	out := f[:0]
	for _, w := range f {
		if len(w) >= minKeywordLen {
			out = append(out, w)
		}
	}
	return out
}

// splitTokens режет текст по любым последовательностям не-[a-z0-9].
// Ожидает текст уже в нижнем регистре.
func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !isAlnum(r) })
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// collapseSpaces: схлопывание пробелов
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
