package service

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"quote-service/internal/quote/model"
)

// similarity — нормализованная схожесть Левенштейна 1 - d/max(len), в [0..1].
// Две пустые строки дают 0.
func similarity(a, b string) float64 {
	m := utf8.RuneCountInString(a)
	if mb := utf8.RuneCountInString(b); mb > m {
		m = mb
	}
	if m == 0 {
		return 0
	}
	d := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(d)/float64(m)
}

// BestMatch ищет код каталога, ближайший к token. Сканирует весь каталог,
// при равенстве остаётся первый по порядку. Возвращает товар, только если
// схожесть >= threshold.
//
// Разница длин даёт нижнюю границу расстояния, поэтому кандидаты, которые
// заведомо не лучше текущего или не проходят порог, пропускаются без DP.
func BestMatch(c *Catalog, token string, threshold float64) (model.Product, float64, bool) {
	tok := strings.ToLower(token)
	tl := utf8.RuneCountInString(tok)

	best := 0.0
	bestIdx := -1
	for i, f := range c.folded {
		m, diff := tl, f.codeLen-tl
		if f.codeLen > m {
			m = f.codeLen
		}
		if m == 0 {
			continue
		}
		if diff < 0 {
			diff = -diff
		}
		upper := 1 - float64(diff)/float64(m)
		if upper <= best || upper < threshold {
			continue
		}
		if s := similarity(tok, f.code); s > best {
			best = s
			bestIdx = i
		}
	}
	if bestIdx < 0 || best < threshold {
		return model.Product{}, best, false
	}
	return c.products[bestIdx], best, true
}
