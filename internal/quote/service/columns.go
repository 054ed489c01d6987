package service

import (
	"regexp"
	"strings"
)

var rxNonWord = regexp.MustCompile(`[^\p{L}\p{N}%]+`)

// accents: прайс-листы приходят и с «CÓDIGO», и с «CODIGO».
var accents = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	" ", " ", " ", " ",
)

// normHeaderKey: нижний регистр, без диакритики, служебные символы → пробел.
func normHeaderKey(s string) string {
	s = accents.Replace(strings.ToLower(strings.TrimSpace(s)))
	s = rxNonWord.ReplaceAllString(s, " ")
	return collapseSpaces(s)
}

// stems: эвристики для составных заголовков ("precio venta lici 20%").
var stems = []string{"codig", "descrip", "marca", "categor", "precio", "cantid"}

// resolveKey ищет реальный ключ записи по желаемому имени.
// Альтернативы через "|": "codigo|code|sku". Пустая строка значит "не найдено".
func resolveKey(rec map[string]string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	// 1) как есть
	for _, a := range alts {
		if _, ok := rec[a]; ok {
			return a
		}
	}

	// 2) нормализованное равенство, затем вхождение
	nAlts := make([]string, 0, len(alts))
	for _, a := range alts {
		if n := normHeaderKey(a); n != "" {
			nAlts = append(nAlts, n)
		}
	}
	if len(nAlts) == 0 {
		return ""
	}
	stem := ""
	for _, s := range stems {
		if strings.Contains(nAlts[0], s) {
			stem = s
			break
		}
	}

	bestKey, bestScore := "", 0
	for k := range rec {
		nk := normHeaderKey(k)
		if nk == "" {
			continue
		}
		score := 0
		for _, n := range nAlts {
			if nk == n {
				score = max(score, 1000+len(n))
			} else if strings.Contains(nk, n) || strings.Contains(n, nk) {
				score = max(score, len(n))
			}
		}
		if stem != "" && strings.Contains(nk, stem) {
			score += 100
		}
		// при равном счёте: лексикографически меньший ключ, для детерминизма
		if score > bestScore || (score == bestScore && score > 0 && k < bestKey) {
			bestScore, bestKey = score, k
		}
	}
	return bestKey
}
