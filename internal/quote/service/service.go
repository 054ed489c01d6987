package service

import (
	"fmt"
	"sort"
	"strings"

	"quote-service/internal/quote/model"
)

const (
	fuzzyMinLen = 3
	fuzzyMaxLen = 10
	// fallbackWords: сколько слов строки берётся для повторного поиска.
	fallbackWords = 3
)

// Reconcile: сверка документа с каталогом. Четыре прохода по очереди, каждый
// сразу пишет в корзину, поэтому последующие видят результаты предыдущих:
//
//  1. точный код;
//  2. нечёткий код (токены с цифрой длиной 3..10), иначе заглушка unmatched;
//  3. частота слов описания: до TopN новых товаров, уже имеющиеся пропускаются;
//  4. построчный поиск: первый результат, уже имеющийся получает +1.
//
// Асимметрия проходов 3 и 4 (пропуск против +1) сохранена намеренно.
func (e *Engine) Reconcile(l *Ledger, text string) []model.Resolution {
	tokens := splitTokens(strings.ToLower(text))

	var out []model.Resolution
	out = append(out, e.exactPass(l, tokens)...)
	out = append(out, e.fuzzyPass(l, tokens)...)
	out = append(out, e.descriptionPass(l, text)...)
	out = append(out, e.linePass(l, text)...)
	return out
}

func (e *Engine) exactPass(l *Ledger, tokens []string) []model.Resolution {
	var out []model.Resolution
	for _, t := range tokens {
		p, ok := e.catalog.ByCode(t)
		if !ok {
			continue
		}
		ent := l.AddOrIncrement(p, model.MatchExact)
		out = append(out, model.Resolution{Pass: model.PassExact, Source: t, Code: p.Code, Match: ent.Match})
	}
	return out
}

type fuzzyHit struct {
	product model.Product
	score   float64
	ok      bool
}

func (e *Engine) fuzzyPass(l *Ledger, tokens []string) []model.Resolution {
	var out []model.Resolution
	memo := make(map[string]fuzzyHit)
	for _, t := range tokens {
		if _, exact := e.catalog.ByCode(t); exact {
			continue
		}
		if n := len(t); n < fuzzyMinLen || n > fuzzyMaxLen || !hasDigit(t) {
			continue
		}
		hit, seen := memo[t]
		if !seen {
			hit.product, hit.score, hit.ok = e.BestMatch(t)
			memo[t] = hit
		}

		if hit.ok {
			ent := l.AddOrIncrement(hit.product, model.MatchApproximate)
			score := hit.score
			out = append(out, model.Resolution{
				Pass: model.PassFuzzy, Source: t, Code: hit.product.Code, Match: ent.Match, Score: &score,
			})
			continue
		}
		ph := Placeholder(t)
		ent := l.AddOrIncrement(ph, model.MatchUnmatched)
		out = append(out, model.Resolution{Pass: model.PassFuzzy, Source: t, Code: ph.Code, Match: ent.Match})
	}
	return out
}

// Placeholder — товар-заглушка с нулевой ценой для нераспознанного кода.
func Placeholder(token string) model.Product {
	return model.Product{
		Code:        strings.ToUpper(token),
		Description: fmt.Sprintf("requested product: %s", token),
		Brand:       "N/A",
		Category:    "N/A",
		Price:       0,
	}
}

func (e *Engine) descriptionPass(l *Ledger, text string) []model.Resolution {
	hits := make(map[int]int) // позиция в каталоге → число совпавших слов
	for _, w := range keywords(text) {
		for _, pos := range e.index.postings[w] {
			hits[pos]++
		}
	}
	if len(hits) == 0 {
		return nil
	}

	cands := make([]int, 0, len(hits))
	for pos := range hits {
		cands = append(cands, pos)
	}
	// по убыванию совпадений, при равенстве: порядок каталога
	sort.Slice(cands, func(i, j int) bool {
		if hits[cands[i]] == hits[cands[j]] {
			return cands[i] < cands[j]
		}
		return hits[cands[i]] > hits[cands[j]]
	})

	var out []model.Resolution
	for _, pos := range cands {
		if len(out) >= e.opts.DescriptionTopN {
			break
		}
		p := e.catalog.products[pos]
		if l.Has(p.Code) {
			continue
		}
		ent := l.AddOrIncrement(p, model.MatchApproximate)
		out = append(out, model.Resolution{
			Pass: model.PassDescription, Source: p.Description, Code: p.Code, Match: ent.Match, Hits: hits[pos],
		})
	}
	return out
}

func (e *Engine) linePass(l *Ledger, text string) []model.Resolution {
	var out []model.Resolution
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		res := Search(e.catalog, strings.ToLower(line), 1)
		if len(res) == 0 {
			if q := fallbackQuery(line); q != "" {
				res = Search(e.catalog, q, 1)
			}
		}
		if len(res) == 0 {
			continue
		}
		// новый → approximate, имеющийся → +1 без смены вида
		ent := l.AddOrIncrement(res[0], model.MatchApproximate)
		out = append(out, model.Resolution{Pass: model.PassLine, Source: line, Code: res[0].Code, Match: ent.Match})
	}
	return out
}

// fallbackQuery: первые три слова строки длиной от трёх символов.
func fallbackQuery(line string) string {
	words := make([]string, 0, fallbackWords)
	for _, w := range strings.Fields(normalizeText(line)) {
		if len(w) < 3 {
			continue
		}
		words = append(words, w)
		if len(words) == fallbackWords {
			break
		}
	}
	return collapseSpaces(strings.Join(words, " "))
}

// OrderLine — строка заказа (код и количество).
type OrderLine struct {
	Code     string
	Quantity int
}

// aggregate суммирует количества одинаковых кодов, порядок: первое появление.
// Количества приводятся к 1..MaxQuantity.
func aggregate(lines []OrderLine) []OrderLine {
	idx := make(map[string]int)
	out := make([]OrderLine, 0, len(lines))
	for _, ln := range lines {
		key := model.NormCode(ln.Code)
		if key == "" {
			continue
		}
		qty := ln.Quantity
		if qty <= 0 {
			qty = 1
		}
		qty = min(qty, MaxQuantity)
		if i, ok := idx[key]; ok {
			out[i].Quantity = min(out[i].Quantity+qty, MaxQuantity)
			continue
		}
		idx[key] = len(out)
		out = append(out, OrderLine{Code: strings.TrimSpace(ln.Code), Quantity: qty})
	}
	return out
}

// Import кладёт в корзину строки заказа с точными количествами. Известный код
// идёт как exact, неизвестный становится заглушкой unmatched.
func (e *Engine) Import(l *Ledger, lines []OrderLine) []model.Resolution {
	var out []model.Resolution
	for _, ln := range aggregate(lines) {
		p, ok := e.catalog.ByCode(ln.Code)
		kind := model.MatchExact
		if !ok {
			p = Placeholder(strings.ToLower(ln.Code))
			kind = model.MatchUnmatched
		}
		res := model.Resolution{Pass: model.PassImport, Source: ln.Code, Code: p.Code}
		ent, err := l.Put(p, kind, ln.Quantity)
		if err != nil {
			// строка не попала в корзину, но остаётся в отчёте
			res.Match = model.MatchUnmatched
			res.Error = err.Error()
		} else {
			res.Match = ent.Match
		}
		out = append(out, res)
	}
	return out
}
