package service

import (
	"strings"

	"quote-service/internal/quote/model"
)

// Search: подстрочный поиск по коду, описанию, марке и категории.
// Результаты в порядке каталога, не больше limit (limit <= 0: без ограничения).
// Пустой запрос: ответственность вызывающего.
func Search(c *Catalog, query string, limit int) []model.Product {
	q := strings.ToLower(query)
	var out []model.Product
	for i, f := range c.folded {
		if strings.Contains(f.code, q) ||
			strings.Contains(f.description, q) ||
			strings.Contains(f.brand, q) ||
			strings.Contains(f.category, q) {
			out = append(out, c.products[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}
