package service

import (
	"quote-service/internal/quote/model"
)

// DescriptionIndex — обратный индекс, слово описания → позиции товаров в каталоге.
// Строится один раз на каталог; при перезагрузке каталога строится новый.
type DescriptionIndex struct {
	catalog  *Catalog
	postings map[string][]int
}

func BuildIndex(c *Catalog) *DescriptionIndex {
	idx := &DescriptionIndex{
		catalog:  c,
		postings: make(map[string][]int),
	}
	for i, p := range c.products {
		seen := make(map[string]struct{})
		for _, w := range keywords(p.Description) {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			idx.postings[w] = append(idx.postings[w], i)
		}
	}
	return idx
}

// Lookup возвращает товары слова в порядке каталога; пусто, если слова нет.
func (idx *DescriptionIndex) Lookup(token string) []model.Product {
	pos := idx.postings[token]
	if len(pos) == 0 {
		return nil
	}
	out := make([]model.Product, 0, len(pos))
	for _, i := range pos {
		out = append(out, idx.catalog.products[i])
	}
	return out
}

// Len: число проиндексированных слов.
func (idx *DescriptionIndex) Len() int { return len(idx.postings) }
