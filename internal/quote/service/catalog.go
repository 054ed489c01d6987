package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"quote-service/internal/quote/model"
)

// folded: поля товара в нижнем регистре, считаются один раз при загрузке.
type folded struct {
	code, description, brand, category string
	codeLen                            int // длина кода в рунах
}

// Catalog: неизменяемый прайс-лист. Порядок товаров сохраняется как в источнике,
// включая дубли кодов; в карте кодов побеждает последний.
type Catalog struct {
	products []model.Product
	folded   []folded
	byCode   map[string]int
}

func EmptyCatalog() *Catalog {
	return &Catalog{byCode: map[string]int{}}
}

// LoadCatalog валидирует записи и строит каталог. Первая же плохая запись
// прерывает загрузку с ErrInvalidRecord.
func LoadCatalog(records []model.Record) (*Catalog, error) {
	c := &Catalog{
		products: make([]model.Product, 0, len(records)),
		folded:   make([]folded, 0, len(records)),
		byCode:   make(map[string]int, len(records)),
	}
	for i, rec := range records {
		p, err := toProduct(rec)
		if err != nil {
			row := rec.Row
			if row == 0 {
				row = i + 1
			}
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		code := strings.ToLower(p.Code)
		c.byCode[p.Key()] = len(c.products)
		c.products = append(c.products, p)
		c.folded = append(c.folded, folded{
			code:        code,
			description: strings.ToLower(p.Description),
			brand:       strings.ToLower(p.Brand),
			category:    strings.ToLower(p.Category),
			codeLen:     utf8.RuneCountInString(code),
		})
	}
	return c, nil
}

func toProduct(rec model.Record) (model.Product, error) {
	code := strings.TrimSpace(rec.Code)
	desc := strings.TrimSpace(rec.Description)
	switch {
	case code == "":
		return model.Product{}, fmt.Errorf("%w: missing code", ErrInvalidRecord)
	case desc == "":
		return model.Product{}, fmt.Errorf("%w: missing description for %s", ErrInvalidRecord, code)
	case rec.Price == nil:
		return model.Product{}, fmt.Errorf("%w: missing price for %s", ErrInvalidRecord, code)
	case *rec.Price < 0:
		return model.Product{}, fmt.Errorf("%w: negative price %d for %s", ErrInvalidRecord, *rec.Price, code)
	}
	return model.Product{
		Code:        code,
		Description: desc,
		Brand:       strings.TrimSpace(rec.Brand),
		Category:    strings.TrimSpace(rec.Category),
		Price:       *rec.Price,
	}, nil
}

// ByCode ищет товар без учёта регистра.
func (c *Catalog) ByCode(code string) (model.Product, bool) {
	i, ok := c.byCode[model.NormCode(code)]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) Len() int { return len(c.products) }

// At возвращает товар по позиции в каталоге.
func (c *Catalog) At(i int) model.Product { return c.products[i] }

// Products: копия последовательности товаров.
func (c *Catalog) Products() []model.Product {
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}
