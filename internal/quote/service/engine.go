package service

import (
	"strings"

	"quote-service/internal/quote/model"
)

// Engine: каталог вместе с индексом описаний и параметрами сопоставления.
// Неизменяем; перезагрузка каталога означает новый Engine.
type Engine struct {
	catalog *Catalog
	index   *DescriptionIndex
	opts    model.Options
}

func NewEngine(c *Catalog, opts model.Options) *Engine {
	if c == nil {
		c = EmptyCatalog()
	}
	def := model.DefaultOptions()
	if opts.FuzzyThreshold <= 0 || opts.FuzzyThreshold > 1 {
		opts.FuzzyThreshold = def.FuzzyThreshold
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = def.SearchLimit
	}
	if opts.DescriptionTopN <= 0 {
		opts.DescriptionTopN = def.DescriptionTopN
	}
	return &Engine{catalog: c, index: BuildIndex(c), opts: opts}
}

func (e *Engine) Catalog() *Catalog        { return e.catalog }
func (e *Engine) Index() *DescriptionIndex { return e.index }
func (e *Engine) Options() model.Options   { return e.opts }

// Search приводит запрос к нижнему регистру; пустой запрос даёт пустой результат.
func (e *Engine) Search(query string) []model.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	return Search(e.catalog, q, e.opts.SearchLimit)
}

func (e *Engine) BestMatch(token string) (model.Product, float64, bool) {
	return BestMatch(e.catalog, token, e.opts.FuzzyThreshold)
}
