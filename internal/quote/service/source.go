package service

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"quote-service/internal/fileio"
	"quote-service/internal/quote/model"
	"quote-service/internal/utils"
)

// RecordsFromTable переводит строки таблицы в записи каталога по маппингу колонок.
// Полностью пустые по коду и описанию строки пропускаются.
func RecordsFromTable(t fileio.Table, m model.Mapping) []model.Record {
	out := make([]model.Record, 0, len(t.Rows))
	for i, rec := range t.Rows {
		code := strings.TrimSpace(rec[resolveKey(rec, m.CodeKey)])
		desc := strings.TrimSpace(rec[resolveKey(rec, m.DescriptionKey)])
		if code == "" && desc == "" {
			continue
		}
		r := model.Record{
			Code:        code,
			Description: desc,
			Brand:       strings.TrimSpace(rec[resolveKey(rec, m.BrandKey)]),
			Category:    strings.TrimSpace(rec[resolveKey(rec, m.CategoryKey)]),
		}
		if i < len(t.Lines) {
			r.Row = t.Lines[i]
		}
		if p, ok := utils.ParsePrice(rec[resolveKey(rec, m.PriceKey)]); ok {
			r.Price = &p
		}
		out = append(out, r)
	}
	return out
}

// LoadCatalogFile читает прайс-лист (.xlsx, .xls, .csv) и строит каталог.
func LoadCatalogFile(path string, m model.Mapping) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCatalogReader(f, filepath.Base(path), m)
}

// LoadCatalogReader: то же для загруженного файла; формат по расширению filename.
func LoadCatalogReader(r io.Reader, filename string, m model.Mapping) (*Catalog, error) {
	t, err := fileio.ReadTable(r, filename, m.HeaderRow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return LoadCatalog(RecordsFromTable(t, m))
}

const (
	orderCodeKey = "codigo|código|code|sku"
	orderQtyKey  = "cantidad|qty|quantity"
)

// OrderFromTable извлекает код и количество из таблицы заказа. Если колонки
// не опознаны по заголовкам: берутся первая и вторая.
func OrderFromTable(t fileio.Table) []OrderLine {
	out := make([]OrderLine, 0, len(t.Rows))
	for _, rec := range t.Rows {
		codeKey := resolveKey(rec, orderCodeKey)
		qtyKey := resolveKey(rec, orderQtyKey)
		if codeKey == "" && len(t.Headers) > 0 {
			codeKey = t.Headers[0]
		}
		if qtyKey == "" && len(t.Headers) > 1 {
			qtyKey = t.Headers[1]
		}
		code := strings.TrimSpace(rec[codeKey])
		if code == "" {
			continue
		}
		qty := 1
		if f, ok := utils.ParseNumber(rec[qtyKey]); ok && f >= 1 {
			qty = int(math.Min(f, MaxQuantity))
		}
		out = append(out, OrderLine{Code: code, Quantity: qty})
	}
	return out
}
