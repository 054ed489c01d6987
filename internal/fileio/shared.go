package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Table: строки таблицы как map[заголовок]значение плюс порядок заголовков.
// Lines[i]: номер строки источника (1-based) для Rows[i].
type Table struct {
	Headers []string
	Rows    []map[string]string
	Lines   []int
}

// IsTabular: поддерживается ли расширение табличными ридерами.
func IsTabular(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls", ".csv":
		return true
	}
	return false
}

// ReadRows выберет парсер по расширению и вернёт сырые строки (AoA).
func ReadRows(r io.Reader, filename string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	case ".csv":
		return readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
}

// ReadTable: ReadRows + заголовки из строки headerRow (1-based).
func ReadTable(r io.Reader, filename string, headerRow int) (Table, error) {
	if headerRow <= 0 {
		headerRow = 1
	}
	rows, err := ReadRows(r, filename)
	if err != nil {
		return Table{}, err
	}
	if len(rows) == 0 {
		return Table{}, nil
	}
	h := pickHeader(rows, headerRow)
	maps, lines := rowsToMaps(rows, h, headerRow)
	return Table{Headers: h, Rows: maps, Lines: lines}, nil
}

// pickHeader: берёт строку заголовков и подставляет Column N для пустых.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, v := range h {
		v = normalizeCell(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		// повторяющиеся заголовки не должны затирать друг друга в map
		if n := seen[v]; n > 0 {
			seen[v] = n + 1
			v = fmt.Sprintf("%s (%d)", v, n+1)
		} else {
			seen[v] = 1
		}
		out[i] = v
	}
	return out
}

// rowsToMaps: конвертирует AoA в []map по заголовкам, пропуская полностью пустые строки.
func rowsToMaps(rows [][]string, headers []string, headerRow int) ([]map[string]string, []int) {
	start := headerRow // первая строка после заголовков
	var out []map[string]string
	var lines []int
	for r := start; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c := 0; c < len(headers); c++ {
			var v string
			if c < len(rec) {
				v = normalizeCell(rec[c])
			}
			if v != "" {
				empty = false
			}
			m[headers[c]] = v
		}
		if !empty {
			out = append(out, m)
			lines = append(lines, r+1)
		}
	}
	return out, lines
}

// normalizeCell: trim и NBSP/NNBSP → пробел.
func normalizeCell(s string) string {
	s = strings.NewReplacer(" ", " ", " ", " ").Replace(s)
	return strings.TrimSpace(s)
}

// FlattenRows склеивает строки таблицы в текст: ячейки через пробел, строка на строку.
func FlattenRows(rows [][]string) string {
	var b strings.Builder
	for _, rec := range rows {
		cells := make([]string, 0, len(rec))
		for _, c := range rec {
			if c = normalizeCell(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) == 0 {
			continue
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteByte('\n')
	}
	return b.String()
}
