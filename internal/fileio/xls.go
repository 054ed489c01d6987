package fileio

import (
	"bytes"
	"fmt"
	"io"

	xls "github.com/extrame/xls"
)

// старые прайс-листы Excel чаще в cp1252, реже UTF-8/latin-1
var xlsCharsets = []string{"windows-1252", "utf-8", "iso-8859-1"}

// колонки правее считаем мусором форматирования
const xlsMaxCols = 256

func openXLS(b []byte) (*xls.WorkBook, error) {
	var lastErr error
	for _, ch := range xlsCharsets {
		wb, err := xls.OpenReader(bytes.NewReader(b), ch)
		if err == nil && wb != nil {
			return wb, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("xls: open workbook: %v", lastErr)
}

// readXLS читает первый лист. Row.LastCol() у xls врёт на объединённых
// ячейках, поэтому ширина: по последней непустой ячейке во всём листе,
// и все строки выравниваются до неё.
func readXLS(r io.Reader) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	wb, err := openXLS(b)
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	n := int(sheet.MaxRow) + 1
	rows := make([][]string, n)
	width := 1
	for i := 0; i < n; i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, xlsMaxCols)
		last := -1
		for j := range cells {
			if cells[j] = normalizeCell(row.Col(j)); cells[j] != "" {
				last = j
			}
		}
		rows[i] = cells[:last+1]
		width = max(width, last+1)
	}
	for i := range rows {
		if len(rows[i]) < width {
			rows[i] = append(rows[i], make([]string, width-len(rows[i]))...)
		}
	}
	return rows, nil
}
