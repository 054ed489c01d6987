package fileio

import (
	"fmt"
	"io"

	excelize "github.com/xuri/excelize/v2"
)

// xlsxSheet: активный лист книги; если он скрыт или пуст по имени, первый видимый.
func xlsxSheet(f *excelize.File) (string, error) {
	names := f.GetSheetList()
	if len(names) == 0 {
		return "", fmt.Errorf("xlsx: workbook has no sheets")
	}
	if i := f.GetActiveSheetIndex(); i >= 0 && i < len(names) {
		if ok, err := f.GetSheetVisible(names[i]); err == nil && ok {
			return names[i], nil
		}
	}
	for _, name := range names {
		if ok, err := f.GetSheetVisible(name); err == nil && ok {
			return name, nil
		}
	}
	return names[0], nil
}

// readXLSX возвращает строки листа, выровненные по самой широкой строке.
// Пустые строки между данными сохраняются: по ним считаются номера строк.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := xlsxSheet(f)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: read sheet %q: %w", sheet, err)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	for i, row := range rows {
		if len(row) < width {
			rows[i] = append(row, make([]string, width-len(row))...)
		}
	}
	return rows, nil
}
