package fileio

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText приводит байты документа к UTF-8. Валидный UTF-8 берётся как есть
// (без BOM); иначе кодировка определяется chardet. Нераспознанные байты
// декодируются как windows-1252, чтобы не терять текст целиком.
func DecodeText(b []byte) string {
	b = trimBOM(b)
	if utf8.Valid(b) {
		return string(b)
	}

	enc := encoding.Encoding(charmap.Windows1252)
	peek := b
	if len(peek) > 4096 {
		peek = peek[:4096]
	}
	if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
		if e := encodingFor(det.Charset); e != nil {
			enc = e
		}
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}

func encodingFor(charset string) encoding.Encoding {
	switch strings.ToLower(charset) {
	case "iso-8859-1":
		return charmap.ISO8859_1
	case "iso-8859-15":
		return charmap.ISO8859_15
	case "windows-1252":
		return charmap.Windows1252
	case "windows-1251", "cp1251":
		return charmap.Windows1251
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	}
	return nil
}

// ReadDocument возвращает текст загруженного документа: таблицы (.xlsx, .xls, .csv)
// разворачиваются построчно, остальное декодируется как текст.
func ReadDocument(r io.Reader, filename string) (string, error) {
	if IsTabular(filename) {
		rows, err := ReadRows(r, filename)
		if err != nil {
			return "", err
		}
		return FlattenRows(rows), nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return DecodeText(b), nil
}
