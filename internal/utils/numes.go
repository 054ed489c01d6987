package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	rxKeepNums = regexp.MustCompile(`[^\d\.,\-]`)
	// 12.990 / 1.234.567: точка как разделитель тысяч
	rxDotThousands = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
	// 12,990 / 1,234,567
	rxCommaThousands = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+$`)
)

// ParseNumber парсит числа из прайс-листов: "$ 12.990", "1.234,50", "1,234.50",
// "(500)", "2 345,6" (NBSP/NNBSP).
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	// оставить только цифры, разделители и минус (валюта, пробелы: мусор)
	s = rxKeepNums.ReplaceAllString(s, "")
	if s == "" || s == "-" {
		return 0, false
	}

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		// десятичный: тот, что правее
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case rxDotThousands.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	case rxCommaThousands.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// ParsePrice: ParseNumber с округлением до целых единиц валюты.
func ParsePrice(s string) (int64, bool) {
	f, ok := ParseNumber(s)
	if !ok {
		return 0, false
	}
	return int64(math.Round(f)), true
}
