package model

import "strings"

// MatchKind показывает, как найдена позиция: точным кодом, приблизительно или не найдена.
// Пустое значение означает «без классификации» (ручное добавление из поиска).
type MatchKind string

const (
	MatchUnset       MatchKind = ""
	MatchExact       MatchKind = "exact"
	MatchApproximate MatchKind = "approximate"
	MatchUnmatched   MatchKind = "unmatched"
)

// Normalize сводит значение к трём видам; без классификации → exact.
func (k MatchKind) Normalize() MatchKind {
	switch k {
	case MatchApproximate, MatchUnmatched:
		return k
	default:
		return MatchExact
	}
}

type Product struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
}

// Key: ключ позиции в корзине и котировке.
func (p Product) Key() string { return NormCode(p.Code) }

// NormCode: коды сравниваются без учёта регистра и краевых пробелов.
func NormCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Record: сырая строка прайс-листа до валидации.
type Record struct {
	Row         int // номер строки в источнике (1-based), 0 если неизвестен
	Code        string
	Description string
	Brand       string
	Category    string
	Price       *int64 // nil: цена отсутствует или не распознана
}

// Mapping: имена колонок прайс-листа; альтернативы через "|".
type Mapping struct {
	CodeKey        string
	DescriptionKey string
	BrandKey       string
	CategoryKey    string
	PriceKey       string
	HeaderRow      int
}

func DefaultMapping() Mapping {
	return Mapping{
		CodeKey:        "codigo|código|code|sku",
		DescriptionKey: "descripcion|descripción|description",
		BrandKey:       "marca|brand",
		CategoryKey:    "categoria|categoría|category",
		PriceKey:       "precio venta lici 20%|precio|price",
		HeaderRow:      1,
	}
}

type Options struct {
	FuzzyThreshold  float64 // порог схожести кода (0..1]
	SearchLimit     int     // максимум результатов подстрочного поиска
	DescriptionTopN int     // сколько кандидатов добавляет частотный проход
}

func DefaultOptions() Options {
	return Options{FuzzyThreshold: 0.70, SearchLimit: 20, DescriptionTopN: 5}
}

type Entry struct {
	Product  Product   `json:"product"`
	Quantity int       `json:"quantity"`
	Match    MatchKind `json:"match"`
	// Origin: код, под которым позиция попала в котировку; замены сравниваются с ним.
	Origin string `json:"origin,omitempty"`
}

func (e Entry) Subtotal() int64 { return e.Product.Price * int64(e.Quantity) }

type EntryView struct {
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Brand       string    `json:"brand"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	Quantity    int       `json:"quantity"`
	Match       MatchKind `json:"match"`
	Origin      string    `json:"origin,omitempty"`
	Subtotal    int64     `json:"subtotal"`
}

type CartView struct {
	Entries []EntryView `json:"entries"`
	Items   int         `json:"items"` // сумма количеств
	Total   int64       `json:"total"`
}

// QuoteStatus — состояние котировки в работе с клиентом.
type QuoteStatus string

const QuoteStatusPending QuoteStatus = "pending"

type QuoteView struct {
	ID        string      `json:"id"`
	CreatedAt string      `json:"createdAt"`
	Customer  string      `json:"customer,omitempty"`
	Status    QuoteStatus `json:"status"`
	Entries   []EntryView `json:"entries"`
	Items     int         `json:"items"`
	Total     int64       `json:"total"`
}

// QuoteRecord — запись журнала котировок сессии на момент генерации.
// Products — сводка вида "A100x2;B200x1".
type QuoteRecord struct {
	ID        string      `json:"id"`
	CreatedAt string      `json:"createdAt"`
	Customer  string      `json:"customer,omitempty"`
	Products  string      `json:"products"`
	Items     int         `json:"items"`
	Total     int64       `json:"total"`
	Status    QuoteStatus `json:"status"`
}

// Pass: проход сверки документа.
type Pass string

const (
	PassExact       Pass = "exact"
	PassFuzzy       Pass = "fuzzy"
	PassDescription Pass = "description"
	PassLine        Pass = "line"
	PassImport      Pass = "import"
)

// Resolution: одно применённое к корзине добавление.
type Resolution struct {
	Pass   Pass      `json:"pass"`
	Source string    `json:"source"` // токен или строка документа
	Code   string    `json:"code"`
	Match  MatchKind `json:"match"`
	Score  *float64  `json:"score,omitempty"` // схожесть для fuzzy
	Hits   int       `json:"hits,omitempty"`  // число совпавших слов для description
	Error  string    `json:"error,omitempty"` // строка не применена (import)
}

type ReconcileReport struct {
	Resolutions []Resolution `json:"resolutions"`
	Counts      map[Pass]int `json:"counts"`
	Cart        CartView     `json:"cart"`
}
