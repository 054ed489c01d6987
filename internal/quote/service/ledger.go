package service

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"quote-service/internal/quote/model"
)

// MaxQuantity — верхняя граница количества одной позиции. Держит
// price*quantity и суммы в пределах int64.
const MaxQuantity = 1_000_000

func checkQuantity(n int) error {
	if n <= 0 || n > MaxQuantity {
		return fmt.Errorf("%w: %d (allowed 1..%d)", ErrInvalidQuantity, n, MaxQuantity)
	}
	return nil
}

// book: упорядоченный набор позиций по нормализованному коду.
// Порядок: порядок вставки, нужен только для отображения.
type book struct {
	items map[string]*model.Entry
	order []string
}

func newBook() book {
	return book{items: make(map[string]*model.Entry)}
}

func (b *book) Len() int { return len(b.items) }

func (b *book) Has(code string) bool {
	_, ok := b.items[model.NormCode(code)]
	return ok
}

// Get возвращает копию позиции.
func (b *book) Get(code string) (model.Entry, bool) {
	e, ok := b.items[model.NormCode(code)]
	if !ok {
		return model.Entry{}, false
	}
	return *e, true
}

// Entries: копии позиций в порядке вставки.
func (b *book) Entries() []model.Entry {
	out := make([]model.Entry, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, *b.items[k])
	}
	return out
}

func (b *book) Total() int64 {
	var t int64
	for _, e := range b.items {
		t += e.Subtotal()
	}
	return t
}

// SetQuantity задаёт точное количество. n вне 1..MaxQuantity отклоняется без
// изменений; удаление только через Remove.
func (b *book) SetQuantity(code string, n int) error {
	if err := checkQuantity(n); err != nil {
		return err
	}
	e, ok := b.items[model.NormCode(code)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, code)
	}
	e.Quantity = n
	return nil
}

// Adjust меняет количество на delta; позиция, дошедшая до нуля, удаляется.
// Рост выше MaxQuantity отклоняется без изменений.
func (b *book) Adjust(code string, delta int) error {
	key := model.NormCode(code)
	e, ok := b.items[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, code)
	}
	// e.Quantity <= MaxQuantity, так что сравнение не переполняется
	if delta > 0 && delta > MaxQuantity-e.Quantity {
		return fmt.Errorf("%w: %d%+d exceeds %d", ErrInvalidQuantity, e.Quantity, delta, MaxQuantity)
	}
	e.Quantity += delta
	if e.Quantity <= 0 {
		b.removeKey(key)
	}
	return nil
}

func (b *book) Remove(code string) error {
	key := model.NormCode(code)
	if _, ok := b.items[key]; !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, code)
	}
	b.removeKey(key)
	return nil
}

func (b *book) removeKey(key string) {
	delete(b.items, key)
	if i := slices.Index(b.order, key); i >= 0 {
		b.order = slices.Delete(b.order, i, i+1)
	}
}

func (b *book) insert(key string, e *model.Entry) {
	if _, ok := b.items[key]; !ok {
		b.order = append(b.order, key)
	}
	b.items[key] = e
}

func (b *book) views() ([]model.EntryView, int) {
	out := make([]model.EntryView, 0, len(b.order))
	items := 0
	for _, k := range b.order {
		e := b.items[k]
		items += e.Quantity
		out = append(out, model.EntryView{
			Code:        e.Product.Code,
			Description: e.Product.Description,
			Brand:       e.Product.Brand,
			Category:    e.Product.Category,
			Price:       e.Product.Price,
			Quantity:    e.Quantity,
			Match:       e.Match,
			Origin:      e.Origin,
			Subtotal:    e.Subtotal(),
		})
	}
	return out, items
}

// Ledger: живая корзина сессии.
type Ledger struct {
	book
}

func NewLedger() *Ledger {
	return &Ledger{book: newBook()}
}

// AddOrIncrement: новый код → количество 1 с данным видом совпадения;
// существующий → +1, вид совпадения не перезаписывается.
func (l *Ledger) AddOrIncrement(p model.Product, kind model.MatchKind) model.Entry {
	key := p.Key()
	if e, ok := l.items[key]; ok {
		if e.Quantity < MaxQuantity {
			e.Quantity++
		}
		return *e
	}
	e := &model.Entry{Product: p, Quantity: 1, Match: kind}
	l.insert(key, e)
	return *e
}

// Put кладёт позицию с точным количеством. Для существующего кода меняется
// только количество.
func (l *Ledger) Put(p model.Product, kind model.MatchKind, qty int) (model.Entry, error) {
	if err := checkQuantity(qty); err != nil {
		return model.Entry{}, err
	}
	key := p.Key()
	if e, ok := l.items[key]; ok {
		e.Quantity = qty
		return *e, nil
	}
	e := &model.Entry{Product: p, Quantity: qty, Match: kind}
	l.insert(key, e)
	return *e, nil
}

func (l *Ledger) View() model.CartView {
	entries, items := l.views()
	return model.CartView{Entries: entries, Items: items, Total: l.Total()}
}

// Quote: независимый снимок корзины; после генерации живёт отдельно.
type Quote struct {
	book
	ID        string
	CreatedAt time.Time
	Customer  string
	Status    model.QuoteStatus
}

// GenerateQuote копирует все позиции корзины в новую котировку для клиента
// customer (может быть пустым). Вид совпадения приводится к трём значениям
// (без классификации → exact), статус pending.
func GenerateQuote(l *Ledger, now time.Time, customer string) (*Quote, error) {
	if l.Len() == 0 {
		return nil, ErrEmptyCart
	}
	q := &Quote{
		book:      newBook(),
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		CreatedAt: now,
		Customer:  strings.TrimSpace(customer),
		Status:    model.QuoteStatusPending,
	}
	for _, k := range l.order {
		e := *l.items[k]
		e.Match = e.Match.Normalize()
		e.Origin = k
		q.insert(k, &e)
	}
	return q, nil
}

// Substitute заменяет товар позиции oldCode. Тот же код, что у позиции сейчас,
// или её исходный код (Origin) → exact, иной → approximate. При смене кода старый ключ
// удаляется, новый вставляется на его место; если под новым кодом уже была
// позиция, она перезаписывается вместе с количеством.
func (q *Quote) Substitute(oldCode string, p model.Product) (model.Entry, error) {
	oldKey := model.NormCode(oldCode)
	cur, ok := q.items[oldKey]
	if !ok {
		return model.Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, oldCode)
	}
	origin := cur.Origin
	if origin == "" {
		origin = oldKey
	}
	newKey := p.Key()
	e := &model.Entry{Product: p, Quantity: cur.Quantity, Match: model.MatchApproximate, Origin: origin}
	if newKey == oldKey || newKey == model.NormCode(origin) {
		e.Match = model.MatchExact
	}
	if newKey == oldKey {
		q.items[oldKey] = e
		return *e, nil
	}

	if _, collide := q.items[newKey]; collide {
		q.items[newKey] = e
		q.removeKey(oldKey)
		return *e, nil
	}
	i := slices.Index(q.order, oldKey)
	q.order[i] = newKey
	delete(q.items, oldKey)
	q.items[newKey] = e
	return *e, nil
}

func (q *Quote) View() model.QuoteView {
	entries, items := q.views()
	return model.QuoteView{
		ID:        q.ID,
		CreatedAt: q.CreatedAt.UTC().Format(time.RFC3339),
		Customer:  q.Customer,
		Status:    q.Status,
		Entries:   entries,
		Items:     items,
		Total:     q.Total(),
	}
}

// Record собирает запись журнала сессии; позиции сводятся в "КОДxКОЛ" через ";".
func (q *Quote) Record() model.QuoteRecord {
	parts := make([]string, 0, len(q.order))
	items := 0
	for _, k := range q.order {
		e := q.items[k]
		items += e.Quantity
		parts = append(parts, e.Product.Code+"x"+strconv.Itoa(e.Quantity))
	}
	return model.QuoteRecord{
		ID:        q.ID,
		CreatedAt: q.CreatedAt.UTC().Format(time.RFC3339),
		Customer:  q.Customer,
		Products:  strings.Join(parts, ";"),
		Items:     items,
		Total:     q.Total(),
		Status:    q.Status,
	}
}
