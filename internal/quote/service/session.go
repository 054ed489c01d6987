package service

import (
	"fmt"
	"time"

	"quote-service/internal/quote/model"
)

// Session: пара корзина+котировка одного пользователя. Не потокобезопасна:
// вызовы одной сессии сериализует вызывающий.
type Session struct {
	ledger  *Ledger
	quote   *Quote
	history []model.QuoteRecord
}

func NewSession() *Session {
	return &Session{ledger: NewLedger()}
}

func (s *Session) Ledger() *Ledger { return s.ledger }

func (s *Session) Cart() model.CartView { return s.ledger.View() }

// AddToCart добавляет товар каталога без классификации (ручной выбор из поиска).
func (s *Session) AddToCart(e *Engine, code string) (model.CartView, error) {
	p, ok := e.Catalog().ByCode(code)
	if !ok {
		return model.CartView{}, fmt.Errorf("%w: %s", ErrProductNotFound, code)
	}
	s.ledger.AddOrIncrement(p, model.MatchUnset)
	return s.ledger.View(), nil
}

func (s *Session) SetQuantity(code string, n int) (model.CartView, error) {
	if err := s.ledger.SetQuantity(code, n); err != nil {
		return model.CartView{}, err
	}
	return s.ledger.View(), nil
}

func (s *Session) AdjustQuantity(code string, delta int) (model.CartView, error) {
	if err := s.ledger.Adjust(code, delta); err != nil {
		return model.CartView{}, err
	}
	return s.ledger.View(), nil
}

func (s *Session) RemoveFromCart(code string) (model.CartView, error) {
	if err := s.ledger.Remove(code); err != nil {
		return model.CartView{}, err
	}
	return s.ledger.View(), nil
}

// UploadDocument сверяет текст документа с каталогом и пополняет корзину.
func (s *Session) UploadDocument(e *Engine, text string) model.ReconcileReport {
	return s.report(e.Reconcile(s.ledger, text))
}

// ImportOrder кладёт строки заказа с точными количествами.
func (s *Session) ImportOrder(e *Engine, lines []OrderLine) model.ReconcileReport {
	return s.report(e.Import(s.ledger, lines))
}

func (s *Session) report(res []model.Resolution) model.ReconcileReport {
	counts := make(map[model.Pass]int)
	for _, r := range res {
		counts[r.Pass]++
	}
	if res == nil {
		res = []model.Resolution{}
	}
	return model.ReconcileReport{Resolutions: res, Counts: counts, Cart: s.ledger.View()}
}

// GenerateQuote заменяет текущую котировку новым снимком корзины; прежние
// правки котировки теряются, в журнал сессии попадает запись о новой.
// Пустая корзина: ErrEmptyCart, состояние не меняется.
func (s *Session) GenerateQuote(now time.Time, customer string) (model.QuoteView, error) {
	q, err := GenerateQuote(s.ledger, now, customer)
	if err != nil {
		return model.QuoteView{}, err
	}
	s.quote = q
	s.history = append(s.history, q.Record())
	return q.View(), nil
}

// History — сгенерированные в сессии котировки, от старых к новым.
func (s *Session) History() []model.QuoteRecord {
	return append([]model.QuoteRecord{}, s.history...)
}

func (s *Session) Quote() (model.QuoteView, error) {
	if s.quote == nil {
		return model.QuoteView{}, ErrNoQuote
	}
	return s.quote.View(), nil
}

func (s *Session) SetQuoteQuantity(code string, n int) (model.QuoteView, error) {
	if s.quote == nil {
		return model.QuoteView{}, ErrNoQuote
	}
	if err := s.quote.SetQuantity(code, n); err != nil {
		return model.QuoteView{}, err
	}
	return s.quote.View(), nil
}

func (s *Session) RemoveFromQuote(code string) (model.QuoteView, error) {
	if s.quote == nil {
		return model.QuoteView{}, ErrNoQuote
	}
	if err := s.quote.Remove(code); err != nil {
		return model.QuoteView{}, err
	}
	return s.quote.View(), nil
}

// SubstituteProduct меняет товар позиции котировки на товар каталога newCode.
// Корзина не затрагивается.
func (s *Session) SubstituteProduct(e *Engine, code, newCode string) (model.QuoteView, error) {
	if s.quote == nil {
		return model.QuoteView{}, ErrNoQuote
	}
	p, ok := e.Catalog().ByCode(newCode)
	if !ok {
		return model.QuoteView{}, fmt.Errorf("%w: %s", ErrProductNotFound, newCode)
	}
	if _, err := s.quote.Substitute(code, p); err != nil {
		return model.QuoteView{}, err
	}
	return s.quote.View(), nil
}
