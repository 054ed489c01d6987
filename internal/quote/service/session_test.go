package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-service/internal/quote/model"
)

func TestSession_Flow(t *testing.T) {
	e := mustEngine(t,
		rec("A100", "filtro de aceite", 500),
		rec("B200", "pastilla de freno", 1200),
	)
	s := NewSession()

	_, err := s.GenerateQuote(time.Now(), "")
	assert.ErrorIs(t, err, ErrEmptyCart)
	_, err = s.Quote()
	assert.ErrorIs(t, err, ErrNoQuote)

	_, err = s.AddToCart(e, "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)

	cart, err := s.AddToCart(e, "a100")
	require.NoError(t, err)
	assert.Equal(t, model.MatchUnset, cart.Entries[0].Match)

	rep := s.UploadDocument(e, "a100 xyz99")
	assert.Equal(t, 1, rep.Counts[model.PassExact])
	assert.Equal(t, 1, rep.Counts[model.PassFuzzy])
	assert.Equal(t, 2, rep.Cart.Entries[0].Quantity)

	_, err = s.SetQuantity("A100", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	cart, err = s.SetQuantity("A100", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), cart.Total)

	qv, err := s.GenerateQuote(time.Now(), "")
	require.NoError(t, err)
	assert.Equal(t, cart.Total, qv.Total)
	assert.Equal(t, model.MatchExact, qv.Entries[0].Match)

	_, err = s.SubstituteProduct(e, "XYZ99", "zzz")
	assert.ErrorIs(t, err, ErrProductNotFound)
	unchanged, _ := s.Quote()
	assert.Equal(t, qv, unchanged)

	qv, err = s.SubstituteProduct(e, "XYZ99", "b200")
	require.NoError(t, err)
	assert.Equal(t, "B200", qv.Entries[1].Code)
	assert.Equal(t, model.MatchApproximate, qv.Entries[1].Match)
	assert.Equal(t, int64(2000+1200), qv.Total)

	cartNow := s.Cart()
	assert.Equal(t, "XYZ99", cartNow.Entries[1].Code, "ledger untouched by substitution")

	qv, err = s.SetQuoteQuantity("B200", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2000+2400), qv.Total)
	qv, err = s.RemoveFromQuote("A100")
	require.NoError(t, err)
	assert.Len(t, qv.Entries, 1)

	// повторная генерация отбрасывает правки котировки
	qv, err = s.GenerateQuote(time.Now(), "")
	require.NoError(t, err)
	assert.Len(t, qv.Entries, 2)
	assert.Equal(t, "XYZ99", qv.Entries[1].Code)

	_, err = s.RemoveFromCart("A100")
	require.NoError(t, err)
	cart, err = s.AdjustQuantity("XYZ99", -1)
	require.NoError(t, err)
	assert.Empty(t, cart.Entries)
}

func TestSession_ImportOrder(t *testing.T) {
	e := mustEngine(t, rec("A100", "filtro de aceite", 500))
	s := NewSession()
	rep := s.ImportOrder(e, []OrderLine{{Code: "A100", Quantity: 3}, {Code: "Z1", Quantity: 2}})
	assert.Equal(t, 2, rep.Counts[model.PassImport])
	assert.Equal(t, int64(1500), rep.Cart.Total)
	assert.Equal(t, 5, rep.Cart.Items)
}

func TestSession_QuoteHistory(t *testing.T) {
	e := mustEngine(t, rec("A100", "filtro de aceite", 500), rec("B200", "pastilla de freno", 1200))
	s := NewSession()
	assert.Empty(t, s.History())

	_, err := s.AddToCart(e, "A100")
	require.NoError(t, err)
	first, err := s.GenerateQuote(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), "Taller Ríos")
	require.NoError(t, err)
	assert.Equal(t, "Taller Ríos", first.Customer)
	assert.Equal(t, model.QuoteStatusPending, first.Status)

	_, err = s.AddToCart(e, "B200")
	require.NoError(t, err)
	second, err := s.GenerateQuote(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)

	_, err = s.GenerateQuote(time.Now(), "nadie")
	require.NoError(t, err)
	_, _ = s.RemoveFromCart("A100")
	_, _ = s.RemoveFromCart("B200")
	_, err = s.GenerateQuote(time.Now(), "vacío")
	require.ErrorIs(t, err, ErrEmptyCart)

	h := s.History()
	require.Len(t, h, 3, "failed generation is not recorded")
	assert.Equal(t, first.ID, h[0].ID)
	assert.Equal(t, "A100x1", h[0].Products)
	assert.Equal(t, second.ID, h[1].ID)
	assert.Equal(t, "A100x1;B200x1", h[1].Products)
	assert.Equal(t, int64(1700), h[1].Total)

	h[0].Customer = "changed"
	assert.Equal(t, "Taller Ríos", s.History()[0].Customer, "history is returned as a copy")
}
