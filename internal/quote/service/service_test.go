package service

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-service/internal/quote/model"
)

func entryOf(t *testing.T, l *Ledger, code string) model.Entry {
	t.Helper()
	e, ok := l.Get(code)
	require.True(t, ok, "ledger has no %s", code)
	return e
}

func TestReconcile_ExactAndUnmatched(t *testing.T) {
	e := mustEngine(t, rec("A100", "filtro de aceite", 500))
	l := NewLedger()
	e.Reconcile(l, "a100 a100 xyz99")

	require.Equal(t, 2, l.Len())
	a := entryOf(t, l, "A100")
	assert.Equal(t, 2, a.Quantity)
	assert.Equal(t, model.MatchExact, a.Match)

	x := entryOf(t, l, "XYZ99")
	assert.Equal(t, 1, x.Quantity)
	assert.Equal(t, model.MatchUnmatched, x.Match)
	assert.Equal(t, int64(0), x.Product.Price)
	assert.Equal(t, "XYZ99", x.Product.Code)
	assert.Equal(t, "requested product: xyz99", x.Product.Description)
	assert.Equal(t, "N/A", x.Product.Brand)
	assert.Equal(t, "N/A", x.Product.Category)
}

func TestReconcile_FuzzyCode(t *testing.T) {
	e := mustEngine(t, rec("A100", "filtro de aceite", 500))
	l := NewLedger()
	res := e.Reconcile(l, "a10o")

	a := entryOf(t, l, "A100")
	assert.Equal(t, model.MatchApproximate, a.Match)
	assert.Equal(t, 1, a.Quantity)
	require.Len(t, res, 1)
	assert.Equal(t, model.PassFuzzy, res[0].Pass)
	require.NotNil(t, res[0].Score)
	assert.InDelta(t, 0.75, *res[0].Score, 1e-9)
}

func TestReconcile_NoDigitTokenSkipped(t *testing.T) {
	e := mustEngine(t, rec("A100", "filtro de aceite", 500))
	l := NewLedger()
	res := e.Reconcile(l, "zzzzz")
	assert.Empty(t, res)
	assert.Equal(t, 0, l.Len())
}

func TestReconcile_FuzzyTokenBounds(t *testing.T) {
	e := mustEngine(t, rec("A100", "x", 1))
	l := NewLedger()
	e.Reconcile(l, "12 ab1 abcdefghi12 abcdefghi1")

	assert.False(t, l.Has("12"), "too short")
	assert.True(t, l.Has("AB1"))
	assert.False(t, l.Has("ABCDEFGHI12"), "too long")
	assert.True(t, l.Has("ABCDEFGHI1"))
}

func TestReconcile_FuzzyIncrementKeepsExact(t *testing.T) {
	e := mustEngine(t, rec("A100", "x", 1))
	l := NewLedger()
	e.Reconcile(l, "A100 a10o xyz99 xyz99")

	a := entryOf(t, l, "A100")
	assert.Equal(t, 2, a.Quantity)
	assert.Equal(t, model.MatchExact, a.Match)
	assert.Equal(t, 2, entryOf(t, l, "XYZ99").Quantity)
}

func descCatalog(t *testing.T) *Engine {
	return mustEngine(t,
		rec("F1", "filtro de aceite motor", 100),
		rec("F2", "filtro de aire motor", 200),
		rec("P3", "pastilla de freno", 300),
		rec("B4", "bujia de encendido", 400),
	)
}

func TestReconcile_DescriptionRanking(t *testing.T) {
	e := descCatalog(t)
	l := NewLedger()
	res := e.Reconcile(l, "necesito filtro aceite para motor\n")

	require.Len(t, res, 2)
	assert.Equal(t, model.PassDescription, res[0].Pass)
	assert.Equal(t, "F1", res[0].Code)
	assert.Equal(t, 3, res[0].Hits)
	assert.Equal(t, "F2", res[1].Code)
	assert.Equal(t, 2, res[1].Hits)

	for _, code := range []string{"F1", "F2"} {
		ent := entryOf(t, l, code)
		assert.Equal(t, 1, ent.Quantity)
		assert.Equal(t, model.MatchApproximate, ent.Match)
	}
	assert.False(t, l.Has("P3"))
}

// Частотный проход пропускает уже имеющиеся позиции, а построчный прибавляет.
func TestReconcile_SkipVersusIncrement(t *testing.T) {
	e := descCatalog(t)
	l := NewLedger()
	e.Reconcile(l, "F1\nfiltro aceite motor")

	f1 := entryOf(t, l, "F1")
	assert.Equal(t, 2, f1.Quantity, "exact pass adds, description pass skips, line pass increments")
	assert.Equal(t, model.MatchExact, f1.Match)

	f2 := entryOf(t, l, "F2")
	assert.Equal(t, 1, f2.Quantity)
	assert.Equal(t, model.MatchApproximate, f2.Match)
}

func TestReconcile_DescriptionTopN(t *testing.T) {
	var recs []model.Record
	for i := 1; i <= 7; i++ {
		recs = append(recs, rec(fmt.Sprintf("T%d", i), "tornillo hexagonal", 10))
	}
	e := mustEngine(t, recs...)
	l := NewLedger()
	e.Reconcile(l, "tornillo")

	assert.Equal(t, 5, l.Len())
	for i := 1; i <= 5; i++ {
		assert.True(t, l.Has(fmt.Sprintf("T%d", i)))
	}
	assert.False(t, l.Has("T6"))
	assert.Equal(t, 2, entryOf(t, l, "T1").Quantity, "line search hit on the first product")
}

func TestReconcile_LineFallback(t *testing.T) {
	e := mustEngine(t,
		rec("X1", "perno", 1),
		rec("P9", "pastilla freno delantera", 1),
	)
	l := NewLedger()
	res := e.Reconcile(l, "  PASTILLA, FRENO  \n\n")

	p := entryOf(t, l, "P9")
	assert.Equal(t, 2, p.Quantity)
	assert.Equal(t, model.MatchApproximate, p.Match)

	last := res[len(res)-1]
	assert.Equal(t, model.PassLine, last.Pass)
	assert.Equal(t, "PASTILLA, FRENO", last.Source)
}

func TestFallbackQuery(t *testing.T) {
	assert.Equal(t, "pastilla freno delantera", fallbackQuery("Pastilla, freno de delantera x2 urgente"))
	assert.Equal(t, "", fallbackQuery("a b de"))
	assert.Equal(t, "a100", fallbackQuery("A100 x"))
}

func TestReconcile_ResolutionOrder(t *testing.T) {
	e := mustEngine(t, rec("A100", "filtro de aceite", 500), rec("B200", "pastilla de freno", 100))
	l := NewLedger()
	res := e.Reconcile(l, "a100 b20o\nfiltro de aceite")

	var passes []model.Pass
	for _, r := range res {
		passes = append(passes, r.Pass)
	}
	assert.Equal(t, []model.Pass{model.PassExact, model.PassFuzzy, model.PassLine}, passes,
		"description candidates are already present, the second line hits A100")
	assert.Equal(t, 2, entryOf(t, l, "A100").Quantity)
}

func TestImport(t *testing.T) {
	e := mustEngine(t, rec("A100", "filtro de aceite", 500))
	l := NewLedger()
	l.AddOrIncrement(e.Catalog().At(0), model.MatchApproximate)

	res := e.Import(l, []OrderLine{
		{Code: "a100", Quantity: 2},
		{Code: "Q-77", Quantity: 0},
		{Code: "A100", Quantity: 3},
		{Code: "  ", Quantity: 9},
	})
	require.Len(t, res, 2)

	a := entryOf(t, l, "A100")
	assert.Equal(t, 5, a.Quantity, "aggregated quantity replaces the current one")
	assert.Equal(t, model.MatchApproximate, a.Match)

	q := entryOf(t, l, "Q-77")
	assert.Equal(t, 1, q.Quantity)
	assert.Equal(t, model.MatchUnmatched, q.Match)
	assert.Equal(t, "requested product: q-77", q.Product.Description)
}

func TestImport_QuantitiesAreClamped(t *testing.T) {
	e := mustEngine(t, rec("A100", "filtro de aceite", 500))
	l := NewLedger()

	res := e.Import(l, []OrderLine{
		{Code: "A100", Quantity: math.MaxInt},
		{Code: "a100", Quantity: math.MaxInt},
		{Code: "B9", Quantity: MaxQuantity + 5},
	})
	require.Len(t, res, 2, "every aggregated line is reported")
	for _, r := range res {
		assert.Empty(t, r.Error)
	}
	assert.Equal(t, MaxQuantity, entryOf(t, l, "A100").Quantity)
	assert.Equal(t, MaxQuantity, entryOf(t, l, "B9").Quantity)
	assert.Positive(t, l.Total())
}
