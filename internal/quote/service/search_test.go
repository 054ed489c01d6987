package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"quote-service/internal/quote/model"
)

func TestSearch(t *testing.T) {
	t.Run("description substring", func(t *testing.T) {
		c := mustCatalog(t, rec("A100", "filtro de aceite", 1000))
		assert.Equal(t, []string{"A100"}, codes(Search(c, "aceite", 20)))
	})

	t.Run("any field matches, catalog order kept", func(t *testing.T) {
		c := mustCatalog(t,
			model.Record{Code: "Z9", Description: "tapa", Brand: "Bosch", Category: "Filtros", Price: price(1)},
			model.Record{Code: "FIL-1", Description: "tapa", Brand: "x", Category: "y", Price: price(1)},
			model.Record{Code: "K1", Description: "filtro de aire", Brand: "x", Category: "y", Price: price(1)},
			model.Record{Code: "K2", Description: "perno", Brand: "x", Category: "y", Price: price(1)},
		)
		assert.Equal(t, []string{"Z9", "FIL-1", "K1"}, codes(Search(c, "fil", 20)))
		assert.Equal(t, []string{"Z9"}, codes(Search(c, "BOSCH", 20)))
		assert.Empty(t, Search(c, "nada", 20))
	})

	t.Run("truncated to limit", func(t *testing.T) {
		var recs []model.Record
		for i := 0; i < 25; i++ {
			recs = append(recs, rec(fmt.Sprintf("T%02d", i), "tornillo", 1))
		}
		c := mustCatalog(t, recs...)
		res := Search(c, "tornillo", 20)
		assert.Len(t, res, 20)
		assert.Equal(t, "T00", res[0].Code)
		assert.Equal(t, "T19", res[19].Code)
	})

	t.Run("repeatable", func(t *testing.T) {
		c := mustCatalog(t, rec("A1", "aceite", 1), rec("A2", "aceite motor", 1))
		assert.Equal(t, Search(c, "aceite", 20), Search(c, "aceite", 20))
	})
}

func TestEngineSearch(t *testing.T) {
	e := mustEngine(t, rec("A100", "Filtro de Aceite", 1))
	assert.Equal(t, []string{"A100"}, codes(e.Search("  ACEITE ")))
	assert.Empty(t, e.Search("   "))
}
