package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quote-service/internal/quote/model"
)

func price(v int64) *int64 { return &v }

func rec(code, desc string, p int64) model.Record {
	return model.Record{Code: code, Description: desc, Brand: "Marca", Category: "General", Price: price(p)}
}

func mustCatalog(t *testing.T, recs ...model.Record) *Catalog {
	t.Helper()
	c, err := LoadCatalog(recs)
	require.NoError(t, err)
	return c
}

func mustEngine(t *testing.T, recs ...model.Record) *Engine {
	t.Helper()
	return NewEngine(mustCatalog(t, recs...), model.DefaultOptions())
}

func codes(ps []model.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Code)
	}
	return out
}

func toLower(s string) string {
	b := []rune(s)
	for i, r := range b {
		if r >= 'A' && r <= 'Z' {
			b[i] = r + ('a' - 'A')
		}
	}
	return string(b)
}
