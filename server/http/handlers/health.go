package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// CatalogSizer: всё, что health нужно знать о каталоге.
type CatalogSizer interface {
	CatalogSize() int
}

type healthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Products int    `json:"products"`
}

// Health отвечает 200 всегда; пустой каталог считается деградацией, а не отказом.
func Health(started time.Time, cat CatalogSizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Uptime: time.Since(started).Round(time.Second).String()}
		if cat != nil {
			resp.Products = cat.CatalogSize()
			if resp.Products == 0 {
				resp.Status = "degraded"
			}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
