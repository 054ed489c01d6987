package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"quote-service/internal/config"
	"quote-service/internal/fileio"
	"quote-service/internal/metrics"
	"quote-service/internal/middleware"
	"quote-service/internal/quote/model"
	"quote-service/internal/quote/service"
	"quote-service/internal/session"
)

// Handler — HTTP-обвязка ядра: поиск по каталогу, корзина, котировка.
// Движок (каталог + индекс) подменяется атомарно при перезагрузке прайс-листа.
type Handler struct {
	state    atomic.Pointer[catalogState]
	sessions *session.Store
	cfg      config.Config
	log      zerolog.Logger
	now      func() time.Time
}

type catalogState struct {
	engine   *service.Engine
	source   string
	loadedAt time.Time
}

func New(cfg config.Config, eng *service.Engine, sessions *session.Store, logger zerolog.Logger) *Handler {
	h := &Handler{sessions: sessions, cfg: cfg, log: logger, now: time.Now}
	h.SetEngine(eng, cfg.CatalogFile)
	return h
}

func (h *Handler) Engine() *service.Engine { return h.state.Load().engine }

func (h *Handler) CatalogSize() int { return h.Engine().Catalog().Len() }

// SetEngine публикует новый движок; запросы в полёте дорабатывают со старым.
func (h *Handler) SetEngine(eng *service.Engine, source string) {
	if eng == nil {
		eng = service.NewEngine(nil, h.cfg.MatchOptions())
	}
	h.state.Store(&catalogState{engine: eng, source: source, loadedAt: h.now()})
	metrics.SetCatalogProducts(eng.Catalog().Len())
}

// Routes монтируется в роутере как r.Mount("/", h.Routes()).
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/search", h.Search)
	r.Get("/catalog", h.CatalogInfo)
	r.Post("/catalog/reload", h.ReloadCatalog)

	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Delete("/", h.DeleteSession)

		r.Get("/cart", h.GetCart)
		r.Post("/cart", h.AddToCart)
		r.Post("/cart/import", h.ImportOrder)
		r.Put("/cart/{code}", h.SetCartQuantity)
		r.Patch("/cart/{code}", h.AdjustCartQuantity)
		r.Delete("/cart/{code}", h.RemoveFromCart)

		r.Post("/documents", h.UploadDocument)

		r.Post("/quote", h.GenerateQuote)
		r.Get("/quote", h.GetQuote)
		r.Get("/quotes", h.QuoteHistory)
		r.Put("/quote/{code}", h.SetQuoteQuantity)
		r.Delete("/quote/{code}", h.RemoveFromQuote)
		r.Post("/quote/{code}/substitute", h.SubstituteProduct)
	})
	return r
}

// ---- каталог ----

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		h.fail(w, r, fmt.Errorf("%w: query parameter q is required", errBadRequest))
		return
	}
	res := h.Engine().Search(q)
	if res == nil {
		res = []model.Product{}
	}
	metrics.IncSearch()
	writeJSON(w, http.StatusOK, searchResponse{Query: q, Count: len(res), Products: res})
}

func (h *Handler) CatalogInfo(w http.ResponseWriter, r *http.Request) {
	st := h.state.Load()
	writeJSON(w, http.StatusOK, newCatalogResponse(st))
}

// ReloadCatalog перечитывает прайс-лист: из загруженного файла, если он есть,
// иначе из CATALOG_FILE. При ошибке действующий каталог остаётся.
func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	log := h.reqLog(r)
	start := time.Now()
	mapping := h.cfg.CatalogMapping()
	if hr := atoi(r.URL.Query().Get("header_row"), 0); hr > 0 {
		mapping.HeaderRow = hr
	}

	var (
		cat    *service.Catalog
		err    error
		source = h.cfg.CatalogFile
	)
	up, upErr := openUpload(r, h.maxUpload(), filepath.Base(h.cfg.CatalogFile))
	switch {
	case upErr == nil:
		defer up.Close()
		source = up.name
		cat, err = service.LoadCatalogReader(up, up.name, mapping)
		if err != nil && !errors.Is(err, service.ErrInvalidRecord) {
			err = fmt.Errorf("%w: %v", errBadRequest, err)
		}
	case errors.Is(upErr, errNoUpload):
		cat, err = service.LoadCatalogFile(h.cfg.CatalogFile, mapping)
	default:
		h.fail(w, r, upErr)
		return
	}
	if err != nil {
		metrics.IncCatalogReload(false)
		log.Error().Err(err).Str("source", source).Msg("catalog reload failed")
		h.fail(w, r, err)
		return
	}

	eng := service.NewEngine(cat, h.cfg.MatchOptions())
	h.SetEngine(eng, source)
	metrics.IncCatalogReload(true)
	log.Info().
		Str("source", source).
		Int("products", cat.Len()).
		Int("keywords", eng.Index().Len()).
		Dur("elapsed", time.Since(start)).
		Msg("catalog reloaded")
	writeJSON(w, http.StatusOK, newCatalogResponse(h.state.Load()))
}

// ---- сессии ----

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := h.sessions.Create()
	lg := h.reqLog(r)
	lg.Debug().Str("session", id).Msg("session created")
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// withSession выполняет команду под замком сессии и отдаёт её результат.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, status int, fn func(*service.Session) (any, error)) {
	var out any
	err := h.sessions.With(chi.URLParam(r, "id"), func(s *service.Session) error {
		var err error
		out, err = fn(s)
		return err
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, out)
}

// ---- корзина ----

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, http.StatusOK, func(s *service.Session) (any, error) {
		return newCartResponse(s.Cart()), nil
	})
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	eng := h.Engine()
	h.withSession(w, r, http.StatusOK, func(s *service.Session) (any, error) {
		cart, err := s.AddToCart(eng, req.Code)
		return newCartResponse(cart), err
	})
}

func (h *Handler) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	code := chi.URLParam(r, "code")
	h.withSession(w, r, http.StatusOK, func(s *service.Session) (any, error) {
		cart, err := s.SetQuantity(code, req.Quantity)
		return newCartResponse(cart), err
	})
}

func (h *Handler) AdjustCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req deltaRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	code := chi.URLParam(r, "code")
	h.withSession(w, r, http.StatusOK, func(s *service.Session) (any, error) {
		cart, err := s.AdjustQuantity(code, req.Delta)
		return newCartResponse(cart), err
	})
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	h.withSession(w, r, http.StatusOK, func(s *service.Session) (any, error) {
		cart, err := s.RemoveFromCart(code)
		return newCartResponse(cart), err
	})
}

// ImportOrder: таблица заказа (код + количество) в корзину с точными количествами.
func (h *Handler) ImportOrder(w http.ResponseWriter, r *http.Request) {
	up, err := openUpload(r, h.maxUpload(), "order.csv")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer up.Close()
	if !fileio.IsTabular(up.name) {
		h.fail(w, r, fmt.Errorf("%w: unsupported order file %q", errBadRequest, up.name))
		return
	}
	t, err := fileio.ReadTable(up, up.name, atoi(r.URL.Query().Get("header_row"), 1))
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: read order: %v", errBadRequest, err))
		return
	}
	lines := service.OrderFromTable(t)

	eng := h.Engine()
	h.withSession(w, r, http.StatusOK, func(s *service.Session) (any, error) {
		rep := s.ImportOrder(eng, lines)
		h.observeReport(r, up.name, rep)
		return newReportResponse(rep), nil
	})
}

// UploadDocument сверяет текст документа (multipart file или сырое тело) с каталогом.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	up, err := openUpload(r, h.maxUpload(), "document.txt")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer up.Close()
	text, err := fileio.ReadDocument(up, up.name)
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: read document: %v", errBadRequest, err))
		return
	}

	eng := h.Engine()
	h.withSession(w, r, http.StatusOK, func(s *service.Session) (any, error) {
		rep := s.UploadDocument(eng, text)
		h.observeReport(r, up.name, rep)
		return newReportResponse(rep), nil
	})
}

func (h *Handler) observeReport(r *http.Request, name string, rep model.ReconcileReport) {
	for _, res := range rep.Resolutions {
		metrics.IncResolution(string(res.Pass), string(res.Match))
	}
	lg := h.reqLog(r)
	ev := lg.Info().Str("file", name).Int("resolutions", len(rep.Resolutions))
	for p, n := range rep.Counts {
		ev = ev.Int(string(p), n)
	}
	ev.Int("items", rep.Cart.Items).Int64("total", rep.Cart.Total).Msg("document reconciled")
}

// ---- котировка ----

// GenerateQuote: тело {"customer": "..."} необязательно.
func (h *Handler) GenerateQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	h.withSession(w, r, http.StatusCreated, func(s *service.Session) (any, error) {
		q, err := s.GenerateQuote(h.now(), req.Customer)
		if err != nil {
			return nil, err
		}
		metrics.IncQuoteGenerated()
		lg := h.reqLog(r)
		lg.Info().Str("quote", q.ID).Int("entries", len(q.Entries)).Int64("total", q.Total).Msg("quote generated")
		return newQuoteResponse(q), nil
	})
}

func (h *Handler) QuoteHistory(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, http.StatusOK, func(s *service.Session) (any, error) {
		return s.History(), nil
	})
}

func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, http.StatusOK, func(s *service.Session) (any, error) {
		q, err := s.Quote()
		return newQuoteResponse(q), err
	})
}

func (h *Handler) SetQuoteQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	code := chi.URLParam(r, "code")
	h.withSession(w, r, http.StatusOK, func(s *service.Session) (any, error) {
		q, err := s.SetQuoteQuantity(code, req.Quantity)
		return newQuoteResponse(q), err
	})
}

func (h *Handler) RemoveFromQuote(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	h.withSession(w, r, http.StatusOK, func(s *service.Session) (any, error) {
		q, err := s.RemoveFromQuote(code)
		return newQuoteResponse(q), err
	})
}

func (h *Handler) SubstituteProduct(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	code := chi.URLParam(r, "code")
	eng := h.Engine()
	h.withSession(w, r, http.StatusOK, func(s *service.Session) (any, error) {
		q, err := s.SubstituteProduct(eng, code, req.Code)
		return newQuoteResponse(q), err
	})
}

func (h *Handler) maxUpload() int64 { return int64(h.cfg.MaxUploadMB) << 20 }

func (h *Handler) reqLog(r *http.Request) zerolog.Logger {
	return h.log.With().Str("rid", middleware.GetRequestID(r)).Logger()
}
