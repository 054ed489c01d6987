package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"quote-service/internal/quote/model"
	"quote-service/internal/quote/service"
	"quote-service/internal/session"
)

var (
	errBadRequest = errors.New("bad request")
	errNoUpload   = fmt.Errorf("%w: no file uploaded", errBadRequest)
)

// ---- запросы ----

type codeRequest struct {
	Code string `json:"code"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type deltaRequest struct {
	Delta int `json:"delta"`
}

type quoteRequest struct {
	Customer string `json:"customer"`
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return fmt.Errorf("%w: invalid json: %v", errBadRequest, err)
	}
	return nil
}

// upload: файл из multipart-поля "file" либо сырое тело запроса.
type upload struct {
	io.Reader
	name   string
	closer io.Closer
}

func (u *upload) Close() error {
	if u.closer != nil {
		return u.closer.Close()
	}
	return nil
}

// openUpload: для сырого тела имя берётся из ?filename=, иначе defaultName
// (по расширению выбирается парсер). Пустой запрос: errNoUpload.
func openUpload(r *http.Request, maxBytes int64, defaultName string) (*upload, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return nil, uploadErr(err)
		}
		f, hdr, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return nil, errNoUpload
		}
		if err != nil {
			return nil, uploadErr(err)
		}
		return &upload{Reader: f, name: hdr.Filename, closer: f}, nil
	}

	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, uploadErr(err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, errNoUpload
	}
	name := strings.TrimSpace(r.URL.Query().Get("filename"))
	if name == "" {
		name = defaultName
	}
	return &upload{Reader: bytes.NewReader(b), name: name}, nil
}

func uploadErr(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

// ---- ответы ----

// formatCLP форматирует сумму для показа: "$12.990".
func formatCLP(v int64) string {
	return message.NewPrinter(language.Spanish).Sprintf("$%d", v)
}

type searchResponse struct {
	Query    string          `json:"query"`
	Count    int             `json:"count"`
	Products []model.Product `json:"products"`
}

type catalogResponse struct {
	Products int    `json:"products"`
	Keywords int    `json:"keywords"`
	Source   string `json:"source"`
	LoadedAt string `json:"loadedAt"`
}

func newCatalogResponse(st *catalogState) catalogResponse {
	return catalogResponse{
		Products: st.engine.Catalog().Len(),
		Keywords: st.engine.Index().Len(),
		Source:   st.source,
		LoadedAt: st.loadedAt.Format(time.RFC3339),
	}
}

type cartResponse struct {
	model.CartView
	TotalDisplay string `json:"totalDisplay"`
}

func newCartResponse(v model.CartView) cartResponse {
	if v.Entries == nil {
		v.Entries = []model.EntryView{}
	}
	return cartResponse{CartView: v, TotalDisplay: formatCLP(v.Total)}
}

type quoteResponse struct {
	model.QuoteView
	TotalDisplay string `json:"totalDisplay"`
}

func newQuoteResponse(v model.QuoteView) quoteResponse {
	if v.Entries == nil {
		v.Entries = []model.EntryView{}
	}
	return quoteResponse{QuoteView: v, TotalDisplay: formatCLP(v.Total)}
}

type reportResponse struct {
	Resolutions []model.Resolution `json:"resolutions"`
	Counts      map[model.Pass]int `json:"counts"`
	Cart        cartResponse       `json:"cart"`
}

func newReportResponse(rep model.ReconcileReport) reportResponse {
	return reportResponse{Resolutions: rep.Resolutions, Counts: rep.Counts, Cart: newCartResponse(rep.Cart)}
}

type errorResponse struct {
	Error string `json:"error"`
	RID   string `json:"rid,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// statusFor сопоставляет ошибки ядра HTTP-статусам.
func statusFor(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe), errors.Is(err, multipart.ErrMessageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest), errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidRecord):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusConflict
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrNoQuote),
		errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := h.reqLog(r)
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, status, errorResponse{Error: err.Error(), RID: w.Header().Get("X-Request-ID")})
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}
