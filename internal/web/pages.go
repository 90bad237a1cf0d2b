// Package web serves the storefront pages. It mirrors the split the
// original storefront had: pages fetch the catalog through the HTTP API
// and project it into cards, while the cart lives in durable storage.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"bookhaven/internal/cart"
	"bookhaven/internal/catalog"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

const featuredCount = 4

type Handlers struct {
	client *CatalogClient
	cart   *cart.Manager

	tplIndex *template.Template
	tplBooks *template.Template
	tplCart  *template.Template

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewHandlers(client *CatalogClient, mgr *cart.Manager, rnd *rand.Rand) *Handlers {
	funcs := template.FuncMap{
		"year":    func() int { return time.Now().Year() },
		"card":    RenderCard,
		"initial": initial,
		"line": func(it cart.LineItem) string {
			return cart.Money{Cents: it.PriceCents}.Mul(it.Quantity).String()
		},
	}

	layout := template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html"))
	tplIndex := template.Must(template.Must(layout.Clone()).ParseFS(templatesFS, "templates/index.html"))
	tplBooks := template.Must(template.Must(layout.Clone()).ParseFS(templatesFS, "templates/books.html"))
	tplCart := template.Must(template.Must(layout.Clone()).ParseFS(templatesFS, "templates/cart.html"))

	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Handlers{
		client:   client,
		cart:     mgr,
		tplIndex: tplIndex,
		tplBooks: tplBooks,
		tplCart:  tplCart,
		rnd:      rnd,
	}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /books", h.handleBooks)
	mux.HandleFunc("GET /cart", h.handleCart)

	mux.HandleFunc("POST /cart/add/{id}", h.handleAdd)
	mux.HandleFunc("POST /cart/increase/{id}", h.handleIncrease)
	mux.HandleFunc("POST /cart/decrease/{id}", h.handleDecrease)
	mux.HandleFunc("POST /cart/remove/{id}", h.handleRemove)
	mux.HandleFunc("POST /cart/checkout", h.handleCheckout)

	mux.Handle("GET /static/", http.FileServer(http.FS(staticFS)))
}

// badge returns the cart count shown in the nav of every page.
func (h *Handlers) badge(r *http.Request) int64 {
	n, err := h.cart.ItemCount(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("cart count")
		return 0
	}
	return n
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	books := h.client.Books(r.Context())

	h.mu.Lock()
	featured := Featured(books, featuredCount, h.rnd)
	h.mu.Unlock()

	data := struct {
		CartCount int64
		Msg       string
		Books     []catalog.Book
	}{h.badge(r), r.URL.Query().Get("msg"), featured}

	h.render(w, h.tplIndex, data)
}

func (h *Handlers) handleBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	books := Filter(h.client.Books(r.Context()), q)

	data := struct {
		CartCount int64
		Msg       string
		Query     string
		Count     string
		Books     []catalog.Book
	}{h.badge(r), r.URL.Query().Get("msg"), q, humanize.Comma(int64(len(books))), books}

	h.render(w, h.tplBooks, data)
}

func (h *Handlers) handleCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.cart.Items(r.Context())
	if err != nil {
		httpError(w, "could not load cart: "+err.Error(), http.StatusInternalServerError)
		return
	}
	total, err := h.cart.Total(r.Context())
	if err != nil {
		httpError(w, "could not total cart: "+err.Error(), http.StatusInternalServerError)
		return
	}

	data := struct {
		CartCount int64
		Msg       string
		Items     []cart.LineItem
		Total     string
	}{h.badge(r), r.URL.Query().Get("msg"), items, total.String()}

	h.render(w, h.tplCart, data)
}

func (h *Handlers) handleAdd(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		redirect(w, r, backPath(r, "/books"), "")
		return
	}
	// The book is resolved through the catalog at call time; an unknown
	// id is a no-op, not an error.
	b, ok := h.client.Book(r.Context(), id)
	if !ok {
		redirect(w, r, backPath(r, "/books"), "")
		return
	}
	if err := h.cart.Add(r.Context(), b); err != nil {
		httpError(w, "could not update cart: "+err.Error(), http.StatusInternalServerError)
		return
	}
	redirect(w, r, backPath(r, "/books"), b.Title+" added to cart!")
}

func (h *Handlers) handleIncrease(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cart.Increase)
}

func (h *Handlers) handleDecrease(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cart.Decrease)
}

func (h *Handlers) handleRemove(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cart.Remove)
}

func (h *Handlers) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64) error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		redirect(w, r, "/cart", "")
		return
	}
	if err := op(r.Context(), id); err != nil {
		httpError(w, "could not update cart: "+err.Error(), http.StatusInternalServerError)
		return
	}
	redirect(w, r, "/cart", "")
}

func (h *Handlers) handleCheckout(w http.ResponseWriter, r *http.Request) {
	orderID, err := h.cart.Checkout(r.Context())
	if errors.Is(err, cart.ErrEmptyCart) {
		redirect(w, r, "/cart", "Your cart is empty!")
		return
	}
	if err != nil {
		httpError(w, "checkout failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	redirect(w, r, "/cart", "Order "+orderID+" confirmed. Thank you for shopping with us!")
}

func (h *Handlers) render(w http.ResponseWriter, tpl *template.Template, data any) {
	if err := tpl.Execute(w, data); err != nil {
		log.Error().Err(err).Str("template", tpl.Name()).Msg("template execute")
		httpError(w, "could not render page", http.StatusInternalServerError)
	}
}

// --- utils ---

func redirect(w http.ResponseWriter, r *http.Request, path, msg string) {
	if msg != "" {
		path += "?msg=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func backPath(r *http.Request, def string) string {
	if u, err := url.Parse(r.Referer()); err == nil && u.Path != "" {
		return u.Path
	}
	return def
}

func httpError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte("<pre>" + template.HTMLEscapeString(msg) + "</pre>"))
}
