package web

import (
	"bytes"
	"html/template"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"

	"bookhaven/internal/cart"
	"bookhaven/internal/catalog"
)

var cardTpl = template.Must(template.New("card").Funcs(template.FuncMap{
	"initial": initial,
	"price":   price,
}).Parse(`<div class="book-card" data-id="{{.ID}}">
  <div class="book-image">{{initial .Title}}</div>
  <div class="book-details">
    <h3 class="book-title">{{.Title}}</h3>
    <p class="book-author">{{.Author}}</p>
    <span class="book-price">${{price .}}</span>
    <form method="POST" action="/cart/add/{{.ID}}">
      <button class="add-to-cart" type="submit">Add to Cart</button>
    </form>
  </div>
</div>
`))

// RenderCard projects one book into its card markup. No hidden state.
func RenderCard(b catalog.Book) template.HTML {
	var buf bytes.Buffer
	if err := cardTpl.Execute(&buf, b); err != nil {
		log.Error().Err(err).Int64("id", b.ID).Msg("render card")
		return ""
	}
	return template.HTML(buf.String())
}

func initial(title string) string {
	for _, r := range title {
		return string(r)
	}
	return ""
}

func price(b catalog.Book) string {
	return cart.Money{Cents: b.PriceCents()}.String()
}

// Featured samples up to n books without replacement.
func Featured(books []catalog.Book, n int, rnd *rand.Rand) []catalog.Book {
	out := make([]catalog.Book, len(books))
	copy(out, books)
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// Filter keeps books whose title or author contains term, case-insensitive.
// An empty term keeps everything.
func Filter(books []catalog.Book, term string) []catalog.Book {
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return books
	}
	var out []catalog.Book
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) {
			out = append(out, b)
		}
	}
	return out
}
