package web

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"bookhaven/internal/catalog"
)

func sampleBooks() []catalog.Book {
	return []catalog.Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert", Price: 9.99},
		{ID: 2, Title: "The Hobbit", Author: "J.R.R. Tolkien", Price: 10.99},
		{ID: 3, Title: "1984", Author: "George Orwell", Price: 6.99},
		{ID: 4, Title: "Moby-Dick", Author: "Herman Melville", Price: 9.49},
		{ID: 5, Title: "Brave New World", Author: "Aldous Huxley", Price: 8.49},
		{ID: 6, Title: "Fahrenheit 451", Author: "Ray Bradbury", Price: 7.99},
	}
}

func TestFeaturedSamplesWithoutReplacement(t *testing.T) {
	books := sampleBooks()
	rnd := rand.New(rand.NewSource(42))

	got := Featured(books, 4, rnd)
	assert.Len(t, got, 4)

	seen := map[int64]bool{}
	for _, b := range got {
		assert.False(t, seen[b.ID], "duplicate id %d", b.ID)
		seen[b.ID] = true
	}

	// asking for more than exists yields everything
	assert.Len(t, Featured(books, 100, rnd), len(books))
	assert.Empty(t, Featured(nil, 4, rnd))
}

func TestFeaturedLeavesInputAlone(t *testing.T) {
	books := sampleBooks()
	rnd := rand.New(rand.NewSource(1))
	Featured(books, 4, rnd)
	assert.Equal(t, sampleBooks(), books)
}

func TestFilter(t *testing.T) {
	books := sampleBooks()

	assert.Len(t, Filter(books, "dune"), 1)
	assert.Equal(t, "Dune", Filter(books, "dune")[0].Title)
	assert.Len(t, Filter(books, "HERBERT"), 1)
	assert.Len(t, Filter(books, "the"), 1)
	assert.Empty(t, Filter(books, "zzz"))
	assert.Equal(t, books, Filter(books, ""))
	assert.Equal(t, books, Filter(books, "   "))
}

func TestRenderCard(t *testing.T) {
	html := string(RenderCard(catalog.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", Price: 9.99}))

	assert.Contains(t, html, "Dune")
	assert.Contains(t, html, "Frank Herbert")
	assert.Contains(t, html, "$9.99")
	assert.Contains(t, html, `action="/cart/add/1"`)
	assert.Contains(t, html, `<div class="book-image">D</div>`)
}

func TestRenderCardEscapes(t *testing.T) {
	html := string(RenderCard(catalog.Book{ID: 1, Title: "<script>alert(1)</script>", Price: 1}))
	assert.NotContains(t, html, "<script>")
	assert.True(t, strings.Contains(html, "&lt;script&gt;"))
}
