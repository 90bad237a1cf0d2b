package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhaven/internal/catalog"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := catalog.New([]catalog.Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert", Price: 9.99},
		{ID: 2, Title: "The Hobbit", Author: "J.R.R. Tolkien", Price: 10.99},
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	New(store).Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestListBooks(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/books")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var books []catalog.Book
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&books))
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)
	assert.InDelta(t, 9.99, books[0].Price, 0.001)
}

func TestListBooksFiltered(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/books?q=tolkien")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var books []catalog.Book
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&books))
	require.Len(t, books, 1)
	assert.Equal(t, "The Hobbit", books[0].Title)
}

func TestGetBook(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/books/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var b catalog.Book
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&b))
	assert.Equal(t, int64(1), b.ID)
	assert.Equal(t, "Dune", b.Title)
}

func TestGetBookNotFound(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/books/999", "/api/books/abc"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Equal(t, "Book not found", body["message"], path)
	}
}
