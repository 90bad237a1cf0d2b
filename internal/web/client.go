package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"bookhaven/internal/catalog"
)

// CatalogClient fetches books from the catalog API. A failed fetch or a
// bad payload degrades to an empty catalog for that call; nothing retries.
type CatalogClient struct {
	base  string
	httpc *http.Client
	cache *lru.Cache[int64, catalog.Book]
}

func NewCatalogClient(base string) *CatalogClient {
	// lru.New only fails on a non-positive size.
	cache, _ := lru.New[int64, catalog.Book](256)
	return &CatalogClient{
		base:  strings.TrimRight(base, "/"),
		httpc: &http.Client{Timeout: 5 * time.Second},
		cache: cache,
	}
}

// Books returns the full catalog, or nil when the fetch fails.
func (c *CatalogClient) Books(ctx context.Context) []catalog.Book {
	var books []catalog.Book
	if err := c.getJSON(ctx, c.base+"/api/books", &books); err != nil {
		log.Warn().Err(err).Msg("fetch catalog")
		return nil
	}
	return books
}

// Book resolves a single book by id. The catalog never changes while the
// process runs, so resolved books are cached.
func (c *CatalogClient) Book(ctx context.Context, id int64) (catalog.Book, bool) {
	if b, ok := c.cache.Get(id); ok {
		return b, true
	}
	var b catalog.Book
	if err := c.getJSON(ctx, fmt.Sprintf("%s/api/books/%d", c.base, id), &b); err != nil {
		log.Warn().Err(err).Int64("id", id).Msg("fetch book")
		return catalog.Book{}, false
	}
	c.cache.Add(id, b)
	return b, true
}

func (c *CatalogClient) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
