package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
)

var ErrNotFound = errors.New("book not found")

type Book struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Price  float64 `json:"price"`
}

// PriceCents normalizes the decimal price to cents for exact arithmetic.
func (b Book) PriceCents() int64 {
	return int64(math.Round(b.Price * 100))
}

// Store is the read-only catalog, loaded once at startup.
type Store struct {
	books []Book
	byID  map[int64]Book
}

// Load reads and validates the catalog file. Any failure here is fatal for
// the caller: the process must not start with a broken catalog.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var books []Book
	if err := json.Unmarshal(raw, &books); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return New(books)
}

func New(books []Book) (*Store, error) {
	byID := make(map[int64]Book, len(books))
	for _, b := range books {
		if b.Price < 0 {
			return nil, fmt.Errorf("book %d %q: negative price", b.ID, b.Title)
		}
		if _, dup := byID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate book id %d", b.ID)
		}
		byID[b.ID] = b
	}
	return &Store{books: books, byID: byID}, nil
}

// List returns the full catalog in file order.
func (s *Store) List() []Book {
	out := make([]Book, len(s.books))
	copy(out, s.books)
	return out
}

func (s *Store) Get(id int64) (Book, error) {
	b, ok := s.byID[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return b, nil
}

// Search keeps books whose title or author contains term, case-insensitive.
// An empty term matches everything.
func (s *Store) Search(term string) []Book {
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return s.List()
	}
	var out []Book
	for _, b := range s.books {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) {
			out = append(out, b)
		}
	}
	return out
}

func (s *Store) Len() int { return len(s.books) }
