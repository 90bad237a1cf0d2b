package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	BooksPath      string
	CartDBPath     string // empty => in-memory cart storage
	CatalogAPIURL  string
	RabbitURL      string // empty => events disabled
	EventsExchange string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads .env if present, then the environment.
func Load() Config {
	_ = godotenv.Load()

	port := getenv("PORT", "3000")
	return Config{
		Port:           port,
		BooksPath:      getenv("BOOKS_PATH", "books.json"),
		CartDBPath:     getenv("CART_DB_PATH", "data/cart.db"),
		CatalogAPIURL:  getenv("CATALOG_API_URL", "http://localhost:"+port),
		RabbitURL:      getenv("RABBITMQ_URL", ""),
		EventsExchange: getenv("EVENTS_EXCHANGE", "bookhaven.events"),
	}
}

func (c Config) Addr() string { return ":" + c.Port }
