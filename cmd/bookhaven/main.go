package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bookhaven/internal/api"
	"bookhaven/internal/cart"
	"bookhaven/internal/catalog"
	"bookhaven/internal/config"
	"bookhaven/internal/events"
	"bookhaven/internal/localstore"
	"bookhaven/internal/web"
)

const shutdownGrace = 10 * time.Second

func main() {
	// Logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := config.Load()
	log.Info().
		Str("addr", cfg.Addr()).
		Str("books", cfg.BooksPath).
		Str("cart_db", cfg.CartDBPath).
		Str("rabbit", cfg.RabbitURL).
		Msg("starting bookhaven")

	// Catalog: loaded once, before the listener opens. A broken catalog
	// means no service at all.
	store, err := catalog.Load(cfg.BooksPath)
	must(err)
	log.Info().Int("books", store.Len()).Msg("catalog loaded")

	// Durable cart storage
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var kv localstore.Store
	if cfg.CartDBPath != "" {
		kv, err = localstore.OpenSQLite(ctx, cfg.CartDBPath)
		must(err)
	} else {
		kv = localstore.NewMemory()
	}
	defer kv.Close()

	// Events
	rabbit, err := events.Dial(cfg.RabbitURL, cfg.EventsExchange)
	must(err)
	defer rabbit.Close()

	mgr := cart.NewManager(kv, rabbit)
	mgr.OnChange(func(count int64) {
		log.Debug().Int64("items", count).Msg("cart updated")
	})

	// HTTP
	mux := http.NewServeMux()
	api.New(store).Register(mux)

	client := web.NewCatalogClient(cfg.CatalogAPIURL)
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	web.NewHandlers(client, mgr, rnd).Register(mux)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: cors.Default().Handler(api.WithLog(mux)),
	}

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		log.Warn().Msg("shutting down...")
		sctx, scancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer scancel()
		_ = srv.Shutdown(sctx)
		cancel()
	}()

	log.Info().Str("addr", cfg.Addr()).Msg("http listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("serve")
	}
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
