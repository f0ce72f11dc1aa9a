package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/camilovelasq/tienda-backend/internal/auth"
	"github.com/camilovelasq/tienda-backend/internal/cart"
	"github.com/camilovelasq/tienda-backend/internal/catalog"
	"github.com/camilovelasq/tienda-backend/internal/config"
	"github.com/camilovelasq/tienda-backend/internal/db"
	apihttp "github.com/camilovelasq/tienda-backend/internal/handler/http"
	"github.com/camilovelasq/tienda-backend/internal/notify"
	"github.com/camilovelasq/tienda-backend/internal/order"
	"github.com/camilovelasq/tienda-backend/internal/user"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := db.Migrate(cfg, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	pg, err := db.New(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pg.Close()

	sender, err := notify.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up mailer")
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)

	userRepo := user.NewRepository(pg.Pool)
	userSvc := user.NewService(userRepo, sender)

	catalogRepo := catalog.NewRepository(pg.Pool)
	catalogSvc := catalog.NewService(catalogRepo)

	cartRepo := cart.NewRepository(pg.Pool)
	cartSvc := cart.NewService(cartRepo, catalogSvc, cfg.Shipping.FreeThreshold, cfg.Shipping.Fee)

	orderRepo := order.NewRepository(pg.Pool)
	orderSvc := order.NewService(orderRepo, sender)

	dev := cfg.IsDevelopment()
	router := apihttp.NewRouter(apihttp.RouterDeps{
		Auth:        apihttp.NewAuthHandler(userSvc, tokens, dev),
		Products:    apihttp.NewProductHandler(catalogSvc, dev),
		Categories:  apihttp.NewCategoryHandler(catalogSvc, dev),
		Cart:        apihttp.NewCartHandler(cartSvc, dev),
		Orders:      apihttp.NewOrderHandler(orderSvc, dev),
		Tokens:      tokens,
		Development: dev,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("server stopped")
}
