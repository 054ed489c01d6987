package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"quote-service/internal/config"
	"quote-service/internal/metrics"
	"quote-service/internal/quote/handler"
	"quote-service/internal/quote/service"
	"quote-service/internal/session"
	serverhttp "quote-service/server/http"
)

func newServeCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}
			logger := config.SetupLogger(cfg)
			metrics.Register()

			start := time.Now()
			cat, err := service.LoadCatalogFile(cfg.CatalogFile, cfg.CatalogMapping())
			if err != nil {
				// без каталога сервис работает: поиск и сверка просто ничего не находят
				logger.Error().Err(err).Str("file", cfg.CatalogFile).Msg("catalog load failed, starting with empty catalog")
				cat = service.EmptyCatalog()
			}
			eng := service.NewEngine(cat, cfg.MatchOptions())
			logger.Info().
				Int("products", cat.Len()).
				Int("keywords", eng.Index().Len()).
				Dur("elapsed", time.Since(start)).
				Msg("catalog ready")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := session.NewStore(cfg.SessionTTL, logger)
			go store.Run(ctx, time.Minute)

			qh := handler.New(cfg, eng, store, logger)
			r := serverhttp.NewRouter(cfg, qh, logger)

			srv := &http.Server{
				Addr:              cfg.Addr(),
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}
			logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

			errc := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			// graceful shutdown
			select {
			case err := <-errc:
				if err != nil {
					logger.Error().Err(err).Msg("listen")
					return err
				}
			case <-ctx.Done():
			}
			logger.Info().Msg("server shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("shutdown")
			}
			logger.Info().Msg("bye")
			return nil
		},
	}
}
