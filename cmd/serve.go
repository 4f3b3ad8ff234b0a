package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartgwiza/reports-cli/internal/config"
	"github.com/smartgwiza/reports-cli/internal/server"
)

var (
	servePort   int
	serveCached bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve report downloads and analytics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate(config.ModeServe); err != nil {
			return err
		}
		ss, err := adminSession()
		if err != nil {
			return err
		}
		n, loc, err := newNormalizer()
		if err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		loader := newLoader(newBackendClient(ss), st, n, loc, serveCached)
		srv := server.New(loader,
			server.WithHistory(st),
			server.WithProduct(cfg.Export.Product),
			server.WithLocation(loc),
			server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		)

		httpSrv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveCached, "cached", false, "serve from the snapshot cache when fresh")
	rootCmd.AddCommand(serveCmd)
}
