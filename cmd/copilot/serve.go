package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpserver "pharmacy-copilot/internal/http"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd, opts)
			if err != nil {
				return err
			}
			defer shutdown(a)

			gin.SetMode(gin.ReleaseMode)
			srv, err := httpserver.NewServer(a.Router, a.Log)
			if err != nil {
				return err
			}
			if port == "" {
				port = a.Config.Server.Port
			}
			httpSrv := &http.Server{
				Addr:              ":" + port,
				Handler:           srv,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			errCh := make(chan error, 1)
			go func() {
				a.Log.Info("listening", zap.String("addr", httpSrv.Addr))
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.Log.Info("shutting down")
			return httpSrv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides config)")
	return cmd
}
