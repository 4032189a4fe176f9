package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-order/bootstrap"
	_ "food-order/docs"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// @title Food Order API
// @version 1.0
// @description Cart, checkout, store catalog and delivery location for a single-session food ordering client.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to start application")
	}

	srv := &http.Server{
		Addr:              ":" + app.Config.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		app.Log.Event(ctx, zerolog.InfoLevel).
			Str("addr", srv.Addr).
			Str("env", app.Config.AppEnv).
			Str("swagger", "http://localhost:"+app.Config.Port+"/swagger/index.html").
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Log.Error(ctx, "server stopped unexpectedly", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Log.Error(shutdownCtx, "graceful shutdown failed", err)
	}
	app.Close(shutdownCtx)
	app.Log.Info(shutdownCtx, "server stopped")
}
