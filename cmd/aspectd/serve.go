package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/totegamma/concrnt-aspects/internal/infra/database"
	"github.com/totegamma/concrnt-aspects/internal/present/rest"
	"github.com/totegamma/concrnt-aspects/internal/present/rest/middleware"
	"github.com/totegamma/concrnt-aspects/internal/usecase"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := database.Migrate(a.db); err != nil {
		return err
	}

	if a.config.Server.EnableTrace {
		shutdown, err := setupTraceProvider(ctx, a.config.Server.TraceEndpoint, "aspectd", a.config.NodeInfo.FQDN)
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
	}

	events, closeEvents, err := a.events(ctx)
	if err != nil {
		return err
	}
	defer closeEvents()

	handler := rest.NewHandler(
		usecase.NewVisibilityUsecase(a.visible, a.persons),
		a.relationshipUsecase,
		usecase.NewPostUsecase(a.posts, events),
		middleware.NewAuthMiddleware(a.auth),
	)

	e := echo.New()
	e.HideBanner = true
	if a.config.Server.EnableTrace {
		e.Use(otelecho.Middleware("aspectd", otelecho.WithSkipper(func(c echo.Context) bool {
			return c.Path() == "/health"
		})))
	}
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	handler.RegisterRoutes(e)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", slog.String("error", err.Error()), slog.String("module", "main"))
		}
	}()

	slog.Info("listening", slog.String("addr", a.config.Server.Listen), slog.String("module", "main"))
	if err := e.Start(a.config.Server.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
