package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/openprofile/openprofile/actions"
	"github.com/openprofile/openprofile/client"
	"github.com/openprofile/openprofile/internal/config"
	"github.com/openprofile/openprofile/internal/infra/database"
	"github.com/openprofile/openprofile/internal/infra/repository"
	"github.com/openprofile/openprofile/internal/present/rest"
	"github.com/openprofile/openprofile/internal/present/rest/middleware"
	"github.com/openprofile/openprofile/internal/service"
	"github.com/openprofile/openprofile/internal/usecase"
	"github.com/openprofile/openprofile/visibility"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	domainConf := conf.Domain()

	if conf.Server.EnableTrace {
		shutdown := setupTrace(conf.Server.TraceEndpoint)
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Error("trace shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)

	var mc *memcache.Client
	if conf.Server.MemcachedAddr != "" {
		mc = database.NewMemcached(conf.Server.MemcachedAddr)
	}

	cl := client.New("openprofile/1.0 (" + domainConf.FQDN + ")")

	accountRepo := repository.NewAccountRepository(db, mc)
	trustRepo := repository.NewTrustRepository(db, cl)
	statusRepo := repository.NewStatusRepository(rdb)
	trustUC := usecase.NewTrustUsecase(trustRepo)

	signal := service.NewSignalService(rdb)
	auth := service.NewAuthService(&domainConf)

	registry := actions.NewRegistry()
	registry.Register(visibility.FieldEmail, func(v string) actions.Action {
		return actions.NewEmailAction(v)
	})

	profileUC := usecase.NewProfileUsecase(accountRepo, registry, statusRepo, signal)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware(domainConf.FQDN))
	}

	viewer := middleware.NewViewerMiddleware(auth, trustUC, domainConf)
	e.Use(viewer.IdentifyViewer)

	h := rest.NewHandler(domainConf, profileUC, trustUC, signal)
	h.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}

func setupTrace(endpoint string) func(context.Context) error {
	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		panic("failed to create trace exporter: " + err.Error())
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "openprofile"),
		)),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown
}
