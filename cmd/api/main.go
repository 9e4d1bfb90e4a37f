package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/otka-dev/otka-backend/api/routes"
	"github.com/otka-dev/otka-backend/internal/catalog"
	"github.com/otka-dev/otka-backend/internal/clients"
	"github.com/otka-dev/otka-backend/internal/commissions"
	"github.com/otka-dev/otka-backend/internal/documents"
	"github.com/otka-dev/otka-backend/internal/manualorders"
	"github.com/otka-dev/otka-backend/internal/partnerorders"
	"github.com/otka-dev/otka-backend/internal/partners"
	"github.com/otka-dev/otka-backend/internal/products"
	"github.com/otka-dev/otka-backend/internal/proformas"
	"github.com/otka-dev/otka-backend/internal/resources"
	"github.com/otka-dev/otka-backend/internal/search"
	"github.com/otka-dev/otka-backend/internal/users"
	"github.com/otka-dev/otka-backend/pkg/config"
	"github.com/otka-dev/otka-backend/pkg/db"
	"github.com/otka-dev/otka-backend/pkg/logger"
	"github.com/otka-dev/otka-backend/pkg/mailer"
	"github.com/otka-dev/otka-backend/pkg/migrate"
	"github.com/otka-dev/otka-backend/pkg/openai"
	"github.com/otka-dev/otka-backend/pkg/outbox"
	"github.com/otka-dev/otka-backend/pkg/pubsub"
	"github.com/otka-dev/otka-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	var embedder openai.Embedder
	if cfg.OpenAI.APIKey != "" {
		client, embErr := openai.NewClient(cfg.OpenAI)
		if embErr != nil {
			logg.Error(context.Background(), "failed to create openai client", embErr)
			os.Exit(1)
		}
		embedder = client
	} else {
		logg.Warn(context.Background(), "openai api key missing, semantic search degraded to keyword matching")
	}

	var sender mailer.Sender
	if cfg.SMTP.Configured() {
		smtp, smtpErr := mailer.NewSMTPSender(cfg.SMTP, logg)
		if smtpErr != nil {
			logg.Error(context.Background(), "failed to create smtp sender", smtpErr)
			os.Exit(1)
		}
		sender = smtp
	} else {
		logg.Warn(context.Background(), "smtp not configured, proforma emails disabled")
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	pdfRenderer := documents.NewPDFRenderer(documents.CompanyInfo{
		Name:    cfg.Company.Name,
		VatID:   cfg.Company.VatID,
		RegCom:  cfg.Company.RegCom,
		Address: cfg.Company.Address,
		IBAN:    cfg.Company.IBAN,
		Bank:    cfg.Company.Bank,
	})

	ordersService, err := partnerorders.NewService(partnerorders.ServiceParams{
		Repo:   partnerorders.NewRepository(dbClient.DB()),
		Tx:     dbClient,
		Outbox: outboxService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	clientsService, err := clients.NewService(clients.ServiceParams{
		Repo: clients.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create client service", err)
		os.Exit(1)
	}

	manualOrdersRepo := manualorders.NewRepository(dbClient.DB())
	manualOrdersService, err := manualorders.NewService(manualorders.ServiceParams{
		Repo:    manualOrdersRepo,
		Clients: clients.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create manual order service", err)
		os.Exit(1)
	}

	commissionRate, err := decimal.NewFromString(cfg.Commission.Rate)
	if err != nil {
		logg.Error(context.Background(), "invalid commission rate", err)
		os.Exit(1)
	}
	commissionsService, err := commissions.NewService(commissions.ServiceParams{
		Orders: manualOrdersRepo,
		Rate:   commissionRate,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create commission service", err)
		os.Exit(1)
	}

	proformasService, err := proformas.NewService(proformas.ServiceParams{
		Repo:     proformas.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Outbox:   outboxService,
		Clients:  clientsService,
		Renderer: pdfRenderer,
		Mailer:   sender,
		Logger:   logg,
		Cfg:      cfg.Proforma,
		Company:  cfg.Company,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create proforma service", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(products.ServiceParams{
		Repo:     products.NewRepository(dbClient.DB()),
		Embedder: embedder,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo: catalog.NewRepository(dbClient.DB()),
		Tx:   dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	partnersService, err := partners.NewService(partners.ServiceParams{
		Repo: partners.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create partner service", err)
		os.Exit(1)
	}

	resourcesService, err := resources.NewService(resources.ServiceParams{
		Repo: resources.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create resource service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Repo: users.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	searchService, err := search.NewService(search.ServiceParams{
		Repo:     search.NewRepository(dbClient.DB()),
		Embedder: embedder,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create search service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			pubsubClient,
			usersService,
			ordersService,
			manualOrdersService,
			clientsService,
			proformasService,
			commissionsService,
			productsService,
			catalogService,
			partnersService,
			resourcesService,
			usersService,
			searchService,
			pdfRenderer,
		),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
