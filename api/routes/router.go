package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otka-dev/otka-backend/api/controllers"
	"github.com/otka-dev/otka-backend/api/middleware"
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
	"github.com/otka-dev/otka-backend/pkg/enums"
	"github.com/otka-dev/otka-backend/pkg/logger"
	"github.com/otka-dev/otka-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient *redis.Client,
	pubsubPinger controllers.Pinger,
	accounts middleware.AccountChecker,
	ordersService *partnerorders.Service,
	manualOrdersService *manualorders.Service,
	clientsService *clients.Service,
	proformasService *proformas.Service,
	commissionsService *commissions.Service,
	productsService *products.Service,
	catalogService *catalog.Service,
	partnersService *partners.Service,
	resourcesService *resources.Service,
	usersService *users.Service,
	searchService *search.Service,
	pdfRenderer *documents.PDFRenderer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	registerPolicy := middleware.NewRegisterRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":     dbPinger,
			"redis":  pingerOrNil(redisClient),
			"pubsub": pubsubPinger,
		}))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/public", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore(redisClient), logg))
		r.With(middleware.RegisterRateLimit(registerPolicy, redisClient, logg)).
			Post("/partners/register", controllers.PartnerRegister(partnersService, logg))
		r.Post("/search", controllers.Search(searchService, logg))
		r.Get("/assets", controllers.AssetList(resourcesService, logg))
		r.Get("/products", controllers.ProductList(productsService, logg))
		r.Get("/brands", controllers.BrandList(catalogService, logg))
		r.Get("/categories", controllers.CategoryList(catalogService, logg))
		r.Get("/tax-rates", controllers.TaxRateList(catalogService, logg))
	})

	r.Route("/api/v1/partner", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, accounts, logg))
		r.Use(middleware.RequireRole(string(enums.UserRolePartner), logg))
		r.Use(middleware.Idempotency(idempotencyStore(redisClient), logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.PartnerOrderCreate(ordersService, logg))
			r.Get("/", controllers.PartnerOrderList(ordersService, logg))
			r.Get("/{id}", controllers.PartnerOrderGet(ordersService, logg))
			r.Put("/{id}/items", controllers.PartnerOrderReplaceItems(ordersService, logg))
			r.Post("/{id}/submit", controllers.PartnerOrderSubmit(ordersService, logg))
		})
		r.Get("/commissions", controllers.PartnerCommissionBreakdown(commissionsService, logg))
		r.Get("/commissions/export/pdf", controllers.PartnerCommissionExportPDF(commissionsService, pdfRenderer, logg))
		r.Get("/resources", controllers.ResourceList(resourcesService, logg))
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, accounts, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Use(middleware.Idempotency(idempotencyStore(redisClient), logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(ordersService, logg))
			r.Get("/export", controllers.AdminOrderExportXLSX(ordersService, logg))
			r.Get("/{id}", controllers.AdminOrderGet(ordersService, logg))
			r.Post("/{id}/status", controllers.AdminOrderUpdate(ordersService, logg))
		})

		r.Route("/manual-orders", func(r chi.Router) {
			r.Post("/", controllers.ManualOrderCreate(manualOrdersService, logg))
			r.Get("/", controllers.ManualOrderList(manualOrdersService, logg))
		})

		r.Route("/clients", func(r chi.Router) {
			r.Post("/", controllers.ClientCreate(clientsService, logg))
			r.Get("/", controllers.ClientList(clientsService, logg))
			r.Get("/{id}", controllers.ClientGet(clientsService, logg))
			r.Put("/{id}", controllers.ClientUpdate(clientsService, logg))
		})

		r.Route("/proformas", func(r chi.Router) {
			r.Post("/", controllers.ProformaCreate(proformasService, logg))
			r.Get("/", controllers.ProformaList(proformasService, logg))
			r.Get("/stats", controllers.ProformaStats(proformasService, logg))
			r.Get("/{id}", controllers.ProformaGet(proformasService, logg))
			r.Put("/{id}", controllers.ProformaUpdate(proformasService, logg))
			r.Get("/{id}/pdf", controllers.ProformaPDF(proformasService, logg))
			r.Post("/{id}/confirm", controllers.ProformaConfirm(proformasService, logg))
			r.Post("/{id}/send", controllers.ProformaSendEmail(proformasService, logg))
			r.Delete("/{id}", controllers.ProformaDelete(proformasService, logg))
		})

		r.Route("/commissions", func(r chi.Router) {
			r.Get("/", controllers.AdminCommissionReport(commissionsService, logg))
			r.Get("/export/csv", controllers.AdminCommissionExportCSV(commissionsService, logg))
			r.Get("/export/pdf", controllers.AdminCommissionExportPDF(commissionsService, pdfRenderer, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(productsService, logg))
			r.Get("/", controllers.ProductList(productsService, logg))
			r.Post("/import", controllers.ProductImportCSV(productsService, logg))
			r.Get("/export", controllers.ProductExportCSV(productsService, logg))
			r.Get("/{id}", controllers.ProductGet(productsService, logg))
			r.Put("/{id}", controllers.ProductUpdate(productsService, logg))
			r.Delete("/{id}", controllers.ProductDelete(productsService, logg))
		})

		r.Route("/brands", func(r chi.Router) {
			r.Post("/", controllers.BrandCreate(catalogService, logg))
			r.Get("/", controllers.BrandList(catalogService, logg))
			r.Put("/{id}", controllers.BrandUpdate(catalogService, logg))
			r.Delete("/{id}", controllers.BrandDelete(catalogService, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.CategoryCreate(catalogService, logg))
			r.Get("/", controllers.CategoryList(catalogService, logg))
			r.Put("/{id}", controllers.CategoryUpdate(catalogService, logg))
			r.Delete("/{id}", controllers.CategoryDelete(catalogService, logg))
		})

		r.Route("/tax-rates", func(r chi.Router) {
			r.Post("/", controllers.TaxRateCreate(catalogService, logg))
			r.Get("/", controllers.TaxRateList(catalogService, logg))
			r.Put("/bulk", controllers.TaxRateBulkUpdate(catalogService, logg))
			r.Put("/{id}", controllers.TaxRateUpdate(catalogService, logg))
			r.Delete("/{id}", controllers.TaxRateDelete(catalogService, logg))
		})

		r.Get("/partner-requests", controllers.AdminPartnerRequestList(partnersService, logg))

		r.Route("/resources", func(r chi.Router) {
			r.Post("/", controllers.ResourceCreate(resourcesService, logg))
			r.Get("/", controllers.ResourceList(resourcesService, logg))
			r.Put("/{id}", controllers.ResourceUpdate(resourcesService, logg))
			r.Delete("/{id}", controllers.ResourceDelete(resourcesService, logg))
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", controllers.AssetList(resourcesService, logg))
			r.Put("/", controllers.AssetUpsert(resourcesService, logg))
			r.Delete("/{key}", controllers.AssetDelete(resourcesService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.UserList(usersService, logg))
			r.Put("/", controllers.UserUpdate(usersService, logg))
		})
	})

	return r
}

// A nil *redis.Client must not be wrapped into a non-nil interface value.
func pingerOrNil(client *redis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}

func idempotencyStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
