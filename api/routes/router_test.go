package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/otka-dev/otka-backend/internal/documents"
	pkgAuth "github.com/otka-dev/otka-backend/pkg/auth"
	"github.com/otka-dev/otka-backend/pkg/config"
	"github.com/otka-dev/otka-backend/pkg/enums"
	"github.com/otka-dev/otka-backend/pkg/logger"
	"github.com/otka-dev/otka-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

// Services are nil on purpose; controllers answer 500 for a nil service, so
// any non-401/403 status proves the request cleared the middleware chain.
func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubPinger{},
		nil,
		nil,
		nil,
		nil,
		nil,
		nil,
		nil,
		nil,
		nil,
		nil,
		nil,
		nil,
		documents.NewPDFRenderer(documents.CompanyInfo{Name: "OTKA"}),
	)
}

func buildToken(t *testing.T, cfg *config.Config, email string, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		Email: email,
		Role:  role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveAlwaysUp(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
	if resp.Header().Get("X-OTKA-Env") != "test" {
		t.Fatalf("missing env header")
	}
}

func TestHealthReadySkipsNilDependencies(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for readiness got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestPartnerGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/partner/orders", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPartnerGroupRejectsAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partner/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "admin@otka.ro", enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin on partner surface got %d", resp.Code)
	}
}

func TestPartnerGroupAdmitsPartnerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partner/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "partner@example.ro", enums.UserRolePartner))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code == http.StatusUnauthorized || resp.Code == http.StatusForbidden {
		t.Fatalf("partner token must clear middleware, got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	partner := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	partner.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "partner@example.ro", enums.UserRolePartner))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, partner)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for partner on admin surface got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "admin@otka.ro", enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code == http.StatusUnauthorized || resp.Code == http.StatusForbidden {
		t.Fatalf("admin token must clear middleware, got %d", resp.Code)
	}
}

func TestPublicGroupNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/public/products", nil))
	if resp.Code == http.StatusUnauthorized || resp.Code == http.StatusForbidden {
		t.Fatalf("public surface must not require auth, got %d", resp.Code)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
