package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agrienergy/agri-produce/internal/config"
	"github.com/agrienergy/agri-produce/internal/database"
	"github.com/agrienergy/agri-produce/internal/middleware"
	"github.com/agrienergy/agri-produce/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const seedPassword = "Password.1"

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Env: "test"},
		Session:  config.SessionConfig{Secret: "test-secret", IdleTimeout: 30 * time.Minute, RememberFor: 720 * time.Hour},
		Password: config.PasswordConfig{MinLength: 6, RequireDigit: true, RequireLowercase: true},
		Lockout:  config.LockoutConfig{MaxFailedAttempts: 5, Duration: 5 * time.Minute},
		Throttle: config.ThrottleConfig{Limit: 100, Window: time.Minute},
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	cfg := testConfig()
	cfg.DB = config.DBConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "agri.db")}

	db, err := database.Open(ctx, cfg.DB, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	hasher := services.BcryptHasher{Cost: bcrypt.MinCost}
	require.NoError(t, database.Seed(ctx, db, hasher, seedPassword, zerolog.Nop()))

	r, err := NewRouter(Deps{
		Config:  cfg,
		DB:      db,
		Limiter: middleware.NewMemoryLimiter(cfg.Throttle.Limit, cfg.Throttle.Window),
		Hasher:  hasher,
		Log:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return r
}

// browser keeps the session cookie between requests.
type browser struct {
	t      *testing.T
	r      *gin.Engine
	cookie *http.Cookie
}

func newBrowser(t *testing.T, r *gin.Engine) *browser {
	return &browser{t: t, r: r}
}

func (b *browser) send(req *http.Request) *httptest.ResponseRecorder {
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.r.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionName {
			b.cookie = ck
		}
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.send(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.send(req)
}

func (b *browser) login(email, password string) *httptest.ResponseRecorder {
	return b.post("/login", url.Values{"email": {email}, "password": {password}})
}

func TestHealth(t *testing.T) {
	rec := newBrowser(t, newTestRouter(t)).get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLogin_EmployeeLandsOnDashboard(t *testing.T) {
	b := newBrowser(t, newTestRouter(t))

	rec := b.login(database.SeedEmployeeEmail, seedPassword)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/employee", rec.Header().Get("Location"))

	rec = b.get("/employee")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Employee One")

	rec = b.get("/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/employee", rec.Header().Get("Location"))
}

func TestLogin_InvalidPassword(t *testing.T) {
	b := newBrowser(t, newTestRouter(t))

	rec := b.login(database.SeedFarmerEmail, "nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid login attempt.")
}

func TestLogin_MissingFields(t *testing.T) {
	b := newBrowser(t, newTestRouter(t))

	rec := b.post("/login", url.Values{"email": {""}, "password": {""}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "The Email field is required.")
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	b := newBrowser(t, newTestRouter(t))

	for i := 0; i < 4; i++ {
		assert.Equal(t, http.StatusBadRequest, b.login(database.SeedFarmerEmail, "wrong").Code)
	}
	rec := b.login(database.SeedFarmerEmail, "wrong")
	assert.Equal(t, http.StatusLocked, rec.Code)
	assert.Contains(t, rec.Body.String(), "locked out")

	rec = b.login(database.SeedFarmerEmail, seedPassword)
	assert.Equal(t, http.StatusLocked, rec.Code)
	assert.Nil(t, b.cookie)
}

func TestLogin_RememberMeSetsPersistentCookie(t *testing.T) {
	b := newBrowser(t, newTestRouter(t))

	rec := b.post("/login", url.Values{
		"email": {database.SeedFarmerEmail}, "password": {seedPassword}, "remember_me": {"true"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	require.NotNil(t, b.cookie)
	assert.Greater(t, b.cookie.MaxAge, 0)

	plain := newBrowser(t, b.r)
	plain.login(database.SeedFarmerEmail, seedPassword)
	require.NotNil(t, plain.cookie)
	assert.Zero(t, plain.cookie.MaxAge)
}

func TestReturnURL(t *testing.T) {
	r := newTestRouter(t)
	b := newBrowser(t, r)

	rec := b.get("/farmer/products")
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "/farmer/products", loc.Query().Get("return_url"))

	rec = b.post("/login", url.Values{
		"email": {database.SeedFarmerEmail}, "password": {seedPassword}, "return_url": {"/farmer/products"},
	})
	assert.Equal(t, "/farmer/products", rec.Header().Get("Location"))

	other := newBrowser(t, r)
	rec = other.post("/login", url.Values{
		"email": {database.SeedFarmerEmail}, "password": {seedPassword}, "return_url": {"https://evil.example/"},
	})
	assert.Equal(t, "/farmer", rec.Header().Get("Location"))
}

func TestRoleSeparation(t *testing.T) {
	r := newTestRouter(t)

	farmer := newBrowser(t, r)
	farmer.login(database.SeedFarmerEmail, seedPassword)
	for _, path := range []string{"/employee", "/employee/products", "/employee/farmers/new", "/employee/audit"} {
		rec := farmer.get(path)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "Access denied", path)
	}

	employee := newBrowser(t, r)
	employee.login(database.SeedEmployeeEmail, seedPassword)
	for _, path := range []string{"/farmer", "/farmer/products", "/farmer/products/new"} {
		assert.Equal(t, http.StatusForbidden, employee.get(path).Code, path)
	}
}

func TestFarmerAddsProduct(t *testing.T) {
	b := newBrowser(t, newTestRouter(t))
	b.login(database.SeedFarmerEmail, seedPassword)

	rec := b.post("/farmer/products/new", url.Values{
		"name": {"Butternut"}, "category": {"Vegetables"}, "production_date": {"2025-10-12"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/farmer/products", rec.Header().Get("Location"))

	rec = b.get("/farmer/products")
	body := rec.Body.String()
	assert.Contains(t, body, "Product added successfully!")
	assert.Contains(t, body, "Butternut")
	assert.Contains(t, body, "2025-10-12")
	assert.Less(t, strings.Index(body, "Butternut"), strings.Index(body, "Apples"))

	rec = b.get("/farmer/products")
	assert.NotContains(t, rec.Body.String(), "Product added successfully!")
}

func TestFarmerAddProductValidation(t *testing.T) {
	b := newBrowser(t, newTestRouter(t))
	b.login(database.SeedFarmerEmail, seedPassword)

	rec := b.post("/farmer/products/new", url.Values{
		"name": {"Butternut"}, "category": {""}, "production_date": {"12/10/2025"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "The Category field is required.")

	rec = b.post("/farmer/products/new", url.Values{
		"name": {"Butternut"}, "category": {"Vegetables"}, "production_date": {"12/10/2025"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be a date (YYYY-MM-DD)")
}

func TestEmployeeCreatesFarmer(t *testing.T) {
	r := newTestRouter(t)
	b := newBrowser(t, r)
	b.login(database.SeedEmployeeEmail, seedPassword)

	rec := b.post("/employee/farmers/new", url.Values{
		"full_name": {"Alice Moyo"}, "email": {"alice@agrifarm.com"},
		"password": {"secret1"}, "confirm_password": {"secret2"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "The password and confirmation password do not match.")

	rec = b.post("/employee/farmers/new", url.Values{
		"full_name": {"Alice Moyo"}, "email": {"alice@agrifarm.com"},
		"password": {"secret"}, "confirm_password": {"secret"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Passwords must have at least one digit")

	rec = b.post("/employee/farmers/new", url.Values{
		"full_name": {"Alice Moyo"}, "email": {"alice@agrifarm.com"},
		"password": {"secret1"}, "confirm_password": {"secret1"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/employee", rec.Header().Get("Location"))
	assert.Contains(t, b.get("/employee").Body.String(), "Farmer account created successfully!")

	rec = b.post("/employee/farmers/new", url.Values{
		"full_name": {"Alice Again"}, "email": {"ALICE@agrifarm.com"},
		"password": {"secret1"}, "confirm_password": {"secret1"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "is already taken.")

	alice := newBrowser(t, r)
	rec = alice.login("alice@agrifarm.com", "secret1")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/farmer", rec.Header().Get("Location"))

	audit := b.get("/employee/audit").Body.String()
	assert.Contains(t, audit, "Created farmer Alice Moyo")
}

func TestEmployeeFiltersProducts(t *testing.T) {
	b := newBrowser(t, newTestRouter(t))
	b.login(database.SeedEmployeeEmail, seedPassword)

	rec := b.get("/employee/products?category=fruits&start_date=2025-01-01&end_date=2025-12-31")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Apples")
	assert.NotContains(t, body, "Tomatoes")
	assert.Contains(t, body, "Farmer One")

	rec = b.get("/employee/products")
	body = rec.Body.String()
	for _, name := range []string{"Apples", "Local Honey", "Tomatoes"} {
		assert.Contains(t, body, name)
	}

	rec = b.get("/employee/products?start_date=not-a-date")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "use YYYY-MM-DD")
}

func TestLogout(t *testing.T) {
	b := newBrowser(t, newTestRouter(t))
	b.login(database.SeedFarmerEmail, seedPassword)

	rec := b.post("/logout", nil)
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = b.get("/farmer")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login"))
}
