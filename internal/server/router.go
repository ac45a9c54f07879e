package server

import (
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/agrienergy/agri-produce/internal/config"
	"github.com/agrienergy/agri-produce/internal/database"
	"github.com/agrienergy/agri-produce/internal/handlers"
	"github.com/agrienergy/agri-produce/internal/logger"
	"github.com/agrienergy/agri-produce/internal/middleware"
	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/agrienergy/agri-produce/internal/services"
	"github.com/agrienergy/agri-produce/web"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Deps carries what the router needs beyond the database.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Limiter middleware.RateLimiter
	Hasher  services.PasswordHasher
	Log     zerolog.Logger
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"maskEmail":  logger.MaskEmail,
		"formatDate": func(t time.Time) string { return t.Format("2006-01-02") },
		"formatTime": func(t time.Time) string { return t.Local().Format("2006-01-02 15:04") },
	}
}

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs()).ParseFS(web.FS, "templates/*.html")
}

// NewRouter wires repositories, services and handlers onto a gin engine.
func NewRouter(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config
	log := deps.Log

	hasher := deps.Hasher
	if hasher == nil {
		hasher = services.NewBcryptHasher()
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewMemoryLimiter(cfg.Throttle.Limit, cfg.Throttle.Window)
	}

	userRepo := database.NewUserRepository(deps.DB)
	productRepo := database.NewProductRepository(deps.DB)
	auditRepo := database.NewAuditRepository(deps.DB)

	accounts := services.NewAccountService(userRepo, hasher, services.NewLockoutPolicy(cfg.Lockout), log)
	users := services.NewUserService(userRepo, hasher, services.NewPasswordPolicy(cfg.Password), log)
	products := services.NewProductService(productRepo, log)

	sess := middleware.NewSessions(cfg.Session)
	h := handlers.New(accounts, users, products, auditRepo, sess, log)

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(static))
	r.GET("/health", handlers.Health)

	r.Use(sess.Handler(cfg.Session.Secret))
	r.Use(middleware.InjectUser(sess, users, log))

	r.GET("/", h.Index)
	r.GET("/login", h.ShowLogin)
	r.POST("/login", middleware.ThrottleLogin(limiter, log), h.Login)
	r.POST("/logout", h.Logout)
	r.GET("/access-denied", h.AccessDenied)

	employee := r.Group("/employee")
	employee.Use(middleware.RequireAuth(), middleware.RequireRole(models.RoleEmployee))
	employee.GET("", h.EmployeeDashboard)
	employee.GET("/farmers/new", h.ShowNewFarmer)
	employee.POST("/farmers/new", h.CreateFarmer)
	employee.GET("/products", h.ListAllProducts)
	employee.GET("/audit", h.ListAuditLogs)

	farmer := r.Group("/farmer")
	farmer.Use(middleware.RequireAuth(), middleware.RequireRole(models.RoleFarmer))
	farmer.GET("", h.FarmerDashboard)
	farmer.GET("/products", h.ListMyProducts)
	farmer.GET("/products/new", h.ShowNewProduct)
	farmer.POST("/products/new", h.CreateProduct)

	return r, nil
}
