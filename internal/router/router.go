package router

import (
	"net/http"

	"fintrack/internal/apperr"
	"fintrack/internal/events"
	"fintrack/internal/handler"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware"
	"fintrack/internal/storage"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

// Deps is everything the HTTP layer needs, built once at startup.
type Deps struct {
	Mode      string
	Version   string
	Store     *storage.Store
	Hasher    *util.PasswordHasher
	Tokens    *util.TokenService
	Publisher events.Publisher
	Logger    *applog.Logger
}

// SetupRouter configures the gin engine with every route.
func SetupRouter(d Deps) *gin.Engine {
	if d.Mode != "" {
		gin.SetMode(d.Mode)
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = applog.Discard()
	}
	util.RegisterValidators()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.RedirectTrailingSlash = false
	r.Use(middleware.RequestLogger(d.Logger), middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		util.Error(c, apperr.NotFound("Not Found"))
	})
	r.NoMethod(func(c *gin.Context) {
		util.Error(c, apperr.New(apperr.KindMethodNotAllowed, "Method Not Allowed"))
	})

	r.GET("/", handler.Root(d.Version))
	r.GET("/health", handler.Health)

	authHandler := handler.NewAuthHandler(d.Store, d.Hasher, d.Tokens, d.Publisher)
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	both(r, http.MethodPost, "/users", authHandler.CreateUser)

	protected := r.Group("")
	protected.Use(middleware.AuthMiddleware(d.Tokens, d.Store))

	userHandler := handler.NewUserHandler(d.Store, d.Hasher, d.Publisher)
	both(protected, http.MethodGet, "/users/me", userHandler.GetMe)
	both(protected, http.MethodPatch, "/users/me", userHandler.UpdateProfile)
	protected.POST("/users/me/password", userHandler.ChangePassword)

	categoryHandler := handler.NewCategoryHandler(d.Store, d.Publisher)
	both(protected, http.MethodGet, "/categories", categoryHandler.List)
	both(protected, http.MethodPost, "/categories", categoryHandler.Create)
	protected.DELETE("/categories/:id", categoryHandler.Delete)

	incomeHandler := handler.NewIncomeHandler(d.Store, d.Publisher)
	both(protected, http.MethodGet, "/income", incomeHandler.List)
	both(protected, http.MethodPost, "/income", incomeHandler.Create)

	spendingHandler := handler.NewSpendingHandler(d.Store, d.Publisher)
	both(protected, http.MethodGet, "/spending", spendingHandler.List)
	both(protected, http.MethodPost, "/spending", spendingHandler.Create)
	protected.GET("/spending/summary", spendingHandler.Summary)
	protected.GET("/spending/export.csv", spendingHandler.ExportCSV)
	protected.GET("/spending/export.xlsx", spendingHandler.ExportXLSX)
	protected.PUT("/spending/:id", spendingHandler.Update)
	protected.DELETE("/spending/:id", spendingHandler.Delete)

	savingsHandler := handler.NewSavingsHandler(d.Store, d.Publisher)
	both(protected, http.MethodGet, "/savings", savingsHandler.List)
	both(protected, http.MethodPost, "/savings", savingsHandler.Create)
	protected.GET("/savings/:goal_id", savingsHandler.Get)
	both(protected, http.MethodPost, "/savings/:goal_id/contributions", savingsHandler.AddContribution)

	return r
}

// both registers path with and without a trailing slash.
func both(r gin.IRoutes, method, path string, h gin.HandlerFunc) {
	r.Handle(method, path, h)
	r.Handle(method, path+"/", h)
}
