package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/amilimetros/internal/db"
	"github.com/Skotchmaster/amilimetros/internal/metrics"
	"github.com/Skotchmaster/amilimetros/internal/middleware"
)

type Deps struct {
	Store           *db.Provider
	Auth            *middleware.Auth
	AuthHandler     *AuthHandler
	ProductHandler  *ProductHandler
	AnimalHandler   *AnimalHandler
	CartHandler     *CartHandler
	AdoptionHandler *AdoptionHandler
	LogoHandler     *LogoHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/logo", d.LogoHandler.GetLogo)

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout, d.Auth.RequireLogin)
	auth.GET("/me", d.AuthHandler.Me, d.Auth.RequireLogin)
	auth.POST("/password", d.AuthHandler.ChangePassword, d.Auth.RequireLogin)
	auth.PATCH("/profile", d.AuthHandler.UpdateProfile, d.Auth.RequireLogin)

	products := e.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/search", d.ProductHandler.Search)
	products.GET("/stream", d.ProductHandler.Stream)
	products.GET("/:id", d.ProductHandler.GetProduct)

	animals := e.Group("/animals")
	animals.GET("", d.AnimalHandler.GetAnimals)
	animals.GET("/stream", d.AnimalHandler.Stream)
	animals.GET("/:id", d.AnimalHandler.GetAnimal)
	animals.POST("/:id/adopt", d.AnimalHandler.Adopt, d.Auth.RequireLogin)

	cart := e.Group("/cart", d.Auth.RequireLogin)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.POST("/checkout", d.CartHandler.Checkout)
	cart.GET("/stream", d.CartHandler.Stream)
	cart.PATCH("/items/:id", d.CartHandler.SetQuantity)
	cart.DELETE("/items/:id", d.CartHandler.RemoveItem)

	adoptions := e.Group("/adoptions", d.Auth.RequireLogin)
	adoptions.POST("", d.AdoptionHandler.Submit)
	adoptions.GET("", d.AdoptionHandler.Mine)
	adoptions.GET("/stream", d.AdoptionHandler.MineStream)

	admin := e.Group("/admin", d.Auth.RequireAdmin)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PUT("/products/:id", d.ProductHandler.UpdateProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.POST("/animals", d.AnimalHandler.CreateAnimal)
	admin.PUT("/animals/:id", d.AnimalHandler.UpdateAnimal)
	admin.DELETE("/animals/:id", d.AnimalHandler.DeleteAnimal)
	admin.GET("/adoptions", d.AdoptionHandler.All)
	admin.GET("/adoptions/stream", d.AdoptionHandler.AllStream)
	admin.PATCH("/adoptions/:id/status", d.AdoptionHandler.SetStatus)
	admin.GET("/users", d.AuthHandler.ListUsers)
	admin.DELETE("/users/:id", d.AuthHandler.DeleteUser)
}

// ready pings the store.
func (d *Deps) ready(c echo.Context) error {
	if d.Store == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx := c.Request().Context()
	gdb, err := d.Store.Get(ctx)
	if err == nil {
		sqlDB, dbErr := gdb.DB()
		if err = dbErr; err == nil {
			err = sqlDB.PingContext(ctx)
		}
	}
	if err != nil {
		return errorResponse(c, http.StatusServiceUnavailable, err)
	}
	return c.NoContent(http.StatusOK)
}
