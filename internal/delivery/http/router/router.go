// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"cliptube/internal/delivery/http/middleware"
	"cliptube/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AccountHandler *handler.AccountHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler *handler.AccountHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler: params.AccountHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	users := e.Group("/api/v1/users")
	{
		users.POST("/register", r.accountHandler.Register)
		users.POST("/login", r.accountHandler.Login)
		users.POST("/refresh-token", r.accountHandler.RefreshToken)
	}

	// Routes that require a valid access token
	secured := users.Group("")
	secured.Use(r.authMiddleware.Authenticate)
	{
		secured.POST("/logout", r.accountHandler.Logout)
		secured.POST("/change-password", r.accountHandler.ChangePassword)
		secured.GET("/me", r.accountHandler.Me)
		secured.PATCH("/me", r.accountHandler.UpdateDetails)
		secured.PATCH("/me/avatar", r.accountHandler.UpdateAvatar)
		secured.PATCH("/me/cover-image", r.accountHandler.UpdateCoverImage)
		secured.GET("/me/qrcode", r.accountHandler.ProfileQR)
	}
}
