// Package webserver owns the HTTP surface: one echo instance carrying
// the public storefront API, the JWT-guarded customer API and the
// session-guarded admin API.
package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ablewear/ablewear/internal/app"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	appContextKey = "ablewear_app"
)

type WebServer struct {
	appctx app.AppContext
	root   *echo.Echo
	pub    *echo.Group
	api    *echo.Group
	admin  *echo.Group
}

var server *WebServer

// Init builds the shared web server instance. Route registrars below
// are no-ops until this has run.
func Init(appctx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = NewJSONSerializer()
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(appctx.Config().Web.SessionSecret))))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appContextKey, appctx)
			start := time.Now()
			err := next(c)
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("elapsed", time.Since(start)))
			return err
		}
	})

	s := &WebServer{
		appctx: appctx,
		root:   e,
		pub:    e.Group("/api"),
		api:    e.Group("/api"),
		admin:  e.Group("/admin"),
	}
	s.api.Use(customerJwtMiddleware(appctx.Config().Web.JwtSecret))
	s.admin.Use(adminSessionMiddleware())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	server = s
	return s
}

// Start serves until ctx is cancelled.
func (s *WebServer) Start(ctx context.Context) error {
	cfg := s.appctx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("web server listening on %s", addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.root.Shutdown(shutdownCtx)
	}()

	if err := s.root.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Echo exposes the underlying engine (used in handler tests).
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// GetAppContext returns the application context bound to the request.
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(appContextKey).(app.AppContext)
}

// GetDB returns the request-scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB().WithContext(c.Request().Context())
}

// PubGET registers an unauthenticated storefront route.
func PubGET(path string, h echo.HandlerFunc) {
	server.pub.GET(path, h)
}

func PubPOST(path string, h echo.HandlerFunc) {
	server.pub.POST(path, h)
}

// ApiGET registers a customer route behind JWT auth.
func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

// AdminGET registers an operator route behind the admin session.
func AdminGET(path string, h echo.HandlerFunc) {
	server.admin.GET(path, h)
}

func AdminPOST(path string, h echo.HandlerFunc) {
	server.admin.POST(path, h)
}

func AdminPUT(path string, h echo.HandlerFunc) {
	server.admin.PUT(path, h)
}

func AdminDELETE(path string, h echo.HandlerFunc) {
	server.admin.DELETE(path, h)
}
