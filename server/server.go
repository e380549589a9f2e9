// Package server assembles the HTTP server.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/policydesk/policydesk/server/profile"
	v1 "github.com/policydesk/policydesk/server/router/api/v1"
)

// Server is the HTTP front of the assistant.
type Server struct {
	echo *echo.Echo
	http *http.Server
}

// New builds the server: recovery middleware, the chat API and static
// serving of the browser client from public/.
func New(p *profile.Profile, api *v1.APIV1Service) *Server {
	e := echo.New()
	e.Use(middleware.Recover())
	e.Static("/", "public")
	api.Register(e)

	return &Server{
		echo: e,
		http: &http.Server{
			Addr:    p.ListenAddr(),
			Handler: e,
		},
	}
}

// ListenAndServe blocks serving requests until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
