// Package callback serves the local OAuth redirect target used by
// `shopctl install`: it verifies the callback, exchanges the code, and hands
// the outcome back to the waiting command.
package callback

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/shopkeeper/pkg/logger"
	"github.com/donaldgifford/shopkeeper/pkg/shopify"
)

// DefaultPath is the route the redirect URI points at.
const DefaultPath = "/auth/callback"

// Confirmer completes an installation from a verified callback.
// *shopify.InstallationConfirmer implements it.
type Confirmer interface {
	RequestPermanentAccessToken(
		ctx context.Context,
		cb shopify.AuthorizationCallback,
		app shopify.AppCredentials,
		expectedNonce string,
	) (*shopify.AccessToken, error)
}

// Result is the outcome of one callback.
type Result struct {
	Shop  string
	Token *shopify.AccessToken
	Err   error
}

// Server is an echo server answering a single installation attempt.
type Server struct {
	echo      *echo.Echo
	confirmer Confirmer
	app       shopify.AppCredentials
	nonce     string
	path      string
	logger    *log.Logger
	results   chan Result
}

// Option configures the Server.
type Option func(*Server)

// WithPath overrides the callback route (default /auth/callback).
func WithPath(p string) Option {
	return func(s *Server) {
		if p != "" {
			s.path = p
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Server that confirms callbacks for app against nonce.
func New(confirmer Confirmer, app shopify.AppCredentials, nonce string, opts ...Option) *Server {
	s := &Server{
		confirmer: confirmer,
		app:       app,
		nonce:     nonce,
		path:      DefaultPath,
		logger:    logger.Discard(),
		results:   make(chan Result, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(Recovery(s.logger))
	e.Use(RequestLog(s.logger))
	e.Use(Metrics())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET(s.path, s.handleCallback)

	s.echo = e
	return s
}

// Handler returns the HTTP handler, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Results delivers the outcome of the first callback. Later callbacks are
// answered but not delivered.
func (s *Server) Results() <-chan Result {
	return s.results
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("listening for OAuth callback", "addr", addr, "path", s.path)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("callback server: %w", err)
	}
	return nil
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down callback server: %w", err)
	}
	return nil
}

// Wait blocks until a callback outcome is available or ctx is done.
func (s *Server) Wait(ctx context.Context) (Result, error) {
	select {
	case r := <-s.results:
		return r, nil
	case <-ctx.Done():
		return Result{}, fmt.Errorf("waiting for OAuth callback: %w", ctx.Err())
	}
}

func (s *Server) handleCallback(c echo.Context) error {
	cb, err := shopify.ParseCallback(c.QueryParams())
	if err != nil {
		s.publish(Result{Err: err})
		return c.String(http.StatusBadRequest, "Installation failed: malformed callback.\n")
	}

	token, err := s.confirmer.RequestPermanentAccessToken(c.Request().Context(), cb, s.app, s.nonce)
	if err != nil {
		s.publish(Result{Shop: cb.Shop, Err: err})
		s.logger.Warn("installation failed", "shop", cb.Shop, "err", err)
		return c.String(statusFor(err), "Installation failed: "+reason(err)+"\n")
	}

	s.publish(Result{Shop: cb.Shop, Token: token})
	s.logger.Info("installation complete", "shop", cb.Shop, "scopes", token.Scopes.String())
	return c.String(http.StatusOK, "Installation complete. You can close this window.\n")
}

func (s *Server) publish(r Result) {
	select {
	case s.results <- r:
	default:
	}
}

func statusFor(err error) int {
	var (
		failure   *shopify.SecurityCheckFailure
		transport *shopify.TransportError
	)
	switch {
	case errors.As(err, &failure):
		return http.StatusForbidden
	case errors.As(err, &transport):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// reason is the user-facing text; it never echoes expected values.
func reason(err error) string {
	var (
		failure   *shopify.SecurityCheckFailure
		transport *shopify.TransportError
	)
	switch {
	case errors.As(err, &failure):
		return "the callback could not be verified (" + failure.Property + ")."
	case errors.As(err, &transport):
		return "the token exchange with Shopify failed."
	default:
		return "unexpected response from Shopify."
	}
}
