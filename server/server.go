// Package server owns the database connection and the HTTP listener of one service instance.
package server

import (
	"blogposts/domain"
	"blogposts/handler"
	"blogposts/store"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/acme/autocert"
)

type Server struct {
	Echo *echo.Echo
	// OpenStore connects to the database; it defaults to store.Open.
	OpenStore func(ctx context.Context, databaseURL string) (store.PostStore, error)

	cfg      domain.Config
	store    store.PostStore
	listener net.Listener
	done     chan error
}

func New(cfg domain.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "0",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		HSTSMaxAge:            31536000,
	}))
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Renderer = handler.NewTemplateRegistry()

	return &Server{
		Echo:      e,
		OpenStore: store.Open,
		cfg:       cfg,
	}
}

// Start connects to the database and binds the listener on port. It returns once the
// listener is bound; requests are served in the background until Stop.
func (s *Server) Start(ctx context.Context, databaseURL string, port int) error {
	st, err := s.OpenStore(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("unable to open database: %w", err)
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		if cerr := st.Close(ctx); cerr != nil {
			s.Echo.Logger.Error(cerr)
		}
		return fmt.Errorf("unable to listen on port %d: %w", port, err)
	}
	if s.cfg.TLSHost != "" {
		ln = s.autoTLSListener(ln)
	}

	h := handler.Handler{Store: st}
	h.RegisterRoutes(s.Echo)

	s.store = st
	s.listener = ln
	s.done = make(chan error, 1)
	s.Echo.Listener = ln

	go func() {
		err := s.Echo.Start("")
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()

	s.Echo.Logger.Infof("listening on %s", ln.Addr())
	return nil
}

// autoTLSListener serves certificates from Let's Encrypt for the configured host.
func (s *Server) autoTLSListener(ln net.Listener) net.Listener {
	m := &s.Echo.AutoTLSManager
	// Cache certificates to avoid issues with rate limits (https://letsencrypt.org/docs/rate-limits)
	m.Cache = autocert.DirCache(s.cfg.CertCacheDir)
	m.HostPolicy = autocert.HostWhitelist(s.cfg.TLSHost)
	m.Prompt = autocert.AcceptTOS
	cfg := m.TLSConfig()
	cfg.MinVersion = tls.VersionTLS12
	return tls.NewListener(ln, cfg)
}

func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop disconnects from the database and then shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	var storeErr error
	if s.store != nil {
		storeErr = s.store.Close(ctx)
		if storeErr != nil {
			s.Echo.Logger.Error(storeErr)
		}
	}
	if err := s.Echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	if s.done != nil {
		if err := <-s.done; err != nil {
			return err
		}
	}
	return storeErr
}
