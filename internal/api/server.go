//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package api exposes the analytics reports over HTTP.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/storepulse/storepulse/internal/config"
	"github.com/storepulse/storepulse/internal/logging"
	"github.com/storepulse/storepulse/internal/model"
	"github.com/storepulse/storepulse/internal/store"
)

// DataSource supplies the data behind the API. *store.Store satisfies
// it; tests substitute a stub.
type DataSource interface {
	LoadDataset(ctx context.Context) (*model.Dataset, error)
	ReportingView(ctx context.Context, limit int) ([]store.ReportingRow, error)
}

// Server is the storepulse HTTP API server.
type Server struct {
	app  *fiber.App
	data DataSource
	cfg  config.ServeConfig
}

// NewServer creates a Server with all routes registered.
func NewServer(data DataSource, cfg config.ServeConfig) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "storepulse",
		ReadTimeout:           time.Duration(cfg.ReadTimeout) * time.Second,
		DisableStartupMessage: true,
	})

	s := &Server{app: app, data: data, cfg: cfg}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.handleHealth)

	reports := s.app.Group("/api/reports")
	reports.Get("/summary", s.handleSummary)
	reports.Get("/top-products", s.handleTopProducts)
	reports.Get("/abc", s.handleABC)
	reports.Get("/stock-ratios", s.handleStockRatios)
	reports.Get("/stockout", s.handleStockoutRisk)
	reports.Get("/yoy", s.handleYearOverYear)

	s.app.Get("/api/validations", s.handleValidations)
	s.app.Get("/api/sales", s.handleSales)
}

// App returns the underlying Fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts serving on the configured address and blocks until
// Shutdown is called.
func (s *Server) Listen() error {
	logging.Info().
		Str("addr", s.cfg.Addr()).
		Msg("HTTP API listening")
	return s.app.Listen(s.cfg.Addr())
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
