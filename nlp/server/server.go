// Package server exposes oracle construction over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/oarkflow/xid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/oarkflow/oracle/nlp/export"
	"github.com/oarkflow/oracle/nlp/oracle"
	"github.com/oarkflow/oracle/nlp/store"
)

// Store is the persistence the server reads and writes oracle records through.
type Store interface {
	Save(export.Record) error
	Get(docID, method string) (export.Record, error)
}

type Options struct {
	// RateLimit is requests per second across all clients; zero disables limiting.
	RateLimit  float64
	Burst      int
	AccessLogs bool
}

type Server struct {
	engine  atomic.Pointer[oracle.Engine]
	store   Store
	opts    Options
	app     *fiber.App
	mu      sync.Mutex // guards sampler
	sampler *oracle.Sampler
}

// New builds the routes. st may be nil, in which case nothing is persisted and lookups
// by id answer 404.
func New(engine *oracle.Engine, sampler *oracle.Sampler, st Store, opts Options) *Server {
	if sampler == nil {
		sampler = oracle.NewSampler(nil)
	}
	s := &Server{store: st, opts: opts, sampler: sampler}
	s.engine.Store(engine)
	app := fiber.New(fiber.Config{
		AppName:      "oracle",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return xid.New().String() },
	}))
	if opts.AccessLogs {
		app.Use(logger.New())
	}
	if opts.RateLimit > 0 {
		app.Use(limit(rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.Burst, 1))))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Post("/oracle/greedy", s.greedy)
	app.Post("/oracle/beam", s.beam)
	app.Post("/oracle/refine", s.refine)
	app.Post("/sample", s.sample)
	app.Get("/oracle/:id", s.lookup)
	s.app = app
	return s
}

func (s *Server) App() *fiber.App { return s.app }

// Engine returns the engine serving new requests.
func (s *Server) Engine() *oracle.Engine { return s.engine.Load() }

// SetEngine swaps the engine used by requests that start afterwards. Requests in flight
// finish on the engine they started with.
func (s *Server) SetEngine(e *oracle.Engine) {
	if e != nil {
		s.engine.Store(e)
	}
}

// Run serves on addr until ctx is done, then drains connections.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting oracle server", slog.String("addr", addr))
		errCh <- s.app.Listen(addr)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("Draining server connections and shutting down")
	if err := s.app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return err
	}
	return <-errCh
}

func limit(l *rate.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.Allow() {
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}

// errorHandler maps oracle failures to client errors and everything else to 500.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, store.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, oracle.ErrDegenerateInput),
		errors.Is(err, oracle.ErrInsufficientCandidates),
		errors.Is(err, oracle.ErrRefinement),
		errors.Is(err, oracle.ErrMissingOracleField),
		errors.Is(err, oracle.ErrSamplePoolExhausted),
		errors.Is(err, oracle.ErrBudgetExceeded):
		code = fiber.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = http.StatusServiceUnavailable
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("Request failed", slog.String("path", c.Path()), slog.String("err", err.Error()))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
