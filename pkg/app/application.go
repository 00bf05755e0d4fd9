package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"github.com/vinaythakkar13/yatra-sub001/pkg/config"
	"github.com/vinaythakkar13/yatra-sub001/pkg/contracts"
	"github.com/vinaythakkar13/yatra-sub001/pkg/middleware"
)

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	healthHandler    http.Handler
	appHttpHandler   http.Handler
	workers          []contracts.Worker
	closers          []func() error
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) SetApp(health contracts.Handler, handlers ...contracts.Handler) {
	a.setHealthHandler(health)
	a.setAppHandler(handlers...)
	a.setAppServer()
}

// AddWorker registers a background loop started by Run and stopped on
// shutdown before the HTTP server.
func (a *Application) AddWorker(w contracts.Worker) {
	a.workers = append(a.workers, w)
}

// OnShutdown registers a cleanup step run after the server has stopped.
func (a *Application) OnShutdown(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler(health contracts.Handler) {
	router := httprouter.New()
	health.RegisterRoutes(router)

	var h http.Handler = router
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.healthHandler = h
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(handlers ...contracts.Handler) {
	router := httprouter.New()
	for _, handler := range handlers {
		handler.RegisterRoutes(router)
	}

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)

	var h http.Handler = router
	h = middleware.Idempotency(a.idempotencyStore)(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.appHttpHandler = h
	a.cfg.Log.Info("Application endpoints configured", "handlers", len(handlers))
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, w := range a.workers {
		wg.Add(1)
		go func(w contracts.Worker) {
			defer wg.Done()
			if err := w.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.cfg.Log.Error("Background worker stopped", "error", err)
			}
		}(w)
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		stopWorkers()
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		stopWorkers()
		for _, w := range a.workers {
			if err := w.Close(); err != nil {
				a.cfg.Log.Warn("Failed to close worker", "error", err)
			}
		}
		wg.Wait()
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")
	a.idempotencyStore.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.cfg.Log.Warn("Shutdown step failed", "error", err)
		}
	}
	a.cfg.GracefulShutdown()
	a.cfg.Log.Info("Server stopped gracefully")
}
