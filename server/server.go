package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gloworm-vision/loadlight/monitor"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

// StatusProvider is anything that can report the monitor's latest status.
type StatusProvider interface {
	Status() monitor.Status
}

// Server exposes a read-only view of a running monitor over HTTP.
type Server struct {
	Addr string

	Status StatusProvider
	Config monitor.Config
	Logger *logrus.Logger
}

// Handler returns the routes served by the status server.
func (s *Server) Handler() http.Handler {
	mux := httprouter.New()
	mux.NotFound = http.HandlerFunc(notFound)

	mux.HandlerFunc(http.MethodGet, "/status", s.getStatus)
	mux.HandlerFunc(http.MethodGet, "/config", s.getConfig)

	return mux
}

// Run serves until ctx is done, then shuts the HTTP server down.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       time.Second * 15,
		ReadHeaderTimeout: time.Second * 15,
		IdleTimeout:       time.Second * 30,
		MaxHeaderBytes:    4096,
	}

	listenErrs := make(chan error, 1)
	go func() {
		s.Logger.WithField("addr", s.Addr).Info("serving status over http")
		listenErrs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-listenErrs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	}
}
