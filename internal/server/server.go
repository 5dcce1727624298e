package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/campusdesk/campusdesk/pkg/configuration"
	"github.com/campusdesk/campusdesk/pkg/metrics"
)

// Controller registers a set of routes on the root router.
type Controller interface {
	Register(r *mux.Router)
}

// HTTPServer hosts the console's JSON surface: one roster controller per
// feature area plus health and optional metrics endpoints.
type HTTPServer struct {
	Controllers []Controller
	Middlewares []mux.MiddlewareFunc

	conf *configuration.Configuration
	log  *logrus.Logger
	srv  *http.Server
}

func New(conf *configuration.Configuration, controllers ...Controller) *HTTPServer {
	return &HTTPServer{
		Controllers: controllers,
		Middlewares: []mux.MiddlewareFunc{RequestLogger(conf.Logger())},
		conf:        conf,
		log:         conf.Logger(),
	}
}

func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.Middlewares...)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if s.conf.Prometheus.Enabled {
		r.Handle(s.conf.Prometheus.Path, metrics.Handler()).Methods(http.MethodGet)
	}
	for _, controller := range s.Controllers {
		controller.Register(r)
	}
	return r
}

func (s *HTTPServer) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.conf.ServerPort),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()
	s.log.WithField("addr", s.srv.Addr).Info("listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
