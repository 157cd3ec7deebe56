// Package api serves the dashboard backend over HTTP: forest predictions and
// their paced reveal, dataset statistics, the training session and the
// prediction history.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"forestdash/internal/config"
	"forestdash/internal/data"
	"forestdash/internal/domain"
	"forestdash/internal/explain"
	"forestdash/internal/history"
	"forestdash/internal/metrics"
	"forestdash/internal/training"
)

// Deps are the collaborators a Server is wired with. History and Explainer
// may be nil.
type Deps struct {
	Settings   *config.Settings
	Catalog    *domain.Catalog
	Datasets   *data.Registry
	Session    *training.Session
	Engine     training.Engine
	// Dependence serves partial dependence series. Defaults to Engine when it
	// implements the interface, otherwise to a simulator.
	Dependence training.DependenceSource
	History    *history.Store
	Explainer  *explain.Service
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	Logger     *zap.Logger
}

type Server struct {
	Deps
	engine   *gin.Engine
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	latest *training.Result
}

func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if d.Explainer == nil {
		d.Explainer = explain.NewService(nil)
	}
	if d.Dependence == nil {
		if src, ok := d.Engine.(training.DependenceSource); ok {
			d.Dependence = src
		} else {
			var seed uint64
			if d.Settings != nil {
				seed = d.Settings.Training.Seed
			}
			d.Dependence = training.NewSimulator(0, 0, seed)
		}
	}
	s := &Server{Deps: d}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.observe())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))

	r.GET("/domains", s.listDomains)
	r.GET("/domains/:name", s.getDomain)
	r.GET("/domains/:name/trees/:seed", s.getTree)
	r.GET("/domains/:name/stream", s.streamForest)

	r.GET("/datasets", s.listDatasets)
	r.GET("/datasets/:name", s.getDataset)
	r.GET("/datasets/:name/summary", s.datasetSummary)
	r.GET("/datasets/:name/correlation", s.datasetCorrelation)
	r.GET("/datasets/:name/missing", s.datasetMissing)

	r.GET("/session", s.getSession)
	r.GET("/session/result", s.latestResult)
	r.GET("/session/partial-dependence", s.partialDependence)
	r.GET("/history", s.listHistory)
	r.GET("/history/:id", s.getHistory)

	api := r.Group("/")
	api.Use(s.apiKey)
	api.POST("/domains/:name/predict", s.predict)
	api.POST("/domains/:name/batch", s.batch)
	api.POST("/session/task", s.setTask)
	api.POST("/session/hyperparameters", s.setHyperparameters)
	api.POST("/session/features", s.setFeatures)
	api.POST("/session/target", s.setTarget)
	api.POST("/train", s.train)
	api.POST("/explain", s.explain)
	return r
}

// Run serves until ctx is done. With a certificate configured it serves TLS
// and also answers HTTP/3 on the same port.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.Settings.Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 2)
	go func() {
		var err error
		if cfg.TLSCert != "" {
			go func() {
				if err := s.engine.RunQUIC(addr, cfg.TLSCert, cfg.TLSKey); err != nil {
					s.Logger.Warn("http3 listener stopped", zap.Error(err))
				}
			}()
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	s.Logger.Info("api listening", zap.String("addr", addr), zap.Bool("tls", cfg.TLSCert != ""))

	select {
	case err, ok := <-errc:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) setLatest(r *training.Result) {
	s.mu.Lock()
	s.latest = r
	s.mu.Unlock()
}

func (s *Server) getLatest() *training.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
