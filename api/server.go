// Package api exposes envelope encoding, hashing, decoding and signing over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/rs/cors"

	"TxEnvelope/txn"
)

// Signer produces EIP-155 style signatures over envelopes.
type Signer interface {
	Address() common.Address
	SignEnvelope(env *txn.Envelope, chainID uint64) (txn.Signature, error)
}

type Options struct {
	ChainID        uint64 // used when a request names no chain id
	AllowedOrigins []string
	BatchLimit     int
	MaxBatchSize   int
	Resolver       txn.NameResolver // optional
	Signer         Signer           // optional, /api/sign is unavailable without one
}

// Server routes the JSON endpoints.
type Server struct {
	opts    Options
	engine  *gin.Engine
	handler http.Handler
	metrics *metrics

	// Global mutex to protect account access
	signMu sync.Mutex
}

func New(opts Options) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		opts:    opts,
		engine:  gin.New(),
		metrics: newMetrics(reg),
	}
	s.engine.Use(gin.Recovery(), requestID(), s.logRequests())

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := s.engine.Group("/api")
	api.POST("/sighash", s.sighash)
	api.POST("/sighash/batch", s.sighashBatch)
	api.POST("/encode", s.encode)
	api.POST("/decode", s.decode)
	api.POST("/sign", s.sign)

	s.handler = newCorsHandler(s.engine, opts.AllowedOrigins)
	return s
}

// Handler returns the routes wrapped in the CORS policy.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("Starting transaction envelope API", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return eris.Wrap(err, "http server failed")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "http server shutdown")
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "http server failed")
	}
	log.Info("Transaction envelope API stopped")
	return nil
}

func newCorsHandler(srv http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		return srv
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodGet},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         600,
	})
	return c.Handler(srv)
}
