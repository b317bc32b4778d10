package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"PulseLens/internal/config"
	"PulseLens/internal/service/report"

	"go.uber.org/zap"
)

// Reporter то, что HTTP-слою нужно от сервиса отчётов.
type Reporter interface {
	Generate(ctx context.Context, req report.Request) (string, error)
}

type Server struct {
	cfg     *config.Config
	srv     *http.Server
	reports Reporter
	logger  *zap.SugaredLogger
	running atomic.Bool
	addr    atomic.Value  // string, реальный адрес после Start
	done    chan struct{} // закрывается в Stop; http.Server после Shutdown не перезапускается
}

func New(cfg *config.Config, reports Reporter, logger *zap.SugaredLogger) *Server {
	s := &Server{cfg: cfg, reports: reports, logger: logger, done: make(chan struct{})}
	s.addr.Store(cfg.BindAddr)

	s.srv = &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return s
}

// Handler собирает маршруты вместе с CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /test", s.handleTest)
	mux.HandleFunc("POST /generate-report", s.handleGenerateReport)
	return s.cors(mux)
}

// Start занимает порт синхронно, чтобы ошибка bind вернулась сразу, и обслуживает запросы в фоне.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		s.running.Store(false)
		return err
	}
	s.addr.Store(ln.Addr().String())

	go func() {
		s.logger.Infow("Report server listening", "addr", s.Addr())
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) && err != nil {
			s.logger.Errorw("Report server stopped with error", "error", err)
		} else {
			s.logger.Infow("Report server stopped")
		}
	}()

	// Watch for context cancellation to stop the server
	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				_ = s.Stop(context.WithoutCancel(ctx))
			case <-s.done:
			}
		}()
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	close(s.done)
	shutdownCtx, cancel := context.WithTimeoutCause(ctx, 5*time.Second, errors.New("report server shutdown timeout"))
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnw("graceful shutdown error", "error", err)
		return s.srv.Close()
	}
	return nil
}

func (s *Server) Addr() string { return s.addr.Load().(string) }
