package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"acsWorker/internal/automation"
	"acsWorker/internal/config"
	"acsWorker/internal/logger"
)

const shutdownTimeout = 30 * time.Second

// Automator выполняет один провалидированный запрос и всегда возвращает Result.
type Automator interface {
	Run(ctx context.Context, req *automation.Request) automation.Result
}

type Server struct {
	cfg    *config.Cfg
	log    *logger.Zap
	auto   Automator
	sem    *semaphore.Weighted
	active atomic.Int64
	now    func() time.Time
}

func New(cfg *config.Cfg, log *logger.Zap, auto Automator) *Server {
	return &Server{
		cfg:  cfg,
		log:  log,
		auto: auto,
		sem:  semaphore.NewWeighted(int64(cfg.App.MaxSessions)),
		now:  time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		s.log.Error("Паника в обработчике", zap.Any("panic", err), zap.String("request_id", requestID(c)))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprint(err)})
	}))
	r.Use(s.requestID())
	r.Use(s.accessLog())

	r.GET("/health", s.health)
	r.POST("/simulate-3d", s.simulate)

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "online",
		"timestamp":      s.now().UTC().Format(automation.TimestampLayout),
		"activeSessions": s.active.Load(),
	})
}

func (s *Server) simulate(c *gin.Context) {
	var req automation.Request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.log.Warn("Некорректное тело запроса", zap.Error(err), zap.String("request_id", requestID(c)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.sem.Acquire(c.Request.Context(), 1); err != nil {
		s.log.Warn("Клиент ушел, не дождавшись свободного браузера", zap.String("request_id", requestID(c)))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no free browser session"})
		return
	}
	defer s.sem.Release(1)
	s.active.Add(1)
	defer s.active.Add(-1)

	// конвейер доводим до конца и закрываем браузер, даже если клиент отключился
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), s.cfg.App.RequestTimeout)
	defer cancel()
	ctx = automation.WithRequestID(ctx, requestID(c))

	res := s.auto.Run(ctx, &req)
	c.JSON(http.StatusOK, res)
}

// Run слушает до отмены ctx, затем дает активным запросам завершиться.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.App.Host, s.cfg.App.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.App.RequestTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Сервер запущен", zap.String("addr", addr), zap.Int("max_sessions", s.cfg.App.MaxSessions))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http сервер: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Остановка сервера", zap.Int64("active_sessions", s.active.Load()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("остановка сервера: %w", err)
	}
	return nil
}
