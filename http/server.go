// Package http 提供HTTP服务器功能
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"formcast/config"
)

// Server HTTP服务器
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewHandler 注册所有路由并包装中间件
func NewHandler(cfg *config.Config, deps Deps) (http.Handler, error) {
	if deps.Models == nil || deps.Templates == nil || deps.Logger == nil {
		return nil, errors.New("models, templates and logger are required")
	}

	mux := http.NewServeMux()
	RegisterHandlers(mux, deps)
	if err := RegisterPredictRoutes(mux, deps, cfg.Routes); err != nil {
		return nil, err
	}

	chain := Chain(
		RecoveryMiddleware(deps.Logger),              // 1. 恢复中间件（最先执行，捕获panic）
		LoggerMiddleware(deps.Logger),                // 2. 日志中间件
		SecurityHeadersMiddleware,                    // 3. 安全头中间件
		RequestSizeMiddleware(cfg.HTTP.MaxBodyBytes), // 4. 请求体大小限制
		TimeoutMiddleware(cfg.HTTP.Timeout),          // 5. 超时中间件
	)
	return chain(mux), nil
}

// NewServer 创建HTTP服务器
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	handler, err := NewHandler(cfg, deps)
	if err != nil {
		return nil, err
	}

	// 写超时需要比请求超时稍长，保证超时响应能写出
	writeTimeout := cfg.HTTP.Timeout
	if writeTimeout > 0 {
		writeTimeout += 5 * time.Second
	}

	return &Server{
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.HTTP.Timeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       120 * time.Second,
		},
		logger: deps.Logger,
	}, nil
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

// Addr 返回服务器地址
func (s *Server) Addr() string {
	return s.server.Addr
}
