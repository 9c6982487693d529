package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/claimdesk/internal/config"
	"github.com/garyjia/claimdesk/internal/container"
	httpserver "github.com/garyjia/claimdesk/internal/interfaces/http"
	"github.com/garyjia/claimdesk/internal/interfaces/websocket"
	"github.com/garyjia/claimdesk/pkg/utils"
)

// app is a started container plus the settings the commands need
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	container *container.Container
	watcher   *websocket.Watcher
}

// bootstrap loads configuration, builds the logger and starts the container.
// The terminal desk owns the screen, so console mode logs to a file.
func bootstrap(ctx context.Context, cmd *cobra.Command, console bool) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	loggerCfg := cfg.Logger
	if console {
		loggerCfg = cfg.ConsoleLogger()
	}
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      loggerCfg.Level,
		OutputPath: loggerCfg.OutputPath,
		Format:     loggerCfg.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctr, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to create container: %w", err)
	}
	if err := ctr.Start(ctx); err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	logger.Info("Claim desk started",
		zap.String("store", cfg.Store.Backend),
		zap.String("transition_policy", cfg.Claims.TransitionPolicy),
		zap.String("currency", cfg.Currency.Code))

	return &app{
		cfg:       cfg,
		logger:    logger,
		container: ctr,
		watcher:   websocket.NewWatcher(ctr.Services().Claims, ctr.Dispatcher(), logger),
	}, nil
}

// newHTTPServer wires the HTTP desk onto the container's shared desk
func (a *app) newHTTPServer() *httpserver.Server {
	ctr := a.container
	srvCfg := ctr.Config().Server

	return httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         srvCfg.Host,
			Port:         srvCfg.Port,
			ReadTimeout:  srvCfg.ReadTimeout,
			WriteTimeout: srvCfg.WriteTimeout,
		},
		httpserver.Dependencies{
			Desk:    ctr.Desk(),
			Claims:  ctr.Services().Claims,
			Exports: ctr.Services().Exports,
			Metrics: ctr.Metrics(),
			Watch:   a.watcher.Handler(),
			Health: func(ctx context.Context) (bool, interface{}) {
				status := ctr.Health(ctx)
				return status.Overall, status.Components
			},
		},
		&zapLogger{logger: a.logger},
	)
}

// close shuts everything down in reverse order
func (a *app) close() {
	a.watcher.Close()
	if err := a.container.Close(); err != nil {
		a.logger.Error("Shutdown finished with errors", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// zapLogger adapts zap to the HTTP layer's key-value logger
type zapLogger struct {
	logger *zap.Logger
}

func (l *zapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Infow(msg, keysAndValues...)
}

func (l *zapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, keysAndValues...)
}
