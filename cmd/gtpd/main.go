package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/your-org/gtp-tunnel/internal/adminserver"
	"github.com/your-org/gtp-tunnel/internal/config"
	"github.com/your-org/gtp-tunnel/internal/gtplistener"
	"github.com/your-org/gtp-tunnel/internal/iplistener"
	"github.com/your-org/gtp-tunnel/internal/metrics"
	"github.com/your-org/gtp-tunnel/internal/stats"
	"github.com/your-org/gtp-tunnel/internal/transport"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/gtpd.yaml", "Path to configuration file")
	flag.Parse()

	logger := initLogger()
	defer logger.Sync()

	logger.Info("starting gtpd",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.String("gtp_address", cfg.GetGTPAddress()),
		zap.String("admin_address", cfg.GetAdminAddress()),
		zap.String("node_name", cfg.Node.Name))

	counters := &stats.Counters{}

	channel, err := transport.NewTunChannel(cfg.Transport.LinkName, cfg.Transport.MTU)
	if err != nil {
		logger.Fatal("failed to open transport channel", zap.Error(err))
	}
	defer channel.Close()
	logger.Info("transport channel opened", zap.String("link", cfg.Transport.LinkName))

	gtpListener := gtplistener.New(cfg, channel, counters, logger)

	ipListener, err := iplistener.New(cfg, counters, logger)
	if err != nil {
		logger.Fatal("failed to construct ip listener", zap.Error(err))
	}
	ipListener.Forward = gtpListener.Forward

	adminSrv := adminserver.NewServer(cfg, counters, gtpListener, logger)
	metricsSrv := metrics.NewServer(cfg.Observability.Metrics.Port, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.SetServiceUp(true)
	defer metrics.SetServiceUp(false)

	gtpErrChan := make(chan error, 1)
	go func() {
		if err := gtpListener.Run(ctx); err != nil {
			gtpErrChan <- fmt.Errorf("gtp listener error: %w", err)
		}
	}()

	ipErrChan := make(chan error, 1)
	go func() {
		if err := ipListener.Run(ctx); err != nil {
			ipErrChan <- fmt.Errorf("ip listener error: %w", err)
		}
	}()

	adminErrChan := make(chan error, 1)
	go func() {
		if err := adminSrv.Start(); err != nil && err != http.ErrServerClosed {
			adminErrChan <- fmt.Errorf("admin server error: %w", err)
		}
	}()

	metricsErrChan := make(chan error, 1)
	if cfg.Observability.Metrics.Enabled {
		go func() {
			if err := metricsSrv.Start(); err != nil && err != http.ErrServerClosed {
				metricsErrChan <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	logger.Info("gtpd started successfully",
		zap.String("gtp_address", cfg.GetGTPAddress()),
		zap.String("admin_address", cfg.GetAdminAddress()),
		zap.String("ip_interface", cfg.IPListener.Interface))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-gtpErrChan:
		logger.Error("gtp listener failed", zap.Error(err))
	case err := <-ipErrChan:
		logger.Error("ip listener failed", zap.Error(err))
	case err := <-adminErrChan:
		logger.Error("admin server failed", zap.Error(err))
	case err := <-metricsErrChan:
		logger.Error("metrics server failed", zap.Error(err))
	}

	logger.Info("shutting down gtpd...")
	cancel()
	ipListener.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := adminSrv.Stop(shutdownCtx); err != nil {
		logger.Error("error stopping admin server", zap.Error(err))
	}
	if err := metricsSrv.Stop(shutdownCtx); err != nil {
		logger.Error("error stopping metrics server", zap.Error(err))
	}

	logger.Info("gtpd shutdown complete")
}

func initLogger() *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := cfg.Build()
	return logger
}
