package main

import (
	"cmp"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"PulseLens/internal/ai"
	"PulseLens/internal/config"
	"PulseLens/internal/server"
	"PulseLens/internal/service/image"
	"PulseLens/internal/service/report"

	"go.uber.org/zap"
)

// HTTP-сервер отчётов о состоянии оборудования: принимает prompt и пересылает его в модель.
func main() {
	cfg := config.NewConfig()

	logger, err := newLogger(cfg.DebugMode)
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Клиент создаётся один раз. Без ключа сервер всё равно стартует,
	// а /generate-report отвечает "API key not configured".
	client, err := ai.NewClient(ctx, ai.ProviderConfig{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey(),
	}, sugar)
	switch {
	case errors.Is(err, ai.ErrMissingAPIKey):
		sugar.Warnw("Model client not created: API key is missing", "provider", cfg.Provider)
		client = nil
	case err != nil:
		sugar.Fatalw("Failed to create model client", "provider", cfg.Provider, "error", err)
	}
	if c, ok := client.(io.Closer); ok {
		defer c.Close()
	}

	var opts []report.Option
	if cfg.Image.Enabled {
		opts = append(opts, report.WithImage(image.NewLoader(cfg.Image.Path, cfg.Image.MimeType, cfg.Image.MaxSizeBytes)))
	}
	reports := report.New(client, sugar, opts...)

	srv := server.New(cfg, reports, sugar)
	// Остановкой по сигналу управляет main, а не Start
	if err := srv.Start(context.Background()); err != nil {
		sugar.Fatalw("Failed to start server", "addr", cfg.BindAddr, "error", err)
	}

	base := "http://" + displayAddr(srv.Addr())
	sugar.Infow("PulseLensAgent server running",
		"url", base,
		"test_url", base+"/test",
		"provider", cfg.Provider,
		"model", cmp.Or(cfg.Model, ai.DefaultModel(cfg.Provider)),
		"image_enabled", reports.ImageEnabled(),
		"api_key_configured", yesNo(client != nil),
	)

	<-ctx.Done()
	if err := srv.Stop(context.WithoutCancel(ctx)); err != nil {
		sugar.Warnw("Server stop error", "error", err)
	}
	sugar.Infow("server stopped")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// displayAddr превращает ":5001" в "localhost:5001" для логов.
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	if strings.HasPrefix(addr, "[::]:") {
		return "localhost" + strings.TrimPrefix(addr, "[::]")
	}
	return addr
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
