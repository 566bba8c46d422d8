package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asrbench/werval/internal/asr"
	"github.com/asrbench/werval/internal/store"
	"github.com/asrbench/werval/internal/ws"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg := loadConfig()

	var resultStore *store.Store
	var recorder *store.Recorder
	if cfg.databaseURL != "" {
		var err error
		resultStore, err = store.Open(cfg.databaseURL)
		if err != nil {
			slog.Error("open result store", "error", err)
			os.Exit(1)
		}
		defer resultStore.Close()
		recorder = store.NewRecorder(resultStore)
		defer recorder.Close()
		slog.Info("result store enabled")
	}

	asrBackends := map[string]asr.Transcriber{}
	if cfg.whisperServerURL != "" {
		asrBackends["whisper"] = asr.NewWhisperClient(cfg.whisperServerURL, cfg.asrPoolSize)
	}
	if cfg.openaiBaseURL != "" || cfg.openaiAPIKey != "" {
		asrBackends["openai"] = asr.NewOpenAIClient(cfg.openaiAPIKey, cfg.openaiBaseURL, cfg.openaiModel)
	}
	asrRouter := asr.NewRouter(asrBackends, cfg.defaultEngine)
	if len(asrBackends) > 0 {
		slog.Info("asr backends registered", "engines", asrRouter.Engines(), "default", cfg.defaultEngine)
	}

	wsHandler := ws.NewHandler(ws.HandlerConfig{
		Recorder:      recorder,
		MaxConcurrent: cfg.maxWSSessions,
	})

	mux := http.NewServeMux()
	registerRoutes(mux, deps{
		cfg:       cfg,
		asrRouter: asrRouter,
		store:     resultStore,
		recorder:  recorder,
		wsHandler: wsHandler,
	})

	addr := ":" + cfg.port
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	slog.Info("werval starting", "addr", addr, "max_ws_sessions", cfg.maxWSSessions)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("werval stopped")
}
