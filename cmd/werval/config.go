package main

import (
	"os"
	"strconv"
)

type config struct {
	port             string
	databaseURL      string
	whisperServerURL string
	openaiBaseURL    string
	openaiAPIKey     string
	openaiModel      string
	defaultEngine    string
	asrPoolSize      int
	maxWSSessions    int
	maxUploadBytes   int64
}

func loadConfig() config {
	return config{
		port:             envStr("WERVAL_PORT", "8070"),
		databaseURL:      envStr("DATABASE_URL", ""),
		whisperServerURL: envStr("WHISPER_SERVER_URL", ""),
		openaiBaseURL:    envStr("OPENAI_BASE_URL", ""),
		openaiAPIKey:     envStr("OPENAI_API_KEY", ""),
		openaiModel:      envStr("OPENAI_ASR_MODEL", ""),
		defaultEngine:    envStr("ASR_DEFAULT_ENGINE", "whisper"),
		asrPoolSize:      envInt("ASR_POOL_SIZE", 10),
		maxWSSessions:    envInt("MAX_WS_SESSIONS", 100),
		maxUploadBytes:   int64(envInt("MAX_UPLOAD_MB", 32)) << 20,
	}
}

func envStr(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
