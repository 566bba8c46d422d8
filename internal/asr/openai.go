package asr

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/asrbench/werval/internal/metrics"
)

// OpenAIClient transcribes through the OpenAI audio API, or any server that
// speaks the same protocol (vLLM, LocalAI, speaches, etc. via base URL).
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates a transcription client. baseURL may be empty to use
// the official API; model defaults to whisper-1 when empty.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Transcribe uploads the clip and returns the transcript.
func (c *OpenAIClient) Transcribe(ctx context.Context, wavData []byte) (*Result, error) {
	start := time.Now()

	transcription, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(wavData), "audio.wav", "audio/wav"),
		Model: openai.AudioModel(c.model),
	})
	if err != nil {
		metrics.Errors.WithLabelValues("asr", "openai").Inc()
		return nil, fmt.Errorf("openai transcription: %w", err)
	}

	latency := time.Since(start)
	metrics.TranscribeDuration.WithLabelValues("openai").Observe(latency.Seconds())

	return &Result{
		Text:      transcription.Text,
		Engine:    "openai",
		LatencyMs: float64(latency.Milliseconds()),
	}, nil
}
