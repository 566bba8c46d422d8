package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/asrbench/werval/internal/audio"
	"github.com/asrbench/werval/internal/metrics"
)

// WhisperClient sends WAV clips as multipart form data to a whisper.cpp
// compatible HTTP server (/inference endpoint).
type WhisperClient struct {
	url    string
	client *http.Client
}

// NewWhisperClient creates a client for a whisper.cpp server.
func NewWhisperClient(url string, poolSize int) *WhisperClient {
	return &WhisperClient{
		url:    url,
		client: newPooledHTTPClient(poolSize, 60*time.Second),
	}
}

// Warmup sends a short silent clip to verify the server is responsive and
// the model is loaded.
func (c *WhisperClient) Warmup(ctx context.Context) error {
	clip := audio.Silence(time.Second, 16000)
	body, contentType, err := buildMultipartAudio(clip)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.url+"/inference", body)
	if err != nil {
		return fmt.Errorf("create warmup request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("whisper warmup: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whisper warmup status %d", resp.StatusCode)
	}
	return nil
}

// Transcribe posts the clip and returns the transcript.
func (c *WhisperClient) Transcribe(ctx context.Context, wavData []byte) (*Result, error) {
	start := time.Now()

	body, contentType, err := buildMultipartAudio(wavData)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url+"/inference", body)
	if err != nil {
		return nil, fmt.Errorf("create whisper request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.Errors.WithLabelValues("asr", "http").Inc()
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		metrics.Errors.WithLabelValues("asr", "status").Inc()
		return nil, fmt.Errorf("whisper status %d: %s", resp.StatusCode, string(respBody))
	}

	var result whisperResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}

	latency := time.Since(start)
	metrics.TranscribeDuration.WithLabelValues("whisper").Observe(latency.Seconds())

	return &Result{
		Text:      result.Text,
		Engine:    "whisper",
		LatencyMs: float64(latency.Milliseconds()),
	}, nil
}

type whisperResponse struct {
	Text string `json:"text"`
}

func buildMultipartAudio(wavData []byte) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}

	if _, err = part.Write(wavData); err != nil {
		return nil, "", fmt.Errorf("write wav data: %w", err)
	}

	if err = writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}
