// Package asr provides transcription backends so evaluation runs can score
// live ASR output, not just pre-computed transcripts.
package asr

import (
	"context"
	"fmt"
)

// Transcriber produces a transcript from a WAV-encoded audio clip.
type Transcriber interface {
	Transcribe(ctx context.Context, wavData []byte) (*Result, error)
}

// Result holds the transcription output.
type Result struct {
	Text      string  `json:"text"`
	Engine    string  `json:"engine"`
	LatencyMs float64 `json:"latency_ms"`
}

// Router dispatches to a named ASR backend, falling back to a default when
// the requested engine is unknown.
type Router struct {
	backends map[string]Transcriber
	fallback string
}

// NewRouter creates a router over the given backends. The fallback engine is
// used when a request names no backend or an unregistered one.
func NewRouter(backends map[string]Transcriber, fallback string) *Router {
	return &Router{backends: backends, fallback: fallback}
}

// Transcribe routes to the named backend and transcribes the clip.
func (r *Router) Transcribe(ctx context.Context, wavData []byte, engine string) (*Result, error) {
	backend, ok := r.backends[engine]
	if !ok {
		backend, ok = r.backends[r.fallback]
	}
	if !ok {
		return nil, fmt.Errorf("no asr backend for engine %q", engine)
	}
	return backend.Transcribe(ctx, wavData)
}

// Has reports whether a backend is registered under the given engine name.
func (r *Router) Has(engine string) bool {
	_, ok := r.backends[engine]
	return ok
}

// Engines returns the names of all registered backends.
func (r *Router) Engines() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	return names
}

// Empty reports whether the router has no backends at all.
func (r *Router) Empty() bool {
	return len(r.backends) == 0
}
