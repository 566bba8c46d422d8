// Package ws serves streaming scoring sessions: clients push
// prediction/reference pairs over a WebSocket and receive per-pair counts,
// a running rate, and a final batch summary.
package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/asrbench/werval/internal/metrics"
	"github.com/asrbench/werval/internal/store"
	"github.com/asrbench/werval/internal/wer"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  8192,
	WriteBufferSize: 8192,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandlerConfig holds shared dependencies for all scoring sessions.
type HandlerConfig struct {
	Recorder      *store.Recorder // nil disables persistence
	MaxConcurrent int
}

// Handler manages WebSocket scoring sessions with admission control.
type Handler struct {
	cfg HandlerConfig
	sem chan struct{}
}

// NewHandler creates a WebSocket handler with a concurrency limit.
func NewHandler(cfg HandlerConfig) *Handler {
	maxConc := cfg.MaxConcurrent
	if maxConc <= 0 {
		maxConc = 100
	}
	return &Handler{
		cfg: cfg,
		sem: make(chan struct{}, maxConc),
	}
}

// sessionMetadata is the first text frame sent by the client.
type sessionMetadata struct {
	Name    string `json:"name"`
	Persist bool   `json:"persist"`
	Details bool   `json:"details"`
}

// scoreFrame is every subsequent client frame: either a pair to score or a
// finish marker.
type scoreFrame struct {
	Prediction string `json:"prediction"`
	Reference  string `json:"reference"`
	Finish     bool   `json:"finish"`
}

// pairReply answers one scored pair.
type pairReply struct {
	Type            string         `json:"type"` // "pair"
	Seq             int            `json:"seq"`
	Errors          int            `json:"errors"`
	ReferenceTokens int            `json:"reference_tokens"`
	WER             *float64       `json:"wer"` // running aggregate, null while undefined
	Alignment       *wer.Alignment `json:"alignment,omitempty"`
}

// summaryReply closes out the batch.
type summaryReply struct {
	Type            string   `json:"type"` // "summary"
	Pairs           int      `json:"pairs"`
	Errors          int      `json:"errors"`
	ReferenceTokens int      `json:"reference_tokens"`
	WER             *float64 `json:"wer"`
	RunID           string   `json:"run_id,omitempty"`
}

// ServeHTTP upgrades the connection and runs the scoring session.
// Returns 503 at max concurrent session capacity.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	default:
		http.Error(w, "at capacity", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	metrics.WSSessionsActive.Inc()
	metrics.WSSessionsTotal.Inc()
	defer metrics.WSSessionsActive.Dec()

	h.runSession(conn)
}

func (h *Handler) runSession(conn *websocket.Conn) {
	meta, err := readMetadata(conn)
	if err != nil {
		slog.Error("read session metadata", "error", err)
		return
	}

	var recorder *store.Recorder
	if meta.Persist {
		recorder = h.cfg.Recorder
	}
	runID := recorder.StartRun(meta.Name, "ws")
	start := time.Now()

	slog.Info("scoring session started", "name", meta.Name, "persist", meta.Persist, "run_id", runID)

	var totals wer.Counts
	pairs := 0

	for {
		var frame scoreFrame
		if err = conn.ReadJSON(&frame); err != nil {
			slog.Info("session closed", "error", err)
			break
		}
		if frame.Finish {
			break
		}

		pairs++
		// Persisted rows always carry the full breakdown, even when the
		// client did not ask for per-pair detail.
		reply := scorePair(frame, pairs, &totals, meta.Details || runID != "")
		metrics.PairsScored.Inc()

		if runID != "" {
			pair := store.Pair{
				RunID:           runID,
				Seq:             pairs,
				Prediction:      frame.Prediction,
				Reference:       frame.Reference,
				Errors:          reply.Errors,
				ReferenceTokens: reply.ReferenceTokens,
			}
			if reply.Alignment != nil {
				pair.Substitutions = reply.Alignment.Substitutions
				pair.Insertions = reply.Alignment.Insertions
				pair.Deletions = reply.Alignment.Deletions
			}
			recorder.RecordPair(pair)
		}
		if !meta.Details {
			reply.Alignment = nil
		}

		if err = conn.WriteJSON(reply); err != nil {
			slog.Error("write pair reply", "error", err)
			break
		}
	}

	rate := rateOrNil(totals)
	summary := summaryReply{
		Type:            "summary",
		Pairs:           pairs,
		Errors:          totals.Errors,
		ReferenceTokens: totals.ReferenceTokens,
		WER:             rate,
		RunID:           runID,
	}
	if err = conn.WriteJSON(summary); err != nil {
		slog.Warn("write summary", "error", err)
	}

	status := "ok"
	if rate == nil {
		status = "undefined_rate"
	} else {
		metrics.LastWER.Set(*rate)
	}
	recorder.FinishRun(store.Run{
		ID:              runID,
		DurationMs:      float64(time.Since(start).Milliseconds()),
		Pairs:           pairs,
		Errors:          totals.Errors,
		ReferenceTokens: totals.ReferenceTokens,
		WER:             rate,
		Status:          status,
	})

	slog.Info("scoring session ended", "pairs", pairs, "errors", totals.Errors, "reference_tokens", totals.ReferenceTokens)
}

func scorePair(frame scoreFrame, seq int, totals *wer.Counts, details bool) pairReply {
	predTokens := wer.Tokenize(frame.Prediction)
	refTokens := wer.Tokenize(frame.Reference)

	reply := pairReply{
		Type:            "pair",
		Seq:             seq,
		ReferenceTokens: len(refTokens),
	}
	if details {
		alignment := wer.Align(predTokens, refTokens)
		reply.Errors = alignment.Errors()
		reply.Alignment = &alignment
	} else {
		reply.Errors = wer.Distance(predTokens, refTokens)
	}

	totals.Add(wer.Counts{Errors: reply.Errors, ReferenceTokens: reply.ReferenceTokens})
	reply.WER = rateOrNil(*totals)
	return reply
}

func rateOrNil(c wer.Counts) *float64 {
	rate, err := c.Rate()
	if err != nil {
		return nil
	}
	return &rate
}

func readMetadata(conn *websocket.Conn) (*sessionMetadata, error) {
	var meta sessionMetadata
	if err := conn.ReadJSON(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
