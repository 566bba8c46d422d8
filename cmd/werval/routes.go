package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/asrbench/werval/internal/asr"
	"github.com/asrbench/werval/internal/audio"
	"github.com/asrbench/werval/internal/metrics"
	"github.com/asrbench/werval/internal/store"
	"github.com/asrbench/werval/internal/wer"
)

const defaultRunListLimit = 20

type deps struct {
	cfg       config
	asrRouter *asr.Router
	store     *store.Store
	recorder  *store.Recorder
	wsHandler http.Handler
}

// registerRoutes wires all HTTP endpoints to the shared mux.
func registerRoutes(mux *http.ServeMux, d deps) {
	mux.Handle("/ws/score", d.wsHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /api/score", d.handleScore)
	mux.HandleFunc("POST /api/score/audio", d.handleScoreAudio)
	mux.HandleFunc("GET /api/engines", d.handleEngines)
	mux.HandleFunc("GET /api/runs", d.handleRuns)
	mux.HandleFunc("GET /api/runs/{id}", d.handleRun)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// oneOrMany accepts either a single JSON string or an array of strings, so a
// single utterance can be scored without wrapping it in a batch.
type oneOrMany []string

func (o *oneOrMany) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*o = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*o = many
	return nil
}

type scoreRequest struct {
	Predictions oneOrMany `json:"predictions"`
	References  oneOrMany `json:"references"`
	Details     bool      `json:"details"`
	Persist     bool      `json:"persist"`
	Name        string    `json:"name"`
}

type pairDetail struct {
	Seq             int           `json:"seq"`
	Errors          int           `json:"errors"`
	ReferenceTokens int           `json:"reference_tokens"`
	Alignment       wer.Alignment `json:"alignment"`
}

type scoreResponse struct {
	WER             float64      `json:"wer"`
	Errors          int          `json:"errors"`
	ReferenceTokens int          `json:"reference_tokens"`
	Pairs           []pairDetail `json:"pairs,omitempty"`
	RunID           string       `json:"run_id,omitempty"`
}

func (d deps) handleScore(w http.ResponseWriter, r *http.Request) {
	metrics.ScoreRequests.Inc()
	start := time.Now()

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	counts, err := wer.Update(req.Predictions, req.References)
	var mismatch *wer.LengthMismatchError
	if errors.As(err, &mismatch) {
		metrics.Errors.WithLabelValues("score", "length_mismatch").Inc()
		http.Error(w, mismatch.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rate, err := counts.Rate()
	if errors.Is(err, wer.ErrNoReferenceTokens) {
		metrics.Errors.WithLabelValues("score", "undefined_rate").Inc()
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := scoreResponse{
		WER:             rate,
		Errors:          counts.Errors,
		ReferenceTokens: counts.ReferenceTokens,
	}

	var runID string
	if req.Persist {
		runID = d.recorder.StartRun(req.Name, "api")
		resp.RunID = runID
	}

	if req.Details || runID != "" {
		pairs := d.scorePairDetails(req, runID)
		if req.Details {
			resp.Pairs = pairs
		}
	}

	if runID != "" {
		d.recorder.FinishRun(store.Run{
			ID:              runID,
			DurationMs:      float64(time.Since(start).Milliseconds()),
			Pairs:           len(req.Predictions),
			Errors:          counts.Errors,
			ReferenceTokens: counts.ReferenceTokens,
			WER:             &rate,
			Status:          "ok",
		})
	}

	metrics.PairsScored.Add(float64(len(req.Predictions)))
	metrics.ScoreDuration.Observe(time.Since(start).Seconds())
	metrics.LastWER.Set(rate)

	writeJSON(w, resp)
}

// scorePairDetails re-scores each pair with a full alignment, for the
// details response and for persisted per-pair rows.
func (d deps) scorePairDetails(req scoreRequest, runID string) []pairDetail {
	details := make([]pairDetail, 0, len(req.Predictions))
	for i := range req.Predictions {
		predTokens := wer.Tokenize(req.Predictions[i])
		refTokens := wer.Tokenize(req.References[i])
		alignment := wer.Align(predTokens, refTokens)

		detail := pairDetail{
			Seq:             i + 1,
			Errors:          alignment.Errors(),
			ReferenceTokens: len(refTokens),
			Alignment:       alignment,
		}
		details = append(details, detail)

		if runID != "" {
			d.recorder.RecordPair(store.Pair{
				RunID:           runID,
				Seq:             detail.Seq,
				Prediction:      req.Predictions[i],
				Reference:       req.References[i],
				Errors:          detail.Errors,
				ReferenceTokens: detail.ReferenceTokens,
				Substitutions:   alignment.Substitutions,
				Insertions:      alignment.Insertions,
				Deletions:       alignment.Deletions,
			})
		}
	}
	return details
}

type audioScoreResponse struct {
	Transcript      string        `json:"transcript"`
	Engine          string        `json:"engine"`
	TranscribeMs    float64       `json:"transcribe_ms"`
	Audio           audio.Info    `json:"audio"`
	WER             *float64      `json:"wer"`
	Errors          int           `json:"errors"`
	ReferenceTokens int           `json:"reference_tokens"`
	Alignment       wer.Alignment `json:"alignment"`
}

func (d deps) handleScoreAudio(w http.ResponseWriter, r *http.Request) {
	if d.asrRouter.Empty() {
		http.Error(w, "no asr backend configured", http.StatusServiceUnavailable)
		return
	}
	metrics.ScoreRequests.Inc()

	if err := r.ParseMultipartForm(d.cfg.maxUploadBytes); err != nil {
		http.Error(w, "bad multipart request", http.StatusBadRequest)
		return
	}
	reference := r.FormValue("reference")
	engine := r.FormValue("engine")

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing audio file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	wavData, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read audio file", http.StatusBadRequest)
		return
	}

	info, err := audio.ReadInfo(bytes.NewReader(wavData))
	if err != nil {
		metrics.Errors.WithLabelValues("audio", "invalid_wav").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := d.asrRouter.Transcribe(r.Context(), wavData, engine)
	if err != nil {
		slog.Error("transcribe", "engine", engine, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	predTokens := wer.Tokenize(result.Text)
	refTokens := wer.Tokenize(reference)
	alignment := wer.Align(predTokens, refTokens)
	counts := wer.Counts{Errors: alignment.Errors(), ReferenceTokens: len(refTokens)}

	resp := audioScoreResponse{
		Transcript:      result.Text,
		Engine:          result.Engine,
		TranscribeMs:    result.LatencyMs,
		Audio:           info,
		Errors:          counts.Errors,
		ReferenceTokens: counts.ReferenceTokens,
		Alignment:       alignment,
	}
	if rate, rateErr := counts.Rate(); rateErr == nil {
		resp.WER = &rate
		metrics.LastWER.Set(rate)
	}

	metrics.PairsScored.Inc()
	slog.Info("audio scored", "engine", result.Engine, "duration_ms", info.DurationMs,
		"transcribe_ms", result.LatencyMs, "errors", counts.Errors, "reference_tokens", counts.ReferenceTokens)

	writeJSON(w, resp)
}

func (d deps) handleEngines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"engines": d.asrRouter.Engines(),
		"default": d.cfg.defaultEngine,
	})
}

func (d deps) handleRuns(w http.ResponseWriter, r *http.Request) {
	if d.store == nil {
		http.Error(w, "persistence disabled", http.StatusNotFound)
		return
	}
	limit := queryInt(r, "limit", defaultRunListLimit)
	offset := queryInt(r, "offset", 0)
	runs, total, err := d.store.ListRuns(limit, offset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"runs": runs, "total": total})
}

func (d deps) handleRun(w http.ResponseWriter, r *http.Request) {
	if d.store == nil {
		http.Error(w, "persistence disabled", http.StatusNotFound)
		return
	}
	run, pairs, err := d.store.GetRun(r.PathValue("id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"run": run, "pairs": pairs})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
