package store

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const maxTextLen = 1000

type recordMsg struct {
	kind string // "run_create", "run_finish", "pair"
	run  Run
	pair Pair
}

// Recorder writes evaluation results asynchronously via a buffered channel so
// scoring latency never waits on the database. All methods are nil-safe
// (no-op on nil receiver), letting callers run without persistence.
type Recorder struct {
	store *Store
	ch    chan recordMsg
	done  chan struct{}
}

// NewRecorder creates a recorder over the store. Must call Close when done.
func NewRecorder(store *Store) *Recorder {
	r := &Recorder{
		store: store,
		ch:    make(chan recordMsg, 128),
		done:  make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *Recorder) drain() {
	defer close(r.done)
	for msg := range r.ch {
		r.handle(msg)
	}
}

func (r *Recorder) handle(m recordMsg) {
	var err error
	switch m.kind {
	case "run_create":
		err = r.store.CreateRun(m.run)
	case "run_finish":
		err = r.store.FinishRun(m.run)
	case "pair":
		err = r.store.AddPair(m.pair)
	default:
		return
	}
	if err != nil {
		slog.Warn("result write failed", "kind", m.kind, "error", err)
	}
}

// StartRun begins a new evaluation run and returns its ID.
func (r *Recorder) StartRun(name, source string) string {
	if r == nil {
		return ""
	}
	id := uuid.NewString()
	r.ch <- recordMsg{kind: "run_create", run: Run{
		ID:        id,
		Name:      name,
		Source:    source,
		StartedAt: time.Now(),
	}}
	return id
}

// RecordPair records one scored pair of the run.
func (r *Recorder) RecordPair(p Pair) {
	if r == nil {
		return
	}
	p.Prediction = truncate(p.Prediction, maxTextLen)
	p.Reference = truncate(p.Reference, maxTextLen)
	r.ch <- recordMsg{kind: "pair", pair: p}
}

// FinishRun finalizes a run with its aggregate totals.
func (r *Recorder) FinishRun(run Run) {
	if r == nil {
		return
	}
	r.ch <- recordMsg{kind: "run_finish", run: run}
}

// Close drains pending writes and stops the background goroutine.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	close(r.ch)
	<-r.done
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
