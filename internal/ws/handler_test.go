package ws

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func dialTestServer(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestScoringSession(t *testing.T) {
	conn := dialTestServer(t, NewHandler(HandlerConfig{}))

	if err := conn.WriteJSON(sessionMetadata{Name: "test"}); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	frames := []scoreFrame{
		{Prediction: "this is the prediction", Reference: "this is the reference"},
		{Prediction: "there is an other sample", Reference: "there is another one"},
	}
	wantErrors := []int{1, 3}
	wantRefTokens := []int{4, 4}
	wantRunning := []float64{0.25, 0.5}

	for i, frame := range frames {
		if err := conn.WriteJSON(frame); err != nil {
			t.Fatalf("write pair %d: %v", i, err)
		}
		var reply pairReply
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("read reply %d: %v", i, err)
		}
		if reply.Type != "pair" || reply.Seq != i+1 {
			t.Errorf("reply %d = type %q seq %d", i, reply.Type, reply.Seq)
		}
		if reply.Errors != wantErrors[i] {
			t.Errorf("pair %d errors = %d, want %d", i, reply.Errors, wantErrors[i])
		}
		if reply.ReferenceTokens != wantRefTokens[i] {
			t.Errorf("pair %d reference_tokens = %d, want %d", i, reply.ReferenceTokens, wantRefTokens[i])
		}
		if reply.WER == nil || *reply.WER != wantRunning[i] {
			t.Errorf("pair %d running wer = %v, want %f", i, reply.WER, wantRunning[i])
		}
	}

	if err := conn.WriteJSON(scoreFrame{Finish: true}); err != nil {
		t.Fatalf("write finish: %v", err)
	}
	var summary summaryReply
	if err := conn.ReadJSON(&summary); err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if summary.Type != "summary" {
		t.Errorf("summary type = %q", summary.Type)
	}
	if summary.Pairs != 2 || summary.Errors != 4 || summary.ReferenceTokens != 8 {
		t.Errorf("summary = %d pairs, %d errors, %d tokens; want 2/4/8",
			summary.Pairs, summary.Errors, summary.ReferenceTokens)
	}
	if summary.WER == nil || *summary.WER != 0.5 {
		t.Errorf("summary wer = %v, want 0.5", summary.WER)
	}
}

func TestScoringSessionDetails(t *testing.T) {
	conn := dialTestServer(t, NewHandler(HandlerConfig{}))

	if err := conn.WriteJSON(sessionMetadata{Details: true}); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	if err := conn.WriteJSON(scoreFrame{Prediction: "the big cat sat", Reference: "the cat sat"}); err != nil {
		t.Fatalf("write pair: %v", err)
	}

	var reply pairReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.Alignment == nil {
		t.Fatal("alignment missing with details enabled")
	}
	if reply.Alignment.Insertions != 1 || reply.Alignment.Substitutions != 0 || reply.Alignment.Deletions != 0 {
		t.Errorf("alignment = %+v, want one insertion", *reply.Alignment)
	}
}

func TestScoringSessionUndefinedRate(t *testing.T) {
	conn := dialTestServer(t, NewHandler(HandlerConfig{}))

	if err := conn.WriteJSON(sessionMetadata{}); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	if err := conn.WriteJSON(scoreFrame{Prediction: "", Reference: ""}); err != nil {
		t.Fatalf("write pair: %v", err)
	}

	var reply pairReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.WER != nil {
		t.Errorf("wer = %v, want null for zero reference tokens", *reply.WER)
	}

	if err := conn.WriteJSON(scoreFrame{Finish: true}); err != nil {
		t.Fatalf("write finish: %v", err)
	}
	var summary summaryReply
	if err := conn.ReadJSON(&summary); err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if summary.WER != nil {
		t.Errorf("summary wer = %v, want null", *summary.WER)
	}
}

func TestHandlerAtCapacity(t *testing.T) {
	h := NewHandler(HandlerConfig{MaxConcurrent: 1})
	conn := dialTestServer(t, h)
	if err := conn.WriteJSON(sessionMetadata{}); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	// Second connection while the first holds the only slot.
	srv := httptest.NewServer(h)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("second dial succeeded at capacity")
	}
	if resp == nil || resp.StatusCode != 503 {
		t.Errorf("second dial status = %v, want 503", resp)
	}
}
