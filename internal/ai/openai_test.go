// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/deep-research/pkg/types"
)

// sseChunk renders one chat completion chunk in the wire format the
// streaming endpoint emits.
func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":%q}}]}`+"\n\n", content)
}

func streamServer(t *testing.T, deltas int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for i := 0; i < deltas; i++ {
			fmt.Fprint(w, sseChunk(fmt.Sprintf("tok%d ", i)))
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testGenerator(srv *httptest.Server) *OpenAIGenerator {
	return NewOpenAIGenerator(types.AIConfig{
		Provider: "openai",
		BaseURL:  srv.URL + "/v1",
		APIKey:   "test-key",
	}, nil)
}

func TestGenerateStreamDeliversDeltasAndFinish(t *testing.T) {
	gen := testGenerator(streamServer(t, 3))

	events, cancel, err := gen.GenerateStream(context.Background(), "system", "user", Options{Model: "m"})
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	var text string
	var finish *FinishMeta
	for ev := range events {
		switch ev.Kind {
		case EventTextDelta:
			text += ev.Text
		case EventFinish:
			finish = ev.Finish
		}
	}

	if text != "tok0 tok1 tok2 " {
		t.Errorf("text = %q", text)
	}
	if finish == nil {
		t.Fatal("no finish event")
	}
	if finish.Provider != "openai" {
		t.Errorf("provider = %q", finish.Provider)
	}
	if finish.Err != nil {
		t.Errorf("finish err = %v", finish.Err)
	}
}

func TestGenerateStreamProducerExitsWhenAbandoned(t *testing.T) {
	// Far more deltas than the event channel can buffer, so the producer
	// is mid-send when the consumer walks away.
	gen := testGenerator(streamServer(t, 200))

	ctx, ctxCancel := context.WithCancel(context.Background())
	defer ctxCancel()

	events, cancel, err := gen.GenerateStream(ctx, "system", "user", Options{Model: "m"})
	if err != nil {
		t.Fatal(err)
	}

	ev := <-events
	if ev.Kind != EventTextDelta || ev.Text != "tok0 " {
		t.Fatalf("first event = %+v", ev)
	}

	ctxCancel()
	cancel()

	// The producer must stop sending and close the channel instead of
	// parking forever on a full buffer. Drain what it had already queued.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event channel still open after cancellation")
		}
	}
}

func TestGenerateStreamCancelIdempotent(t *testing.T) {
	gen := testGenerator(streamServer(t, 1))

	events, cancel, err := gen.GenerateStream(context.Background(), "system", "user", Options{Model: "m"})
	if err != nil {
		t.Fatal(err)
	}

	for range events {
	}
	cancel()
	cancel()
}
