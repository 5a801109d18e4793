package progress_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"reelcheck/internal/progress"
)

func TestConsoleWritesPhaseAndMessage(t *testing.T) {
	var buf strings.Builder
	reporter := progress.NewConsole(&buf)

	progress.Processing(context.Background(), reporter, "resolving %s", "https://example.com/reel/1")
	progress.Success(context.Background(), reporter, "link resolved")

	output := buf.String()
	if !strings.Contains(output, "[processing] resolving https://example.com/reel/1") {
		t.Fatalf("missing processing line in %q", output)
	}
	if !strings.Contains(output, "[success] link resolved") {
		t.Fatalf("missing success line in %q", output)
	}
}

func TestStreamDeliversInOrder(t *testing.T) {
	stream := progress.NewStream(4)
	ctx := context.Background()

	stream.Report(ctx, progress.Event{Phase: progress.PhaseProcessing, Message: "one"})
	stream.Report(ctx, progress.Event{Phase: progress.PhaseSuccess, Message: "two"})
	stream.Close()

	var got []string
	for event := range stream.Events() {
		got = append(got, event.Message)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("unexpected events %v", got)
	}
}

func TestStreamDropsAfterClose(t *testing.T) {
	stream := progress.NewStream(1)
	stream.Close()
	stream.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		stream.Report(context.Background(), progress.Event{Phase: progress.PhaseError, Message: "late"})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Report blocked after Close")
	}
}

func TestStreamUnblocksOnContextCancel(t *testing.T) {
	stream := progress.NewStream(1)
	stream.Report(context.Background(), progress.Event{Phase: progress.PhaseProcessing, Message: "fill"})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		stream.Report(ctx, progress.Event{Phase: progress.PhaseProcessing, Message: "blocked"})
	}()
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Report did not honor context cancellation")
	}
}

func TestFanoutForwardsToAllReporters(t *testing.T) {
	var first, second strings.Builder
	fanout := progress.Fanout{progress.NewConsole(&first), nil, progress.NewConsole(&second)}

	progress.Warning(context.Background(), fanout, "transcript unavailable")

	for name, buf := range map[string]*strings.Builder{"first": &first, "second": &second} {
		if !strings.Contains(buf.String(), "[warning] transcript unavailable") {
			t.Fatalf("%s reporter missed event: %q", name, buf.String())
		}
	}
}
