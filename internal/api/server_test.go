package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"reelcheck/internal/config"
	"reelcheck/internal/progress"
	"reelcheck/internal/stepcache"
	"reelcheck/internal/testsupport"
	"reelcheck/internal/verify"
)

type fakeRunner struct {
	report *verify.Report
	events []progress.Event
}

func (f *fakeRunner) Run(ctx context.Context, _ string, reporter progress.Reporter) (*verify.Report, error) {
	for _, event := range f.events {
		reporter.Report(ctx, event)
	}
	return f.report, nil
}

func newTestServer(t *testing.T, runner Runner, mutate ...func(*config.Config)) (*Server, stepcache.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	for _, fn := range mutate {
		fn(cfg)
	}
	store := testsupport.MustOpenStore(t, cfg)
	return NewServer(cfg, runner, store, nil), store
}

func successRunner() *fakeRunner {
	return &fakeRunner{
		events: []progress.Event{
			{Phase: progress.PhaseProcessing, Message: "resolving post link"},
			{Phase: progress.PhaseSuccess, Message: "link resolved"},
		},
		report: &verify.Report{Success: true, Verdict: "The video is AUTHENTIC."},
	}
}

func TestVerifyStreamsProgressThenReport(t *testing.T) {
	server, _ := newTestServer(t, successRunner())
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/verify", "application/json",
		strings.NewReader(`{"url":"https://www.instagram.com/reel/abc/"}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Type"); got != "application/x-ndjson" {
		t.Fatalf("unexpected content type %q", got)
	}

	var messages []streamMessage
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var msg streamMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			t.Fatalf("bad stream line %q: %v", scanner.Text(), err)
		}
		messages = append(messages, msg)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 2 progress lines and a report, got %d", len(messages))
	}
	if messages[0].Type != "progress" || messages[0].Event.Message != "resolving post link" {
		t.Fatalf("unexpected first message %+v", messages[0])
	}
	last := messages[len(messages)-1]
	if last.Type != "report" || last.Report == nil || !last.Report.Success {
		t.Fatalf("unexpected final message %+v", last)
	}
}

func TestVerifyRejectsMissingURL(t *testing.T) {
	server, _ := newTestServer(t, successRunner())
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/verify", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTokenGuardsAPIButNotHealth(t *testing.T) {
	server, _ := newTestServer(t, successRunner(), func(cfg *config.Config) {
		cfg.Paths.APIToken = "secret"
	})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/workflows")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/workflows", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with token failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz must not require a token, got %d", resp.StatusCode)
	}
}

func TestWorkflowListAndDelete(t *testing.T) {
	server, store := newTestServer(t, successRunner())
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	result, err := stepcache.OK("payload")
	if err != nil {
		t.Fatal(err)
	}
	key := "https://www.instagram.com/reel/xyz/"
	if err := store.PutStep(context.Background(), key, stepcache.StepLink, result); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(ts.URL + "/api/workflows")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	var listed struct {
		Workflows []string `json:"workflows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	resp.Body.Close()
	if len(listed.Workflows) != 1 || listed.Workflows[0] != key {
		t.Fatalf("unexpected workflows %v", listed.Workflows)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/workflows?key="+key, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	record, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if len(record.Steps) != 0 {
		t.Fatal("workflow not deleted")
	}
}

func TestVerifyWebSocketStream(t *testing.T) {
	server, _ := newTestServer(t, successRunner())
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") +
		"/api/verify/ws?url=https://www.instagram.com/reel/abc/"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	var messages []streamMessage
	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		messages = append(messages, msg)
		if msg.Type == "report" {
			break
		}
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(messages))
	}
	if messages[2].Report == nil || !messages[2].Report.Success {
		t.Fatalf("unexpected final frame %+v", messages[2])
	}
}
