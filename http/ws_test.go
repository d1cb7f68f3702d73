package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"heartfelt/monitoring"
)

func dialLive(t *testing.T) *websocket.Conn {
	t.Helper()
	return dialLiveHandler(t, newTestHandler(t))
}

func dialLiveHandler(t *testing.T, handler http.Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/assess"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestLiveAssessRoundTrip(t *testing.T) {
	conn := dialLive(t)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(healthyJSON)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply liveMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Type != "result" || reply.Result == nil {
		t.Fatalf("expected result, got %+v", reply)
	}
	if reply.Result.Headline != "No heart disease!" {
		t.Fatalf("unexpected headline %q", reply.Result.Headline)
	}

	// The same connection keeps answering as the answers change.
	stroke := strings.Replace(healthyJSON, `"stroke_history": false`, `"stroke_history": true`, 1)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(stroke)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Result == nil || reply.Result.Headline != "Potential heart disease!" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestLiveAssessErrors(t *testing.T) {
	handler, metrics := newTestHandlerWithMetrics(t)
	conn := dialLiveHandler(t, handler)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"age":`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply liveMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Type != "error" || !strings.HasPrefix(reply.Error, "invalid json") {
		t.Fatalf("expected json error, got %+v", reply)
	}

	bad := strings.Replace(healthyJSON, `"age": 30`, `"age": 10`, 1)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(bad)); err != nil {
		t.Fatalf("write: %v", err)
	}
	reply = liveMessage{}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Type != "error" || len(reply.Fields) != 1 || reply.Fields[0].Field != "age" {
		t.Fatalf("expected age field error, got %+v", reply)
	}

	// malformed frames are the client's fault, not the server's
	counts := metrics.Snapshot().Assessments["ws"]
	if counts[monitoring.OutcomeInvalid] != 2 || counts[monitoring.OutcomeFailed] != 0 {
		t.Fatalf("unexpected counters %v", counts)
	}
}

func TestCheckOrigin(t *testing.T) {
	check := checkOrigin([]string{"https://allowed.example"})
	cases := map[string]bool{
		"":                        true,
		"https://allowed.example": true,
		"http://example.com":      true,
		"https://evil.example":    false,
	}
	for origin, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "http://example.com/api/ws/assess", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		if got := check(r); got != want {
			t.Errorf("origin %q: got %v want %v", origin, got, want)
		}
	}
}
