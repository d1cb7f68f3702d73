package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"heartfelt/assessment"
	"heartfelt/ml"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 16 << 10
)

// liveMessage is one reply on the live assessment socket.
type liveMessage struct {
	Type   string             `json:"type"`
	Result *assessment.Result `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
	Fields []fieldError       `json:"fields,omitempty"`
}

// liveAssessor re-runs the assessment every time the client sends an
// updated questionnaire, like a form that re-evaluates on each change.
// Connections share nothing but the read-only service and its counters.
type liveAssessor struct {
	handlers *Handlers
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func newLiveAssessor(h *Handlers, allowedOrigins []string) *liveAssessor {
	return &liveAssessor{
		handlers: h,
		logger:   h.logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

// checkOrigin allows same-host requests plus the configured origins.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if originAllowed(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

func (a *liveAssessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	clientID := uuid.NewString()
	a.logger.Debug("live client connected", zap.String("client_id", clientID))
	defer func() {
		conn.Close()
		a.logger.Debug("live client disconnected", zap.String("client_id", clientID))
	}()

	conn.SetReadLimit(wsMaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go a.pinger(conn, done)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				a.logger.Warn("live client read error", zap.String("client_id", clientID), zap.Error(err))
			}
			return
		}
		reply := a.assess(payload)
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			a.logger.Warn("live client write error", zap.String("client_id", clientID), zap.Error(err))
			return
		}
	}
}

func (a *liveAssessor) assess(payload []byte) liveMessage {
	var raw ml.RawInput
	if err := json.Unmarshal(payload, &raw); err != nil {
		a.handlers.reject("ws", time.Now())
		if ml.IsValidation(err) {
			return liveMessage{Type: "error", Error: "invalid input", Fields: fieldErrors(err)}
		}
		return liveMessage{Type: "error", Error: "invalid json: " + err.Error()}
	}
	result, err := a.handlers.assess("ws", raw)
	if err != nil {
		if ml.IsValidation(err) {
			return liveMessage{Type: "error", Error: "invalid input", Fields: fieldErrors(err)}
		}
		a.logger.Error("live assessment failed", zap.Error(err))
		return liveMessage{Type: "error", Error: "assessment failed"}
	}
	return liveMessage{Type: "result", Result: result}
}

// pinger keeps the connection alive; WriteControl is safe to call
// concurrently with the reader loop's WriteJSON.
func (a *liveAssessor) pinger(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
