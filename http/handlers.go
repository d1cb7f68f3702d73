package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"heartfelt/assessment"
	"heartfelt/ml"
	"heartfelt/monitoring"
)

// Handlers serves the assessment endpoints. It holds no per-user state.
type Handlers struct {
	service   *assessment.Service
	modelType string
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	ws        *liveAssessor
}

func NewHandlers(service *assessment.Service, modelType string, allowedOrigins []string, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	h := &Handlers{
		service:   service,
		modelType: modelType,
		metrics:   metrics,
		logger:    logger,
	}
	h.ws = newLiveAssessor(h, allowedOrigins)
	return h
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /assess", h.handleFormSubmit)

	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/schema", h.handleSchema)
	mux.HandleFunc("POST /api/assess", h.handleAssess)
	mux.HandleFunc("POST /api/encode", h.handleEncode)
	mux.HandleFunc("GET /api/ws/assess", h.ws.ServeHTTP)

	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	mux.HandleFunc("GET /metrics", h.handlePrometheus)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"features":   ml.FeatureNames(),
		"width":      ml.NumFeatures,
		"model_type": h.modelType,
	})
}

func (h *Handlers) handleAssess(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	raw, ok := h.decodeInput(w, r)
	if !ok {
		h.reject("api", start)
		return
	}
	result, err := h.assess("api", raw)
	if err != nil {
		h.writeAssessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// assess runs the service and records the outcome under channel.
func (h *Handlers) assess(channel string, raw ml.RawInput) (*assessment.Result, error) {
	start := time.Now()
	result, err := h.service.Assess(raw)
	h.observe(channel, start, result, err)
	return result, err
}

func (h *Handlers) observe(channel string, start time.Time, result *assessment.Result, err error) {
	if h.metrics == nil {
		return
	}
	outcome := monitoring.OutcomeNoDisease
	switch {
	case ml.IsValidation(err):
		outcome = monitoring.OutcomeInvalid
	case err != nil:
		outcome = monitoring.OutcomeFailed
	case result.Label == ml.PotentialDisease:
		outcome = monitoring.OutcomePotentialDisease
	}
	h.metrics.Observe(channel, outcome, time.Since(start))
}

// reject counts a submission that never reached the service because the
// client sent something unusable.
func (h *Handlers) reject(channel string, start time.Time) {
	if h.metrics != nil {
		h.metrics.Observe(channel, monitoring.OutcomeInvalid, time.Since(start))
	}
}

func (h *Handlers) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		writeError(w, http.StatusServiceUnavailable, "metrics disabled")
		return
	}
	writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}

func (h *Handlers) handlePrometheus(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		http.Error(w, "metrics disabled", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Write([]byte(h.metrics.ExportPrometheus()))
}

func (h *Handlers) handleEncode(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	features, err := h.service.Encode(raw)
	if err != nil {
		h.writeAssessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order":    ml.FeatureNames(),
		"features": features,
	})
}

func (h *Handlers) decodeInput(w http.ResponseWriter, r *http.Request) (ml.RawInput, bool) {
	var raw ml.RawInput
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		writeError(w, http.StatusUnsupportedMediaType, "expected application/json")
		return raw, false
	}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		if ml.IsValidation(err) {
			writeValidationError(w, err)
			return raw, false
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return raw, false
		}
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return raw, false
	}
	return raw, true
}

func (h *Handlers) writeAssessError(w http.ResponseWriter, r *http.Request, err error) {
	if ml.IsValidation(err) {
		writeValidationError(w, err)
		return
	}
	h.logger.Error("assessment failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "assessment failed")
}

type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func fieldErrors(err error) []fieldError {
	var out []fieldError
	for _, fe := range ml.FieldErrors(err) {
		out = append(out, fieldError{Field: fe.Field, Reason: fe.Reason})
	}
	var we *ml.WidthError
	if errors.As(err, &we) {
		out = append(out, fieldError{Field: "features", Reason: we.Error()})
	}
	return out
}

func writeValidationError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "invalid input",
		"fields": fieldErrors(err),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
