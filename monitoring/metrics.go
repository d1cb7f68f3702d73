// Package monitoring keeps in-process counters for the assessment service.
package monitoring

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Outcome 评估结果类别
type Outcome string

const (
	OutcomeNoDisease        Outcome = "no_disease"
	OutcomePotentialDisease Outcome = "potential_disease"
	OutcomeInvalid          Outcome = "invalid"
	OutcomeFailed           Outcome = "failed"
)

// Metrics 指标收集器
type Metrics struct {
	mu        sync.RWMutex
	outcomes  map[string]map[Outcome]int64 // channel -> outcome -> count
	latency   time.Duration
	observed  int64
	startTime time.Time
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Assessments   map[string]map[Outcome]int64 `json:"assessments"`
	Total         int64                        `json:"total"`
	MeanLatencyMs float64                      `json:"mean_latency_ms"`
	Uptime        string                       `json:"uptime"`
	Goroutines    int                          `json:"goroutines"`
	HeapAlloc     uint64                       `json:"heap_alloc"`
}

// NewMetrics 创建指标收集器
func NewMetrics() *Metrics {
	return &Metrics{
		outcomes:  make(map[string]map[Outcome]int64),
		startTime: time.Now(),
	}
}

// Observe records one assessment served through channel ("api", "form",
// "ws").
func (m *Metrics) Observe(channel string, outcome Outcome, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byOutcome, ok := m.outcomes[channel]
	if !ok {
		byOutcome = make(map[Outcome]int64)
		m.outcomes[channel] = byOutcome
	}
	byOutcome[outcome]++
	m.latency += took
	m.observed++
}

// Snapshot 获取指标快照
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Snapshot{
		Assessments: make(map[string]map[Outcome]int64, len(m.outcomes)),
		Total:       m.observed,
		Uptime:      time.Since(m.startTime).Round(time.Second).String(),
		Goroutines:  runtime.NumGoroutine(),
	}
	for channel, byOutcome := range m.outcomes {
		c := make(map[Outcome]int64, len(byOutcome))
		for k, v := range byOutcome {
			c[k] = v
		}
		s.Assessments[channel] = c
	}
	if m.observed > 0 {
		s.MeanLatencyMs = float64(m.latency.Microseconds()) / float64(m.observed) / 1000
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	s.HeapAlloc = mem.HeapAlloc
	return s
}

// ExportPrometheus 导出Prometheus格式
func (m *Metrics) ExportPrometheus() string {
	s := m.Snapshot()

	var b strings.Builder
	b.WriteString("# HELP heartfelt_assessments_total Assessments served, by channel and outcome.\n")
	b.WriteString("# TYPE heartfelt_assessments_total counter\n")

	channels := make([]string, 0, len(s.Assessments))
	for channel := range s.Assessments {
		channels = append(channels, channel)
	}
	sort.Strings(channels)
	for _, channel := range channels {
		outcomes := make([]string, 0, len(s.Assessments[channel]))
		for outcome := range s.Assessments[channel] {
			outcomes = append(outcomes, string(outcome))
		}
		sort.Strings(outcomes)
		for _, outcome := range outcomes {
			fmt.Fprintf(&b, "heartfelt_assessments_total{channel=%q,outcome=%q} %d\n",
				channel, outcome, s.Assessments[channel][Outcome(outcome)])
		}
	}

	b.WriteString("# HELP heartfelt_assessment_latency_ms_mean Mean assessment latency in milliseconds.\n")
	b.WriteString("# TYPE heartfelt_assessment_latency_ms_mean gauge\n")
	fmt.Fprintf(&b, "heartfelt_assessment_latency_ms_mean %g\n", s.MeanLatencyMs)

	b.WriteString("# HELP heartfelt_goroutines Number of goroutines.\n")
	b.WriteString("# TYPE heartfelt_goroutines gauge\n")
	fmt.Fprintf(&b, "heartfelt_goroutines %d\n", s.Goroutines)
	return b.String()
}
