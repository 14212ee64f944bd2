// Package traces turns a Jaeger trace export into call-count and DepIC
// records.
package traces

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
)

type Reference struct {
	RefType string `json:"refType"`
	TraceID string `json:"traceID"`
	SpanID  string `json:"spanID"`
}

type Span struct {
	TraceID       string      `json:"traceID"`
	SpanID        string      `json:"spanID"`
	OperationName string      `json:"operationName"`
	References    []Reference `json:"references"`
	StartTime     int64       `json:"startTime"`
	Duration      int64       `json:"duration"`
	ProcessID     string      `json:"processID"`
	// Pre-resolved exports carry these directly.
	ServiceName   string `json:"serviceName"`
	ParentService string `json:"parentService"`
}

type Process struct {
	ServiceName string `json:"serviceName"`
}

type Trace struct {
	TraceID   string             `json:"traceID"`
	Spans     []Span             `json:"spans"`
	Processes map[string]Process `json:"processes"`
}

// TraceData matches the body of Jaeger's /api/traces response.
type TraceData struct {
	Data []Trace `json:"data"`
}

func ParseJaeger(r io.Reader) (*TraceData, error) {
	var td TraceData
	if err := json.NewDecoder(r).Decode(&td); err != nil {
		return nil, fmt.Errorf("%w: trace export: %v", domain.ErrMalformedRecord, err)
	}
	return &td, nil
}

func ParseJaegerFile(path string) (*TraceData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDataNotFound, path, err)
	}
	defer f.Close()
	td, err := ParseJaeger(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return td, nil
}

func (t *Trace) serviceOf(s *Span) string {
	if s.ServiceName != "" {
		return s.ServiceName
	}
	return t.Processes[s.ProcessID].ServiceName
}

func (t *Trace) parentOf(s *Span, byID map[string]*Span) string {
	if s.ParentService != "" {
		return s.ParentService
	}
	for _, ref := range s.References {
		if ref.RefType != "CHILD_OF" {
			continue
		}
		if p, ok := byID[ref.SpanID]; ok {
			return t.serviceOf(p)
		}
	}
	return ""
}

// noneService is what tracers report when a span's service is unknown.
const noneService = "none"

type callKey struct{ from, to string }

// traceCalls counts cross-service parent -> child span edges in one trace.
func (t *Trace) traceCalls() map[callKey]int {
	byID := make(map[string]*Span, len(t.Spans))
	for si := range t.Spans {
		byID[t.Spans[si].SpanID] = &t.Spans[si]
	}
	counts := map[callKey]int{}
	for si := range t.Spans {
		s := &t.Spans[si]
		child := t.serviceOf(s)
		parent := t.parentOf(s, byID)
		if parent == "" || child == "" || parent == child {
			continue
		}
		if parent == noneService || child == noneService {
			continue
		}
		counts[callKey{parent, child}]++
	}
	return counts
}

// CountCalls counts cross-service parent -> child span edges. Root spans,
// spans of an unknown ("none") service and calls a service makes to itself
// are ignored. Output is sorted by source then destination.
func CountCalls(td *TraceData) []domain.CallRecord {
	counts := map[callKey]int{}
	for ti := range td.Data {
		for k, n := range td.Data[ti].traceCalls() {
			counts[k] += n
		}
	}

	out := make([]domain.CallRecord, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.CallRecord{
			Source:      domain.EntityID(k.from),
			Destination: domain.EntityID(k.to),
			Weight:      float64(n),
		})
	}
	sortRecords(out)
	return out
}

func sortRecords(out []domain.CallRecord) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Destination < out[j].Destination
	})
}
