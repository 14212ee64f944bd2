package traces_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/ingest/traces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = `{
  "data": [
    {
      "traceID": "t1",
      "spans": [
        {"traceID": "t1", "spanID": "s1", "processID": "p1", "references": []},
        {"traceID": "t1", "spanID": "s2", "processID": "p2",
         "references": [{"refType": "CHILD_OF", "traceID": "t1", "spanID": "s1"}]},
        {"traceID": "t1", "spanID": "s3", "processID": "p3",
         "references": [{"refType": "CHILD_OF", "traceID": "t1", "spanID": "s2"}]},
        {"traceID": "t1", "spanID": "s4", "processID": "p2",
         "references": [{"refType": "CHILD_OF", "traceID": "t1", "spanID": "s2"}]},
        {"traceID": "t1", "spanID": "s5", "processID": "p3",
         "references": [{"refType": "FOLLOWS_FROM", "traceID": "t1", "spanID": "s1"}]}
      ],
      "processes": {
        "p1": {"serviceName": "frontend"},
        "p2": {"serviceName": "checkoutservice"},
        "p3": {"serviceName": "paymentservice"}
      }
    },
    {
      "traceID": "t2",
      "spans": [
        {"traceID": "t2", "spanID": "a", "serviceName": "paymentservice", "parentService": "checkoutservice"},
        {"traceID": "t2", "spanID": "b", "serviceName": "frontend", "parentService": ""}
      ]
    }
  ]
}`

func TestCountCalls(t *testing.T) {
	td, err := traces.ParseJaeger(strings.NewReader(export))
	require.NoError(t, err)

	got := traces.CountCalls(td)
	assert.Equal(t, []domain.CallRecord{
		{Source: "checkoutservice", Destination: "paymentservice", Weight: 2},
		{Source: "frontend", Destination: "checkoutservice", Weight: 1},
	}, got)
}

func TestParseJaeger_Errors(t *testing.T) {
	_, err := traces.ParseJaeger(strings.NewReader("{not json"))
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)

	_, err = traces.ParseJaegerFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, domain.ErrDataNotFound)
}
