package parser_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/ingest/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestParseCSV(t *testing.T) {
	t.Run("reads records with default columns", func(t *testing.T) {
		path := writeFile(t, "service_calls.csv", "from,to,count\nfrontend,cartservice,12\ncheckoutservice,emailservice,3\n")

		res, err := parser.ParseCSV(path, parser.Options{})
		require.NoError(t, err)
		require.Len(t, res.Records, 2)
		assert.Equal(t, domain.CallRecord{Source: "frontend", Destination: "cartservice", Weight: 12, Line: 2}, res.Records[0])
		assert.Equal(t, domain.EntityID("emailservice"), res.Records[1].Destination)
		assert.Equal(t, 3, res.Records[1].Line)
		assert.Empty(t, res.Skipped)
	})

	t.Run("uses configured column names in any order", func(t *testing.T) {
		path := writeFile(t, "depICs.csv", "DepIC_Value,to,from\n0.25,b,a\n1.5e-1,c,a\n")

		res, err := parser.ParseCSV(path, parser.Options{
			Columns: parser.Columns{Source: "from", Destination: "to", Weight: "DepIC_Value"},
		})
		require.NoError(t, err)
		require.Len(t, res.Records, 2)
		assert.Equal(t, domain.EntityID("a"), res.Records[0].Source)
		assert.InDelta(t, 0.25, res.Records[0].Weight, 1e-12)
		assert.InDelta(t, 0.15, res.Records[1].Weight, 1e-12)
	})

	t.Run("keeps duplicate pairs", func(t *testing.T) {
		res, err := parser.ParseCSVReader(strings.NewReader("from,to,count\na,b,1\na,b,2\n"), parser.Options{})
		require.NoError(t, err)
		assert.Len(t, res.Records, 2)
	})

	t.Run("honors delimiter and trims whitespace", func(t *testing.T) {
		res, err := parser.ParseCSVReader(strings.NewReader("from;to;count\n a ; b ; 7 \n"), parser.Options{Delimiter: ';'})
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, domain.CallRecord{Source: "a", Destination: "b", Weight: 7, Line: 2}, res.Records[0])
	})

	t.Run("header only yields no records", func(t *testing.T) {
		res, err := parser.ParseCSVReader(strings.NewReader("from,to,count\n"), parser.Options{})
		require.NoError(t, err)
		assert.Empty(t, res.Records)
	})
}

func TestParseCSV_Errors(t *testing.T) {
	t.Run("missing file is DataNotFound", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope.csv")
		_, err := parser.ParseCSV(missing, parser.Options{})
		require.ErrorIs(t, err, domain.ErrDataNotFound)
		assert.Contains(t, err.Error(), missing)
	})

	t.Run("directory is DataNotFound", func(t *testing.T) {
		_, err := parser.ParseCSV(t.TempDir(), parser.Options{})
		require.ErrorIs(t, err, domain.ErrDataNotFound)
	})

	t.Run("bad weight reports line and value", func(t *testing.T) {
		path := writeFile(t, "calls.csv", "from,to,count\na,b,1\na,c,many\n")
		_, err := parser.ParseCSV(path, parser.Options{})
		require.ErrorIs(t, err, domain.ErrMalformedRecord)

		var recErr *domain.RecordError
		require.ErrorAs(t, err, &recErr)
		assert.Equal(t, 3, recErr.Line)
		assert.Equal(t, "count", recErr.Column)
		assert.Equal(t, "many", recErr.Value)
		assert.Contains(t, err.Error(), path)
	})

	cases := []struct {
		name string
		body string
	}{
		{"empty input", ""},
		{"missing weight column", "from,to,calls\na,b,1\n"},
		{"ragged row", "from,to,count\na,b\n"},
		{"empty weight", "from,to,count\na,b,\n"},
		{"non-finite weight", "from,to,count\na,b,NaN\n"},
		{"infinite weight", "from,to,count\na,b,+Inf\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parser.ParseCSVReader(strings.NewReader(tc.body), parser.Options{})
			assert.ErrorIs(t, err, domain.ErrMalformedRecord)
		})
	}

	t.Run("skip malformed collects bad rows", func(t *testing.T) {
		res, err := parser.ParseCSVReader(
			strings.NewReader("from,to,count\na,b,1\na,c,x\nb,c,2\n"),
			parser.Options{SkipMalformed: true},
		)
		require.NoError(t, err)
		assert.Len(t, res.Records, 2)
		require.Len(t, res.Skipped, 1)
		assert.Equal(t, 3, res.Skipped[0].Line)
		assert.ErrorIs(t, res.Skipped[0], domain.ErrMalformedRecord)
	})
}
