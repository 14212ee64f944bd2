package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
)

// Columns names the header fields holding each part of a record.
type Columns struct {
	Source      string `yaml:"source" validate:"required"`
	Destination string `yaml:"destination" validate:"required"`
	Weight      string `yaml:"weight" validate:"required"`
}

func DefaultColumns() Columns {
	return Columns{Source: "from", Destination: "to", Weight: "count"}
}

type Options struct {
	Columns   Columns
	Delimiter rune
	// SkipMalformed turns unparseable weights into warnings instead of
	// failing the load.
	SkipMalformed bool
}

type Result struct {
	Records []domain.CallRecord
	Skipped []*domain.RecordError
}

// ParseCSV reads long-format call records from path.
func ParseCSV(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDataNotFound, path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDataNotFound, path, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrDataNotFound, path)
	}

	res, err := ParseCSVReader(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

func ParseCSVReader(r io.Reader, opts Options) (*Result, error) {
	if opts.Columns == (Columns{}) {
		opts.Columns = DefaultColumns()
	}

	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input, header row required", domain.ErrMalformedRecord)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", domain.ErrMalformedRecord, err)
	}

	srcIdx, dstIdx, wIdx, err := locate(header, opts.Columns)
	if err != nil {
		return nil, err
	}

	res := &Result{Records: []domain.CallRecord{}}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
		}
		line, _ := cr.FieldPos(wIdx)

		raw := strings.TrimSpace(row[wIdx])
		w, perr := parseWeight(raw)
		if perr != nil {
			recErr := &domain.RecordError{
				Line:   line,
				Column: opts.Columns.Weight,
				Value:  raw,
				Err:    fmt.Errorf("%w: %v", domain.ErrMalformedRecord, perr),
			}
			if opts.SkipMalformed {
				res.Skipped = append(res.Skipped, recErr)
				continue
			}
			return nil, recErr
		}

		res.Records = append(res.Records, domain.CallRecord{
			Source:      domain.EntityID(strings.TrimSpace(row[srcIdx])),
			Destination: domain.EntityID(strings.TrimSpace(row[dstIdx])),
			Weight:      w,
			Line:        line,
		})
	}
	return res, nil
}

func locate(header []string, cols Columns) (src, dst, w int, err error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	find := func(name string) (int, error) {
		i, ok := pos[name]
		if !ok {
			return 0, fmt.Errorf("%w: header is missing column %q", domain.ErrMalformedRecord, name)
		}
		return i, nil
	}
	if src, err = find(cols.Source); err != nil {
		return
	}
	if dst, err = find(cols.Destination); err != nil {
		return
	}
	w, err = find(cols.Weight)
	return
}

func parseWeight(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty weight")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("weight %q is not finite", s)
	}
	return v, nil
}
