package matrix_test

import (
	"testing"

	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/domain"
	"github.com/GoSim-25-26J-441/call-heatmap/internal/call_heatmap/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(src, dst string, w float64) domain.CallRecord {
	return domain.CallRecord{Source: domain.EntityID(src), Destination: domain.EntityID(dst), Weight: w}
}

func ids(s ...string) []domain.EntityID {
	out := make([]domain.EntityID, len(s))
	for i, v := range s {
		out[i] = domain.EntityID(v)
	}
	return out
}

func TestBuild_DerivedAxes(t *testing.T) {
	records := []domain.CallRecord{rec("a", "b", 3), rec("b", "c", 5), rec("a", "c", 0)}

	m, rep, err := matrix.Build(records, matrix.Options{})
	require.NoError(t, err)

	assert.Equal(t, ids("a", "b"), m.Rows)
	assert.Equal(t, ids("b", "c"), m.Cols)
	assert.Equal(t, [][]float64{{3, 0}, {0, 5}}, m.Values)

	v, ok := m.At("a", "b")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	v, ok = m.At("b", "b")
	assert.True(t, ok, "b->b lies inside the derived axes")
	assert.Equal(t, 0.0, v)

	_, ok = m.At("c", "a")
	assert.False(t, ok, "c is never a source so it is not a row")

	assert.Equal(t, 3, rep.Records)
	assert.Zero(t, rep.Duplicates)
	assert.Empty(t, rep.Dropped)
}

func TestBuild_CanonicalAxes(t *testing.T) {
	records := []domain.CallRecord{rec("a", "b", 3), rec("b", "c", 5), rec("a", "c", 0)}

	m, _, err := matrix.Build(records, matrix.Options{Canonical: ids("a", "b", "c")})
	require.NoError(t, err)

	rows, cols := m.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, [][]float64{
		{0, 3, 0},
		{0, 0, 5},
		{0, 0, 0},
	}, m.Values)
}

func TestBuild_CanonicalOrderIsKept(t *testing.T) {
	canonical := ids("redis-cart", "frontend", "cartservice", "emailservice")
	records := []domain.CallRecord{rec("frontend", "cartservice", 4), rec("cartservice", "redis-cart", 9)}

	m, _, err := matrix.Build(records, matrix.Options{Canonical: canonical})
	require.NoError(t, err)

	assert.Equal(t, canonical, m.Rows)
	assert.Equal(t, canonical, m.Cols)
	for _, row := range m.Values {
		assert.Len(t, row, len(canonical))
	}
	v, _ := m.At("cartservice", "redis-cart")
	assert.Equal(t, 9.0, v)
	v, _ = m.At("emailservice", "emailservice")
	assert.Equal(t, 0.0, v)
}

func TestBuild_Totality(t *testing.T) {
	records := []domain.CallRecord{rec("x", "y", 1), rec("y", "z", 2), rec("z", "x", 3), rec("q", "y", 4)}

	for _, opts := range []matrix.Options{{}, {Canonical: ids("z", "y", "x", "w")}} {
		m, _, err := matrix.Build(records, opts)
		require.NoError(t, err)
		require.Len(t, m.Values, len(m.Rows))
		for _, r := range m.Rows {
			for _, c := range m.Cols {
				_, ok := m.At(r, c)
				assert.True(t, ok, "%s -> %s", r, c)
			}
		}
		assert.Len(t, m.Cells(), len(m.Rows)*len(m.Cols))
	}
}

func TestBuild_AggregatePolicies(t *testing.T) {
	records := []domain.CallRecord{rec("a", "b", 2), rec("a", "b", 7), rec("a", "b", 4)}
	reversed := []domain.CallRecord{records[2], records[1], records[0]}

	cases := []struct {
		policy domain.AggregatePolicy
		want   float64
	}{
		{domain.AggregateSum, 13},
		{domain.AggregateLast, 4},
		{domain.AggregateMax, 7},
		{"", 13},
	}
	for _, tc := range cases {
		t.Run(string(tc.policy), func(t *testing.T) {
			m, rep, err := matrix.Build(records, matrix.Options{Aggregate: tc.policy})
			require.NoError(t, err)
			v, _ := m.At("a", "b")
			assert.Equal(t, tc.want, v)
			assert.Equal(t, 2, rep.Duplicates)
		})
	}

	t.Run("sum ignores order", func(t *testing.T) {
		m1, _, err := matrix.Build(records, matrix.Options{Aggregate: domain.AggregateSum})
		require.NoError(t, err)
		m2, _, err := matrix.Build(reversed, matrix.Options{Aggregate: domain.AggregateSum})
		require.NoError(t, err)
		assert.Equal(t, m1.Values, m2.Values)
	})

	t.Run("last follows input order", func(t *testing.T) {
		m, _, err := matrix.Build(reversed, matrix.Options{Aggregate: domain.AggregateLast})
		require.NoError(t, err)
		v, _ := m.At("a", "b")
		assert.Equal(t, 2.0, v)
	})

	t.Run("max with negative weights", func(t *testing.T) {
		m, _, err := matrix.Build([]domain.CallRecord{rec("a", "b", -5), rec("a", "b", -2)}, matrix.Options{Aggregate: domain.AggregateMax})
		require.NoError(t, err)
		v, _ := m.At("a", "b")
		assert.Equal(t, -2.0, v)
	})

	t.Run("sum that overflows is malformed", func(t *testing.T) {
		big := []domain.CallRecord{rec("a", "b", 1e308), {Source: "a", Destination: "b", Weight: 1e308, Line: 3}}
		_, _, err := matrix.Build(big, matrix.Options{Aggregate: domain.AggregateSum})
		require.ErrorIs(t, err, domain.ErrMalformedRecord)
		assert.Contains(t, err.Error(), "line 3")

		neg := []domain.CallRecord{rec("a", "b", -1e308), rec("a", "b", -1e308)}
		_, _, err = matrix.Build(neg, matrix.Options{})
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("values spanning the float64 range stay finite", func(t *testing.T) {
		wide := []domain.CallRecord{rec("a", "b", -1e308), rec("b", "a", 1e308)}
		m, _, err := matrix.Build(wide, matrix.Options{})
		require.NoError(t, err)
		lo, hi := m.Range()
		assert.Equal(t, -1e308, lo)
		assert.Equal(t, 1e308, hi)
	})

	t.Run("reject fails on the second record", func(t *testing.T) {
		dup := []domain.CallRecord{rec("a", "b", 1), {Source: "a", Destination: "b", Weight: 2, Line: 3}}
		_, _, err := matrix.Build(dup, matrix.Options{Aggregate: domain.AggregateReject})
		require.ErrorIs(t, err, domain.ErrDuplicatePair)
		assert.Contains(t, err.Error(), "line 3")
	})
}

func TestBuild_UnknownEntities(t *testing.T) {
	records := []domain.CallRecord{
		rec("a", "b", 1),
		{Source: "a", Destination: "ghost", Weight: 9, Line: 3},
		rec("b", "a", 2),
	}

	t.Run("drop by default", func(t *testing.T) {
		m, rep, err := matrix.Build(records, matrix.Options{Canonical: ids("a", "b")})
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{0, 1}, {2, 0}}, m.Values)
		require.Len(t, rep.Dropped, 1)
		assert.Equal(t, domain.EntityID("ghost"), rep.Dropped[0].Destination)
	})

	t.Run("fail names the identifier", func(t *testing.T) {
		_, _, err := matrix.Build(records, matrix.Options{Canonical: ids("a", "b"), Unknown: domain.UnknownFail})
		require.ErrorIs(t, err, domain.ErrUnknownEntity)
		assert.Contains(t, err.Error(), `"ghost"`)
		assert.Contains(t, err.Error(), "line 3")
	})

	t.Run("unknown source is named", func(t *testing.T) {
		_, _, err := matrix.Build([]domain.CallRecord{rec("ghost", "a", 1)}, matrix.Options{Canonical: ids("a"), Unknown: domain.UnknownFail})
		require.ErrorIs(t, err, domain.ErrUnknownEntity)
		assert.Contains(t, err.Error(), `"ghost"`)
	})
}

func TestBuild_InvalidOptions(t *testing.T) {
	_, _, err := matrix.Build(nil, matrix.Options{Canonical: ids("a", "b", "a")})
	assert.ErrorIs(t, err, domain.ErrInvalidCanonical)

	_, _, err = matrix.Build(nil, matrix.Options{Canonical: ids("a", "")})
	assert.ErrorIs(t, err, domain.ErrInvalidCanonical)

	_, _, err = matrix.Build(nil, matrix.Options{Aggregate: "mean"})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, _, err = matrix.Build(nil, matrix.Options{Unknown: "ignore"})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestBuild_EmptyInput(t *testing.T) {
	m, _, err := matrix.Build(nil, matrix.Options{})
	require.NoError(t, err)
	assert.True(t, m.Empty())

	m, _, err = matrix.Build(nil, matrix.Options{Canonical: ids("a", "b")})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0}, {0, 0}}, m.Values)
}
