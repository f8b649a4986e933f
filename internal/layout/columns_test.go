package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linesAt(xs ...float64) []Line {
	lines := make([]Line, len(xs))
	for i, x := range xs {
		lines[i] = Line{Y: float64(i * 12), Tokens: []PositionedToken{tok("v", x, 0)}}
	}
	return lines
}

func TestInferColumnsClustersAlignedTokens(t *testing.T) {
	var lines []Line
	for i := 0; i < 6; i++ {
		lines = append(lines, Line{Tokens: []PositionedToken{
			tok("1", 10+float64(i%2), 0),
			tok("desc", 90, 0),
			tok("10,000", 300-float64(i%3), 0),
		}})
	}
	lines = append(lines, Line{Tokens: []PositionedToken{tok("stray", 500, 0)}})

	profile := InferColumns(lines)
	require.Len(t, profile.Columns, 3)
	assert.InDelta(t, 10.5, profile.Columns[0].X, 0.01)
	assert.Equal(t, 6, profile.Columns[0].Frequency)
	assert.Equal(t, 90.0, profile.Columns[1].X)
	assert.InDelta(t, 299, profile.Columns[2].X, 0.01)
	assert.Equal(t, ColumnAssignTolerance, profile.Tolerance)
}

func TestInferColumnsToleranceBoundary(t *testing.T) {
	inside := InferColumns(linesAt(100, 100, 100+ColumnDetectTolerance-1))
	require.Len(t, inside.Columns, 1)
	assert.Equal(t, 3, inside.Columns[0].Frequency)

	outside := InferColumns(linesAt(100, 100, 100+ColumnDetectTolerance+1))
	require.Len(t, outside.Columns, 1)
	assert.Equal(t, 2, outside.Columns[0].Frequency)
	assert.Equal(t, 100.0, outside.Columns[0].X)
}

func TestInferColumnsSignificanceThreshold(t *testing.T) {
	// 30 lines: threshold is max(2, 3) = 3
	xs := make([]float64, 0, 30)
	for i := 0; i < 28; i++ {
		xs = append(xs, 50)
	}
	xs = append(xs, 400, 400)

	profile := InferColumns(linesAt(xs...))
	require.Len(t, profile.Columns, 1)
	assert.Equal(t, 50.0, profile.Columns[0].X)
}

func TestInferColumnsSingleLineHasNoColumns(t *testing.T) {
	profile := InferColumns([]Line{{Tokens: []PositionedToken{tok("1", 10, 0), tok("x", 40, 0)}}})
	assert.Empty(t, profile.Columns)
}

func TestColumnIndexOf(t *testing.T) {
	profile := ColumnProfile{
		Columns:   []Column{{X: 10, Frequency: 4}, {X: 100, Frequency: 4}},
		Tolerance: ColumnAssignTolerance,
	}

	assert.Equal(t, 0, ColumnIndexOf(tok("a", 12, 0), profile))
	assert.Equal(t, 1, ColumnIndexOf(tok("a", 129, 0), profile))
	assert.Equal(t, Unaligned, ColumnIndexOf(tok("a", 130, 0), profile))
	assert.Equal(t, Unaligned, ColumnIndexOf(tok("a", 55, 0), profile))
	assert.Equal(t, Unaligned, ColumnIndexOf(tok("a", 10, 0), ColumnProfile{}))
}

func TestAnnotateLeavesLinesUntouched(t *testing.T) {
	lines := []Line{{Page: 2, Y: 5, Tokens: []PositionedToken{tok("a", 10, 0), tok("b", 300, 0)}}}
	profile := ColumnProfile{Columns: []Column{{X: 11, Frequency: 2}}, Tolerance: ColumnAssignTolerance}

	annotated := Annotate(lines, profile)
	require.Len(t, annotated, 1)
	assert.Equal(t, 2, annotated[0].Page)
	assert.Equal(t, 0, annotated[0].Tokens[0].Column)
	assert.Equal(t, Unaligned, annotated[0].Tokens[1].Column)
	assert.Equal(t, "a b", annotated[0].Text())
	assert.Equal(t, "a", lines[0].Tokens[0].Text)
}

func TestMergeProfiles(t *testing.T) {
	a := ColumnProfile{Columns: []Column{{X: 10, Frequency: 3}, {X: 200, Frequency: 2}}, Tolerance: 30}
	b := ColumnProfile{Columns: []Column{{X: 20, Frequency: 1}, {X: 400, Frequency: 5}}, Tolerance: 30}

	merged := MergeProfiles(a, b)
	require.Len(t, merged.Columns, 3)
	assert.InDelta(t, 12.5, merged.Columns[0].X, 0.001)
	assert.Equal(t, 4, merged.Columns[0].Frequency)
	assert.Equal(t, 200.0, merged.Columns[1].X)
	assert.Equal(t, 400.0, merged.Columns[2].X)
	assert.Len(t, a.Columns, 2)
}
