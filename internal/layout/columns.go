package layout

import (
	"math"
	"sort"
)

const (
	// ColumnDetectTolerance is how far (in points) an x may sit from a
	// cluster's mean and still join it
	ColumnDetectTolerance = 10

	// ColumnAssignTolerance is the wider radius used to map a token onto a
	// detected column
	ColumnAssignTolerance = 30.0

	// ColumnSignificance is the share of the document's lines a cluster
	// must reach to count as a column
	ColumnSignificance = 0.10

	// MinColumnFrequency is the floor of the significance threshold
	MinColumnFrequency = 2

	// ProfileMergeTolerance is the radius within which columns of two
	// profiles are considered the same column
	ProfileMergeTolerance = 15.0
)

type cluster struct {
	sum   int
	count int
}

func (c cluster) mean() float64 {
	return float64(c.sum) / float64(c.count)
}

// InferColumns detects the x positions shared by tokens across lines.
// Every token x is rounded and clustered greedily against the running mean of
// existing clusters; clusters seen fewer than max(2, 10% of lines) times are
// discarded as coincidental.
func InferColumns(lines []Line) ColumnProfile {
	var xs []int
	for _, l := range lines {
		for _, t := range l.Tokens {
			xs = append(xs, int(math.Round(t.X)))
		}
	}
	sort.Ints(xs)

	var clusters []cluster
	for _, x := range xs {
		best := -1
		bestDistance := math.MaxFloat64
		for i, c := range clusters {
			d := math.Abs(float64(x) - c.mean())
			if d <= ColumnDetectTolerance && d < bestDistance {
				best, bestDistance = i, d
			}
		}
		if best < 0 {
			clusters = append(clusters, cluster{sum: x, count: 1})
			continue
		}
		clusters[best].sum += x
		clusters[best].count++
	}

	threshold := max(MinColumnFrequency, int(math.Floor(float64(len(lines))*ColumnSignificance)))

	profile := ColumnProfile{Tolerance: ColumnAssignTolerance}
	for _, c := range clusters {
		if c.count >= threshold {
			profile.Columns = append(profile.Columns, Column{X: c.mean(), Frequency: c.count})
		}
	}
	sort.Slice(profile.Columns, func(i, j int) bool {
		return profile.Columns[i].X < profile.Columns[j].X
	})

	return profile
}

// ColumnIndexOf returns the index of the column nearest to the token, or
// Unaligned when none lies within the profile tolerance
func ColumnIndexOf(t PositionedToken, profile ColumnProfile) int {
	tolerance := profile.Tolerance
	if tolerance <= 0 {
		tolerance = ColumnAssignTolerance
	}

	index := Unaligned
	minDistance := tolerance
	for i, c := range profile.Columns {
		if d := math.Abs(t.X - c.X); d < minDistance {
			index, minDistance = i, d
		}
	}
	return index
}

// Annotate assigns every token of every line to its column. The input lines
// are left untouched.
func Annotate(lines []Line, profile ColumnProfile) []AnnotatedLine {
	out := make([]AnnotatedLine, len(lines))
	for i, l := range lines {
		tokens := make([]AnnotatedToken, len(l.Tokens))
		for j, t := range l.Tokens {
			tokens[j] = AnnotatedToken{Token: t, Column: ColumnIndexOf(t, profile)}
		}
		out[i] = AnnotatedLine{Page: l.Page, Y: l.Y, Tokens: tokens}
	}
	return out
}

// MergeProfiles folds b into a. Columns closer than ProfileMergeTolerance are
// merged into one whose position is the frequency weighted mean.
func MergeProfiles(a, b ColumnProfile) ColumnProfile {
	merged := ColumnProfile{
		Columns:   append([]Column(nil), a.Columns...),
		Tolerance: math.Max(a.Tolerance, b.Tolerance),
	}

	for _, col := range b.Columns {
		matched := false
		for i, existing := range merged.Columns {
			if math.Abs(existing.X-col.X) <= ProfileMergeTolerance {
				total := existing.Frequency + col.Frequency
				x := (existing.X + col.X) / 2
				if total > 0 {
					x = (existing.X*float64(existing.Frequency) + col.X*float64(col.Frequency)) / float64(total)
				}
				merged.Columns[i] = Column{X: x, Frequency: total}
				matched = true
				break
			}
		}
		if !matched {
			merged.Columns = append(merged.Columns, col)
		}
	}

	sort.Slice(merged.Columns, func(i, j int) bool {
		return merged.Columns[i].X < merged.Columns[j].X
	})
	return merged
}
