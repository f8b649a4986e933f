package extractor

import "regexp"

// strategy is one named attempt of a fallback cascade
type strategy[T any] struct {
	name string
	run  func() (T, bool)
}

// firstOf runs the strategies in order and returns the first success along
// with the name of the strategy that produced it
func firstOf[T any](steps ...strategy[T]) (T, string, bool) {
	for _, s := range steps {
		if v, ok := s.run(); ok {
			return v, s.name, true
		}
	}
	var zero T
	return zero, "", false
}

// groups gives named access to the submatches of a pattern
type groups struct {
	re *regexp.Regexp
	m  []string
}

// get returns the named submatch, or "" when the group is absent or empty
func (g groups) get(name string) string {
	i := g.re.SubexpIndex(name)
	if i < 0 || i >= len(g.m) {
		return ""
	}
	return g.m[i]
}

// patternRule pairs a pattern with the function that turns a match into a value
type patternRule[T any] struct {
	name    string
	pattern *regexp.Regexp
	extract func(g groups) (T, bool)
}

// matchFirst applies the rules to text in order; the first rule whose pattern
// matches and whose extractor accepts the match wins
func matchFirst[T any](text string, rules []patternRule[T]) (T, string, bool) {
	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := r.extract(groups{re: r.pattern, m: m}); ok {
			return v, r.name, true
		}
	}
	var zero T
	return zero, "", false
}

// firstGroup is the extractor for rules whose value is the first submatch
func firstGroup(g groups) (string, bool) {
	if len(g.m) < 2 || g.m[1] == "" {
		return "", false
	}
	return g.m[1], true
}
