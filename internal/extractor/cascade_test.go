package extractor

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstOf(t *testing.T) {
	var calls []string
	step := func(name, v string, ok bool) strategy[string] {
		return strategy[string]{name: name, run: func() (string, bool) {
			calls = append(calls, name)
			return v, ok
		}}
	}

	v, name, ok := firstOf(step("a", "", false), step("b", "found", true), step("c", "late", true))
	assert.True(t, ok)
	assert.Equal(t, "found", v)
	assert.Equal(t, "b", name)
	assert.Equal(t, []string{"a", "b"}, calls)

	calls = nil
	v, name, ok = firstOf(step("a", "", false))
	assert.False(t, ok)
	assert.Empty(t, v)
	assert.Empty(t, name)
}

func TestMatchFirst(t *testing.T) {
	rules := []patternRule[string]{
		{
			name:    "short",
			pattern: regexp.MustCompile(`n(?P<num>\d{1,3})\b`),
			extract: func(g groups) (string, bool) {
				return g.get("num"), g.get("num") != "0"
			},
		},
		{
			name:    "any",
			pattern: regexp.MustCompile(`(\d+)`),
			extract: firstGroup,
		},
	}

	v, name, ok := matchFirst("pedido n42", rules)
	assert.True(t, ok)
	assert.Equal(t, "42", v)
	assert.Equal(t, "short", name)

	// rejected by the first extractor, so the next rule runs
	v, name, ok = matchFirst("n0 ref 123456", rules)
	assert.True(t, ok)
	assert.Equal(t, "0", v)
	assert.Equal(t, "any", name)

	_, _, ok = matchFirst("sem numeros", rules)
	assert.False(t, ok)
}

func TestGroupsGetUnknownName(t *testing.T) {
	re := regexp.MustCompile(`(?P<a>x)`)
	g := groups{re: re, m: re.FindStringSubmatch("x")}
	assert.Equal(t, "x", g.get("a"))
	assert.Empty(t, g.get("missing"))
}
