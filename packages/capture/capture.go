package capture

import (
	"fmt"
	"regexp"
)

// Matcher is the common surface of every typed pattern.
type Matcher interface {
	Name() string
	Arity() int
	Regexp() *regexp.Regexp
}

type pattern struct {
	name  string
	arity int
	re    *regexp.Regexp
}

func compile(name string, arity int, expr string) (pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return pattern{}, fmt.Errorf("pattern %s: %w", name, err)
	}
	if re.NumSubexp() != arity {
		return pattern{}, fmt.Errorf("pattern %s: declares %d groups, expression has %d", name, arity, re.NumSubexp())
	}
	return pattern{name: name, arity: arity, re: re}, nil
}

func mustCompile(name string, arity int, expr string) pattern {
	p, err := compile(name, arity, expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (p pattern) Name() string           { return p.name }
func (p pattern) Arity() int             { return p.arity }
func (p pattern) Regexp() *regexp.Regexp { return p.re }
func (p pattern) String() string         { return p.re.String() }

// Marker is a pattern with no capture groups.
type Marker struct{ pattern }

func MustMarker(name, expr string) *Marker {
	return &Marker{mustCompile(name, 0, expr)}
}

// MustLiteral builds a Marker matching s verbatim.
func MustLiteral(name, s string) *Marker {
	return MustMarker(name, regexp.QuoteMeta(s))
}

// In reports whether the marker occurs anywhere in body.
func (m *Marker) In(body string) bool {
	return m.re.MatchString(body)
}

// Single captures exactly one group.
type Single struct{ pattern }

func MustSingle(name, expr string) *Single {
	return &Single{mustCompile(name, 1, expr)}
}

// Find returns the group of the first match.
func (s *Single) Find(body string) (string, bool) {
	m := s.re.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FindAll returns the group of every non-overlapping match.
func (s *Single) FindAll(body string) []string {
	matches := s.re.FindAllStringSubmatch(body, -1)
	result := make([]string, 0, len(matches))
	for _, m := range matches {
		result = append(result, m[1])
	}
	return result
}

// Pair captures exactly two groups.
type Pair struct{ pattern }

func MustPair(name, expr string) *Pair {
	return &Pair{mustCompile(name, 2, expr)}
}

// Find returns both groups of the first match.
func (p *Pair) Find(body string) (string, string, bool) {
	m := p.re.FindStringSubmatch(body)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// FindAll returns both groups of every non-overlapping match, in document order.
func (p *Pair) FindAll(body string) [][2]string {
	matches := p.re.FindAllStringSubmatch(body, -1)
	result := make([][2]string, 0, len(matches))
	for _, m := range matches {
		result = append(result, [2]string{m[1], m[2]})
	}
	return result
}

// Groups captures three or more groups.
type Groups struct{ pattern }

func MustGroups(name string, arity int, expr string) *Groups {
	if arity < 3 {
		panic(fmt.Sprintf("pattern %s: Groups needs at least 3 groups, use Single or Pair", name))
	}
	return &Groups{mustCompile(name, arity, expr)}
}

// Find returns the groups of the first match in declaration order.
func (g *Groups) Find(body string) ([]string, bool) {
	return Extract(body, g)
}

// Extract applies m to body and returns the first match's groups in
// declaration order. A Marker that matches yields an empty, non-nil slice.
func Extract(body string, m Matcher) ([]string, bool) {
	match := m.Regexp().FindStringSubmatch(body)
	if match == nil {
		return nil, false
	}
	groups := make([]string, m.Arity())
	copy(groups, match[1:])
	return groups, true
}

// FindAll applies m to body and returns the groups of every
// non-overlapping match, in document order.
func FindAll(body string, m Matcher) [][]string {
	matches := m.Regexp().FindAllStringSubmatch(body, -1)
	result := make([][]string, 0, len(matches))
	for _, match := range matches {
		groups := make([]string, m.Arity())
		copy(groups, match[1:])
		result = append(result, groups)
	}
	return result
}

// ExtractAll applies every matcher to body and returns the groups found,
// keyed by matcher name. Matchers that find nothing are left out.
func ExtractAll(body string, matchers ...Matcher) map[string][]string {
	results := make(map[string][]string)
	for _, m := range matchers {
		if groups, ok := Extract(body, m); ok {
			results[m.Name()] = groups
		}
	}
	return results
}
