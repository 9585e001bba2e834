package env

import (
	"os"
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Expander replaces ${VAR} references with values from a lookup function,
// the process environment by default.
type Expander struct {
	lookup   func(string) (string, bool)
	warnFunc WarnFunc
}

func NewExpander() *Expander {
	return &Expander{lookup: os.LookupEnv}
}

// WithLookup replaces the variable source.
func (e *Expander) WithLookup(lookup func(string) (string, bool)) *Expander {
	e.lookup = lookup
	return e
}

// WithVariables resolves from vars first and the process environment second.
func (e *Expander) WithVariables(vars map[string]string) *Expander {
	return e.WithLookup(func(name string) (string, bool) {
		if v, ok := vars[name]; ok {
			return v, true
		}
		return os.LookupEnv(name)
	})
}

// SetWarnFunc sets a function to be called for unresolved references.
func (e *Expander) SetWarnFunc(fn WarnFunc) {
	e.warnFunc = fn
}

func (e *Expander) warn(format string, args ...any) {
	if e.warnFunc != nil {
		e.warnFunc(format, args...)
	}
}

// Expand replaces every ${VAR} and ${VAR:-default} in input. A reference
// without a value or default is left untouched.
func (e *Expander) Expand(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-1])
		name, fallback, hasDefault := strings.Cut(expr, ":-")

		if val, ok := e.lookup(name); ok && val != "" {
			return val
		}
		if hasDefault {
			return fallback
		}

		e.warn("unresolved environment variable: ${%s}", name)
		return match
	})
}

// Unresolved lists the variable names in input that Expand would leave as is.
func (e *Expander) Unresolved(input string) []string {
	var names []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		name, _, hasDefault := strings.Cut(expr, ":-")
		if hasDefault {
			continue
		}
		if val, ok := e.lookup(name); ok && val != "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
