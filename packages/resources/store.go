package resources

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed resources.json
var defaultResources []byte

// storeSchema requires an object whose values are objects, arrays or strings.
const storeSchema = `{
  "type": "object",
  "additionalProperties": {"type": ["object", "array", "string"]}
}`

// LoadError reports a missing or malformed template store.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading resources from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Store maps action names to template payloads. It is immutable after
// loading and safe for concurrent reads.
type Store struct {
	source    string
	templates map[string]gjson.Result
}

// Load reads and validates the store at path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return LoadBytes(data, path)
}

// LoadBytes validates data and builds a Store from it. source only labels
// errors.
func LoadBytes(data []byte, source string) (*Store, error) {
	if !gjson.ValidBytes(data) {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("invalid JSON")}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(storeSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("schema validation error: %w", err)}
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return nil, &LoadError{Source: source, Err: fmt.Errorf("schema validation failed: %s", strings.Join(errs, "; "))}
	}

	s := &Store{
		source:    source,
		templates: make(map[string]gjson.Result),
	}
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		s.templates[key.String()] = value
		return true
	})
	return s, nil
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// Default returns the store built from the embedded resources.json. It is
// parsed on first use and shared afterwards.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultErr = LoadBytes(defaultResources, "embedded resources.json")
	})
	return defaultStore, defaultErr
}

// Source describes where the store was loaded from.
func (s *Store) Source() string {
	return s.source
}

// Lookup returns the template payload for action. ok is false when the
// store has no such key.
func (s *Store) Lookup(action string) (gjson.Result, bool) {
	v, ok := s.templates[action]
	return v, ok
}

// Actions returns the action names in the store, sorted.
func (s *Store) Actions() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of templates.
func (s *Store) Len() int {
	return len(s.templates)
}
