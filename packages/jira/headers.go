package jira

import "sort"

// HeaderProfile is an immutable set of request headers. Callers get copies,
// never the backing map.
type HeaderProfile struct {
	name    string
	headers map[string]string
}

func newHeaderProfile(name string, headers map[string]string) HeaderProfile {
	return HeaderProfile{name: name, headers: headers}
}

// Name identifies the profile.
func (p HeaderProfile) Name() string {
	return p.name
}

// Get returns one header value.
func (p HeaderProfile) Get(key string) (string, bool) {
	v, ok := p.headers[key]
	return v, ok
}

// Map returns a fresh copy of the headers.
func (p HeaderProfile) Map() map[string]string {
	m := make(map[string]string, len(p.headers))
	for k, v := range p.headers {
		m[k] = v
	}
	return m
}

// With returns a copy of the headers with extra entries added on top.
func (p HeaderProfile) With(extra map[string]string) map[string]string {
	m := p.Map()
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// Keys returns the header names, sorted.
func (p HeaderProfile) Keys() []string {
	keys := make([]string, 0, len(p.headers))
	for k := range p.headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p HeaderProfile) Len() int {
	return len(p.headers)
}

var (
	// TextHeaders is what a browser sends when submitting an HTML form.
	TextHeaders = newHeaderProfile("text", map[string]string{
		"Accept-Language": "en-US,en;q=0.5",
		"Content-Type":    "application/x-www-form-urlencoded",
		"Accept-Encoding": "gzip, deflate",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	})

	// AdminHeaders is a same-origin AJAX call carrying the impersonation header.
	AdminHeaders = newHeaderProfile("admin", map[string]string{
		"Accept-Language":  "en-US,en;q=0.5",
		"X-AUSERNAME":      "admin",
		"X-Requested-With": "XMLHttpRequest",
		"Accept-Encoding":  "gzip, deflate",
		"Accept":           "*/*",
	})

	// NoTokenHeaders is an AJAX call that opts out of the XSRF token check.
	NoTokenHeaders = newHeaderProfile("no-token", map[string]string{
		"Accept-Language":   "en-US,en;q=0.5",
		"X-Requested-With":  "XMLHttpRequest",
		"__amdModuleName":   "jira/issue/utils/xsrf-token-header",
		"Content-Type":      "application/x-www-form-urlencoded; charset=UTF-8",
		"Accept-Encoding":   "gzip, deflate",
		"Accept":            "application/json, text/javascript, */*; q=0.01",
		"X-Atlassian-Token": "no-check",
	})
)
