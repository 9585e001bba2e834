package http

import (
	"net/url"
	"strings"
	"time"
)

const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

type Request struct {
	Method      string
	URL         string
	Headers     map[string]string
	Body        string
	Timeout     time.Duration
	QueryParams map[string]string
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:      method,
		URL:         requestURL,
		Headers:     make(map[string]string),
		QueryParams: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// SetHeaders copies every entry of headers onto the request.
func (r *Request) SetHeaders(headers map[string]string) *Request {
	for k, v := range headers {
		r.Headers[k] = v
	}
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

// SetForm sets an url-encoded body and a form Content-Type unless one is
// already present.
func (r *Request) SetForm(form Form) *Request {
	r.Body = form.Encode()
	if r.Headers["Content-Type"] == "" {
		r.Headers["Content-Type"] = ContentTypeForm
	}
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

func (r *Request) SetQueryParam(key, value string) *Request {
	r.QueryParams[key] = value
	return r
}

func (r *Request) BuildURL() string {
	if len(r.QueryParams) == 0 {
		return r.URL
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}

	q := u.Query()
	for k, v := range r.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Field is one key/value pair of a form body.
type Field struct {
	Key   string
	Value string
}

// Form is an ordered form body. Unlike url.Values it keeps the insertion
// order of keys, and repeated keys stay where they were added.
type Form []Field

func (f *Form) Add(key, value string) {
	*f = append(*f, Field{Key: key, Value: value})
}

// Encode renders the form as application/x-www-form-urlencoded text.
func (f Form) Encode() string {
	if len(f) == 0 {
		return ""
	}
	var b strings.Builder
	for i, field := range f {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(field.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(field.Value))
	}
	return b.String()
}

// Keys returns the key of every field, repeated keys included.
func (f Form) Keys() []string {
	keys := make([]string, len(f))
	for i, field := range f {
		keys[i] = field.Key
	}
	return keys
}

// Values returns every value stored under key, in order.
func (f Form) Values(key string) []string {
	var values []string
	for _, field := range f {
		if field.Key == key {
			values = append(values, field.Value)
		}
	}
	return values
}

// Get returns the first value stored under key.
func (f Form) Get(key string) (string, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return "", false
}

// ParseForm decodes an url-encoded body into an ordered Form.
func ParseForm(body string) (Form, error) {
	var form Form
	if body == "" {
		return form, nil
	}
	for _, pair := range strings.Split(body, "&") {
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, err
		}
		form.Add(key, value)
	}
	return form, nil
}
