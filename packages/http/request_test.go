package http

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForm_Encode(t *testing.T) {
	t.Run("empty form", func(t *testing.T) {
		var f Form
		assert.Equal(t, "", f.Encode())
	})

	t.Run("keeps order and repeated keys", func(t *testing.T) {
		var f Form
		f.Add("layoutKey", "split-view")
		f.Add("id", "101")
		f.Add("id", "102")
		assert.Equal(t, "layoutKey=split-view&id=101&id=102", f.Encode())
	})

	t.Run("escapes keys and values", func(t *testing.T) {
		var f Form
		f.Add("summary", "Locust summary ab&c=d")
		f.Add("atl_token", "B3WY|abc|lin")
		assert.Equal(t, "summary=Locust+summary+ab%26c%3Dd&atl_token=B3WY%7Cabc%7Clin", f.Encode())
	})

	t.Run("empty values keep their key", func(t *testing.T) {
		var f Form
		f.Add("duedate", "")
		f.Add("pid", "1")
		assert.Equal(t, "duedate=&pid=1", f.Encode())
	})
}

func TestForm_Accessors(t *testing.T) {
	var f Form
	f.Add("fieldsToRetain", "summary")
	f.Add("pid", "10000")
	f.Add("fieldsToRetain", "customfield_10100")

	assert.Equal(t, []string{"fieldsToRetain", "pid", "fieldsToRetain"}, f.Keys())
	assert.Equal(t, []string{"summary", "customfield_10100"}, f.Values("fieldsToRetain"))

	v, ok := f.Get("pid")
	assert.True(t, ok)
	assert.Equal(t, "10000", v)

	_, ok = f.Get("missing")
	assert.False(t, ok)
}

func TestParseForm_RoundTrip(t *testing.T) {
	var f Form
	f.Add("pid", "10000")
	f.Add("summary", "Locust summary x y")
	f.Add("duedate", "")
	f.Add("fieldsToRetain", "a")
	f.Add("fieldsToRetain", "b")

	parsed, err := ParseForm(f.Encode())
	require.NoError(t, err)
	assert.Equal(t, f, parsed)

	// Agrees with the standard decoder on multi-valued keys.
	values, err := url.ParseQuery(f.Encode())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, values["fieldsToRetain"])
}

func TestParseForm_Errors(t *testing.T) {
	_, err := ParseForm("a=%zz")
	assert.Error(t, err)

	parsed, err := ParseForm("")
	require.NoError(t, err)
	assert.Empty(t, parsed)
}
