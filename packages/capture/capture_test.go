package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_ArityMismatch(t *testing.T) {
	_, err := compile("token", 1, `token=(.+?)&(.+?)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares 1 groups, expression has 2")

	_, err = compile("bad", 1, `(`)
	assert.Error(t, err)

	assert.Panics(t, func() { MustSingle("two", `(a)(b)`) })
	assert.Panics(t, func() { MustPair("one", `(a)`) })
	assert.Panics(t, func() { MustMarker("one", `(a)`) })
	assert.Panics(t, func() { MustGroups("small", 2, `(a)(b)`) })
}

func TestSingle_Find(t *testing.T) {
	p := MustSingle("atl_token", `name="atlassian-token" content="(.+?)">`)

	t.Run("match", func(t *testing.T) {
		body := "<head>\n  <meta name=\"atlassian-token\" content=\"B3WY-Q2OP|abc123|lin\">\n</head>"
		token, ok := p.Find(body)
		require.True(t, ok)
		assert.Equal(t, "B3WY-Q2OP|abc123|lin", token)
	})

	t.Run("surrounding markup does not matter", func(t *testing.T) {
		body := `<div><span>x</span><meta   class="a" name="atlassian-token" content="tok">   </div>`
		token, ok := p.Find(body)
		require.True(t, ok)
		assert.Equal(t, "tok", token)
	})

	t.Run("first match wins", func(t *testing.T) {
		body := `name="atlassian-token" content="first"> name="atlassian-token" content="second">`
		token, ok := p.Find(body)
		require.True(t, ok)
		assert.Equal(t, "first", token)
		assert.Equal(t, []string{"first", "second"}, p.FindAll(body))
	})

	t.Run("absent", func(t *testing.T) {
		token, ok := p.Find(`<html></html>`)
		assert.False(t, ok)
		assert.Empty(t, token)
	})
}

func TestPair_FindAll(t *testing.T) {
	p := MustPair("fields", `"id":"([a-z]*)","label":"[A-Za-z0-9\- ]*","required":(false|true),`)
	body := `[{"id":"summary","label":"Summary","required":true,},` +
		`{"id":"priority","label":"Priority","required":false,},` +
		`{"id":"customfield_10100","label":"Story Points","required":false,}]`

	all := p.FindAll(body)
	assert.Equal(t, [][2]string{{"summary", "true"}, {"priority", "false"}}, all)

	id, req, ok := p.Find(body)
	require.True(t, ok)
	assert.Equal(t, "summary", id)
	assert.Equal(t, "true", req)

	_, _, ok = p.Find(`{}`)
	assert.False(t, ok)
	assert.Empty(t, p.FindAll(`{}`))
}

func TestGroups_Find(t *testing.T) {
	p := MustGroups("assignee", 3, `a=(\d+) b=(\d+) c=(\d+)`)
	groups, ok := p.Find("x a=1 b=2 c=3 y")
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2", "3"}, groups)
	assert.Equal(t, 3, p.Arity())
}

func TestMarker_In(t *testing.T) {
	m := MustLiteral("browse_projects", `WRM._unparsedData["com.atlassian.jira.project.browse:projects"]="`)
	assert.True(t, m.In(`<script>WRM._unparsedData["com.atlassian.jira.project.browse:projects"]="[]";</script>`))
	assert.False(t, m.In(`WRM._unparsedData["other"]="`))

	re := MustMarker("edit_allow", `secure\/EditLabels\!default`)
	assert.True(t, re.In(`<a href="/secure/EditLabels!default.jspa?id=1">`))
}

func TestExtract(t *testing.T) {
	single := MustSingle("key", `"issueKey":"(.+?)"`)
	pair := MustPair("row", `"table"\:\[\{"id"\:(.+?)\,"key"\:"(.+?)"`)
	marker := MustLiteral("form", `"id":"project","label":"Project"`)

	body := `{"issueKey":"PRJ-12","table":[{"id":10012,"key":"PRJ-12"}],"fields":[{"id":"project","label":"Project"}]}`

	groups, ok := Extract(body, single)
	require.True(t, ok)
	assert.Equal(t, []string{"PRJ-12"}, groups)

	groups, ok = Extract(body, pair)
	require.True(t, ok)
	assert.Equal(t, []string{"10012", "PRJ-12"}, groups)

	groups, ok = Extract(body, marker)
	require.True(t, ok)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)

	groups, ok = Extract(`{}`, single)
	assert.False(t, ok)
	assert.Nil(t, groups)
}

func TestFindAll(t *testing.T) {
	pair := MustPair("id_key", `"id":(\d+),"key":"([A-Z]+-\d+)"`)
	body := `[{"id":1,"key":"A-1"},{"id":2,"key":"A-2"}]`

	assert.Equal(t, [][]string{{"1", "A-1"}, {"2", "A-2"}}, FindAll(body, pair))
	assert.Equal(t, [][]string{{}}, FindAll(body, MustLiteral("first", `{"id":1`)))
	assert.Empty(t, FindAll(`[]`, pair))
}

func TestExtractAll(t *testing.T) {
	atl := MustSingle("atl_token", `"atl_token":"(.+?)"`)
	form := MustSingle("form_token", `"formToken":"(.+?)"`)
	key := MustSingle("issue_key", `"issueKey":"(.+?)"`)

	results := ExtractAll(`{"atl_token":"a1","formToken":"f1"}`, atl, form, key)

	assert.Equal(t, map[string][]string{
		"atl_token":  {"a1"},
		"form_token": {"f1"},
	}, results)
}
