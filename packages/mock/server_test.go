package mock

import (
	"context"
	"net/http/httptest"
	"net/url"
	"testing"

	jhttp "github.com/abdul-hamid-achik/jiraload/packages/http"
	"github.com/abdul-hamid-achik/jiraload/packages/jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(Seed(SeedOptions{Users: 2, Projects: 2, IssuesPerProject: 3, Boards: 2}))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func loggedInClient(t *testing.T, baseURL, user, password string) (*jhttp.Client, string) {
	t.Helper()
	ctx := context.Background()
	client, err := jhttp.NewSessionClient()
	require.NoError(t, err)

	_, err = client.PostForm(ctx, baseURL+"/login.jsp", jira.LoginForm(user, password), jira.TextHeaders.Map())
	require.NoError(t, err)

	resp, err := client.Get(ctx, baseURL+"/secure/Dashboard.jspa", jira.TextHeaders.Map())
	require.NoError(t, err)
	token, err := jira.RequireSingle(resp.BodyString(), jira.LoginAtlToken, jira.ErrTokenNotFound)
	require.NoError(t, err)
	return client, token
}

func TestServer_Login(t *testing.T) {
	s, ts := newTestServer(t)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		_, token := loggedInClient(t, ts.URL, "user1", "user1")
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password shows no token", func(t *testing.T) {
		client, err := jhttp.NewSessionClient()
		require.NoError(t, err)
		resp, err := client.PostForm(ctx, ts.URL+"/login.jsp", jira.LoginForm("user1", "nope"), nil)
		require.NoError(t, err)
		assert.Contains(t, resp.BodyString(), "incorrect")

		resp, err = client.Get(ctx, ts.URL+"/secure/Dashboard.jspa", nil)
		require.NoError(t, err)
		_, err = jira.RequireSingle(resp.BodyString(), jira.LoginAtlToken, jira.ErrTokenNotFound)
		assert.ErrorIs(t, err, jira.ErrTokenNotFound)
	})

	assert.Equal(t, int64(1), s.Stats().Logins.Load())
	assert.Equal(t, int64(1), s.Stats().Rejected.Load())
}

func TestServer_AnonymousRequestsRejected(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := jhttp.NewClient().Get(context.Background(), ts.URL+"/browse/AAA-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestServer_CreateIssue(t *testing.T) {
	s, ts := newTestServer(t)
	ctx := context.Background()
	client, _ := loggedInClient(t, ts.URL, "admin", "admin")

	resp, err := client.Get(ctx, ts.URL+"/secure/QuickCreateIssue!default.jspa?decorator=none", jira.NoTokenHeaders.Map())
	require.NoError(t, err)

	in, err := jira.QuickCreateInputs(resp.BodyString())
	require.NoError(t, err)
	assert.Equal(t, "10000", in.ProjectID)
	assert.Equal(t, "10001", in.IssueType)
	assert.Equal(t, "10000", in.ResolutionDone)
	assert.Len(t, in.FieldsToRetain, 7)
	assert.Equal(t, []jira.FieldRef{{ID: "10100"}, {ID: "10101"}}, in.CustomFieldsToRetain)

	form, err := jira.IssueForm(in, "admin")
	require.NoError(t, err)
	resp, err = client.PostForm(ctx, ts.URL+"/secure/QuickCreateIssue.jspa?decorator=none", form, jira.NoTokenHeaders.Map())
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	key, err := jira.CreatedIssueKey(resp.BodyString())
	require.NoError(t, err)
	assert.Equal(t, "AAA-4", key)
	assert.Equal(t, int64(1), s.Stats().IssuesCreated.Load())

	resp, err = client.Get(ctx, ts.URL+"/browse/"+key, jira.AdminHeaders.Map())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestServer_CreateIssueWrongToken(t *testing.T) {
	_, ts := newTestServer(t)
	ctx := context.Background()
	client, _ := loggedInClient(t, ts.URL, "admin", "admin")

	in := jira.IssueBodyInputs{ProjectID: "10000", AtlToken: "forged", FormToken: "f", IssueType: "10001", ResolutionDone: "10000"}
	form, err := jira.IssueForm(in, "admin")
	require.NoError(t, err)

	resp, err := client.PostForm(ctx, ts.URL+"/secure/QuickCreateIssue.jspa", form, nil)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
	_, err = jira.CreatedIssueKey(resp.BodyString())
	assert.ErrorIs(t, err, jira.ErrIssueNotCreated)
}

func TestServer_Search(t *testing.T) {
	_, ts := newTestServer(t)
	ctx := context.Background()
	client, _ := loggedInClient(t, ts.URL, "admin", "admin")

	resp, err := client.PostForm(ctx, ts.URL+"/rest/issueNav/1/issueTable", jira.IssueTableForm(), jira.NoTokenHeaders.Map())
	require.NoError(t, err)
	ids, ok := jira.SearchResultIDs(resp.BodyString())
	require.True(t, ok)

	body, err := jira.JQLForm(ids)
	require.NoError(t, err)
	assert.Len(t, body.Values("id"), 6)

	resp, err = client.PostForm(ctx, ts.URL+"/rest/issueNav/1/issueTable/stable", body, jira.NoTokenHeaders.Map())
	require.NoError(t, err)
	id, key, err := jira.RequirePair(resp.BodyString(), jira.SearchJqlIssueIDKey, jira.ErrIssueNotFound)
	require.NoError(t, err)
	assert.Equal(t, "10105", id)
	assert.Equal(t, "AAB-3", key)
}

func TestServer_EditAndComment(t *testing.T) {
	s, ts := newTestServer(t)
	ctx := context.Background()
	client, _ := loggedInClient(t, ts.URL, "user2", "user2")

	resp, err := client.Get(ctx, ts.URL+"/secure/EditIssue!default.jspa?id=10101", jira.TextHeaders.Map())
	require.NoError(t, err)
	edit, err := jira.EditIssueInputs(resp.BodyString())
	require.NoError(t, err)
	assert.Equal(t, "user2", edit.Assignee)
	assert.Equal(t, "user2", edit.Reporter)
	assert.Equal(t, "3", edit.Priority)

	form, err := jira.EditIssueForm("10101", edit)
	require.NoError(t, err)
	resp, err = client.PostForm(ctx, ts.URL+"/secure/EditIssue.jspa?atl_token="+url.QueryEscape(edit.AtlToken), form, jira.TextHeaders.Map())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = client.Get(ctx, ts.URL+"/secure/AddComment!default.jspa?id=10101", jira.TextHeaders.Map())
	require.NoError(t, err)
	comment, err := jira.AddCommentInputs(resp.BodyString())
	require.NoError(t, err)

	form, err = jira.AddCommentForm("10101", comment)
	require.NoError(t, err)
	resp, err = client.PostForm(ctx, ts.URL+"/secure/AddComment.jspa?atl_token="+url.QueryEscape(comment.AtlToken), form, jira.TextHeaders.Map())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	assert.Equal(t, int64(1), s.Stats().IssuesEdited.Load())
	assert.Equal(t, int64(1), s.Stats().Comments.Load())

	resp, err = client.Get(ctx, ts.URL+"/secure/EditIssue!default.jspa?id=999", jira.TextHeaders.Map())
	require.NoError(t, err)
	_, err = jira.EditIssueInputs(resp.BodyString())
	assert.ErrorIs(t, err, jira.ErrIssueNotFound)
}

func TestServer_BoardsAndProjects(t *testing.T) {
	_, ts := newTestServer(t)
	ctx := context.Background()
	client, _ := loggedInClient(t, ts.URL, "admin", "admin")

	resp, err := client.Get(ctx, ts.URL+"/secure/RapidBoard.jspa?rapidView=2", jira.AdminHeaders.Map())
	require.NoError(t, err)
	key, ok := jira.BoardProjectKey.Find(resp.BodyString())
	require.True(t, ok)
	assert.Equal(t, "AAB", key)
	id, ok := jira.BoardProjectID.Find(resp.BodyString())
	require.True(t, ok)
	assert.Equal(t, "10001", id)
	board, kind, ok := jira.BoardProjectPlan.Find(resp.BodyString())
	require.True(t, ok)
	assert.Equal(t, "work", board)
	assert.Equal(t, "kanban", kind)

	resp, err = client.Get(ctx, ts.URL+"/projects/AAA/summary", jira.AdminHeaders.Map())
	require.NoError(t, err)
	id, ok = jira.ProjectSummaryProjectID.Find(resp.BodyString())
	require.True(t, ok)
	assert.Equal(t, "10000", id)

	resp, err = client.Get(ctx, ts.URL+"/secure/BrowseProjects.jspa", jira.AdminHeaders.Map())
	require.NoError(t, err)
	assert.True(t, jira.BrowseProjectsData.In(resp.BodyString()))
	assert.Contains(t, resp.BodyString(), `\"key\":\"AAB\"`)
}

func TestSeed(t *testing.T) {
	ds := Seed(DefaultSeedOptions())
	assert.Len(t, ds.Users(), 21)
	assert.Len(t, ds.Projects(), 3)
	assert.Len(t, ds.Issues(), 75)
	assert.Len(t, ds.Boards(), 3)
	assert.NoError(t, ds.Validate())

	assert.Equal(t, "AAA", projectKey(0))
	assert.Equal(t, "AAB", projectKey(1))
	assert.Equal(t, "ABA", projectKey(26))
}
