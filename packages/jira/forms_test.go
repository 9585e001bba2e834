package jira

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginForm(t *testing.T) {
	form := LoginForm("user1", "p@ss word")
	assert.Equal(t, "os_username=user1&os_password=p%40ss+word&os_destination=&user_role=&atl_token=&login=Log+in", form.Encode())
}

func TestIssueTableForm(t *testing.T) {
	assert.Equal(t, "startIndex=0&jql=order+by+created+DESC&layoutKey=split-view&filterId=-4", IssueTableForm().Encode())
}

func TestQuickCreateInputs(t *testing.T) {
	in, err := QuickCreateInputs(quickCreateDialog)
	require.NoError(t, err)

	assert.Equal(t, "10000", in.ProjectID)
	assert.Equal(t, "B3WY-Q2OK-LZ1Q_lin", in.AtlToken)
	assert.Equal(t, "6f1b2c3d", in.FormToken)
	assert.Equal(t, "10001", in.IssueType)
	assert.Equal(t, "10000", in.ResolutionDone)
	assert.Equal(t, []FieldRef{
		{ID: "project", Required: true},
		{ID: "issuetype", Required: true},
		{ID: "summary", Required: true},
		{ID: "resolution", Required: false},
	}, in.FieldsToRetain)
	assert.Equal(t, []FieldRef{{ID: "10010"}, {ID: "10020"}}, in.CustomFieldsToRetain)

	body, err := PrepareIssueBody(in, "user1")
	require.NoError(t, err)
	assert.Contains(t, body, "&fieldsToRetain=resolution&fieldsToRetain=customfield_10010&fieldsToRetain=customfield_10020")
}

func TestQuickCreateInputs_Failures(t *testing.T) {
	_, err := QuickCreateInputs(`{"errorMessages":["no permission"]}`)
	assert.True(t, errors.Is(err, ErrIssueNotCreated))

	_, err = QuickCreateInputs(`{"fields":[{"id":"project","label":"Project"}]}`)
	assert.True(t, errors.Is(err, ErrTokenNotFound))
}

func TestQuickCreateInputs_EmptyCapture(t *testing.T) {
	dialog := strings.Replace(quickCreateDialog, `<option value=\"10000\">`, `<option value=\"\">`, 1)
	require.NotEqual(t, quickCreateDialog, dialog)

	_, err := QuickCreateInputs(dialog)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIssueNotCreated))
	assert.False(t, errors.Is(err, ErrInvalidInput))

	var extractErr *ExtractionError
	require.True(t, errors.As(err, &extractErr))
	assert.Equal(t, "create_issue.resolution_done", extractErr.Pattern)
	assert.Equal(t, "issue_not_created", ErrorKind(err))
}

func TestCreatedIssueKey(t *testing.T) {
	key, err := CreatedIssueKey(`{"issueKey":"PRJ-7"}`)
	require.NoError(t, err)
	assert.Equal(t, "PRJ-7", key)

	_, err = CreatedIssueKey(`{"errors":{"summary":"required"}}`)
	assert.True(t, errors.Is(err, ErrIssueNotCreated))
}

func TestEditIssueInputs(t *testing.T) {
	in, err := EditIssueInputs(editIssuePage)
	require.NoError(t, err)
	assert.Equal(t, EditInputs{
		IssueType: "10002",
		AtlToken:  "B3WY-edit_lin",
		Priority:  "3",
		Assignee:  "user1",
		Reporter:  "user1",
	}, in)

	form, err := EditIssueForm("10101", in)
	require.NoError(t, err)
	assert.Equal(t, []string{"10101"}, form.Values("id"))
	assert.Equal(t, []string{"B3WY-edit_lin"}, form.Values("atl_token"))
	assert.Equal(t, "Update", form[len(form)-1].Value)

	_, err = EditIssueInputs(`<html>Issue does not exist</html>`)
	assert.True(t, errors.Is(err, ErrIssueNotFound))

	_, err = EditIssueForm("", in)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestAddCommentInputs(t *testing.T) {
	in, err := AddCommentInputs(addCommentPage)
	require.NoError(t, err)
	assert.Equal(t, CommentInputs{FormToken: "a1b2c3", AtlToken: "B3WY-comment_lin"}, in)

	form, err := AddCommentForm("10101", in)
	require.NoError(t, err)
	comment, ok := form.Get("comment")
	require.True(t, ok)
	assert.Regexp(t, `^Locust comment [A-Za-z0-9]{100}$`, comment)

	_, err = AddCommentInputs(`<form></form>`)
	assert.True(t, errors.Is(err, ErrTokenNotFound))

	_, err = AddCommentForm("10101", CommentInputs{AtlToken: "x"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
