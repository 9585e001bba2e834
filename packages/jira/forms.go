package jira

import (
	"fmt"

	"github.com/abdul-hamid-achik/jiraload/packages/builtin"
	"github.com/abdul-hamid-achik/jiraload/packages/http"
)

// JSON payloads the browser posts alongside page loads.
const (
	BrowseProjectPayload   = `{"id":"com.atlassian.jira.jira-projects-issue-navigator:sidebar-issue-navigator"}`
	LastVisitedPayload     = BrowseProjectPayload
	UserPreferencesPayload = `{"useQuickForm":false,"fields":["summary","description","priority","versions","components"],"showWelcomeScreen":true}`
)

// LoginForm is the login page submission for one user.
func LoginForm(username, password string) http.Form {
	var form http.Form
	form.Add("os_username", username)
	form.Add("os_password", password)
	form.Add("os_destination", "")
	form.Add("user_role", "")
	form.Add("atl_token", "")
	form.Add("login", "Log in")
	return form
}

// IssueTableForm asks the issue navigator for the newest issues first.
func IssueTableForm() http.Form {
	var form http.Form
	form.Add("startIndex", "0")
	form.Add("jql", "order by created DESC")
	form.Add("layoutKey", "split-view")
	form.Add("filterId", "-4")
	return form
}

// QuickCreateInputs reads the quick-create dialog returned by the server.
// A missing dialog means the server refused to open the form; a missing
// token means the session is not usable for writes.
func QuickCreateInputs(body string) (IssueBodyInputs, error) {
	var in IssueBodyInputs
	if err := RequireMarker(body, CreateIssueForm, ErrIssueNotCreated); err != nil {
		return in, err
	}

	var err error
	if in.AtlToken, err = RequireSingle(body, CreateIssueAtlToken, ErrTokenNotFound); err != nil {
		return in, err
	}
	if in.FormToken, err = RequireSingle(body, CreateIssueFormToken, ErrTokenNotFound); err != nil {
		return in, err
	}
	if in.IssueType, err = RequireSingle(body, CreateIssueTypeID, ErrIssueNotCreated); err != nil {
		return in, err
	}
	if in.ProjectID, err = RequireSingle(body, CreateIssueProjectID, ErrIssueNotCreated); err != nil {
		return in, err
	}
	if in.ResolutionDone, err = RequireSingle(body, CreateIssueResolutionDone, ErrIssueNotCreated); err != nil {
		return in, err
	}

	for _, f := range CreateIssueFieldsToRetain.FindAll(body) {
		in.FieldsToRetain = append(in.FieldsToRetain, FieldRef{ID: f[0], Required: f[1] == "true"})
	}
	for _, f := range CreateIssueCustomFieldsToRetain.FindAll(body) {
		in.CustomFieldsToRetain = append(in.CustomFieldsToRetain, FieldRef{ID: f[0], Required: f[1] == "true"})
	}
	return in, nil
}

// CreatedIssueKey returns the key of the issue the server just created.
func CreatedIssueKey(body string) (string, error) {
	return RequireSingle(body, CreateIssueKey, ErrIssueNotCreated)
}

// EditInputs are the values prefilled in the edit issue form.
type EditInputs struct {
	IssueType string
	AtlToken  string
	Priority  string
	Assignee  string
	Reporter  string
}

// EditIssueInputs reads the edit issue form. Every value is required.
func EditIssueInputs(body string) (EditInputs, error) {
	var in EditInputs
	var err error
	if in.IssueType, err = RequireSingle(body, EditIssueTypeID, ErrIssueNotFound); err != nil {
		return in, err
	}
	if in.AtlToken, err = RequireSingle(body, EditIssueAtlToken, ErrIssueNotFound); err != nil {
		return in, err
	}
	if _, in.Priority, err = RequirePair(body, EditIssuePriority, ErrIssueNotFound); err != nil {
		return in, err
	}
	groups, err := RequireGroups(body, EditIssueAssigneeReporter, ErrIssueNotFound)
	if err != nil {
		return in, err
	}
	in.Assignee = groups[3]
	if in.Reporter, err = RequireSingle(body, EditIssueReporter, ErrIssueNotFound); err != nil {
		return in, err
	}
	return in, nil
}

// EditIssueForm submits a new summary and description for issueID, keeping
// the other prefilled values.
func EditIssueForm(issueID string, in EditInputs) (http.Form, error) {
	if issueID == "" || in.AtlToken == "" {
		return nil, fmt.Errorf("%w: issue id and atl_token are required", ErrInvalidInput)
	}
	var form http.Form
	form.Add("id", issueID)
	form.Add("summary", builtin.RandomText("Locust summary edited", 15))
	form.Add("issueType", in.IssueType)
	form.Add("priority", in.Priority)
	form.Add("dueDate", "")
	form.Add("assignee", in.Assignee)
	form.Add("reporter", in.Reporter)
	form.Add("environment", "")
	form.Add("description", builtin.RandomText("Locust description edited", 50))
	form.Add("timetracking_originalestimate", "")
	form.Add("timetracking_remainingestimate", "")
	form.Add("isCreateIssue", "")
	form.Add("hasWorkStarted", "")
	form.Add("dnd-dropzone", "")
	form.Add("comment", "")
	form.Add("commentLevel", "")
	form.Add("atl_token", in.AtlToken)
	form.Add("Update", "Update")
	return form, nil
}

// CommentInputs are the tokens of the add comment form.
type CommentInputs struct {
	FormToken string
	AtlToken  string
}

// AddCommentInputs reads the add comment form.
func AddCommentInputs(body string) (CommentInputs, error) {
	var in CommentInputs
	var err error
	if in.FormToken, err = RequireSingle(body, AddCommentFormToken, ErrTokenNotFound); err != nil {
		return in, err
	}
	if in.AtlToken, err = RequireSingle(body, AddCommentAtlToken, ErrTokenNotFound); err != nil {
		return in, err
	}
	return in, nil
}

// AddCommentForm posts a random comment on issueID.
func AddCommentForm(issueID string, in CommentInputs) (http.Form, error) {
	if issueID == "" || in.AtlToken == "" || in.FormToken == "" {
		return nil, fmt.Errorf("%w: issue id and both tokens are required", ErrInvalidInput)
	}
	var form http.Form
	form.Add("id", issueID)
	form.Add("formToken", in.FormToken)
	form.Add("dnd-dropzone", "")
	form.Add("comment", builtin.RandomText("Locust comment", 100))
	form.Add("commentLevel", "")
	form.Add("atl_token", in.AtlToken)
	form.Add("Add", "Add")
	return form, nil
}

// SearchResultIDs returns the issue id list of a search page. An empty
// result set is reported with ok false.
func SearchResultIDs(body string) ([]string, bool) {
	ids, ok := SearchJqlIssueIDs.Find(body)
	if !ok || ids == "" {
		return nil, false
	}
	return []string{ids}, true
}
