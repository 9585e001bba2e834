package jira

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/jiraload/packages/builtin"
	"github.com/abdul-hamid-achik/jiraload/packages/http"
)

// FieldRef is one entry of the create-issue form's field list.
type FieldRef struct {
	ID       string
	Required bool
}

// IssueBodyInputs carries the tokens extracted from the quick-create form.
// Every scalar must be set before PrepareIssueBody is called.
type IssueBodyInputs struct {
	ProjectID            string
	AtlToken             string
	FormToken            string
	IssueType            string
	ResolutionDone       string
	FieldsToRetain       []FieldRef
	CustomFieldsToRetain []FieldRef
}

func (in IssueBodyInputs) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"project_id", in.ProjectID},
		{"atl_token", in.AtlToken},
		{"form_token", in.FormToken},
		{"issue_type", in.IssueType},
		{"resolution_done", in.ResolutionDone},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidInput, r.name)
		}
	}
	return nil
}

// IssueForm builds the quick-create form for user. The key order is fixed;
// summary, description and environment get fresh random text on every call.
func IssueForm(in IssueBodyInputs, user string) (http.Form, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if user == "" {
		return nil, fmt.Errorf("%w: user is empty", ErrInvalidInput)
	}

	description := builtin.RandomText("Locust description", 20)
	summary := builtin.RandomText("Locust summary", 10)
	environment := builtin.RandomText("Locust environment", 10)

	form := make(http.Form, 0, 14+len(in.FieldsToRetain)+len(in.CustomFieldsToRetain))
	form.Add("pid", in.ProjectID)
	form.Add("issuetype", in.IssueType)
	form.Add("atl_token", in.AtlToken)
	form.Add("formToken", in.FormToken)
	form.Add("summary", summary)
	form.Add("duedate", "")
	form.Add("reporter", user)
	form.Add("environment", environment)
	form.Add("description", description)
	form.Add("timetracking_originalestimate", "")
	form.Add("timetracking_remainingestimate", "")
	form.Add("is_create_issue", "true")
	form.Add("hasWorkStarted", "")
	form.Add("resolution", in.ResolutionDone)

	for _, f := range in.FieldsToRetain {
		form.Add("fieldsToRetain", f.ID)
	}
	for _, f := range in.CustomFieldsToRetain {
		form.Add("fieldsToRetain", "customfield_"+f.ID)
	}
	return form, nil
}

// PrepareIssueBody renders IssueForm as an url-encoded body.
func PrepareIssueBody(in IssueBodyInputs, user string) (string, error) {
	form, err := IssueForm(in, user)
	if err != nil {
		return "", err
	}
	return form.Encode(), nil
}

// JQLForm builds the issue-table form for the ids found by a search.
// issueIDs must hold exactly one comma separated string.
func JQLForm(issueIDs []string) (http.Form, error) {
	if len(issueIDs) != 1 {
		return nil, fmt.Errorf("%w: expected one issue id list, got %d", ErrInvalidInput, len(issueIDs))
	}

	var form http.Form
	form.Add("layoutKey", "split-view")
	for _, id := range strings.Split(issueIDs[0], ",") {
		form.Add("id", strings.TrimSpace(id))
	}
	return form, nil
}

// PrepareJQLBody renders JQLForm as an url-encoded body.
func PrepareJQLBody(issueIDs []string) (string, error) {
	form, err := JQLForm(issueIDs)
	if err != nil {
		return "", err
	}
	return form.Encode(), nil
}
