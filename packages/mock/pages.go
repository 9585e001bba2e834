package mock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/jiraload/packages/builtin"
	"github.com/abdul-hamid-achik/jiraload/packages/dataset"
)

func sortStrings(s []string) {
	sort.Strings(s)
}

func sortIssuesByIDDesc(issues []dataset.Issue) {
	sort.Slice(issues, func(i, j int) bool {
		a, _ := strconv.ParseInt(issues[i].ID, 10, 64)
		b, _ := strconv.ParseInt(issues[j].ID, 10, 64)
		return a > b
	})
}

// marshalJSON encodes v without escaping <, > and &, the way Jira embeds
// HTML fragments inside JSON strings.
func marshalJSON(v any) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return []byte(`{"errorMessages":["encoding failed"]}`)
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}

func page(title, head, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s - Jira</title>
<meta name="application-name" content="JIRA" data-name="jira" data-version="9.12.0">
%s
</head>
<body id="jira" class="aui-layout aui-theme-default">
%s
</body>
</html>`, html.EscapeString(title), head, body)
}

func tokenMeta(sess *session) string {
	if sess == nil {
		return ""
	}
	return fmt.Sprintf(`<meta name="ajs-remote-user" content="%s">
<meta name="atlassian-token" content="%s">`, sess.user, sess.token)
}

func loginPage(failed bool) string {
	msg := ""
	if failed {
		msg = `<div class="aui-message error">Sorry, your username and password are incorrect - please try again.</div>`
	}
	return page("Log in", "", msg+`
<form id="login-form" action="/login.jsp" method="post">
<input type="text" name="os_username" id="login-form-username">
<input type="password" name="os_password" id="login-form-password">
<input type="submit" name="login" value="Log In">
</form>`)
}

func dashboardPage(sess *session) string {
	return page("System Dashboard", tokenMeta(sess), `<div id="dashboard" class="dashboard">
<div class="gadget" id="gadget-10000">Assigned to Me</div>
</div>`)
}

func viewIssuePage(sess *session, issue dataset.Issue) string {
	return page("["+issue.Key+"]", tokenMeta(sess), fmt.Sprintf(`<div id="issue-content">
<img src="/secure/projectavatar?avatarId=10324" alt="%s">
<a id="key-val" rel="%s">%s</a>
<ul class="labels"><li><a class="edit-labels" href="/secure/EditLabels!default.jspa?id=%s">Edit Labels</a></li></ul>
</div>`, issue.ProjectKey, issue.ID, issue.Key, issue.ID))
}

type quickCreateField struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	EditHTML string `json:"editHtml"`
}

type quickCreateDialog struct {
	Fields    []quickCreateField `json:"fields"`
	AtlToken  string             `json:"atl_token"`
	FormToken string             `json:"formToken"`
}

func newFormToken() string {
	return strings.ToLower(builtin.RandomString(40))
}

func quickCreatePage(sess *session, project dataset.Project) []byte {
	return marshalJSON(quickCreateDialog{
		Fields: []quickCreateField{
			{ID: "project", Label: "Project", Required: true,
				EditHTML: fmt.Sprintf(`<input class="project-field" value="%s" name="pid" type="hidden">`, project.ID)},
			{ID: "issuetype", Label: "Issue Type", Required: true,
				EditHTML: `<div class="issuetype-field" data-suggestions="[{&quot;label&quot;:&quot;Story&quot;,&quot;value&quot;:&quot;10001&quot;},{&quot;label&quot;:&quot;Bug&quot;,&quot;value&quot;:&quot;10004&quot;}]"></div>`},
			{ID: "summary", Label: "Summary", Required: true, EditHTML: `<input name="summary" type="text">`},
			{ID: "reporter", Label: "Reporter", Required: true, EditHTML: `<select name="reporter"></select>`},
			{ID: "description", Label: "Description", Required: false, EditHTML: `<textarea name="description"></textarea>`},
			{ID: "priority", Label: "Priority", Required: false, EditHTML: `<select name="priority"></select>`},
			{ID: "resolution", Label: "Resolution", Required: false,
				EditHTML: "<select name=\"resolution\"><option value=\"10000\">\n            Done\n        </option></select>"},
			{ID: "customfield_10100", Label: "Epic Link", Required: false, EditHTML: `<input name="customfield_10100">`},
			{ID: "customfield_10101", Label: "Story Points", Required: false, EditHTML: `<input name="customfield_10101">`},
		},
		AtlToken:  sess.token,
		FormToken: newFormToken(),
	})
}

type createdIssue struct {
	IssueKey string `json:"issueKey"`
	Created  struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	} `json:"createdIssueDetails"`
}

type issueTableRow struct {
	ID  int64  `json:"id"`
	Key string `json:"key"`
}

type issueTable struct {
	IssueTable struct {
		IssueIDs []int64        `json:"issueIds"`
		Table    []issueTableRow `json:"table"`
		Total    int            `json:"total"`
	} `json:"issueTable"`
}

func issueTablePage(issues []dataset.Issue) []byte {
	var t issueTable
	t.IssueTable.IssueIDs = []int64{}
	t.IssueTable.Table = []issueTableRow{}
	for _, i := range issues {
		id, err := strconv.ParseInt(i.ID, 10, 64)
		if err != nil {
			continue
		}
		t.IssueTable.IssueIDs = append(t.IssueTable.IssueIDs, id)
		t.IssueTable.Table = append(t.IssueTable.Table, issueTableRow{ID: id, Key: i.Key})
	}
	t.IssueTable.Total = len(t.IssueTable.IssueIDs)
	return marshalJSON(t)
}

func searchPage(sess *session, jql string) string {
	return page("Issue Navigator", tokenMeta(sess), fmt.Sprintf(`<div class="navigator-search" data-jql="%s"></div>
<a href="/secure/EditLabels!default.jspa">Edit Labels</a>`, html.EscapeString(jql)))
}

func projectSummaryPage(sess *session, project dataset.Project) string {
	return page(project.Key+" Summary", tokenMeta(sess), fmt.Sprintf(`<script>
WRM._unparsedData["project-key"]="\"%s\"";
WRM._unparsedData["project-id"]="%s";
</script>`, project.Key, project.ID))
}

func editIssuePage(sess *session, issue dataset.Issue) string {
	return page("Edit Issue", tokenMeta(sess), fmt.Sprintf(`<form id="issue-edit" action="/secure/EditIssue.jspa?atl_token=%s" method="post">
<input name="id" type="hidden" value="%s" />
<input name="issuetype" type="hidden" value="10001" />
<select id="priority" name="priority"><option value="1">Highest</option><option selected="selected" data-icon="/images/icons/priorities/medium.svg" value="3">Medium</option></select>
<select id="assignee" name="assignee"><option value="-1">Automatic</option><option value="admin" data-field-text="Administrator">Administrator</option><option selected="selected" value="%s">%s</option></select>
</form>`, sess.token, issue.ID, sess.user, sess.user))
}

func addCommentPage(sess *session, issue dataset.Issue) string {
	return page("Add Comment", tokenMeta(sess), fmt.Sprintf(`<form id="comment-add" action="/secure/AddComment.jspa?atl_token=%s" method="post">
<input name="id" type="hidden" value="%s" />
<input name="formToken"
       type="hidden"
       value="%s"/>
<textarea name="comment"></textarea>
</form>`, sess.token, issue.ID, newFormToken()))
}

type projectSummary struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

func browseProjectsPage(sess *session, projects []dataset.Project) string {
	list := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		list = append(list, projectSummary{ID: p.ID, Key: p.Key, Name: p.Key + " project"})
	}
	data := strings.ReplaceAll(string(marshalJSON(list)), `"`, `\"`)
	return page("Browse projects", tokenMeta(sess), fmt.Sprintf(`<script>
WRM._unparsedData["com.atlassian.jira.project.browse:projects"]="%s";
</script>`, data))
}

func boardPage(sess *session, boardID string, project dataset.Project) string {
	return page("Kanban board", tokenMeta(sess), fmt.Sprintf(`<div id="ghx-rabid" data-rapid-view-id="%s"></div>
<script>
WRM._unparsedData["project-key"]="\"%s\"";
WRM._unparsedData["project-id"]="%s";
</script>
<div class="aui-sidebar" data-sidebar="com.pyxis.greenhopper.jira:project-sidebar-work-kanban"></div>`, boardID, project.Key, project.ID))
}

type boardData struct {
	RapidViewID string `json:"rapidViewId"`
	Issues      []struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	} `json:"issues"`
}

func boardDataPage(boardID string, issues []dataset.Issue) []byte {
	d := boardData{RapidViewID: boardID}
	for _, i := range issues {
		d.Issues = append(d.Issues, struct {
			ID  string `json:"id"`
			Key string `json:"key"`
		}{i.ID, i.Key})
	}
	return marshalJSON(d)
}

func boardsPage(sess *session, boards []dataset.Board) string {
	var b strings.Builder
	for _, board := range boards {
		fmt.Fprintf(&b, `<tr><td><a href="/secure/RapidBoard.jspa?rapidView=%s">Board %s</a></td></tr>`+"\n", board.ID, board.ID)
	}
	return page("Boards", tokenMeta(sess), `<table id="ghx-manage-views">`+"\n"+b.String()+`</table>`)
}
