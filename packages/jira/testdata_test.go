package jira

import "strings"

const dashboardPage = `<html><head>
<meta name="ajs-version-number" content="9.12.0">
<meta name="atlassian-token" content="B3WY-Q2OK-LZ1Q_lin">
</head><body>dashboard</body></html>`

// quickCreateDialog mimics the JSON document returned by
// QuickCreateIssue!default.jspa, with HTML fragments escaped inside strings.
var quickCreateDialog = strings.Join([]string{
	`{"atl_token":"B3WY-Q2OK-LZ1Q_lin","formToken":"6f1b2c3d","fields":[`,
	`{"id":"project","label":"Project","required":true,"editHtml":"<select class=\"project-field\" value=\"10000\"></select>"},`,
	`{"id":"issuetype","label":"Issue Type","required":true,"editHtml":"data-suggestions=\"[{&quot;label&quot;:&quot;Story&quot;,&quot;value&quot;:&quot;10001&quot;}]\""},`,
	`{"id":"summary","label":"Summary","required":true,"editHtml":""},`,
	`{"id":"customfield_10010","label":"Epic Link","required":false,"editHtml":""},`,
	`{"id":"customfield_10020","label":"Sprint","required":false,"editHtml":""},`,
	`{"id":"resolution","label":"Resolution","required":false,"editHtml":"<option value=\"10000\">\n` + strings.Repeat(" ", 12) + `Done\n</option>"}`,
	`]}`,
}, "")

const editIssuePage = `<form action="/secure/EditIssue.jspa?atl_token=B3WY-edit_lin" method="post">
<input name="issuetype" type="hidden" value="10002" />
<select id="priority"><option selected="selected" data-icon="/images/icons/priorities/medium.svg" value="3">Medium</option></select>
<select id="assignee" name="assignee"><option value="-1">Automatic</option><option value="admin" data-field-text="Admin"><option selected="selected" value="user1">User One</option></select>
</form>`

const addCommentPage = `<meta name="atlassian-token" content="B3WY-comment_lin">
<form><input name="formToken"
    type="hidden"
    value="a1b2c3"/></form>`

const searchPage = `{"issueTable":{"issueIds":[10101, 10102, 10103],"table":[{"id":10101,"key":"PRJ-1"},{"id":10102,"key":"PRJ-2"}]}}<a href="/secure/EditLabels!default.jspa?id=10101">`

const boardPage = `WRM._unparsedData["project-key"]="\"PRJ\"";
WRM._unparsedData["project-id"]="10000";
<div class="com.pyxis.greenhopper.jira:project-sidebar-work-scrum">`
