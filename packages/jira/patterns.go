package jira

import "github.com/abdul-hamid-achik/jiraload/packages/capture"

// The expressions below match the HTML and JSON that Jira Data Center
// currently renders. Several anchor on JSON-escaped markup (\" and \n
// appear literally in the response), so keep them byte for byte.

// Login
var (
	LoginAtlToken = capture.MustSingle("login.atl_token", `name="atlassian-token" content="(.+?)">`)
)

// BrowseIssue
var (
	BrowseIssueID              = capture.MustSingle("view_issue.issue_id", `id="key-val" rel="(.+?)">`)
	BrowseIssueProjectAvatarID = capture.MustSingle("view_issue.project_avatar_id", `projectavatar\?avatarId\=(.+?)" `)
	BrowseIssueEditAllowed     = capture.MustMarker("view_issue.edit_allow", `secure\/EditLabels\!default`)
)

// CreateIssue
var (
	CreateIssueAtlToken             = capture.MustSingle("create_issue.atl_token", `"atl_token":"(.+?)"`)
	CreateIssueFormToken            = capture.MustSingle("create_issue.form_token", `"formToken":"(.+?)"`)
	CreateIssueTypeID               = capture.MustSingle("create_issue.issue_type", `\{&quot;label&quot;:&quot;Story&quot;,&quot;value&quot;:&quot;([0-9]*)&quot;`)
	CreateIssueProjectID            = capture.MustSingle("create_issue.project_id", `class=\\"project-field\\" value=\\"(.+?)\\"`)
	CreateIssueResolutionDone       = capture.MustSingle("create_issue.resolution_done", `<option value=\\"([0-9]*)\\">\\n            Done\\n`)
	CreateIssueFieldsToRetain       = capture.MustPair("create_issue.fields_to_retain", `"id":"([a-z]*)","label":"[A-Za-z0-9\- ]*","required":(false|true),`)
	CreateIssueCustomFieldsToRetain = capture.MustPair("create_issue.custom_fields_to_retain", `"id":"customfield_([0-9]*)","label":"[A-Za-z0-9\- ]*","required":(false|true),`)
	CreateIssueKey                  = capture.MustSingle("create_issue.issue_key", `"issueKey":"(.+?)"`)
	CreateIssueForm                 = capture.MustLiteral("create_issue.form", `"id":"project","label":"Project"`)
)

// SearchJql
var (
	SearchJqlIssueIDs    = capture.MustSingle("search_jql.issue_ids", `"issueIds":\[([0-9\, ]*)\]`)
	SearchJqlIssueIDKey  = capture.MustPair("search_jql.issue_id_key", `"table"\:\[\{"id"\:(.+?)\,"key"\:"(.+?)"`)
	SearchJqlIssueID     = capture.MustSingle("search_jql.issue_id", `"table"\:\[\{"id"\:(.+?)\,`)
	SearchJqlEditAllowed = capture.MustLiteral("search_jql.edit_allow", `secure/EditLabels!default`)
)

// ViewProjectSummary
var (
	ProjectSummaryProjectID = capture.MustSingle("view_project_summary.project_id", `\["project-id"\]="(.+?)"`)
)

// EditIssue
var (
	EditIssueTypeID           = capture.MustSingle("edit_issue.issue_type", `name="issuetype" type="hidden" value="(.+?)"`)
	EditIssueAtlToken         = capture.MustSingle("edit_issue.atl_token", `atl_token=(.+?)"`)
	EditIssuePriority         = capture.MustPair("edit_issue.priority", `selected="selected" data-icon="(.+?)" value="(.+?)">`)
	EditIssueAssigneeReporter = capture.MustGroups("edit_issue.assignee_reporter", 4, `<select id="assignee" (.+?)Automatic</option><option value="(.+?)" (.+?)<option selected="selected" value="(.+?)"`)
	EditIssueReporter         = capture.MustSingle("edit_issue.reporter", `assignee.*<option selected="selected" value="(.+?)"`)
)

// AddComment
var (
	AddCommentFormToken = capture.MustSingle("add_comment.form_token", `name="formToken"\s*type="hidden"\s*value="(.+?)"`)
	AddCommentAtlToken  = capture.MustSingle("add_comment.atl_token", `name="atlassian-token" content="(.+?)">`)
)

// BrowseProjects
var (
	BrowseProjectsData = capture.MustLiteral("browse_projects.data", `WRM._unparsedData["com.atlassian.jira.project.browse:projects"]="`)
)

// ViewBoard
var (
	BoardProjectKey  = capture.MustSingle("view_kanban_board.project_key", `\["project-key"\]="\\"(.+?)\\""`)
	BoardProjectID   = capture.MustSingle("view_kanban_board.project_id", `\["project-id"\]="(.+?)"`)
	BoardProjectPlan = capture.MustPair("view_kanban_board.project_plan", `com.pyxis.greenhopper.jira:project-sidebar-(.+?)-(.+?)"`)
)
