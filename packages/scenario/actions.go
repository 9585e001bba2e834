package scenario

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/abdul-hamid-achik/jiraload/packages/dataset"
	"github.com/abdul-hamid-achik/jiraload/packages/jira"
	"github.com/tidwall/gjson"
)

func (s *Session) login(ctx context.Context, d *jira.Descriptor) error {
	if _, err := s.get(ctx, d, "/login.jsp"); err != nil {
		return err
	}
	if _, err := s.postForm(ctx, d, "/login.jsp", jira.LoginForm(s.user.Username, s.user.Password)); err != nil {
		return err
	}

	body, err := s.get(ctx, d, "/secure/Dashboard.jspa")
	if err != nil {
		return err
	}
	token, err := jira.RequireSingle(body, jira.LoginAtlToken, jira.ErrTokenNotFound)
	if err != nil {
		return fmt.Errorf("login %s: %w", s.user.Username, err)
	}
	s.token = token

	return s.loadResources(ctx, d)
}

func (s *Session) viewDashboard(ctx context.Context, d *jira.Descriptor) error {
	body, err := s.get(ctx, d, "/secure/Dashboard.jspa")
	if err != nil {
		return err
	}
	token, err := jira.RequireSingle(body, jira.LoginAtlToken, jira.ErrTokenNotFound)
	if err != nil {
		return err
	}
	s.token = token

	if err := s.loadResources(ctx, d); err != nil {
		return err
	}
	_, err = s.postJSON(ctx, d, "/rest/gadget/1.0/dashboards/10000/gadget", "{}")
	return err
}

func (s *Session) viewIssue(ctx context.Context, d *jira.Descriptor) error {
	issue, err := s.workload.data.RandomIssue()
	if err != nil {
		return err
	}

	body, err := s.get(ctx, d, "/browse/"+issue.Key)
	if err != nil {
		return err
	}
	if _, err := jira.RequireSingle(body, jira.BrowseIssueID, jira.ErrIssueNotFound); err != nil {
		return fmt.Errorf("view issue %s: %w", issue.Key, err)
	}
	if _, err := jira.RequireSingle(body, jira.BrowseIssueProjectAvatarID, jira.ErrProjectNotFound); err != nil {
		return fmt.Errorf("view issue %s: %w", issue.Key, err)
	}

	_, err = s.postJSON(ctx, d, "/rest/projects/1.0/project/"+url.PathEscape(issue.ProjectKey)+"/lastVisited", jira.LastVisitedPayload)
	return err
}

func (s *Session) createIssue(ctx context.Context, d *jira.Descriptor) error {
	body, err := s.get(ctx, d, "/secure/QuickCreateIssue!default.jspa?decorator=none")
	if err != nil {
		return err
	}
	in, err := jira.QuickCreateInputs(body)
	if err != nil {
		return fmt.Errorf("open create dialog: %w", err)
	}

	if _, err := s.postJSON(ctx, d, "/rest/quickedit/1.0/userpreferences/create", jira.UserPreferencesPayload); err != nil {
		return err
	}

	form, err := jira.IssueForm(in, s.user.Username)
	if err != nil {
		return err
	}
	body, err = s.postForm(ctx, d, "/secure/QuickCreateIssue.jspa?decorator=none", form)
	if err != nil {
		return err
	}
	key, err := jira.CreatedIssueKey(body)
	if err != nil {
		return err
	}

	// New issues join the pool so later views, edits and comments reach them.
	if id := gjson.Get(body, "createdIssueDetails.id").String(); id != "" {
		projectKey, _, _ := strings.Cut(key, "-")
		s.workload.data.AddIssue(dataset.Issue{Key: key, ID: id, ProjectKey: projectKey})
	}
	return nil
}

func (s *Session) searchJQL(ctx context.Context, d *jira.Descriptor) error {
	if _, err := s.get(ctx, d, "/issues/?jql="+url.QueryEscape("order by created DESC")); err != nil {
		return err
	}
	if err := s.loadResources(ctx, d); err != nil {
		return err
	}

	body, err := s.postForm(ctx, d, "/rest/issueNav/1/issueTable", jira.IssueTableForm())
	if err != nil {
		return err
	}
	ids, ok := jira.SearchResultIDs(body)
	if !ok {
		// An empty result is valid Jira output; there is nothing to page in.
		return nil
	}

	form, err := jira.JQLForm(ids)
	if err != nil {
		return err
	}
	body, err = s.postForm(ctx, d, "/rest/issueNav/1/issueTable/stable", form)
	if err != nil {
		return err
	}
	_, _, err = jira.RequirePair(body, jira.SearchJqlIssueIDKey, jira.ErrIssueNotFound)
	return err
}

func (s *Session) viewProjectSummary(ctx context.Context, d *jira.Descriptor) error {
	project, err := s.workload.data.RandomProject()
	if err != nil {
		return err
	}

	body, err := s.get(ctx, d, "/projects/"+url.PathEscape(project.Key)+"/summary")
	if err != nil {
		return err
	}
	if _, err := jira.RequireSingle(body, jira.ProjectSummaryProjectID, jira.ErrProjectNotFound); err != nil {
		return fmt.Errorf("project %s: %w", project.Key, err)
	}
	return s.loadResources(ctx, d)
}

func (s *Session) editIssue(ctx context.Context, d *jira.Descriptor) error {
	issue, err := s.workload.data.RandomIssue()
	if err != nil {
		return err
	}

	body, err := s.get(ctx, d, "/secure/EditIssue!default.jspa?id="+url.QueryEscape(issue.ID))
	if err != nil {
		return err
	}
	in, err := jira.EditIssueInputs(body)
	if err != nil {
		return fmt.Errorf("edit issue %s: %w", issue.Key, err)
	}
	if err := s.loadResources(ctx, d); err != nil {
		return err
	}

	form, err := jira.EditIssueForm(issue.ID, in)
	if err != nil {
		return err
	}
	_, err = s.postForm(ctx, d, "/secure/EditIssue.jspa?atl_token="+url.QueryEscape(in.AtlToken), form)
	return err
}

func (s *Session) addComment(ctx context.Context, d *jira.Descriptor) error {
	issue, err := s.workload.data.RandomIssue()
	if err != nil {
		return err
	}

	body, err := s.get(ctx, d, "/secure/AddComment!default.jspa?id="+url.QueryEscape(issue.ID))
	if err != nil {
		return err
	}
	in, err := jira.AddCommentInputs(body)
	if err != nil {
		return fmt.Errorf("comment on %s: %w", issue.Key, err)
	}
	if err := s.loadResources(ctx, d); err != nil {
		return err
	}

	form, err := jira.AddCommentForm(issue.ID, in)
	if err != nil {
		return err
	}
	_, err = s.postForm(ctx, d, "/secure/AddComment.jspa?atl_token="+url.QueryEscape(in.AtlToken), form)
	return err
}

func (s *Session) browseProjects(ctx context.Context, d *jira.Descriptor) error {
	body, err := s.get(ctx, d, "/secure/BrowseProjects.jspa?selectedCategory=all")
	if err != nil {
		return err
	}
	if err := jira.RequireMarker(body, jira.BrowseProjectsData, jira.ErrProjectNotFound); err != nil {
		return err
	}
	if err := s.loadResources(ctx, d); err != nil {
		return err
	}
	_, err = s.postJSON(ctx, d, "/rest/api/2/user/properties/lastViewedVignette?username="+url.QueryEscape(s.user.Username), jira.BrowseProjectPayload)
	return err
}

func (s *Session) viewKanbanBoard(ctx context.Context, d *jira.Descriptor) error {
	board, err := s.workload.data.RandomBoard()
	if err != nil {
		return err
	}

	body, err := s.get(ctx, d, "/secure/RapidBoard.jspa?rapidView="+url.QueryEscape(board.ID))
	if err != nil {
		return err
	}
	if _, err := jira.RequireSingle(body, jira.BoardProjectKey, jira.ErrProjectNotFound); err != nil {
		return fmt.Errorf("board %s: %w", board.ID, err)
	}
	if _, err := jira.RequireSingle(body, jira.BoardProjectID, jira.ErrProjectNotFound); err != nil {
		return fmt.Errorf("board %s: %w", board.ID, err)
	}
	if err := s.loadResources(ctx, d); err != nil {
		return err
	}

	_, err = s.get(ctx, d, "/rest/greenhopper/1.0/xboard/work/allData.json?rapidViewId="+url.QueryEscape(board.ID))
	return err
}

func (s *Session) browseBoards(ctx context.Context, d *jira.Descriptor) error {
	if _, err := s.get(ctx, d, "/secure/ManageRapidViews.jspa"); err != nil {
		return err
	}
	return s.loadResources(ctx, d)
}
