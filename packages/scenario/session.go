package scenario

import (
	"context"
	"net/http"

	"github.com/abdul-hamid-achik/jiraload/packages/dataset"
	jhttp "github.com/abdul-hamid-achik/jiraload/packages/http"
	"github.com/abdul-hamid-achik/jiraload/packages/jira"
)

const webResourcesPath = "/rest/webResources/1.0/resources"

// Session is one logged-in Jira user. Actions of a session must run
// sequentially; concurrency comes from running many sessions.
type Session struct {
	workload *Workload
	client   *jhttp.Client
	user     dataset.User
	token    string
}

func (s *Session) User() dataset.User {
	return s.user
}

// Token is the Atlassian token read after login.
func (s *Session) Token() string {
	return s.token
}

// Setup logs the user in.
func (s *Session) Setup(ctx context.Context) error {
	return s.Run(ctx, s.workload.SetupAction())
}

// Run executes one named action.
func (s *Session) Run(ctx context.Context, action string) error {
	a, err := jira.ParseAction(action)
	if err != nil {
		return err
	}
	d := s.workload.catalog.Descriptor(a)

	if a == jira.Login {
		return s.login(ctx, d)
	}
	if s.token == "" {
		return ErrNotLoggedIn
	}

	switch a {
	case jira.ViewDashboard:
		return s.viewDashboard(ctx, d)
	case jira.ViewIssue:
		return s.viewIssue(ctx, d)
	case jira.CreateIssue:
		return s.createIssue(ctx, d)
	case jira.SearchJQL:
		return s.searchJQL(ctx, d)
	case jira.ViewProjectSummary:
		return s.viewProjectSummary(ctx, d)
	case jira.EditIssue:
		return s.editIssue(ctx, d)
	case jira.AddComment:
		return s.addComment(ctx, d)
	case jira.BrowseProjects:
		return s.browseProjects(ctx, d)
	case jira.ViewKanbanBoard:
		return s.viewKanbanBoard(ctx, d)
	case jira.BrowseBoards:
		return s.browseBoards(ctx, d)
	}
	return nil
}

// do sends req and rejects error statuses. Jira answers missing issues and
// projects with a 404 page, which is returned so the extraction step can
// report it by name.
func (s *Session) do(ctx context.Context, req *jhttp.Request) (string, error) {
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return "", err
	}
	if resp.IsServerError() || (resp.IsClientError() && resp.StatusCode != http.StatusNotFound) {
		return "", &StatusError{Method: req.Method, URL: req.URL, StatusCode: resp.StatusCode}
	}
	return resp.BodyString(), nil
}

func (s *Session) get(ctx context.Context, d *jira.Descriptor, path string) (string, error) {
	return s.do(ctx, jhttp.NewRequest("GET", s.workload.url(path)).SetHeaders(d.Headers().Map()))
}

func (s *Session) postForm(ctx context.Context, d *jira.Descriptor, path string, form jhttp.Form) (string, error) {
	return s.do(ctx, jhttp.NewRequest("POST", s.workload.url(path)).SetHeaders(d.Headers().Map()).SetForm(form))
}

func (s *Session) postJSON(ctx context.Context, d *jira.Descriptor, path, body string) (string, error) {
	headers := d.Headers().With(map[string]string{"Content-Type": jhttp.ContentTypeJSON})
	return s.do(ctx, jhttp.NewRequest("POST", s.workload.url(path)).SetHeaders(headers).SetBody(body))
}

// loadResources posts the action's web-resource template, when the store
// has one, the way the browser does after every page load.
func (s *Session) loadResources(ctx context.Context, d *jira.Descriptor) error {
	payload, ok := d.Payload("resources")
	if !ok {
		return nil
	}
	_, err := s.postJSON(ctx, d, webResourcesPath, payload)
	return err
}
