package mock

import (
	"net/http"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/jiraload/packages/dataset"
)

const (
	contentHTML = "text/html;charset=UTF-8"
	contentJSON = "application/json;charset=UTF-8"
)

func (s *Server) routes() {
	r := s.router
	r.Handle("GET", "/login.jsp", "login page", s.handleLoginPage)
	r.Handle("POST", "/login.jsp", "login", s.handleLogin)
	r.Handle("GET", "/secure/Dashboard.jspa", "dashboard", s.handleDashboard)
	r.Handle("POST", "/rest/webResources/1.0/resources", "web resources", s.handleWebResources)
	r.Handle("POST", "/rest/gadget/1.0/dashboards/{{id}}/gadget", "gadgets", s.handleEmptyJSON)

	r.Handle("GET", "/browse/{{key}}", "view issue", s.handleViewIssue)
	r.Handle("POST", "/rest/projects/1.0/project/{{key}}/lastVisited", "last visited", s.handleEmptyJSON)

	r.Handle("GET", "/secure/QuickCreateIssue!default.jspa", "quick create form", s.handleQuickCreateForm)
	r.Handle("POST", "/rest/quickedit/1.0/userpreferences/create", "user preferences", s.handleEmptyJSON)
	r.Handle("POST", "/secure/QuickCreateIssue.jspa", "create issue", s.handleCreateIssue)

	r.Handle("GET", "/issues", "issue navigator", s.handleSearchPage)
	r.Handle("POST", "/rest/issueNav/1/issueTable", "issue table", s.handleIssueTable)
	r.Handle("POST", "/rest/issueNav/1/issueTable/stable", "stable issue table", s.handleStableIssueTable)

	r.Handle("GET", "/projects/{{key}}/summary", "project summary", s.handleProjectSummary)

	r.Handle("GET", "/secure/EditIssue!default.jspa", "edit issue form", s.handleEditForm)
	r.Handle("POST", "/secure/EditIssue.jspa", "edit issue", s.handleEditIssue)

	r.Handle("GET", "/secure/AddComment!default.jspa", "add comment form", s.handleCommentForm)
	r.Handle("POST", "/secure/AddComment.jspa", "add comment", s.handleAddComment)

	r.Handle("GET", "/secure/BrowseProjects.jspa", "browse projects", s.handleBrowseProjects)
	r.Handle("POST", "/rest/api/2/user/properties/lastViewedVignette", "user properties", s.handleEmptyJSON)
	r.Handle("GET", "/secure/RapidBoard.jspa", "kanban board", s.handleBoard)
	r.Handle("GET", "/rest/greenhopper/1.0/xboard/work/allData.json", "board data", s.handleBoardData)
	r.Handle("GET", "/secure/ManageRapidViews.jspa", "browse boards", s.handleBoards)
}

func write(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	write(w, status, contentHTML, []byte(body))
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	write(w, status, contentJSON, body)
}

func (s *Server) reject(w http.ResponseWriter, status int, message string) {
	s.stats.Rejected.Add(1)
	writeJSON(w, status, marshalJSON(map[string][]string{"errorMessages": {message}}))
}

// requireSession answers 401 and returns false for anonymous requests.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, ok := s.session(r)
	if !ok {
		s.reject(w, http.StatusUnauthorized, "You are not logged in.")
		return nil, false
	}
	return sess, true
}

// requireToken checks the atl_token query parameter against the session.
func (s *Server) requireToken(w http.ResponseWriter, sess *session, token string) bool {
	if token == "" || token != sess.token {
		s.reject(w, http.StatusForbidden, "XSRF Security Token Missing")
		return false
	}
	return true
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	writeHTML(w, http.StatusOK, loginPage(false))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if err := r.ParseForm(); err != nil {
		writeHTML(w, http.StatusBadRequest, loginPage(true))
		return
	}
	id, ok := s.login(r.PostForm.Get("os_username"), r.PostForm.Get("os_password"))
	if !ok {
		s.stats.Rejected.Add(1)
		writeHTML(w, http.StatusOK, loginPage(true))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true})
	http.Redirect(w, r, "/secure/Dashboard.jspa", http.StatusFound)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	sess, _ := s.session(r)
	writeHTML(w, http.StatusOK, dashboardPage(sess))
}

func (s *Server) handleWebResources(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	writeJSON(w, http.StatusOK, []byte(`{"resources":[],"unparsedData":{},"unparsedErrors":{}}`))
}

func (s *Server) handleEmptyJSON(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	writeJSON(w, http.StatusOK, []byte(`{}`))
}

func (s *Server) handleViewIssue(w http.ResponseWriter, r *http.Request, params map[string]string) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	issue, ok := s.issueByKey(params["key"])
	if !ok {
		writeHTML(w, http.StatusNotFound, page("Issue does not exist", tokenMeta(sess), "<h1>Issue does not exist</h1>"))
		return
	}
	writeHTML(w, http.StatusOK, viewIssuePage(sess, issue))
}

func (s *Server) handleQuickCreateForm(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	project, ok := s.anyProject()
	if !ok {
		s.reject(w, http.StatusBadRequest, "No projects available.")
		return
	}
	writeJSON(w, http.StatusOK, quickCreatePage(sess, project))
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.reject(w, http.StatusBadRequest, err.Error())
		return
	}
	form := r.PostForm
	if !s.requireToken(w, sess, form.Get("atl_token")) {
		return
	}
	if form.Get("formToken") == "" || strings.TrimSpace(form.Get("summary")) == "" || form.Get("is_create_issue") != "true" {
		s.reject(w, http.StatusBadRequest, "Summary and form token are required.")
		return
	}
	project, ok := s.projectByID(form.Get("pid"))
	if !ok {
		s.reject(w, http.StatusBadRequest, "Project does not exist.")
		return
	}

	issue := s.createIssue(project.Key)
	var resp createdIssue
	resp.IssueKey = issue.Key
	resp.Created.ID = issue.ID
	resp.Created.Key = issue.Key
	writeJSON(w, http.StatusOK, marshalJSON(resp))
}

func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	writeHTML(w, http.StatusOK, searchPage(sess, r.URL.Query().Get("jql")))
}

func (s *Server) handleIssueTable(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, issueTablePage(s.recentIssues(50)))
}

func (s *Server) handleStableIssueTable(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.reject(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.PostForm.Get("layoutKey") != "split-view" {
		s.reject(w, http.StatusBadRequest, "layoutKey is required.")
		return
	}
	var issues []dataset.Issue
	for _, id := range r.PostForm["id"] {
		if issue, ok := s.issueByID(id); ok {
			issues = append(issues, issue)
		}
	}
	writeJSON(w, http.StatusOK, issueTablePage(issues))
}

func (s *Server) handleProjectSummary(w http.ResponseWriter, r *http.Request, params map[string]string) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	project, ok := s.project(params["key"])
	if !ok {
		writeHTML(w, http.StatusNotFound, page("Project not found", tokenMeta(sess), "<h1>Project not found</h1>"))
		return
	}
	writeHTML(w, http.StatusOK, projectSummaryPage(sess, project))
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	issue, ok := s.issueByID(r.URL.Query().Get("id"))
	if !ok {
		writeHTML(w, http.StatusNotFound, page("Issue does not exist", tokenMeta(sess), "<h1>Issue does not exist</h1>"))
		return
	}
	writeHTML(w, http.StatusOK, editIssuePage(sess, issue))
}

func (s *Server) handleEditIssue(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if !s.requireToken(w, sess, r.URL.Query().Get("atl_token")) {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.reject(w, http.StatusBadRequest, err.Error())
		return
	}
	issue, ok := s.issueByID(r.PostForm.Get("id"))
	if !ok {
		s.reject(w, http.StatusNotFound, "Issue does not exist.")
		return
	}
	s.stats.IssuesEdited.Add(1)
	http.Redirect(w, r, "/browse/"+issue.Key, http.StatusFound)
}

func (s *Server) handleCommentForm(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	issue, ok := s.issueByID(r.URL.Query().Get("id"))
	if !ok {
		writeHTML(w, http.StatusNotFound, page("Issue does not exist", tokenMeta(sess), "<h1>Issue does not exist</h1>"))
		return
	}
	writeHTML(w, http.StatusOK, addCommentPage(sess, issue))
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if !s.requireToken(w, sess, r.URL.Query().Get("atl_token")) {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.reject(w, http.StatusBadRequest, err.Error())
		return
	}
	issue, ok := s.issueByID(r.PostForm.Get("id"))
	if !ok || r.PostForm.Get("formToken") == "" || r.PostForm.Get("comment") == "" {
		s.reject(w, http.StatusBadRequest, "Comment body and form token are required.")
		return
	}
	s.stats.Comments.Add(1)
	http.Redirect(w, r, "/browse/"+issue.Key, http.StatusFound)
}

func (s *Server) handleBrowseProjects(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	s.mu.RLock()
	projects := make([]dataset.Project, 0, len(s.projects))
	for _, p := range s.projects {
		projects = append(projects, p)
	}
	s.mu.RUnlock()
	sort.Slice(projects, func(i, j int) bool { return projects[i].Key < projects[j].Key })

	writeHTML(w, http.StatusOK, browseProjectsPage(sess, projects))
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	boardID := r.URL.Query().Get("rapidView")
	project, ok := s.boardProject(boardID)
	if !ok {
		writeHTML(w, http.StatusNotFound, page("Board not found", tokenMeta(sess), "<h1>Board not found</h1>"))
		return
	}
	writeHTML(w, http.StatusOK, boardPage(sess, boardID, project))
}

func (s *Server) handleBoardData(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if _, ok := s.requireSession(w, r); !ok {
		return
	}
	boardID := r.URL.Query().Get("rapidViewId")
	project, ok := s.boardProject(boardID)
	if !ok {
		s.reject(w, http.StatusNotFound, "Board not found.")
		return
	}
	var issues []dataset.Issue
	for _, i := range s.recentIssues(100) {
		if i.ProjectKey == project.Key {
			issues = append(issues, i)
		}
	}
	writeJSON(w, http.StatusOK, boardDataPage(boardID, issues))
}

func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	s.mu.RLock()
	boards := append([]dataset.Board(nil), s.boards...)
	s.mu.RUnlock()
	writeHTML(w, http.StatusOK, boardsPage(sess, boards))
}
