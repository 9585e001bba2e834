// Package mock provides a fake Jira server that answers every request a
// jiraload session makes, rendering the markup the extraction patterns
// anchor on.
package mock

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abdul-hamid-achik/jiraload/packages/builtin"
	"github.com/abdul-hamid-achik/jiraload/packages/dataset"
	"github.com/google/uuid"
)

const sessionCookie = "JSESSIONID"

// Server is a fake Jira server backed by a dataset
type Server struct {
	router  *Router
	port    int
	delay   time.Duration
	verbose bool

	mu       sync.RWMutex
	users    map[string]string // username to password
	sessions map[string]*session
	projects map[string]dataset.Project // by key
	issues   map[string]dataset.Issue   // by key
	issueIDs map[string]string          // id to key
	boards   []dataset.Board
	nextID   int64
	keySeq   map[string]int // highest issue number per project

	stats Stats
}

type session struct {
	user  string
	token string
}

// Stats counts what sessions did against the server.
type Stats struct {
	Logins        atomic.Int64
	IssuesCreated atomic.Int64
	IssuesEdited  atomic.Int64
	Comments      atomic.Int64
	Rejected      atomic.Int64
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithVerbose enables verbose logging
func WithVerbose(verbose bool) Option {
	return func(s *Server) {
		s.verbose = verbose
	}
}

// NewServer creates a fake Jira serving the users, projects, issues and
// boards of ds.
func NewServer(ds *dataset.Dataset, opts ...Option) *Server {
	s := &Server{
		router:   NewRouter(),
		port:     8080,
		users:    make(map[string]string),
		sessions: make(map[string]*session),
		projects: make(map[string]dataset.Project),
		issues:   make(map[string]dataset.Issue),
		issueIDs: make(map[string]string),
		keySeq:   make(map[string]int),
		boards:   ds.Boards(),
		nextID:   20000,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, u := range ds.Users() {
		s.users[u.Username] = u.Password
	}
	for _, p := range ds.Projects() {
		s.projects[p.Key] = p
	}
	for _, i := range ds.Issues() {
		s.addIssue(i)
	}

	s.routes()
	return s
}

func (s *Server) addIssue(i dataset.Issue) {
	s.issues[i.Key] = i
	s.issueIDs[i.ID] = i.Key
	if id, err := strconv.ParseInt(i.ID, 10, 64); err == nil && id >= s.nextID {
		s.nextID = id + 1
	}
	if _, num, ok := strings.Cut(i.Key, "-"); ok {
		if n, err := strconv.Atoi(num); err == nil && n > s.keySeq[i.ProjectKey] {
			s.keySeq[i.ProjectKey] = n
		}
	}
}

// Stats returns the live counters.
func (s *Server) Stats() *Stats {
	return &s.stats
}

// Routes returns all registered routes
func (s *Server) Routes() []*Route {
	return s.router.Routes()
}

// Handler returns the server as an http.Handler, for embedding in tests.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleRequest)
}

// Start starts the mock server
func (s *Server) Start() error {
	return s.StartWithContext(context.Background())
}

// StartWithContext starts the server with context for graceful shutdown
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("Fake Jira starting on http://localhost:%d", s.port)
	log.Printf("Routes loaded: %d", len(s.router.Routes()))
	if s.verbose {
		for _, route := range s.router.Routes() {
			log.Printf("  %s %s (%s)", route.Method, route.PathPattern, route.Name)
		}
	}

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	route, params := s.router.Match(r.Method, r.URL.Path)
	if route == nil {
		if s.verbose {
			log.Printf("%s %s -> 404 Not Found (%s)", r.Method, r.URL.Path, time.Since(start))
		}
		http.NotFound(w, r)
		return
	}

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	route.Handler(rec, r, params)

	if s.verbose {
		log.Printf("%s %s -> %d %s (%s)", r.Method, r.URL.RequestURI(), rec.status, route.Name, time.Since(start))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// login checks the credentials and opens a session.
func (s *Server) login(username, password string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expected, ok := s.users[username]
	if !ok || expected != password {
		return "", false
	}
	id := uuid.NewString()
	s.sessions[id] = &session{
		user:  username,
		token: "B3WY-" + builtin.RandomString(12) + "_lin",
	}
	s.stats.Logins.Add(1)
	return id, true
}

func (s *Server) session(r *http.Request) (*session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[c.Value]
	return sess, ok
}

func (s *Server) issueByKey(key string) (dataset.Issue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.issues[key]
	return i, ok
}

func (s *Server) issueByID(id string) (dataset.Issue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.issueIDs[strings.TrimSpace(id)]
	if !ok {
		return dataset.Issue{}, false
	}
	return s.issues[key], true
}

func (s *Server) project(key string) (dataset.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[key]
	return p, ok
}

func (s *Server) projectByID(id string) (dataset.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return dataset.Project{}, false
}

// anyProject returns the project with the smallest key.
func (s *Server) anyProject() (dataset.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found dataset.Project
	ok := false
	for _, p := range s.projects {
		if !ok || p.Key < found.Key {
			found, ok = p, true
		}
	}
	return found, ok
}

// boardProject maps a board to a project by position.
func (s *Server) boardProject(boardID string) (dataset.Project, bool) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.projects))
	for k := range s.projects {
		keys = append(keys, k)
	}
	boards := s.boards
	s.mu.RUnlock()

	if len(keys) == 0 {
		return dataset.Project{}, false
	}
	sortStrings(keys)
	for i, b := range boards {
		if b.ID == boardID {
			return s.project(keys[i%len(keys)])
		}
	}
	return dataset.Project{}, false
}

func (s *Server) createIssue(projectKey string) dataset.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue := dataset.Issue{
		Key:        fmt.Sprintf("%s-%d", projectKey, s.keySeq[projectKey]+1),
		ID:         strconv.FormatInt(s.nextID, 10),
		ProjectKey: projectKey,
	}
	s.addIssue(issue)
	s.stats.IssuesCreated.Add(1)
	return issue
}

// recentIssues returns up to limit issues, highest id first.
func (s *Server) recentIssues(limit int) []dataset.Issue {
	s.mu.RLock()
	all := make([]dataset.Issue, 0, len(s.issues))
	for _, i := range s.issues {
		all = append(all, i)
	}
	s.mu.RUnlock()

	sortIssuesByIDDesc(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}
