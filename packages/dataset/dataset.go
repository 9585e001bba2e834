// Package dataset holds the test data virtual users draw from: accounts,
// projects, issues and boards that already exist on the target server.
package dataset

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

// ErrEmptyPool is returned when a picker has nothing to choose from.
var ErrEmptyPool = errors.New("dataset pool is empty")

type User struct {
	Username string
	Password string
}

type Project struct {
	Key string
	ID  string
}

type Issue struct {
	Key        string
	ID         string
	ProjectKey string
}

type Board struct {
	ID string
}

// Dataset is safe for concurrent use. Issues created during a run can be
// added with AddIssue and are picked like the seeded ones.
type Dataset struct {
	mu       sync.RWMutex
	users    []User
	projects []Project
	issues   []Issue
	boards   []Board
}

func New(users []User, projects []Project, issues []Issue, boards []Board) *Dataset {
	return &Dataset{
		users:    append([]User(nil), users...),
		projects: append([]Project(nil), projects...),
		issues:   append([]Issue(nil), issues...),
		boards:   append([]Board(nil), boards...),
	}
}

func pick[T any](pool []T, name string) (T, error) {
	var zero T
	if len(pool) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrEmptyPool, name)
	}
	return pool[rand.Intn(len(pool))], nil
}

func (d *Dataset) RandomUser() (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return pick(d.users, "users")
}

func (d *Dataset) RandomProject() (Project, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return pick(d.projects, "projects")
}

func (d *Dataset) RandomIssue() (Issue, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return pick(d.issues, "issues")
}

func (d *Dataset) RandomBoard() (Board, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return pick(d.boards, "boards")
}

// AddIssue makes a newly created issue available to later picks.
func (d *Dataset) AddIssue(issue Issue) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.issues = append(d.issues, issue)
}

func (d *Dataset) Users() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]User(nil), d.users...)
}

func (d *Dataset) Projects() []Project {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Project(nil), d.projects...)
}

func (d *Dataset) Issues() []Issue {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Issue(nil), d.issues...)
}

func (d *Dataset) Boards() []Board {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Board(nil), d.boards...)
}

// Validate checks that every pool a session needs has at least one entry.
func (d *Dataset) Validate() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var errs []error
	if len(d.users) == 0 {
		errs = append(errs, fmt.Errorf("%w: users", ErrEmptyPool))
	}
	if len(d.projects) == 0 {
		errs = append(errs, fmt.Errorf("%w: projects", ErrEmptyPool))
	}
	if len(d.issues) == 0 {
		errs = append(errs, fmt.Errorf("%w: issues", ErrEmptyPool))
	}
	if len(d.boards) == 0 {
		errs = append(errs, fmt.Errorf("%w: boards", ErrEmptyPool))
	}
	return errors.Join(errs...)
}
