package jira

import (
	"fmt"
	"sort"

	"github.com/abdul-hamid-achik/jiraload/packages/capture"
	"github.com/abdul-hamid-achik/jiraload/packages/resources"
	"github.com/tidwall/gjson"
)

// Action names one simulated user step.
type Action string

const (
	Login              Action = "login_and_view_dashboard"
	ViewIssue          Action = "view_issue"
	ViewDashboard      Action = "view_dashboard"
	CreateIssue        Action = "create_issue"
	SearchJQL          Action = "search_jql"
	ViewProjectSummary Action = "view_project_summary"
	EditIssue          Action = "edit_issue"
	AddComment         Action = "add_comment"
	BrowseProjects     Action = "browse_projects"
	ViewKanbanBoard    Action = "view_kanban_board"
	BrowseBoards       Action = "browse_boards"
)

// Actions lists every action in the order a user session introduces them.
var Actions = []Action{
	Login,
	ViewIssue,
	ViewDashboard,
	CreateIssue,
	SearchJQL,
	ViewProjectSummary,
	EditIssue,
	AddComment,
	BrowseProjects,
	ViewKanbanBoard,
	BrowseBoards,
}

// ParseAction validates name against the known actions.
func ParseAction(name string) (Action, error) {
	for _, a := range Actions {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", name)
}

func (a Action) String() string {
	return string(a)
}

type variant struct {
	templateKey string
	headers     HeaderProfile
	patterns    []capture.Matcher
}

// variants is the static association of each action with its template key,
// header profile and extraction patterns. Browsing and creating issues have
// no stored template.
var variants = map[Action]variant{
	Login: {
		templateKey: "login_and_view_dashboard",
		headers:     TextHeaders,
		patterns:    []capture.Matcher{LoginAtlToken},
	},
	ViewIssue: {
		headers:  AdminHeaders,
		patterns: []capture.Matcher{BrowseIssueID, BrowseIssueProjectAvatarID, BrowseIssueEditAllowed},
	},
	ViewDashboard: {
		templateKey: "view_dashboard",
		headers:     AdminHeaders,
	},
	CreateIssue: {
		headers: NoTokenHeaders,
		patterns: []capture.Matcher{
			CreateIssueAtlToken,
			CreateIssueFormToken,
			CreateIssueTypeID,
			CreateIssueProjectID,
			CreateIssueResolutionDone,
			CreateIssueFieldsToRetain,
			CreateIssueCustomFieldsToRetain,
			CreateIssueKey,
			CreateIssueForm,
		},
	},
	SearchJQL: {
		templateKey: "search_jql",
		headers:     NoTokenHeaders,
		patterns:    []capture.Matcher{SearchJqlIssueIDs, SearchJqlIssueIDKey, SearchJqlIssueID, SearchJqlEditAllowed},
	},
	ViewProjectSummary: {
		templateKey: "view_project_summary",
		headers:     AdminHeaders,
		patterns:    []capture.Matcher{ProjectSummaryProjectID},
	},
	EditIssue: {
		templateKey: "edit_issue",
		headers:     TextHeaders,
		patterns: []capture.Matcher{
			EditIssueTypeID,
			EditIssueAtlToken,
			EditIssuePriority,
			EditIssueAssigneeReporter,
			EditIssueReporter,
		},
	},
	AddComment: {
		templateKey: "add_comment",
		headers:     TextHeaders,
		patterns:    []capture.Matcher{AddCommentFormToken, AddCommentAtlToken},
	},
	BrowseProjects: {
		templateKey: "browse_projects",
		headers:     AdminHeaders,
		patterns:    []capture.Matcher{BrowseProjectsData},
	},
	ViewKanbanBoard: {
		templateKey: "view_kanban_board",
		headers:     AdminHeaders,
		patterns:    []capture.Matcher{BoardProjectKey, BoardProjectID, BoardProjectPlan},
	},
	BrowseBoards: {
		templateKey: "browse_boards",
		headers:     AdminHeaders,
	},
}

// Descriptor is the immutable description of one action: its stored
// template, its header profile and its named extraction patterns.
type Descriptor struct {
	action   Action
	template gjson.Result
	found    bool
	headers  HeaderProfile
	patterns map[string]capture.Matcher
	order    []string
}

func newDescriptor(action Action, v variant, store *resources.Store) *Descriptor {
	d := &Descriptor{
		action:   action,
		headers:  v.headers,
		patterns: make(map[string]capture.Matcher, len(v.patterns)),
	}
	if v.templateKey != "" && store != nil {
		d.template, d.found = store.Lookup(v.templateKey)
	}
	for _, p := range v.patterns {
		d.patterns[p.Name()] = p
		d.order = append(d.order, p.Name())
	}
	return d
}

func (d *Descriptor) Action() Action {
	return d.action
}

func (d *Descriptor) Headers() HeaderProfile {
	return d.headers
}

// Template returns the stored template, or false when the store has none
// for this action.
func (d *Descriptor) Template() (gjson.Result, bool) {
	return d.template, d.found
}

// Payload returns the raw JSON found at path inside the template.
func (d *Descriptor) Payload(path string) (string, bool) {
	if !d.found {
		return "", false
	}
	v := d.template.Get(path)
	if !v.Exists() {
		return "", false
	}
	return v.Raw, true
}

// Pattern looks up an extraction pattern by name.
func (d *Descriptor) Pattern(name string) (capture.Matcher, bool) {
	p, ok := d.patterns[name]
	return p, ok
}

// Patterns returns the action's patterns in declaration order.
func (d *Descriptor) Patterns() []capture.Matcher {
	result := make([]capture.Matcher, len(d.order))
	for i, name := range d.order {
		result[i] = d.patterns[name]
	}
	return result
}

// Catalog holds one Descriptor per action, built once from a resource
// store and shared read-only by every virtual user.
type Catalog struct {
	store       *resources.Store
	descriptors map[Action]*Descriptor
}

// NewCatalog resolves every action's template against store. A nil store
// yields descriptors without templates.
func NewCatalog(store *resources.Store) *Catalog {
	c := &Catalog{
		store:       store,
		descriptors: make(map[Action]*Descriptor, len(variants)),
	}
	for action, v := range variants {
		c.descriptors[action] = newDescriptor(action, v, store)
	}
	return c
}

// DefaultCatalog builds a catalog over the embedded resource store.
func DefaultCatalog() (*Catalog, error) {
	store, err := resources.Default()
	if err != nil {
		return nil, err
	}
	return NewCatalog(store), nil
}

func (c *Catalog) Store() *resources.Store {
	return c.store
}

// Descriptor returns the descriptor for action. It panics on an action
// outside the closed set, which can only come from a programming error.
func (c *Catalog) Descriptor(action Action) *Descriptor {
	d, ok := c.descriptors[action]
	if !ok {
		panic(fmt.Sprintf("jira: no descriptor for action %q", action))
	}
	return d
}

// Lookup is Descriptor for names coming from user input.
func (c *Catalog) Lookup(name string) (*Descriptor, bool) {
	d, ok := c.descriptors[Action(name)]
	return d, ok
}

// MissingTemplates lists the template keys the store does not provide.
func (c *Catalog) MissingTemplates() []string {
	var missing []string
	for _, v := range variants {
		if v.templateKey == "" {
			continue
		}
		if c.store == nil {
			missing = append(missing, v.templateKey)
			continue
		}
		if _, ok := c.store.Lookup(v.templateKey); !ok {
			missing = append(missing, v.templateKey)
		}
	}
	sort.Strings(missing)
	return missing
}
