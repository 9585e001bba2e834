package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/jiraload/packages/dataset"
	jhttp "github.com/abdul-hamid-achik/jiraload/packages/http"
	"github.com/abdul-hamid-achik/jiraload/packages/jira"
	"github.com/abdul-hamid-achik/jiraload/packages/stress"
)

// Workload creates Jira user sessions against one server.
type Workload struct {
	baseURL    string
	data       *dataset.Dataset
	catalog    *jira.Catalog
	clientOpts []jhttp.ClientOption
}

type Option func(*Workload)

// WithCatalog replaces the catalog built from the embedded resources.
func WithCatalog(c *jira.Catalog) Option {
	return func(w *Workload) {
		w.catalog = c
	}
}

// WithClientOptions is applied to every session client.
func WithClientOptions(opts ...jhttp.ClientOption) Option {
	return func(w *Workload) {
		w.clientOpts = append(w.clientOpts, opts...)
	}
}

// NewWorkload validates the target and the dataset. Without WithCatalog the
// embedded resource store is used.
func NewWorkload(baseURL string, data *dataset.Dataset, opts ...Option) (*Workload, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if err := jhttp.ValidateURL(baseURL); err != nil {
		return nil, fmt.Errorf("base URL: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("dataset is required")
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}

	w := &Workload{
		baseURL: baseURL,
		data:    data,
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.catalog == nil {
		c, err := jira.DefaultCatalog()
		if err != nil {
			return nil, err
		}
		w.catalog = c
	}
	return w, nil
}

func (w *Workload) BaseURL() string {
	return w.baseURL
}

func (w *Workload) Dataset() *dataset.Dataset {
	return w.data
}

func (w *Workload) Catalog() *jira.Catalog {
	return w.catalog
}

// SetupAction is the action every session runs once before its workload.
func (w *Workload) SetupAction() string {
	return jira.Login.String()
}

// NewSession picks a random user and gives it a fresh cookie jar. The
// session logs in on Setup.
func (w *Workload) NewSession(ctx context.Context) (stress.Session, error) {
	user, err := w.data.RandomUser()
	if err != nil {
		return nil, err
	}
	return w.NewUserSession(user)
}

// NewUserSession opens a session for a given user.
func (w *Workload) NewUserSession(user dataset.User) (*Session, error) {
	client, err := jhttp.NewSessionClient(w.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating session client: %w", err)
	}
	return &Session{
		workload: w,
		client:   client,
		user:     user,
	}, nil
}

func (w *Workload) url(path string) string {
	return w.baseURL + path
}
