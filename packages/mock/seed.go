package mock

import (
	"fmt"
	"strconv"

	"github.com/abdul-hamid-achik/jiraload/packages/dataset"
)

// SeedOptions sizes the generated dataset.
type SeedOptions struct {
	Users            int
	Projects         int
	IssuesPerProject int
	Boards           int
}

// DefaultSeedOptions is what `jiraload mock` serves when no dataset is given.
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{Users: 20, Projects: 3, IssuesPerProject: 25, Boards: 3}
}

// Seed generates a dataset for the fake server. User passwords equal their
// names; the admin account is always present.
func Seed(opts SeedOptions) *dataset.Dataset {
	users := []dataset.User{{Username: "admin", Password: "admin"}}
	for i := 1; i <= opts.Users; i++ {
		name := fmt.Sprintf("user%d", i)
		users = append(users, dataset.User{Username: name, Password: name})
	}

	var projects []dataset.Project
	var issues []dataset.Issue
	nextID := 10100
	for p := 0; p < opts.Projects; p++ {
		key := projectKey(p)
		projects = append(projects, dataset.Project{Key: key, ID: strconv.Itoa(10000 + p)})
		for n := 1; n <= opts.IssuesPerProject; n++ {
			issues = append(issues, dataset.Issue{
				Key:        fmt.Sprintf("%s-%d", key, n),
				ID:         strconv.Itoa(nextID),
				ProjectKey: key,
			})
			nextID++
		}
	}

	var boards []dataset.Board
	for b := 1; b <= opts.Boards; b++ {
		boards = append(boards, dataset.Board{ID: strconv.Itoa(b)})
	}

	return dataset.New(users, projects, issues, boards)
}

// projectKey returns AAA, AAB, ... for 0, 1, ...
func projectKey(n int) string {
	key := []byte("AAA")
	for i := 2; i >= 0 && n > 0; i-- {
		key[i] = byte('A' + n%26)
		n /= 26
	}
	return string(key)
}
