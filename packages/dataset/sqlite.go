package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (username TEXT PRIMARY KEY, password TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS projects (key TEXT PRIMARY KEY, id TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS issues (key TEXT PRIMARY KEY, id TEXT NOT NULL, project_key TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS boards (id TEXT PRIMARY KEY);
`

// Store reads and writes a dataset kept in a SQLite database.
type Store struct {
	db           *sql.DB
	dataSource   string
	queryTimeout time.Duration
}

// Open connects to a dataset database.
// Supported formats:
// - sqlite://path/to/data.db
// - sqlite:./data.db
func Open(connectionString string) (*Store, error) {
	dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to dataset: %w", err)
	}

	return &Store{
		db:           db,
		dataSource:   dsn,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Path() string {
	return s.dataSource
}

// Load reads every table into a Dataset.
func (s *Store) Load(ctx context.Context) (*Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	d := &Dataset{}
	err := s.query(ctx, "SELECT username, password FROM users ORDER BY username", func(rows *sql.Rows) error {
		var u User
		if err := rows.Scan(&u.Username, &u.Password); err != nil {
			return err
		}
		d.users = append(d.users, u)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.query(ctx, "SELECT key, id FROM projects ORDER BY key", func(rows *sql.Rows) error {
		var p Project
		if err := rows.Scan(&p.Key, &p.ID); err != nil {
			return err
		}
		d.projects = append(d.projects, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.query(ctx, "SELECT key, id, project_key FROM issues ORDER BY key", func(rows *sql.Rows) error {
		var i Issue
		if err := rows.Scan(&i.Key, &i.ID, &i.ProjectKey); err != nil {
			return err
		}
		d.issues = append(d.issues, i)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.query(ctx, "SELECT id FROM boards ORDER BY id", func(rows *sql.Rows) error {
		var b Board
		if err := rows.Scan(&b.ID); err != nil {
			return err
		}
		d.boards = append(d.boards, b)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Store) query(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

// Write creates the tables if needed and stores every row of d, replacing
// rows with the same key.
func (s *Store) Write(ctx context.Context, d *Dataset) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	for _, u := range d.Users() {
		if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO users (username, password) VALUES (?, ?)", u.Username, u.Password); err != nil {
			return fmt.Errorf("insert user %s: %w", u.Username, err)
		}
	}
	for _, p := range d.Projects() {
		if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO projects (key, id) VALUES (?, ?)", p.Key, p.ID); err != nil {
			return fmt.Errorf("insert project %s: %w", p.Key, err)
		}
	}
	for _, i := range d.Issues() {
		if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO issues (key, id, project_key) VALUES (?, ?, ?)", i.Key, i.ID, i.ProjectKey); err != nil {
			return fmt.Errorf("insert issue %s: %w", i.Key, err)
		}
	}
	for _, b := range d.Boards() {
		if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO boards (id) VALUES (?)", b.ID); err != nil {
			return fmt.Errorf("insert board %s: %w", b.ID, err)
		}
	}

	return tx.Commit()
}

// LoadFile opens connectionString, loads the dataset and closes the store.
func LoadFile(ctx context.Context, connectionString string) (*Dataset, error) {
	s, err := Open(connectionString)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Load(ctx)
}

// WriteFile opens connectionString, writes d and closes the store.
func WriteFile(ctx context.Context, connectionString string, d *Dataset) error {
	s, err := Open(connectionString)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Write(ctx, d)
}

func parseConnectionString(connStr string) (string, error) {
	connStr = strings.TrimSpace(connStr)

	var dsn string
	switch {
	case strings.HasPrefix(connStr, "sqlite://"):
		dsn = strings.TrimPrefix(connStr, "sqlite://")
	case strings.HasPrefix(connStr, "sqlite:"):
		dsn = strings.TrimPrefix(connStr, "sqlite:")
	case strings.Contains(connStr, "://"):
		scheme, _, _ := strings.Cut(connStr, "://")
		return "", fmt.Errorf("unsupported dataset scheme: %s", scheme)
	default:
		dsn = connStr
	}

	if dsn == "" {
		return "", fmt.Errorf("empty dataset path")
	}
	return dsn, nil
}
