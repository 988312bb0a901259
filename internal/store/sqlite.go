package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ninepros_server/internal/types"

	_ "modernc.org/sqlite"
)

// timeLayout has fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Open opens the SQLite database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring sqlite: %w", err)
	}
	return db, nil
}

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrating project store: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS projects (
        id TEXT PRIMARY KEY,
        title TEXT NOT NULL,
        prompts JSON NOT NULL,
        pages JSON NOT NULL,
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL
    );`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *SQLiteStore) Create(ctx context.Context, prompt string, pages []types.Page) (*Project, error) {
	now := s.now().UTC()
	p := &Project{
		ID:        uuid.New().String(),
		Title:     TitleOf(pages),
		Prompts:   []string{},
		Pages:     types.ClonePages(pages),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prompt != "" {
		p.Prompts = append(p.Prompts, prompt)
	}

	promptsJSON, pagesJSON, err := encode(p.Prompts, p.Pages)
	if err != nil {
		return nil, err
	}
	ts := now.Format(timeLayout)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (id, title, prompts, pages, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, promptsJSON, pagesJSON, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, prompts, pages, created_at, updated_at FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	return p, err
}

// List returns projects, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Project, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, prompts, pages, created_at, updated_at FROM projects ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	projects := []*Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

// SavePages replaces the pages of a project and appends prompt to its
// history when non-empty.
func (s *SQLiteStore) SavePages(ctx context.Context, id, prompt string, pages []types.Page) (*Project, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p, err := scanProject(tx.QueryRowContext(ctx,
		`SELECT id, title, prompts, pages, created_at, updated_at FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	if prompt != "" {
		p.Prompts = append(p.Prompts, prompt)
	}
	p.Pages = types.ClonePages(pages)
	p.Title = TitleOf(pages)
	p.UpdatedAt = s.now().UTC()

	promptsJSON, pagesJSON, err := encode(p.Prompts, p.Pages)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE projects SET title = ?, prompts = ?, pages = ?, updated_at = ? WHERE id = ?`,
		p.Title, promptsJSON, pagesJSON, p.UpdatedAt.Format(timeLayout), p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing project update: %w", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*Project, error) {
	var (
		p                    Project
		promptsJSON, pagesJS string
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Title, &promptsJSON, &pagesJS, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(promptsJSON), &p.Prompts); err != nil {
		return nil, fmt.Errorf("decoding prompts of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(pagesJS), &p.Pages); err != nil {
		return nil, fmt.Errorf("decoding pages of %s: %w", p.ID, err)
	}
	var err error
	if p.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at of %s: %w", p.ID, err)
	}
	if p.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at of %s: %w", p.ID, err)
	}
	return &p, nil
}

func encode(prompts []string, pages []types.Page) (string, string, error) {
	promptsJSON, err := json.Marshal(prompts)
	if err != nil {
		return "", "", fmt.Errorf("encoding prompts: %w", err)
	}
	if pages == nil {
		pages = []types.Page{}
	}
	pagesJSON, err := json.Marshal(pages)
	if err != nil {
		return "", "", fmt.Errorf("encoding pages: %w", err)
	}
	return string(promptsJSON), string(pagesJSON), nil
}
