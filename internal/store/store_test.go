package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ninepros_server/internal/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewSQLiteStore(db)
	require.NoError(t, err)
	return s
}

func TestSQLiteStore_CreateGet(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	pages := []types.Page{
		{Path: "/", HTML: "<html><head><title> Joe's   Plumbing </title></head></html>"},
		{Path: "/about", HTML: "<p>about</p>"},
	}
	created, err := s.Create(ctx, "a plumber", pages)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Joe's Plumbing", created.Title)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a plumber"}, got.Prompts)
	assert.Equal(t, pages, got.Pages)
	assert.True(t, fixed.Equal(got.CreatedAt))
	assert.True(t, fixed.Equal(got.UpdatedAt))
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestSQLiteStore_SavePages(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	p, err := s.Create(ctx, "first", []types.Page{{Path: "/", HTML: "<title>A</title>"}})
	require.NoError(t, err)

	now = now.Add(time.Minute)
	updated, err := s.SavePages(ctx, p.ID, "second", []types.Page{{Path: "/", HTML: "<title>B</title>"}})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Title)
	assert.Equal(t, []string{"first", "second"}, updated.Prompts)

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "<title>B</title>", got.Pages[0].HTML)
	assert.True(t, now.Equal(got.UpdatedAt))

	_, err = s.SavePages(ctx, "missing", "", nil)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	a, _ := s.Create(ctx, "a", nil)
	now = now.Add(time.Second)
	b, _ := s.Create(ctx, "b", nil)

	list, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
	assert.Empty(t, list[0].Pages)

	list, err = s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSQLiteStore_InsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS projects")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO projects")).
		WithArgs(sqlmock.AnyArg(), "Untitled", `["p"]`, `[]`, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))

	s, err := NewSQLiteStore(db)
	require.NoError(t, err)

	_, err = s.Create(context.Background(), "p", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_ListQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, prompts, pages, created_at, updated_at FROM projects ORDER BY")).
		WithArgs(50).
		WillReturnError(errors.New("locked"))

	s, err := NewSQLiteStore(db)
	require.NoError(t, err)

	_, err = s.List(context.Background(), 0)
	assert.ErrorContains(t, err, "locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTitleOf(t *testing.T) {
	assert.Equal(t, "Untitled", TitleOf(nil))
	assert.Equal(t, "Untitled", TitleOf([]types.Page{{Path: "/", HTML: "<h1>no title</h1>"}}))
	assert.Equal(t, "Home", TitleOf([]types.Page{
		{Path: "/about", HTML: "<title>About</title>"},
		{Path: "index", HTML: "<title>Home</title>"},
	}))
	assert.Equal(t, "About", TitleOf([]types.Page{{Path: "/about", HTML: "<title>About</title>"}}))
}
