// Package store persists builder projects and their pages.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/net/html"

	"ninepros_server/internal/types"
)

var ErrProjectNotFound = errors.New("project not found")

const untitled = "Untitled"

type Project struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Prompts   []string     `json:"prompts"`
	Pages     []types.Page `json:"pages"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ProjectStore is implemented by SQLiteStore.
type ProjectStore interface {
	Create(ctx context.Context, prompt string, pages []types.Page) (*Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, limit int) ([]*Project, error)
	SavePages(ctx context.Context, id, prompt string, pages []types.Page) (*Project, error)
}

// TitleOf returns the <title> text of the main page, or "Untitled".
func TitleOf(pages []types.Page) string {
	for _, p := range pages {
		if types.IsHomePath(p.Path) {
			return documentTitle(p.HTML)
		}
	}
	if len(pages) > 0 {
		return documentTitle(pages[0].HTML)
	}
	return untitled
}

func documentTitle(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	inTitle := false
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return untitled
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				sb.Write(z.Text())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "title" && inTitle {
				if t := strings.Join(strings.Fields(sb.String()), " "); t != "" {
					return t
				}
				return untitled
			}
		}
	}
}
