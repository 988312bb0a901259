package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ninepros_server/internal/analytics"
	"ninepros_server/internal/store"
	"ninepros_server/internal/types"
	"ninepros_server/internal/utils"
)

type CreateProjectRequest struct {
	Prompt string       `json:"prompt"`
	Pages  []types.Page `json:"pages" binding:"required"`
}

type SavePagesRequest struct {
	Prompt string       `json:"prompt"`
	Pages  []types.Page `json:"pages" binding:"required"`
}

type DeployRequest struct {
	Name string `json:"name"` // pages project name, defaults to the project title
}

type DeployResponse struct {
	OK  bool   `json:"ok"`
	URL string `json:"url"`
}

func projectError(c *gin.Context, id string, err error) {
	if errors.Is(err, store.ErrProjectNotFound) {
		errorJSON(c, http.StatusNotFound, "Project not found")
		return
	}
	log.Printf("ERROR: project %s: %v", id, err)
	errorJSON(c, http.StatusInternalServerError, "Failed to access project")
}

// POST /api/projects
func (h *APIHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	p, err := h.projects.Create(c.Request.Context(), req.Prompt, req.Pages)
	if err != nil {
		log.Printf("ERROR: creating project: %v", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to create project")
		return
	}
	log.Printf("Created project %s (%q)", p.ID, p.Title)
	c.JSON(http.StatusCreated, p)
}

// GET /api/projects
func (h *APIHandler) ListProjects(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	projects, err := h.projects.List(c.Request.Context(), limit)
	if err != nil {
		log.Printf("ERROR: listing projects: %v", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to list projects")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": projects})
}

// GET /api/projects/:id
func (h *APIHandler) GetProject(c *gin.Context) {
	id := c.Param("id")
	p, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		projectError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PUT /api/projects/:id/pages
func (h *APIHandler) SavePages(c *gin.Context) {
	id := c.Param("id")
	var req SavePagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	p, err := h.projects.SavePages(c.Request.Context(), id, req.Prompt, req.Pages)
	if err != nil {
		projectError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /api/projects/:id/preview/*path
func (h *APIHandler) PreviewPage(c *gin.Context) {
	id := c.Param("id")
	p, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		projectError(c, id, err)
		return
	}

	page, ok := findPage(p.Pages, c.Param("path"))
	if !ok {
		errorJSON(c, http.StatusNotFound, "Page not found")
		return
	}
	c.Data(http.StatusOK, utils.ContentType(page.Path), []byte(page.HTML))
}

// findPage resolves a preview path. "" and "/" fall back to the main page,
// and "/about.html" also matches a page stored as "/about".
func findPage(pages []types.Page, path string) (types.Page, bool) {
	candidates := []string{path}
	if trimmed := strings.TrimSuffix(path, ".html"); trimmed != path {
		candidates = append(candidates, trimmed)
	}
	for _, want := range candidates {
		for _, p := range pages {
			if p.Path == want || "/"+strings.TrimPrefix(p.Path, "/") == want {
				return p, true
			}
		}
	}
	if path == "" || types.IsHomePath(path) || path == "/index.html" {
		for _, p := range pages {
			if types.IsHomePath(p.Path) {
				return p, true
			}
		}
		if len(pages) > 0 {
			return pages[0], true
		}
	}
	return types.Page{}, false
}

// POST /api/projects/:id/deploy
func (h *APIHandler) DeployProject(c *gin.Context) {
	id := c.Param("id")
	var req DeployRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorJSON(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	p, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		projectError(c, id, err)
		return
	}
	name := req.Name
	if name == "" {
		name = p.Title
	}

	url, err := h.deployer.DeployPages(c.Request.Context(), name, p.Pages)
	if err != nil {
		log.Printf("ERROR: deploying project %s: %v", id, err)
		h.recorder.Record(analytics.KindError, "", "", "")
		errorJSON(c, http.StatusInternalServerError, "Failed to deploy project")
		return
	}
	h.recorder.Record(analytics.KindDeploy, "", "", url)
	log.Printf("Deployed project %s to %s", id, url)
	c.JSON(http.StatusOK, DeployResponse{OK: true, URL: url})
}
