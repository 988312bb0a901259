package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ninepros_server/internal/ai"
	"ninepros_server/internal/analytics"
	"ninepros_server/internal/llm"
	"ninepros_server/internal/patch"
	"ninepros_server/internal/store"
	"ninepros_server/internal/types"
	"ninepros_server/internal/utils"
)

// SiteGenerator is implemented by ai.Generator.
type SiteGenerator interface {
	GenerateSite(ctx context.Context, in ai.GenerateInput) (*llm.Decoder, error)
	EditPages(ctx context.Context, in ai.EditInput) (*patch.Result, error)
}

// PageDeployer is implemented by deploy.Deployer.
type PageDeployer interface {
	DeployPages(ctx context.Context, projectName string, pages []types.Page) (string, error)
}

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	generator SiteGenerator
	projects  store.ProjectStore
	deployer  PageDeployer
	recorder  *analytics.Recorder
}

// NewAPIHandler initializes a new API handler with its dependencies.
func NewAPIHandler(
	generator SiteGenerator,
	projects store.ProjectStore,
	deployer PageDeployer,
	recorder *analytics.Recorder,
) *APIHandler {
	return &APIHandler{
		generator: generator,
		projects:  projects,
		deployer:  deployer,
		recorder:  recorder,
	}
}

// --- Structs for API Requests/Responses ---

type AskAIRequest struct {
	Prompt      string `json:"prompt"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	RedesignURL string `json:"redesignUrl"`
	HTML        string `json:"html"`
}

type EditRequest struct {
	Prompt              string       `json:"prompt"`
	Pages               []types.Page `json:"pages"`
	Provider            string       `json:"provider"`
	Model               string       `json:"model"`
	SelectedElementHTML string       `json:"selectedElementHtml"`
	ProjectID           string       `json:"projectId"`
}

type EditResponse struct {
	OK           bool              `json:"ok"`
	Pages        []types.Page      `json:"pages"`
	UpdatedLines []types.LineRange `json:"updatedLines"`
	HTML         string            `json:"html"`
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"ok": false, "error": msg})
}

// upstreamError answers for a failed model call.
func upstreamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, llm.ErrUnknownProvider):
		errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrMissingInput):
		errorJSON(c, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, llm.ErrEmptyResponse):
		errorJSON(c, http.StatusBadRequest, "No content returned from the model")
	default:
		status := utils.UpstreamStatus(err)
		if status == http.StatusPaymentRequired {
			errorJSON(c, status, "You have exceeded your model quota. Please check your plan and billing.")
			return
		}
		errorJSON(c, status, err.Error())
	}
}

// --- API Handlers ---

// POST /api/ask-ai
func (h *APIHandler) AskAI(c *gin.Context) {
	var req AskAIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" && strings.TrimSpace(req.RedesignURL) == "" {
		errorJSON(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	dec, err := h.generator.GenerateSite(c.Request.Context(), ai.GenerateInput{
		Prompt:      req.Prompt,
		Provider:    req.Provider,
		Model:       req.Model,
		RedesignURL: req.RedesignURL,
		HTML:        req.HTML,
	})
	if err != nil {
		log.Printf("Error starting generation: %v", err)
		h.recorder.Record(analytics.KindError, req.Provider, req.Model, "")
		upstreamError(c, err)
		return
	}
	defer dec.Close()
	h.recorder.Record(analytics.KindGenerate, req.Provider, req.Model, "")

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	// A client disconnect cancels the request context, which ends the
	// upstream read and with it the loop.
	for dec.Next() {
		if _, err := io.WriteString(c.Writer, dec.Text()); err != nil {
			log.Printf("WARN: client went away during generation: %v", err)
			return
		}
		c.Writer.Flush()
	}
	if err := dec.Err(); err != nil {
		log.Printf("ERROR: generation stream ended early: %v", err)
	}
}

// PUT /api/ask-ai
func (h *APIHandler) EditSite(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" || len(req.Pages) == 0 {
		errorJSON(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	ctx := c.Request.Context()
	if req.ProjectID != "" {
		if _, err := h.projects.Get(ctx, req.ProjectID); err != nil {
			projectError(c, req.ProjectID, err)
			return
		}
	}

	result, err := h.generator.EditPages(ctx, ai.EditInput{
		Prompt:              req.Prompt,
		Pages:               req.Pages,
		Provider:            req.Provider,
		Model:               req.Model,
		SelectedElementHTML: req.SelectedElementHTML,
	})
	if err != nil {
		log.Printf("Error editing pages: %v", err)
		h.recorder.Record(analytics.KindError, req.Provider, req.Model, "")
		upstreamError(c, err)
		return
	}
	h.recorder.Record(analytics.KindEdit, req.Provider, req.Model, "")

	if req.ProjectID != "" {
		if _, err := h.projects.SavePages(ctx, req.ProjectID, req.Prompt, result.Pages); err != nil {
			projectError(c, req.ProjectID, err)
			return
		}
	}

	c.JSON(http.StatusOK, EditResponse{
		OK:           true,
		Pages:        result.Pages,
		UpdatedLines: result.UpdatedLines,
		HTML:         result.HTML,
	})
}

// GET /api/analytics
func (h *APIHandler) Analytics(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	c.JSON(http.StatusOK, h.recorder.Snapshot(limit))
}
