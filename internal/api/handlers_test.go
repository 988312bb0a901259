package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ninepros_server/internal/ai"
	"ninepros_server/internal/analytics"
	"ninepros_server/internal/llm"
	"ninepros_server/internal/patch"
	"ninepros_server/internal/store"
	"ninepros_server/internal/types"
)

type fakeGenerator struct {
	stream  string
	err     error
	editErr error
	gotGen  ai.GenerateInput
	gotEdit ai.EditInput
}

func (f *fakeGenerator) GenerateSite(_ context.Context, in ai.GenerateInput) (*llm.Decoder, error) {
	f.gotGen = in
	if f.err != nil {
		return nil, f.err
	}
	var body strings.Builder
	for _, word := range strings.SplitAfter(f.stream, " ") {
		line, _ := json.Marshal(map[string]any{"message": map[string]string{"content": word}})
		body.Write(line)
		body.WriteString("\n")
	}
	body.WriteString(`{"done":true}` + "\n")
	return llm.NewOllamaDecoder(strings.NewReader(body.String())), nil
}

func (f *fakeGenerator) EditPages(_ context.Context, in ai.EditInput) (*patch.Result, error) {
	f.gotEdit = in
	if f.editErr != nil {
		return nil, f.editErr
	}
	res := patch.Apply(in.Pages, f.stream)
	return &res, nil
}

type fakeDeployer struct {
	gotName  string
	gotPages []types.Page
	err      error
}

func (f *fakeDeployer) DeployPages(_ context.Context, name string, pages []types.Page) (string, error) {
	f.gotName, f.gotPages = name, pages
	if f.err != nil {
		return "", f.err
	}
	return "https://abc.site.pages.dev", nil
}

type testEnv struct {
	router   *gin.Engine
	gen      *fakeGenerator
	deployer *fakeDeployer
	projects *store.SQLiteStore
	recorder *analytics.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	projects, err := store.NewSQLiteStore(db)
	require.NoError(t, err)

	env := &testEnv{
		gen:      &fakeGenerator{},
		deployer: &fakeDeployer{},
		projects: projects,
		recorder: analytics.NewRecorder(10),
	}
	h := NewAPIHandler(env.gen, env.projects, env.deployer, env.recorder)

	r := gin.New()
	r.POST("/api/ask-ai", h.AskAI)
	r.PUT("/api/ask-ai", h.EditSite)
	r.POST("/api/projects", h.CreateProject)
	r.GET("/api/projects", h.ListProjects)
	r.GET("/api/projects/:id", h.GetProject)
	r.PUT("/api/projects/:id/pages", h.SavePages)
	r.GET("/api/projects/:id/preview/*path", h.PreviewPage)
	r.POST("/api/projects/:id/deploy", h.DeployProject)
	r.GET("/api/analytics", h.Analytics)
	env.router = r
	return env
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAskAI_Streams(t *testing.T) {
	env := newTestEnv(t)
	env.gen.stream = "<html> generated </html>"

	w := env.do(http.MethodPost, "/api/ask-ai", AskAIRequest{Prompt: "a bakery", Provider: "ollama"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<html> generated </html>", w.Body.String())
	assert.Equal(t, "a bakery", env.gen.gotGen.Prompt)
	assert.Equal(t, int64(1), env.recorder.Snapshot(0).Counts[analytics.KindGenerate])
}

func TestAskAI_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/ask-ai", AskAIRequest{Model: "x"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["ok"])
}

func TestAskAI_QuotaError(t *testing.T) {
	env := newTestEnv(t)
	env.gen.err = &openai.APIError{HTTPStatusCode: http.StatusPaymentRequired, Message: "You have exceeded your monthly included credits"}

	w := env.do(http.MethodPost, "/api/ask-ai", AskAIRequest{Prompt: "x"})

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestEditSite_AppliesPatch(t *testing.T) {
	env := newTestEnv(t)
	env.gen.stream = patch.NewPageStart + "/about" + patch.NewPageEnd + "\n<h1>About</h1>"
	pages := []types.Page{{Path: "/", HTML: "<h1>Home</h1>"}}

	w := env.do(http.MethodPut, "/api/ask-ai", EditRequest{Prompt: "add about", Pages: pages})

	require.Equal(t, http.StatusOK, w.Code)
	var resp EditResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	require.Len(t, resp.Pages, 2)
	assert.Equal(t, types.Page{Path: "/about", HTML: "<h1>About</h1>"}, resp.Pages[1])
	assert.Equal(t, "<h1>Home</h1>", resp.HTML)
	assert.NotNil(t, resp.UpdatedLines)
}

func TestEditSite_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPut, "/api/ask-ai", EditRequest{Prompt: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPut, "/api/ask-ai", EditRequest{Pages: []types.Page{{Path: "/"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditSite_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{llm.ErrEmptyResponse, http.StatusBadRequest, "No content returned from the model"},
		{fmt.Errorf("llama chat completion failed: %w", errors.New("insufficient_quota")), http.StatusPaymentRequired, ""},
		{errors.New("connection reset"), http.StatusInternalServerError, "connection reset"},
		{fmt.Errorf("%w: \"gpt\"", llm.ErrUnknownProvider), http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		env := newTestEnv(t)
		env.gen.editErr = tc.err

		w := env.do(http.MethodPut, "/api/ask-ai", EditRequest{Prompt: "x", Pages: []types.Page{{Path: "/", HTML: "a"}}})

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		if tc.msg != "" {
			assert.Equal(t, tc.msg, decodeBody(t, w)["error"])
		}
	}
}

func TestEditSite_PersistsToProject(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.projects.Create(context.Background(), "first", []types.Page{{Path: "/", HTML: "<h1>Old</h1>"}})
	require.NoError(t, err)
	env.gen.stream = patch.SearchStart + "\nOld\n" + patch.Divider + "\nNew\n" + patch.ReplaceEnd

	w := env.do(http.MethodPut, "/api/ask-ai", EditRequest{Prompt: "rename", Pages: p.Pages, ProjectID: p.ID})

	require.Equal(t, http.StatusOK, w.Code)
	saved, err := env.projects.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "<h1>New</h1>", saved.Pages[0].HTML)
	assert.Equal(t, []string{"first", "rename"}, saved.Prompts)
}

func TestEditSite_UnknownProject(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPut, "/api/ask-ai", EditRequest{Prompt: "x", Pages: []types.Page{{Path: "/"}}, ProjectID: "missing"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjects_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	pages := []types.Page{
		{Path: "/", HTML: "<title>Bakery</title><h1>Home</h1>"},
		{Path: "/about", HTML: "<h1>About</h1>"},
	}

	w := env.do(http.MethodPost, "/api/projects", CreateProjectRequest{Prompt: "bakery", Pages: pages})
	require.Equal(t, http.StatusCreated, w.Code)
	var created store.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Bakery", created.Title)

	w = env.do(http.MethodGet, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["projects"], 1)

	w = env.do(http.MethodGet, "/api/projects/"+created.ID+"/preview/about.html", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<h1>About</h1>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = env.do(http.MethodGet, "/api/projects/"+created.ID+"/preview/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Home")

	w = env.do(http.MethodGet, "/api/projects/"+created.ID+"/preview/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPut, "/api/projects/"+created.ID+"/pages", SavePagesRequest{Pages: pages[:1]})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/api/projects/"+created.ID+"/deploy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://abc.site.pages.dev", decodeBody(t, w)["url"])
	assert.Equal(t, "Bakery", env.deployer.gotName)
	assert.Len(t, env.deployer.gotPages, 1)

	w = env.do(http.MethodGet, "/api/analytics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var snap analytics.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, int64(1), snap.Counts[analytics.KindDeploy])
}

func TestProjects_NotFound(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/projects/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/api/projects/nope/deploy", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPut, "/api/projects/nope/pages", SavePagesRequest{Pages: []types.Page{}}).Code)
}

func TestDeployProject_Failure(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.projects.Create(context.Background(), "", []types.Page{{Path: "/", HTML: "x"}})
	require.NoError(t, err)
	env.deployer.err = errors.New("not logged in")

	w := env.do(http.MethodPost, "/api/projects/"+p.ID+"/deploy", DeployRequest{Name: "custom"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "custom", env.deployer.gotName)
}
