// Package deploy publishes a project's pages through a static pages CLI.
package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"ninepros_server/internal/types"
)

var (
	ErrNoPages     = errors.New("nothing to deploy")
	ErrInvalidPath = errors.New("invalid page path")
	ErrNoURL       = errors.New("no deployment url in cli output")
)

var (
	deploymentURLRe = regexp.MustCompile(`https://[^\s"'<>]+`)
	projectNameRe   = regexp.MustCompile(`[^a-z0-9-]+`)
)

type Deployer struct {
	cliPath string
	branch  string
}

// NewDeployer creates a Deployer running cliPath (for example "wrangler").
// branch may be empty.
func NewDeployer(cliPath, branch string) *Deployer {
	if cliPath == "" {
		cliPath = "wrangler"
	}
	return &Deployer{cliPath: cliPath, branch: branch}
}

// DeployPages writes pages to a temporary directory, runs
// `<cli> pages deploy <dir> --project-name <name>` and returns the
// deployment URL printed by the CLI.
func (d *Deployer) DeployPages(ctx context.Context, projectName string, pages []types.Page) (string, error) {
	if len(pages) == 0 {
		return "", ErrNoPages
	}
	name := ProjectName(projectName)

	tempDir, err := os.MkdirTemp("", "ninepros-deploy-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	if err := WritePages(tempDir, pages); err != nil {
		return "", err
	}
	log.Printf("Wrote %d pages to %s", len(pages), tempDir)

	args := []string{"pages", "deploy", tempDir, "--project-name", name}
	if d.branch != "" {
		args = append(args, "--branch", d.branch)
	}
	cmd := exec.CommandContext(ctx, d.cliPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Printf("Running pages deploy: %s", cmd.String())
	if err := cmd.Run(); err != nil {
		log.Printf("pages deploy stderr: %s", stderr.String())
		return "", fmt.Errorf("pages deploy failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	output := stdout.String()
	url := extractDeploymentURL(output)
	if url == "" {
		log.Printf("WARN: Could not find a deployment url in output: %s", output)
		return "", ErrNoURL
	}
	log.Printf("Deployed %s to %s", name, url)
	return url, nil
}

// WritePages writes each page under dir using PageFilename.
func WritePages(dir string, pages []types.Page) error {
	for _, p := range pages {
		name, err := PageFilename(p.Path)
		if err != nil {
			return err
		}
		filePath := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			return fmt.Errorf("failed to create directories for %s: %w", name, err)
		}
		if err := os.WriteFile(filePath, []byte(p.HTML), 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", name, err)
		}
	}
	return nil
}

// PageFilename maps a page path to a relative file name. Main page paths
// become index.html and extensionless paths gain ".html".
func PageFilename(pagePath string) (string, error) {
	if types.IsHomePath(pagePath) {
		return "index.html", nil
	}
	p := strings.TrimSpace(pagePath)
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, pagePath)
		}
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, pagePath)
	}
	if path.Ext(p) == "" {
		p += ".html"
	}
	return p, nil
}

// ProjectName lowercases name into the character set pages projects
// accept.
func ProjectName(name string) string {
	n := projectNameRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	n = strings.Trim(n, "-")
	if len(n) > 58 {
		n = strings.TrimRight(n[:58], "-")
	}
	if n == "" {
		return "ninepros-site"
	}
	return n
}

// extractDeploymentURL returns the last https URL in the CLI output, which
// is where the pages CLI prints the deployment address.
func extractDeploymentURL(output string) string {
	matches := deploymentURLRe.FindAllString(output, -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.TrimRight(matches[len(matches)-1], ".,)")
}
