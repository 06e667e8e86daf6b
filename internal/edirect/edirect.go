// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package edirect delegates PubMed searches to NCBI's Entrez Direct
// command-line tools. Unlike the bounded Entrez path, the tools stream
// the full result set, so there is no 10,000-record ceiling.
// See docs/ARCHITECTURE.md § Entrez Direct.
package edirect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pdiddy/pubmed-engine/internal/medline"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// UnsupportedOSError reports that the host cannot run the Entrez Direct
// tools. The tools are Unix shell programs; Windows is supported only
// through WSL.
type UnsupportedOSError struct {
	GOOS string
}

func (e *UnsupportedOSError) Error() string {
	return fmt.Sprintf("unsupported operating system %q: edirect needs a Unix-like host or Windows with WSL", e.GOOS)
}

// executor abstracts command execution for testing.
type executor interface {
	RunPipeline(ctx context.Context, env []string, stages [][]string, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec. It connects
// the stages stdout-to-stdin like a shell pipeline.
type osExecutor struct{}

func (o *osExecutor) RunPipeline(ctx context.Context, env []string, stages [][]string, stdout io.Writer) error {
	cmds := make([]*exec.Cmd, len(stages))
	for i, stage := range stages {
		cmd := exec.CommandContext(ctx, stage[0], stage[1:]...)
		if env != nil {
			cmd.Env = env
		}
		cmd.Stderr = os.Stderr
		cmds[i] = cmd
	}

	for i := 1; i < len(cmds); i++ {
		pipe, err := cmds[i-1].StdoutPipe()
		if err != nil {
			return fmt.Errorf("piping %s: %w", stages[i-1][0], err)
		}
		cmds[i].Stdin = pipe
	}
	cmds[len(cmds)-1].Stdout = stdout

	for i, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("starting %s: %w", stages[i][0], err)
		}
	}
	for i, cmd := range cmds {
		if err := cmd.Wait(); err != nil {
			return fmt.Errorf("%s: %w", stages[i][0], err)
		}
	}
	return nil
}

var defaultExec executor = &osExecutor{}

// Provider retrieves PubMed articles by running the esearch|efetch
// pipeline from a local Entrez Direct installation.
type Provider struct {
	cfg  types.EDirectConfig
	exec executor
	goos string
}

// NewProvider creates a Provider for the current host.
func NewProvider(cfg types.EDirectConfig) *Provider {
	return &Provider{cfg: cfg, exec: defaultExec, goos: runtime.GOOS}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "edirect" }

// Search runs `esearch -db pubmed -query Q | efetch -format medline`
// with the configured tool directory and parses the MEDLINE output into
// a table. The host check happens before any subprocess is spawned.
func (p *Provider) Search(ctx context.Context, query string) (*types.ArticleTable, error) {
	if query == "" {
		return nil, fmt.Errorf("empty PubMed query")
	}

	env, stages, err := p.pipeline(query)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := p.exec.RunPipeline(ctx, env, stages, &out); err != nil {
		return nil, fmt.Errorf("running edirect pipeline: %w", err)
	}

	articles, err := medline.Parse(&out)
	if err != nil {
		return nil, fmt.Errorf("parsing edirect output: %w", err)
	}
	return &types.ArticleTable{Rows: articles}, nil
}

// pipeline builds the environment and command stages for the host OS.
func (p *Provider) pipeline(query string) (env []string, stages [][]string, err error) {
	switch p.goos {
	case "linux", "darwin":
		// The tools resolve through PATH; the directory check catches a
		// missing installation with a pointer to the prepare step.
		if _, statErr := os.Stat(p.cfg.ToolDir); statErr != nil {
			return nil, nil, fmt.Errorf("edirect tools not found in %s: run `pubmed-engine prepare` first", p.cfg.ToolDir)
		}
		env = []string{"PATH=" + p.cfg.ToolDir + string(os.PathListSeparator) + os.Getenv("PATH")}
		if p.cfg.APIKey != "" {
			env = append(env, "NCBI_API_KEY="+p.cfg.APIKey)
		}
		stages = [][]string{
			{"esearch", "-db", "pubmed", "-query", query},
			{"efetch", "-format", "medline"},
		}
		return env, stages, nil

	case "windows":
		// Run the Linux tools inside WSL, translating the tool directory
		// to its /mnt mount point. The directory lives on the Windows
		// side, so no stat from within WSL is attempted here.
		dir := wslPath(p.cfg.ToolDir)
		prefix := []string{"wsl"}
		if p.cfg.APIKey != "" {
			prefix = append(prefix, "env", "NCBI_API_KEY="+p.cfg.APIKey)
		}
		stages = [][]string{
			append(append([]string{}, prefix...), dir+"/esearch", "-db", "pubmed", "-query", query),
			append(append([]string{}, prefix...), dir+"/efetch", "-format", "medline"),
		}
		return nil, stages, nil

	default:
		return nil, nil, &UnsupportedOSError{GOOS: p.goos}
	}
}

// wslPath converts a Windows path to its WSL mount point
// (`C:\tools\edirect` → `/mnt/c/tools/edirect`).
func wslPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if len(path) >= 2 && path[1] == ':' {
		drive := strings.ToLower(path[:1])
		path = "/mnt/" + drive + path[2:]
	}
	return path
}
