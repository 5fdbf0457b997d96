package source

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
)

// Git shallow-clones remote repositories with the git CLI.
type Git struct {
	// Command defaults to "git".
	Command string
	// Workdir holds the temporary clones; empty means os.TempDir.
	Workdir string
}

func (g *Git) Fetch(ctx context.Context, location string) (*Checkout, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	if loc.Subpath != "" {
		if err := errors.ValidatePath(loc.Subpath); err != nil {
			return nil, err
		}
	}

	tmp, err := os.MkdirTemp(g.Workdir, "bombase-src-")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create checkout dir")
	}
	cleanup := func() error { return os.RemoveAll(tmp) }
	repo := filepath.Join(tmp, repoName(loc.URL))

	if err := g.clone(ctx, loc, repo); err != nil {
		cleanup()
		return nil, err
	}

	dir := repo
	if loc.Subpath != "" {
		dir = filepath.Join(repo, filepath.FromSlash(loc.Subpath))
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			cleanup()
			return nil, errors.New(errors.ErrCodeSource, "subpath %q not found in %s", loc.Subpath, loc.URL)
		}
	}
	return &Checkout{Dir: dir, cleanup: cleanup}, nil
}

func (g *Git) clone(ctx context.Context, loc Location, dir string) error {
	if loc.Revision == "" {
		return g.run(ctx, "", "clone", "--quiet", "--depth", "1", loc.URL, dir)
	}
	// Tags and branches clone directly; commit hashes need a fetch.
	if err := g.run(ctx, "", "clone", "--quiet", "--depth", "1", "--branch", loc.Revision, loc.URL, dir); err == nil {
		return nil
	}
	os.RemoveAll(dir)
	if err := g.run(ctx, "", "init", "--quiet", dir); err != nil {
		return err
	}
	if err := g.run(ctx, dir, "fetch", "--quiet", "--depth", "1", loc.URL, loc.Revision); err != nil {
		return err
	}
	return g.run(ctx, dir, "checkout", "--quiet", "FETCH_HEAD")
}

func (g *Git) run(ctx context.Context, dir string, args ...string) error {
	command := g.Command
	if command == "" {
		command = "git"
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = dir
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "git %s", args[0])
		}
		return errors.Wrap(errors.ErrCodeSource, err, "git %s: %s", args[0], strings.TrimSpace(stderr.String()))
	}
	return nil
}

// repoName derives a directory name from a clone URL.
func repoName(url string) string {
	name := url[strings.LastIndex(url, "/")+1:]
	name = strings.TrimSuffix(name, ".git")
	if name == "" || name == "." || name == ".." {
		return "repo"
	}
	return name
}
