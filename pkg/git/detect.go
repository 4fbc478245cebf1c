// Package git resolves the GitHub repository of a local checkout.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const commandTimeout = 5 * time.Second

// ErrNotGitHub is returned for remotes that are not hosted on github.com.
var ErrNotGitHub = errors.New("remote is not a github.com repository")

// Checkout describes the GitHub repository and branch of a local checkout.
type Checkout struct {
	// URL is the https://github.com/{owner}/{repo} form of the origin remote.
	URL string

	// Branch is the checked out branch, empty for a detached HEAD.
	Branch string
}

// Detect reads the origin remote and current branch of the checkout in dir.
func Detect(ctx context.Context, dir string) (*Checkout, error) {
	remote, err := run(ctx, dir, "remote", "get-url", "origin")
	if err != nil {
		return nil, fmt.Errorf("reading origin remote: %w", err)
	}

	url, err := NormalizeRemote(remote)
	if err != nil {
		return nil, err
	}

	branch, err := run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("reading current branch: %w", err)
	}
	if branch == "HEAD" {
		branch = ""
	}

	return &Checkout{URL: url, Branch: branch}, nil
}

// NormalizeRemote turns the https, ssh and scp-like forms of a github.com
// remote into https://github.com/{owner}/{repo}.
//
//	git@github.com:owner/repo.git
//	ssh://git@github.com/owner/repo.git
//	https://github.com/owner/repo.git
func NormalizeRemote(remote string) (string, error) {
	r := strings.TrimSpace(remote)

	var path string
	switch {
	case strings.HasPrefix(r, "git@github.com:"):
		path = strings.TrimPrefix(r, "git@github.com:")
	case strings.HasPrefix(r, "ssh://git@github.com/"):
		path = strings.TrimPrefix(r, "ssh://git@github.com/")
	case strings.HasPrefix(r, "https://github.com/"):
		path = strings.TrimPrefix(r, "https://github.com/")
	case strings.HasPrefix(r, "http://github.com/"):
		path = strings.TrimPrefix(r, "http://github.com/")
	default:
		return "", fmt.Errorf("%w: %q", ErrNotGitHub, remote)
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	owner, repo, ok := strings.Cut(path, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", fmt.Errorf("%w: %q", ErrNotGitHub, remote)
	}

	return "https://github.com/" + owner + "/" + repo, nil
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
