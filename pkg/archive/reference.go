// Package archive downloads GitHub repository zipballs and unpacks them into
// per-request temporary workspaces.
package archive

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var githubHost = regexp.MustCompile(`(?i)github\.com`)

// RepositoryReference identifies a branch of a repository through the GitHub
// REST API.
type RepositoryReference struct {
	// APIURI is the repository URL rewritten onto api.github.com/repos.
	APIURI string
	Branch string
}

// ParseRepository trims spaces and slashes from rawURL and rewrites every
// github.com occurrence, in any case, to api.github.com/repos.
func ParseRepository(rawURL, branch string) (RepositoryReference, error) {
	trimmed := strings.Trim(rawURL, " /")
	if trimmed == "" {
		return RepositoryReference{}, fmt.Errorf("%w: repository URL is empty", ErrInvalidInput)
	}

	branch = strings.TrimSpace(branch)
	if branch == "" {
		return RepositoryReference{}, fmt.Errorf("%w: repository branch is empty", ErrInvalidInput)
	}

	apiURI := githubHost.ReplaceAllLiteralString(trimmed, "api.github.com/repos")

	u, err := url.Parse(apiURI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return RepositoryReference{}, fmt.Errorf("%w: malformed repository URL %q", ErrInvalidInput, rawURL)
	}

	return RepositoryReference{APIURI: apiURI, Branch: branch}, nil
}

// ArchiveURL is the zipball download URL of the branch.
func (r RepositoryReference) ArchiveURL() string {
	return r.APIURI + "/zipball/" + r.Branch
}

// InjectedFolder is the top-level folder name the archive is expected to
// wrap its contents in.
func (r RepositoryReference) InjectedFolder() string {
	name := r.APIURI
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name + "-" + r.Branch
}

// BlobURL links a file of the branch by its forward-slash URI.
func (r RepositoryReference) BlobURL(fileURI string) string {
	return r.APIURI + "/blob/" + r.Branch + "/" + fileURI
}

// String is the repository identifier returned to callers after ingestion.
func (r RepositoryReference) String() string {
	return r.APIURI + "-" + r.Branch
}
