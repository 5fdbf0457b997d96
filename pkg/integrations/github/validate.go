package github

import (
	"regexp"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/integrations"
)

var (
	repoURLPattern = regexp.MustCompile(`(?:https?|git|ssh|git\+https?|git\+ssh)://(?:git@)?github\.com[/:]([^/]+)/([^/]+?)(?:\.git)?(?:[/?#]|$)`)

	// 1-39 alphanumerics or hyphens, no leading hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	validRepo  = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateRepoRef checks that owner and repo are well-formed GitHub names
// before they are put into an API path.
func ValidateRepoRef(owner, repo string) error {
	switch {
	case owner == "":
		return errors.New(errors.ErrCodeInvalidInput, "github owner is required")
	case !validOwner.MatchString(owner):
		return errors.New(errors.ErrCodeInvalidInput, "invalid github owner %q", owner)
	case repo == "":
		return errors.New(errors.ErrCodeInvalidInput, "github repository is required")
	case !validRepo.MatchString(repo) || repo == "." || repo == "..":
		return errors.New(errors.ErrCodeInvalidInput, "invalid github repository %q", repo)
	}
	return nil
}

// ParseRepoURL extracts owner and repository from a GitHub location in any
// of the forms package metadata uses (https, git+https, git@, ssh).
func ParseRepoURL(raw string) (owner, repo string, ok bool) {
	m := repoURLPattern.FindStringSubmatch(integrations.NormalizeRepoURL(raw))
	if len(m) < 3 {
		return "", "", false
	}
	if ValidateRepoRef(m[1], m[2]) != nil {
		return "", "", false
	}
	return m[1], m[2], true
}
