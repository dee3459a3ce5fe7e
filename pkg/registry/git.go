// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/resdir/run/pkg/resfile"
	"github.com/resdir/run/pkg/resid"
	"github.com/resdir/run/pkg/semver"
)

// DefaultURLTemplate maps an identifier to a Git repository.
const DefaultURLTemplate = "https://github.com/{namespace}/{name}.git"

type (
	// GitClient resolves versions from the tags of a Git repository and
	// shallow-clones the selected tag into the client directory:
	// <ResourcesDir>/<namespace>/<name>/<version>.
	GitClient struct {
		// ResourcesDir receives the clones.
		ResourcesDir string
		// URLTemplate expands {namespace} and {name} into a repository URL.
		URLTemplate string

		logger   *log.Logger
		sshAuth  transport.AuthMethod
		httpAuth transport.AuthMethod
		listTags func(ctx context.Context, url string) ([]string, error)
		clone    func(ctx context.Context, url, tag, dest string) error
	}

	// GitOptions configures NewGitClient.
	GitOptions struct {
		// URLTemplate defaults to DefaultURLTemplate.
		URLTemplate string
		// Getenv reads credentials (GITHUB_TOKEN, GITLAB_TOKEN, GIT_TOKEN).
		// Defaults to os.Getenv.
		Getenv func(string) string
		// HomeDir is searched for SSH keys. Empty disables SSH auth.
		HomeDir string
		// Logger defaults to a logger that discards output.
		Logger *log.Logger
	}
)

// NewGitClient creates a Git backed registry client.
func NewGitClient(resourcesDir string, opts GitOptions) *GitClient {
	if opts.URLTemplate == "" {
		opts.URLTemplate = DefaultURLTemplate
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	c := &GitClient{
		ResourcesDir: resourcesDir,
		URLTemplate:  opts.URLTemplate,
		logger:       opts.Logger,
		sshAuth:      sshAuth(opts.HomeDir),
		httpAuth:     httpAuth(opts.Getenv),
	}
	c.listTags = c.remoteTags
	c.clone = c.cloneShallow
	return c
}

// URL returns the repository URL of an identifier.
func (c *GitClient) URL(id resid.Identifier) string {
	return strings.NewReplacer(
		"{namespace}", string(id.Namespace),
		"{name}", string(id.Name),
	).Replace(c.URLTemplate)
}

// Fetch implements Client.
func (c *GitClient) Fetch(ctx context.Context, spec resid.Specifier) (*Result, error) {
	url := c.URL(spec.Identifier)

	tags, err := c.listTags(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions of %s: %w", spec.Identifier, err)
	}

	tag, ok := spec.Range.MaxSatisfying(tags)
	if !ok {
		return nil, &NotFoundError{Specifier: spec, Available: tags}
	}
	version := semver.MustParseVersion(tag).String()

	dest := filepath.Join(resourceDir(c.ResourcesDir, spec.Identifier), version)
	if resfile.Exists(dest) {
		c.logger.Debug("using cached resource", "resource", spec.Identifier, "version", version, "directory", dest)
		return loadResult(dest, version)
	}

	c.logger.Debug("cloning resource", "url", url, "tag", tag, "directory", dest)
	if err := c.clone(ctx, url, tag, dest); err != nil {
		return nil, fmt.Errorf("failed to fetch %s@%s: %w", spec.Identifier, version, err)
	}
	return loadResult(dest, version)
}

// remoteTags lists the version tags of a remote without cloning it.
func (c *GitClient) remoteTags(ctx context.Context, url string) ([]string, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: c.authFor(url)})
	if err != nil {
		return nil, fmt.Errorf("failed to list remote refs: %w", err)
	}

	var tags []string
	for _, ref := range refs {
		if ref.Name().IsTag() && semver.IsValidVersion(ref.Name().Short()) {
			tags = append(tags, ref.Name().Short())
		}
	}
	return semver.SortVersions(tags), nil
}

// cloneShallow clones a single tag with depth 1.
func (c *GitClient) cloneShallow(ctx context.Context, url, tag, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:           url,
		Auth:          c.authFor(url),
		ReferenceName: plumbing.NewTagReferenceName(tag),
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		// Clean up failed attempt (best-effort)
		_ = os.RemoveAll(dest)
		return err
	}
	return nil
}

// authFor picks SSH keys for SSH URLs and tokens for everything else.
// Public repositories need neither.
func (c *GitClient) authFor(url string) transport.AuthMethod {
	if strings.HasPrefix(url, "git@") || strings.HasPrefix(url, "ssh://") {
		return c.sshAuth
	}
	return c.httpAuth
}

func sshAuth(homeDir string) transport.AuthMethod {
	if homeDir == "" {
		return nil
	}
	for _, key := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyPath := filepath.Join(homeDir, ".ssh", key)
		if _, err := os.Stat(keyPath); err != nil {
			continue
		}
		if auth, err := ssh.NewPublicKeysFromFile("git", keyPath, ""); err == nil {
			return auth
		}
	}
	return nil
}

func httpAuth(getenv func(string) string) transport.AuthMethod {
	tokens := []struct{ env, user string }{
		{"GITHUB_TOKEN", "x-access-token"},
		{"GITLAB_TOKEN", "gitlab-ci-token"},
		{"GIT_TOKEN", "git"},
	}
	for _, tok := range tokens {
		if value := getenv(tok.env); value != "" {
			return &http.BasicAuth{Username: tok.user, Password: value}
		}
	}
	return nil
}
