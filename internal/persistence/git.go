/*
 * backend/internal/persistence/git.go
 *
 * Git repository synchronization.
 * - Clones the repository when the local path is empty, fetches otherwise.
 * - Classifies transport failures into network and authentication kinds.
 */

package persistence

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// SyncRepository clones url into path when no repository exists there, or
// fetches the latest refs when one does. Credentials are left to the ambient
// git credential helpers.
func SyncRepository(ctx context.Context, url string, path string) error {
	if err := ensureRoroDirectories(); err != nil {
		return err
	}

	if parent := filepath.Dir(path); parent != "" {
		if err := os.MkdirAll(parent, configDirPerm); err != nil {
			return Errorf(ErrGit, "failed to create directory %s: %v", parent, err)
		}
	}

	repo, err := git.PlainOpen(path)
	switch {
	case err == nil:
		return fetchLatest(ctx, repo, url)
	case errors.Is(err, git.ErrRepositoryNotExists):
		return cloneRepository(ctx, url, path)
	default:
		return classifyGitError(err, "failed to open repository at "+path)
	}
}

func cloneRepository(ctx context.Context, url string, path string) error {
	_, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{URL: url})
	if err != nil {
		return classifyGitError(err, "failed to clone "+url)
	}
	return nil
}

func fetchLatest(ctx context.Context, repo *git.Repository, url string) error {
	err := repo.FetchContext(ctx, &git.FetchOptions{})
	if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return classifyGitError(err, "failed to fetch latest changes from "+url)
}

// ensureRoroDirectories creates ~/.roro and ~/.roro/remote.
func ensureRoroDirectories() error {
	remote, err := RemoteDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(remote, configDirPerm); err != nil {
		return Errorf(ErrGit, "failed to create directory %s: %v", remote, err)
	}
	return nil
}

func classifyGitError(err error, msg string) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed):
		return NewError(ErrAuthentication, msg+": "+err.Error(), err)
	case errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded),
		strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "no such host"):
		return NewError(ErrNetwork, msg+": "+err.Error(), err)
	default:
		return NewError(ErrGit, msg+": "+err.Error(), err)
	}
}
