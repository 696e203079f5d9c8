package enum

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/praetorian-inc/searchbin/pkg/types"
)

// FilesystemEnumerator enumerates regular files below a directory.
type FilesystemEnumerator struct {
	config Config
	logger *slog.Logger
}

// NewFilesystemEnumerator creates a new filesystem enumerator.
func NewFilesystemEnumerator(config Config) *FilesystemEnumerator {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FilesystemEnumerator{config: config, logger: logger}
}

// Enumerate walks the directory tree in lexical order and yields file paths.
// Paths matched by a .gitignore at the root are skipped.
func (e *FilesystemEnumerator) Enumerate(ctx context.Context, callback func(path string) error) error {
	var ignore *gitignore.GitIgnore
	gitignorePath := filepath.Join(e.config.Root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		var ierr error
		ignore, ierr = gitignore.CompileIgnoreFile(gitignorePath)
		if ierr != nil {
			e.logger.Debug("ignoring unreadable .gitignore", "path", gitignorePath, "error", ierr)
			ignore = nil
		}
	}

	return filepath.Walk(e.config.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			werr := types.Wrap(types.InputOpenError, path, err, "failed opening file")
			if e.config.OnError == nil {
				return werr
			}
			return e.config.OnError(werr)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			if path != e.config.Root && !e.config.IncludeHidden && isHidden(info.Name()) {
				return filepath.SkipDir
			}
			if ignore != nil && path != e.config.Root && e.ignored(ignore, path) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			if !e.config.FollowSymlinks {
				return nil
			}
			target, err := os.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
		} else if !info.Mode().IsRegular() {
			return nil
		}

		if !e.config.IncludeHidden && isHidden(info.Name()) {
			return nil
		}

		if ignore != nil && e.ignored(ignore, path) {
			return nil
		}

		return callback(path)
	})
}

func (e *FilesystemEnumerator) ignored(ignore *gitignore.GitIgnore, path string) bool {
	relPath, err := filepath.Rel(e.config.Root, path)
	if err != nil {
		return false
	}
	return ignore.MatchesPath(relPath)
}

// isHidden checks if a filename is hidden (starts with .).
// The special entries "." and ".." are NOT considered hidden.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}
