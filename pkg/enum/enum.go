package enum

import (
	"context"
	"log/slog"
	"os"
)

// Config for enumeration.
type Config struct {
	// Root is the starting path for enumeration.
	Root string

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// FollowSymlinks yields symbolic links to regular files.
	FollowSymlinks bool

	// OnError receives every path that could not be read while walking,
	// as an InputOpenError. Returning nil skips the path and continues.
	// When unset the walk stops at the first error.
	OnError func(err error) error

	// Logger receives debug diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Targets yields every path to scan for the given command-line targets.
// Directories are walked when recursive is set; any other target,
// including one that does not exist, is yielded unchanged so that opening
// it reports the error.
func Targets(ctx context.Context, targets []string, recursive bool, cfg Config, callback func(path string) error) error {
	for _, target := range targets {
		if recursive {
			if info, err := os.Stat(target); err == nil && info.IsDir() {
				walkCfg := cfg
				walkCfg.Root = target
				if err := NewFilesystemEnumerator(walkCfg).Enumerate(ctx, callback); err != nil {
					return err
				}
				continue
			}
		}

		if err := callback(target); err != nil {
			return err
		}
	}
	return nil
}
