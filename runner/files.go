package runner

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/silex-lang/silex"
)

// ErrNoSourceFiles is returned when the arguments match no Silex files.
var ErrNoSourceFiles = errors.New("no " + silex.SourceExt + " files found")

// CollectFiles expands command-line arguments into source file paths.
// A directory contributes every source file below it, a pattern is matched
// with ** support, and any other argument is taken as a file path.
// The result is sorted and free of duplicates.
func CollectFiles(fsys afero.Fs, args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		var (
			matched []string
			err     error
		)

		switch {
		case hasMeta(arg):
			matched, err = globFiles(fsys, arg)
		default:
			matched, err = pathFiles(fsys, arg)
		}

		if err != nil {
			return nil, err
		}

		files = append(files, matched...)
	}

	slices.Sort(files)
	files = slices.Compact(files)

	if len(files) == 0 {
		return nil, ErrNoSourceFiles
	}

	return files, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func pathFiles(fsys afero.Fs, path string) ([]string, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string

	// Walk directory for source files
	err = afero.Walk(fsys, path, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && filepath.Ext(p) == silex.SourceExt {
			files = append(files, p)
		}

		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return files, nil
}

func globFiles(fsys afero.Fs, pattern string) ([]string, error) {
	base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))

	root, err := filepath.Abs(filepath.FromSlash(base))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	matches, err := doublestar.Glob(afero.NewIOFS(afero.NewBasePathFs(fsys, root)), rest)
	if err != nil {
		return nil, errors.Errorf("glob %q: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))

	for _, m := range matches {
		if filepath.Ext(m) != silex.SourceExt {
			continue
		}

		files = append(files, filepath.Join(filepath.FromSlash(base), filepath.FromSlash(m)))
	}

	return files, nil
}
