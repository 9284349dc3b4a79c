package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/MeKo-Tech/seglabel/internal/utils"
)

// nameFilter matches base names against glob patterns. Excludes win; an
// empty include list admits everything not excluded.
type nameFilter struct {
	include []string
	exclude []string
}

func (f nameFilter) admits(path string) bool {
	base := filepath.Base(path)
	if anyMatch(base, f.exclude) {
		return false
	}
	return len(f.include) == 0 || anyMatch(base, f.include)
}

func anyMatch(name string, patterns []string) bool {
	return slices.ContainsFunc(patterns, func(p string) bool {
		ok, _ := filepath.Match(p, name)
		return ok
	})
}

// Discover expands args into supported image files. Directories contribute
// the images directly inside them, or their whole tree when recursive is
// set. Include and exclude patterns match the base name.
// Files named explicitly skip the extension check and are filtered by the
// patterns only. The result keeps argument order, with each directory's
// images sorted.
func Discover(args []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	filter := nameFilter{include: includePatterns, exclude: excludePatterns}
	var found []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			if filter.admits(arg) {
				found = append(found, arg)
			}
			continue
		}
		images, err := walkImages(arg, recursive, filter)
		if err != nil {
			return nil, err
		}
		found = append(found, images...)
	}
	return found, nil
}

func walkImages(root string, recursive bool, filter nameFilter) ([]string, error) {
	var images []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir() && path != root && !recursive:
			return filepath.SkipDir
		case d.IsDir():
			return nil
		case utils.IsSupportedImage(path) && filter.admits(path):
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(images)
	return images, nil
}
