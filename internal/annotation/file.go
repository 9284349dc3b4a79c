package annotation

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileError records which file operation failed and on which path.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("annotation file %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// PathFor returns the annotation file that belongs to an image: the same
// directory and stem with a .txt extension.
func PathFor(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".txt"
}

// LoadFile parses the annotation file at path. A missing file yields an
// empty result.
func LoadFile(path string, numClasses int) (ParseResult, error) {
	f, err := os.Open(path) //nolint:gosec // G304: annotation sibling of a user image
	if errors.Is(err, fs.ErrNotExist) {
		return ParseResult{}, nil
	}
	if err != nil {
		return ParseResult{}, &FileError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	res, err := Parse(f, numClasses)
	if err != nil {
		return res, &FileError{Op: "read", Path: path, Err: err}
	}
	return res, nil
}

// SaveFile replaces the annotation file at path with anns. An empty slice
// leaves an empty file behind.
func SaveFile(path string, anns []Annotation) error {
	return writeAtomic(path, func(w io.Writer) error {
		return Encode(w, anns)
	})
}

// RemoveFile deletes path; a missing file is not an error.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &FileError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// RenameFile moves oldPath to newPath if oldPath exists.
func RenameFile(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &FileError{Op: "rename", Path: oldPath, Err: err}
	}
	return nil
}

// writeAtomic writes through a temp file in the target directory, syncs it
// and renames it over path, so readers never observe a partial file.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &FileError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		return &FileError{Op: "write", Path: path, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &FileError{Op: "sync", Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &FileError{Op: "close", Path: path, Err: err}
	}
	if err = os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // G302: annotation files are shared dataset files
		return &FileError{Op: "chmod", Path: path, Err: err}
	}
	if err = os.Rename(tmpName, path); err != nil {
		return &FileError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
