package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/editor"
	"github.com/MeKo-Tech/seglabel/internal/utils"
	"github.com/MeKo-Tech/seglabel/internal/viewport"
)

// RenameImage renames the current image within its folder, together with
// its annotation file. A name without extension keeps the current one.
func (w *Workspace) RenameImage(newName string) error {
	if w.current == "" {
		return editor.ErrNoImage
	}
	newName = strings.TrimSpace(newName)
	if newName == "" || newName != filepath.Base(newName) {
		return fmt.Errorf("invalid image name %q", newName)
	}
	if filepath.Ext(newName) == "" {
		newName += filepath.Ext(w.current)
	}
	if !utils.IsSupportedImage(newName) {
		return fmt.Errorf("unsupported image extension: %s", filepath.Ext(newName))
	}

	oldPath := w.current
	newPath := filepath.Join(filepath.Dir(oldPath), newName)
	if newPath == oldPath {
		return nil
	}
	if slices.Contains(w.images, newPath) {
		return fmt.Errorf("%w: %s", ErrImageExists, newName)
	}
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("%w: %s", ErrImageExists, newName)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("rename image: %w", err)
	}
	if err := annotation.RenameFile(annotation.PathFor(oldPath), annotation.PathFor(newPath)); err != nil {
		return err
	}
	w.images[w.index] = newPath
	w.current = newPath
	slog.Info("Image renamed", "from", oldPath, "to", newPath)
	return nil
}

// DeleteImage deletes the current image file and its annotation file, then
// loads the image that took its place. If only the annotation file could not
// be removed the image is still dropped and that error is returned.
func (w *Workspace) DeleteImage() error {
	if w.current == "" {
		return editor.ErrNoImage
	}
	path := w.current
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	annErr := annotation.RemoveFile(annotation.PathFor(path))

	w.images = slices.Delete(w.images, w.index, w.index+1)
	next := min(w.index, len(w.images)-1)
	w.index, w.current = -1, ""
	w.imageW, w.imageH = 0, 0
	w.session = w.session.Reload(annotation.NewStore(), viewport.Mapper{})
	slog.Info("Image deleted", "image", path, "remaining", len(w.images))
	if next < 0 {
		return annErr
	}
	return errors.Join(annErr, w.loadIndex(next))
}
