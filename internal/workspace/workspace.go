// Package workspace ties an image folder, its class list and the editing
// session together. It loads and saves the per-image annotation files,
// moves between images and applies editor outcomes.
//
// A Workspace is not safe for concurrent use; callers serialize access.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/editor"
	"github.com/MeKo-Tech/seglabel/internal/segment"
	"github.com/MeKo-Tech/seglabel/internal/utils"
	"github.com/MeKo-Tech/seglabel/internal/viewport"
)

var (
	// ErrNoModel is returned by AutoAnnotate when no segmenter is configured.
	ErrNoModel = errors.New("no segmentation model loaded")
	// ErrNoImages is returned when a folder holds no supported images.
	ErrNoImages = errors.New("no images in folder")
	// ErrNoClasses is returned when an operation needs at least one class.
	ErrNoClasses = errors.New("no classes defined")
	// ErrImageExists is returned when a rename target is taken.
	ErrImageExists = errors.New("image with this name already exists")
)

// DefaultAcceptThreshold is the minimum model confidence for ingestion.
const DefaultAcceptThreshold = 0.6

// Default surface size used until the front-end reports its own.
const (
	DefaultSurfaceWidth  = 1280
	DefaultSurfaceHeight = 800
)

// Hooks are optional callbacks for instrumentation.
type Hooks struct {
	Saved         func(d time.Duration, err error)
	Committed     func(id annotation.ID)
	AutoAnnotated func(created int, d time.Duration, err error)
}

// Options configure a Workspace. Zero values select defaults.
type Options struct {
	Settings        editor.Settings
	Mode            editor.Mode
	AcceptThreshold float64
	SurfaceWidth    int
	SurfaceHeight   int
	Segmenter       segment.Segmenter
	// ClassesFile, when set, is rewritten after every class list edit.
	ClassesFile string
	Hooks       Hooks
}

// Workspace is the editing state of one image folder.
type Workspace struct {
	opts    Options
	classes *annotation.ClassList

	images  []string
	index   int
	current string
	imageW  int
	imageH  int

	surfaceW int
	surfaceH int
	session  editor.Session
}

// New creates a workspace with no folder open. classes may be nil.
func New(classes *annotation.ClassList, opts Options) *Workspace {
	if classes == nil {
		classes = &annotation.ClassList{}
	}
	if opts.Settings == (editor.Settings{}) {
		opts.Settings = editor.DefaultSettings()
	}
	if opts.AcceptThreshold == 0 {
		opts.AcceptThreshold = DefaultAcceptThreshold
	}
	if opts.SurfaceWidth <= 0 || opts.SurfaceHeight <= 0 {
		opts.SurfaceWidth, opts.SurfaceHeight = DefaultSurfaceWidth, DefaultSurfaceHeight
	}
	w := &Workspace{
		opts:     opts,
		classes:  classes,
		index:    -1,
		surfaceW: opts.SurfaceWidth,
		surfaceH: opts.SurfaceHeight,
	}
	w.session = editor.NewSession(nil, viewport.Mapper{}, opts.Settings)
	w.session, _ = w.session.SetMode(opts.Mode)
	return w
}

// SetSegmenter installs or removes the auto-annotation model.
func (w *Workspace) SetSegmenter(s segment.Segmenter) { w.opts.Segmenter = s }

// Open lists the supported images in folder and loads the first one.
func (w *Workspace) Open(folder string) error {
	images, err := utils.ListImages(folder)
	if err != nil {
		return fmt.Errorf("open folder %s: %w", folder, err)
	}
	if len(images) == 0 {
		return fmt.Errorf("%w: %s", ErrNoImages, folder)
	}
	for i, name := range images {
		images[i] = filepath.Join(folder, name)
	}
	w.images = images
	slog.Info("Folder opened", "folder", folder, "images", len(images))
	return w.loadIndex(0)
}

// Load makes imagePath the current image: the store is rebuilt from its
// annotation file with ids starting at 0, and the mode and armed class carry
// over. A path outside the open folder becomes a one-image folder.
func (w *Workspace) Load(imagePath string) error {
	if i := slices.Index(w.images, imagePath); i >= 0 {
		return w.loadIndex(i)
	}
	w.images = []string{imagePath}
	return w.loadIndex(0)
}

func (w *Workspace) loadIndex(i int) error {
	path := w.images[i]
	iw, ih, err := utils.ImageSize(path)
	if err != nil {
		return fmt.Errorf("load image %s: %w", path, err)
	}
	store, err := w.readStore(path)
	if err != nil {
		return err
	}
	w.index = i
	w.current = path
	w.imageW, w.imageH = iw, ih
	w.session = w.session.Reload(store, viewport.Fit(w.surfaceW, w.surfaceH, iw, ih))
	slog.Debug("Image loaded", "image", path, "annotations", store.Len(), "width", iw, "height", ih)
	return nil
}

func (w *Workspace) readStore(imagePath string) (*annotation.Store, error) {
	res, err := annotation.LoadFile(annotation.PathFor(imagePath), w.classes.Len())
	if err != nil {
		return nil, err
	}
	if res.Skipped > 0 {
		slog.Warn("Skipped malformed annotation lines", "image", imagePath, "skipped", res.Skipped)
	}
	store := annotation.NewStore()
	for _, e := range res.Entries {
		if _, err := store.Create(e.ClassID, e.Vertices); err != nil {
			slog.Warn("Dropped invalid annotation", "image", imagePath, "class", e.ClassID, "error", err)
		}
	}
	return store, nil
}

// Save writes every stored annotation of the current image to its sibling
// file, replacing it atomically.
func (w *Workspace) Save() error {
	if w.current == "" {
		return editor.ErrNoImage
	}
	start := time.Now()
	anns := w.session.Store.All()
	err := annotation.SaveFile(annotation.PathFor(w.current), anns)
	if w.opts.Hooks.Saved != nil {
		w.opts.Hooks.Saved(time.Since(start), err)
	}
	if err != nil {
		return err
	}
	slog.Debug("Annotations saved", "image", w.current, "annotations", len(anns))
	return nil
}

// Next moves to the following image. It is a no-op on the last image.
func (w *Workspace) Next() error {
	if w.index < 0 || w.index >= len(w.images)-1 {
		return nil
	}
	return w.switchTo(w.index + 1)
}

// Prev moves to the preceding image. It is a no-op on the first image.
func (w *Workspace) Prev() error {
	if w.index <= 0 {
		return nil
	}
	return w.switchTo(w.index - 1)
}

// Jump moves to image i (0-based).
func (w *Workspace) Jump(i int) error {
	if len(w.images) == 0 {
		return ErrNoImages
	}
	if i < 0 || i >= len(w.images) {
		return fmt.Errorf("image index %d out of range [0,%d)", i, len(w.images))
	}
	if i == w.index {
		return nil
	}
	return w.switchTo(i)
}

// switchTo commits a pending polygon of three or more points, saves and
// loads image i.
func (w *Workspace) switchTo(i int) error {
	if err := w.Flush(); err != nil {
		return err
	}
	return w.loadIndex(i)
}

// Flush commits a pending polygon of three or more points and saves the
// current image.
func (w *Workspace) Flush() error {
	if w.current == "" {
		return nil
	}
	next, out := w.session.FlushPending()
	if _, err := w.apply(next, out); err != nil {
		return err
	}
	return w.Save()
}

// SetSurface records the surface size and refits the current image.
func (w *Workspace) SetSurface(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	w.surfaceW, w.surfaceH = width, height
	w.session = w.session.WithView(viewport.Fit(width, height, w.imageW, w.imageH))
}

// Current returns the current image path, its index and the image count.
func (w *Workspace) Current() (string, int, int) {
	return w.current, w.index, len(w.images)
}

// Images returns the image paths of the open folder.
func (w *Workspace) Images() []string { return slices.Clone(w.images) }

// Session returns the editing session.
func (w *Workspace) Session() editor.Session { return w.session }

// Scene returns the display geometry for the surface.
func (w *Workspace) Scene() editor.Scene { return w.session.Scene() }

// Annotations returns the current image's annotations in id order.
func (w *Workspace) Annotations() []annotation.Annotation { return w.session.Store.All() }

// State is a snapshot for front-ends.
type State struct {
	Image   string       `json:"image"`
	Images  []string     `json:"images"`
	Index   int          `json:"index"`
	Classes []string     `json:"classes"`
	Armed   int          `json:"armed_class"`
	Mode    string       `json:"mode"`
	Width   int          `json:"image_width"`
	Height  int          `json:"image_height"`
	Scene   editor.Scene `json:"scene"`
}

// State captures the workspace for display.
func (w *Workspace) State() State {
	names := make([]string, len(w.images))
	for i, p := range w.images {
		names[i] = filepath.Base(p)
	}
	return State{
		Image:   filepath.Base(w.current),
		Images:  names,
		Index:   w.index,
		Classes: w.classes.Names(),
		Armed:   w.session.Armed,
		Mode:    w.session.Mode.String(),
		Width:   w.imageW,
		Height:  w.imageH,
		Scene:   w.session.Scene(),
	}
}

// apply installs next and saves when the outcome asks for it.
func (w *Workspace) apply(next editor.Session, out editor.Outcome) (editor.Outcome, error) {
	w.session = next
	if out.Created != annotation.NoID && w.opts.Hooks.Committed != nil {
		w.opts.Hooks.Committed(out.Created)
	}
	if !out.Persist {
		return out, nil
	}
	return out, w.Save()
}
