// Package support holds the step definitions of the editor feature suite.
package support

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/editor"
	"github.com/MeKo-Tech/seglabel/internal/workspace"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	TempDir string
	Folder  string
	Classes []string

	Workspace *workspace.Workspace

	LastOutcome editor.Outcome
	LastError   error
}

// NewTestContext creates a context with its own temp directory.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "seglabel-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{
		TempDir: tempDir,
		Folder:  filepath.Join(tempDir, "images"),
	}, nil
}

// Cleanup removes the scenario's temp directory.
func (testCtx *TestContext) Cleanup() error {
	if testCtx.TempDir == "" {
		return nil
	}
	return os.RemoveAll(testCtx.TempDir)
}

// imagePath returns the path of an image in the scenario folder.
func (testCtx *TestContext) imagePath(name string) string {
	return filepath.Join(testCtx.Folder, name)
}

// ws returns the open workspace or an error when no step opened one.
func (testCtx *TestContext) ws() (*workspace.Workspace, error) {
	if testCtx.Workspace == nil {
		return nil, fmt.Errorf("no folder has been opened")
	}
	return testCtx.Workspace, nil
}

// record keeps the result of the last user action. Precondition failures are
// expected by some scenarios, so they are not step failures.
func (testCtx *TestContext) record(out editor.Outcome, err error) error {
	testCtx.LastOutcome = out
	testCtx.LastError = err
	return nil
}

// annotationFor returns the annotation with id or an error.
func (testCtx *TestContext) annotationFor(id int) (annotation.Annotation, error) {
	ws, err := testCtx.ws()
	if err != nil {
		return annotation.Annotation{}, err
	}
	a, ok := ws.Session().Store.Get(annotation.ID(id))
	if !ok {
		return annotation.Annotation{}, fmt.Errorf("polygon %d does not exist", id)
	}
	return a, nil
}
