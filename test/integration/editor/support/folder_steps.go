package support

import (
	"fmt"
	"image/color"
	"image/png"
	"os"
	"strings"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/testutil"
	"github.com/MeKo-Tech/seglabel/internal/workspace"
	"github.com/cucumber/godog"
)

// RegisterFolderSteps registers the steps that set up images and classes.
func (testCtx *TestContext) RegisterFolderSteps(sc *godog.ScenarioContext) {
	sc.Step(`^an image folder with "([^"]*)" of size (\d+)x(\d+)$`, testCtx.anImageFolderWith)
	sc.Step(`^the classes "([^"]*)"$`, testCtx.theClasses)
	sc.Step(`^the annotation file of "([^"]*)" already contains:$`, testCtx.theAnnotationFileAlreadyContains)
	sc.Step(`^the folder is opened on a (\d+)x(\d+) surface$`, testCtx.theFolderIsOpened)
	sc.Step(`^I go to the next image$`, testCtx.iGoToTheNextImage)
	sc.Step(`^the current image is "([^"]*)"$`, testCtx.theCurrentImageIs)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (testCtx *TestContext) anImageFolderWith(names string, width, height int) error {
	if err := testutil.EnsureDir(testCtx.Folder); err != nil {
		return err
	}
	img := testutil.CreateTestImage(width, height, color.Gray{Y: 128})
	for _, name := range splitList(names) {
		f, err := os.Create(testCtx.imagePath(name))
		if err != nil {
			return err
		}
		if err := png.Encode(f, img); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func (testCtx *TestContext) theClasses(names string) error {
	testCtx.Classes = splitList(names)
	return nil
}

func (testCtx *TestContext) theAnnotationFileAlreadyContains(image string, body *godog.DocString) error {
	path := annotation.PathFor(testCtx.imagePath(image))
	return os.WriteFile(path, []byte(strings.TrimSpace(body.Content)+"\n"), 0o600)
}

func (testCtx *TestContext) theFolderIsOpened(width, height int) error {
	classes, err := annotation.NewClassList(testCtx.Classes...)
	if err != nil {
		return err
	}
	ws := workspace.New(classes, workspace.Options{SurfaceWidth: width, SurfaceHeight: height})
	if err := ws.Open(testCtx.Folder); err != nil {
		return err
	}
	testCtx.Workspace = ws
	return nil
}

func (testCtx *TestContext) iGoToTheNextImage() error {
	ws, err := testCtx.ws()
	if err != nil {
		return err
	}
	testCtx.LastError = ws.Next()
	return testCtx.LastError
}

func (testCtx *TestContext) theCurrentImageIs(name string) error {
	ws, err := testCtx.ws()
	if err != nil {
		return err
	}
	if got := ws.State().Image; got != name {
		return fmt.Errorf("current image is %q, want %q", got, name)
	}
	return nil
}
