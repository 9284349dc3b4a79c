package support

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/cucumber/godog"
)

// RegisterAnnotationSteps registers the assertions on the store and on the
// files written next to the images.
func (testCtx *TestContext) RegisterAnnotationSteps(sc *godog.ScenarioContext) {
	sc.Step(`^there (?:is|are) (\d+) polygons?$`, testCtx.thereArePolygons)
	sc.Step(`^(\d+) points? (?:is|are) pending$`, testCtx.pointsArePending)
	sc.Step(`^polygon (\d+) is selected$`, testCtx.polygonIsSelected)
	sc.Step(`^no polygon is selected$`, testCtx.noPolygonIsSelected)
	sc.Step(`^polygon (\d+) has (\d+) vertices$`, testCtx.polygonHasVertices)
	sc.Step(`^polygon (\d+) has class (\d+)$`, testCtx.polygonHasClass)
	sc.Step(`^polygon (\d+) is closed$`, testCtx.polygonIsClosed)
	sc.Step(`^the classes are "([^"]*)"$`, testCtx.theClassesAre)
	sc.Step(`^the annotation file of "([^"]*)" contains:$`, testCtx.theAnnotationFileContains)
	sc.Step(`^the annotation file of "([^"]*)" has (\d+) lines?$`, testCtx.theAnnotationFileHasLines)
	sc.Step(`^the annotation file of "([^"]*)" does not exist$`, testCtx.theAnnotationFileDoesNotExist)
}

func (testCtx *TestContext) thereArePolygons(n int) error {
	ws, err := testCtx.ws()
	if err != nil {
		return err
	}
	if got := len(ws.Annotations()); got != n {
		return fmt.Errorf("expected %d polygons, got %d", n, got)
	}
	return nil
}

func (testCtx *TestContext) pointsArePending(n int) error {
	ws, err := testCtx.ws()
	if err != nil {
		return err
	}
	if got := len(ws.Session().Pending); got != n {
		return fmt.Errorf("expected %d pending points, got %d", n, got)
	}
	return nil
}

func (testCtx *TestContext) polygonIsSelected(id int) error {
	ws, err := testCtx.ws()
	if err != nil {
		return err
	}
	if got := ws.Session().Selected; got != annotation.ID(id) {
		return fmt.Errorf("expected polygon %d to be selected, got %d", id, got)
	}
	return nil
}

func (testCtx *TestContext) noPolygonIsSelected() error {
	ws, err := testCtx.ws()
	if err != nil {
		return err
	}
	if got := ws.Session().Selected; got != annotation.NoID {
		return fmt.Errorf("expected no selection, got polygon %d", got)
	}
	return nil
}

func (testCtx *TestContext) polygonHasVertices(id, n int) error {
	a, err := testCtx.annotationFor(id)
	if err != nil {
		return err
	}
	if len(a.Vertices) != n {
		return fmt.Errorf("polygon %d has %d vertices, want %d", id, len(a.Vertices), n)
	}
	return nil
}

func (testCtx *TestContext) polygonHasClass(id, classID int) error {
	a, err := testCtx.annotationFor(id)
	if err != nil {
		return err
	}
	if a.ClassID != classID {
		return fmt.Errorf("polygon %d has class %d, want %d", id, a.ClassID, classID)
	}
	return nil
}

func (testCtx *TestContext) polygonIsClosed(id int) error {
	a, err := testCtx.annotationFor(id)
	if err != nil {
		return err
	}
	if first, last := a.Vertices[0], a.Vertices[len(a.Vertices)-1]; first != last {
		return fmt.Errorf("polygon %d is open: %v ... %v", id, first, last)
	}
	return nil
}

func (testCtx *TestContext) theClassesAre(names string) error {
	ws, err := testCtx.ws()
	if err != nil {
		return err
	}
	if got, want := ws.Classes(), splitList(names); !slices.Equal(got, want) {
		return fmt.Errorf("classes are %v, want %v", got, want)
	}
	return nil
}

// readLines returns the non-blank lines of an image's annotation file.
func (testCtx *TestContext) readLines(image string) ([]string, error) {
	f, err := os.Open(annotation.PathFor(testCtx.imagePath(image)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func (testCtx *TestContext) theAnnotationFileContains(image string, body *godog.DocString) error {
	got, err := testCtx.readLines(image)
	if err != nil {
		return err
	}
	var want []string
	for _, line := range strings.Split(body.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			want = append(want, line)
		}
	}
	if !slices.Equal(got, want) {
		return fmt.Errorf("annotation file of %s:\n got  %q\n want %q", image, got, want)
	}
	return nil
}

func (testCtx *TestContext) theAnnotationFileHasLines(image string, n int) error {
	got, err := testCtx.readLines(image)
	if err != nil {
		return err
	}
	if len(got) != n {
		return fmt.Errorf("annotation file of %s has %d lines, want %d", image, len(got), n)
	}
	return nil
}

func (testCtx *TestContext) theAnnotationFileDoesNotExist(image string) error {
	path := annotation.PathFor(testCtx.imagePath(image))
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return fmt.Errorf("expected %s not to exist", path)
	}
	return nil
}
