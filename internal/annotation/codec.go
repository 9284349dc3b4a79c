package annotation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/seglabel/internal/utils"
)

// AnyClass disables the class-range check in Parse.
const AnyClass = -1

// minLineTokens is a class id plus three coordinate pairs.
const minLineTokens = 1 + 2*MinVertices

// ErrMalformedLine is wrapped by every ParseLine rejection.
var ErrMalformedLine = errors.New("malformed annotation line")

// Entry is one parsed annotation line.
type Entry struct {
	ClassID  int
	Vertices []utils.Point
}

// ParseResult is the outcome of reading an annotation file. Skipped counts
// non-blank lines that were rejected.
type ParseResult struct {
	Entries []Entry
	Skipped int
}

// ParseLine decodes "<class> <x1> <y1> ... <xn> <yn>". Lines with fewer than
// seven tokens, an odd number of coordinates, unparseable numbers,
// coordinates outside [0,1], or a class id >= numClasses are rejected. Pass
// AnyClass to accept every class id.
func ParseLine(line string, numClasses int) (Entry, error) {
	fields := strings.Fields(line)
	if len(fields) < minLineTokens {
		return Entry{}, fmt.Errorf("%w: %d tokens", ErrMalformedLine, len(fields))
	}
	if (len(fields)-1)%2 != 0 {
		return Entry{}, fmt.Errorf("%w: odd coordinate count", ErrMalformedLine)
	}
	classID, err := strconv.Atoi(fields[0])
	if err != nil || classID < 0 {
		return Entry{}, fmt.Errorf("%w: class id %q", ErrMalformedLine, fields[0])
	}
	if numClasses != AnyClass && classID >= numClasses {
		return Entry{}, fmt.Errorf("%w: class id %d not in list of %d", ErrMalformedLine, classID, numClasses)
	}

	coords := fields[1:]
	verts := make([]utils.Point, 0, len(coords)/2)
	for i := 0; i < len(coords); i += 2 {
		x, errX := parseCoord(coords[i])
		y, errY := parseCoord(coords[i+1])
		if err := errors.Join(errX, errY); err != nil {
			return Entry{}, fmt.Errorf("%w: %w", ErrMalformedLine, err)
		}
		verts = append(verts, utils.Point{X: x, Y: y})
	}
	return Entry{ClassID: classID, Vertices: verts}, nil
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
		return 0, fmt.Errorf("coordinate %q out of range", s)
	}
	return v, nil
}

// FormatLine encodes one annotation line using the shortest float form that
// parses back to the same value.
func FormatLine(classID int, vertices []utils.Point) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(classID))
	for _, p := range vertices {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
	}
	return b.String()
}

// Parse reads annotation lines from r. Malformed lines are counted and
// skipped; only read errors are returned.
func Parse(r io.Reader, numClasses int) (ParseResult, error) {
	var res ParseResult
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := ParseLine(line, numClasses)
		if err != nil {
			res.Skipped++
			continue
		}
		res.Entries = append(res.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// Encode writes one line per annotation in the given order.
func Encode(w io.Writer, anns []Annotation) error {
	bw := bufio.NewWriter(w)
	for _, a := range anns {
		if _, err := bw.WriteString(FormatLine(a.ClassID, a.Vertices)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
