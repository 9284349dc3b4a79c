package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrDuplicateClass is returned when a name is already in the list.
	ErrDuplicateClass = errors.New("class name already exists")
	// ErrEmptyClassName is returned for blank names.
	ErrEmptyClassName = errors.New("class name is empty")
	// ErrClassIndex is returned for out-of-range class indices.
	ErrClassIndex = errors.New("class index out of range")
)

// ClassList is the ordered set of class names. A name's position is its
// class id. Names are trimmed and NFC-normalized so visually identical
// names compare equal.
type ClassList struct {
	names []string
}

// NewClassList builds a list from names, rejecting blanks and duplicates.
func NewClassList(names ...string) (*ClassList, error) {
	c := &ClassList{}
	if err := c.Replace(names); err != nil {
		return nil, err
	}
	return c, nil
}

func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Len returns the number of classes.
func (c *ClassList) Len() int { return len(c.names) }

// Names returns a copy of the class names in id order.
func (c *ClassList) Names() []string { return slices.Clone(c.names) }

// Name returns the name of class i.
func (c *ClassList) Name(i int) (string, bool) {
	if i < 0 || i >= len(c.names) {
		return "", false
	}
	return c.names[i], true
}

// Index returns the id of name, or -1.
func (c *ClassList) Index(name string) int {
	return slices.Index(c.names, normalizeName(name))
}

// Add appends a class and returns its id.
func (c *ClassList) Add(name string) (int, error) {
	name = normalizeName(name)
	if name == "" {
		return -1, ErrEmptyClassName
	}
	if slices.Contains(c.names, name) {
		return -1, fmt.Errorf("%w: %q", ErrDuplicateClass, name)
	}
	c.names = append(c.names, name)
	return len(c.names) - 1, nil
}

// Rename changes the name of class i. Renaming to the current name is a no-op.
func (c *ClassList) Rename(i int, name string) error {
	if i < 0 || i >= len(c.names) {
		return fmt.Errorf("%w: %d", ErrClassIndex, i)
	}
	name = normalizeName(name)
	if name == "" {
		return ErrEmptyClassName
	}
	if j := slices.Index(c.names, name); j >= 0 && j != i {
		return fmt.Errorf("%w: %q", ErrDuplicateClass, name)
	}
	c.names[i] = name
	return nil
}

// Remove deletes class i and returns its name. Ids above i shift down by one;
// callers must reindex annotations to match (Store.RemoveClass).
func (c *ClassList) Remove(i int) (string, error) {
	if i < 0 || i >= len(c.names) {
		return "", fmt.Errorf("%w: %d", ErrClassIndex, i)
	}
	name := c.names[i]
	c.names = slices.Delete(c.names, i, i+1)
	return name, nil
}

// Move swaps class i with its neighbour above (up) or below and returns the
// neighbour's index. Moving past either end is an error.
func (c *ClassList) Move(i int, up bool) (int, error) {
	j := i + 1
	if up {
		j = i - 1
	}
	if i < 0 || i >= len(c.names) || j < 0 || j >= len(c.names) {
		return -1, fmt.Errorf("%w: cannot move %d", ErrClassIndex, i)
	}
	c.names[i], c.names[j] = c.names[j], c.names[i]
	return j, nil
}

// Replace swaps in a whole new list. On error the list is unchanged.
func (c *ClassList) Replace(names []string) error {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = normalizeName(n)
		if n == "" {
			return ErrEmptyClassName
		}
		if slices.Contains(out, n) {
			return fmt.Errorf("%w: %q", ErrDuplicateClass, n)
		}
		out = append(out, n)
	}
	c.names = out
	return nil
}

// ReadClasses decodes a JSON array of class names.
func ReadClasses(r io.Reader) ([]string, error) {
	var names []string
	if err := json.NewDecoder(r).Decode(&names); err != nil {
		return nil, fmt.Errorf("decode class list: %w", err)
	}
	return names, nil
}

// WriteClasses encodes names as a JSON array indented by two spaces.
func WriteClasses(w io.Writer, names []string) error {
	if names == nil {
		names = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(names)
}

// LoadClassFile reads a JSON class list file.
func LoadClassFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: user-selected class list
	if err != nil {
		return nil, &FileError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	names, err := ReadClasses(f)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	return names, nil
}

// SaveClassFile writes names to path as indented JSON, replacing it atomically.
func SaveClassFile(path string, names []string) error {
	return writeAtomic(path, func(w io.Writer) error {
		return WriteClasses(w, names)
	})
}
