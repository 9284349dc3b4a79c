// Package testutil holds helpers shared by package tests and the feature
// suite: temp image folders, annotation and class-list fixtures.
package testutil

import "os"

const dirPerm = 0o750

// EnsureDir creates dir and its parents if missing.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, dirPerm)
}
