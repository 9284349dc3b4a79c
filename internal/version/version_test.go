package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	orig := []string{Version, GitCommit, BuildDate}
	t.Cleanup(func() { Version, GitCommit, BuildDate = orig[0], orig[1], orig[2] })

	Version, GitCommit, BuildDate = "1.2.3", "abc123", "2026-01-02"
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2026-01-02)", String())

	v, c, d := Info()
	assert.Equal(t, []string{"1.2.3", "abc123", "2026-01-02"}, []string{v, c, d})
}
