package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	Version, Date, Commit = "v1", "2026-01-02", "abc"
	t.Cleanup(func() { Version, Date, Commit = "N/A", "N/A", "N/A" })

	var b bytes.Buffer
	PrintBuildData(&b)
	assert.Equal(t, "Build version: v1\nBuild date: 2026-01-02\nBuild commit: abc\n", b.String())
}
