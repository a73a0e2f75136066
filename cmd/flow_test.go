package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Commands share global flag state, so the whole CLI round trip lives in
// one test.
func TestGenerateScoreRunsFlow(t *testing.T) {
	dir := chdirTemp(t)
	data := filepath.Join(dir, "sites.csv")

	_, _, err := execute(t, "generate", "--count", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--seed is required")

	_, _, err = execute(t, "generate", "--seed", "42", "--count", "300", "--out", data, "--summary=false")
	require.NoError(t, err)
	raw, err := os.ReadFile(data)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(raw)), "\n"), 301)

	out, errOut, err := execute(t, "score", data, "--weights", "traffic=1", "--top", "5", "--save")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "AI_SCORE")
	assert.Contains(t, lines[1], "100.00")
	assert.Contains(t, errOut, "Scored 300 records (5 shown)")
	assert.Contains(t, errOut, "Saved run ")
	_, err = os.Stat(filepath.Join(dir, "site-scout.db"))
	require.NoError(t, err)

	out, _, err = execute(t, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "generic")
	assert.Contains(t, out, "300")

	out, _, err = execute(t, "anchors")
	require.NoError(t, err)
	assert.Contains(t, out, "indonesia")
	assert.Contains(t, out, "malaysia")
}
