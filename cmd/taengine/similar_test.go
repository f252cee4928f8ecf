package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/taengine/internal/similarity"
)

// writeLineCSV writes n daily bars whose closes move by step a day.
func writeLineCSV(t *testing.T, dir, name string, n int, start, step float64) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("date,open,high,low,close,volume\n")
	for i := 0; i < n; i++ {
		c := start + step*float64(i)
		fmt.Fprintf(&b, "2024-03-%02d,%.2f,%.2f,%.2f,%.2f,%d\n", 1+i, c, c, c, c, 100)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestLoadEntry(t *testing.T) {
	path := writeLineCSV(t, t.TempDir(), "600519.SH.csv", 5, 10, 1)

	e, err := loadEntry(path)
	require.NoError(t, err)
	assert.Equal(t, "600519.SH", e.Symbol)
	assert.Equal(t, "2024-03-05", e.AsOf)
	assert.Equal(t, []float64{10, 11, 12, 13, 14}, e.Closes)

	_, err = loadEntry(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestRenderMatches_Table(t *testing.T) {
	var out bytes.Buffer
	matches := []similarity.Match{
		{Entry: similarity.Entry{Symbol: "UP", AsOf: "2024-03-25"}, Distance: 0.1234},
		{Entry: similarity.Entry{Symbol: "DOWN"}, Distance: 9.5},
	}
	require.NoError(t, renderMatches(&out, matches, 4, outputTable))

	text := out.String()
	assert.Contains(t, text, "Indexed 4 curves")
	assert.Contains(t, text, "RANK")
	assert.Regexp(t, `1\s+UP\s+2024-03-25\s+0\.1234`, text)
	assert.Regexp(t, `2\s+DOWN\s+-\s+9\.5000`, text)
}

func TestSimilarCommand(t *testing.T) {
	dir := t.TempDir()
	up := writeLineCSV(t, dir, "UP.csv", 25, 10, 0.5)
	down := writeLineCSV(t, dir, "DOWN.csv", 25, 40, -0.5)

	t.Cleanup(func() {
		similarQuery, similarCurve, similarWindow, similarTopK, similarOutput = "", nil, 0, 0, outputTable
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"similar", up, down, "--curve", "9,7,5,3", "--window", "10", "--top-k", "1", "-o", "json"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	var matches []similarity.Match
	require.NoError(t, json.Unmarshal(out.Bytes(), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "DOWN", matches[0].Symbol)
	assert.Len(t, matches[0].Closes, 10)
}

func TestSimilarCommand_NeedsOneQuery(t *testing.T) {
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"similar", "a.csv"})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of --query or --curve")
}
