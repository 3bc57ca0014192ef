package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/itish2003/meetassist/services"
)

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1.txt", "sub/2.vtt", "sub/deeper/3.pdf", "sub/skip.docx"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	files, err := collectFiles([]string{dir})
	require.NoError(t, err)
	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.ElementsMatch(t, []string{"1.txt", "sub/2.vtt", "sub/deeper/3.pdf"}, rel)

	files, err = collectFiles([]string{filepath.Join(dir, "1.txt")})
	require.NoError(t, err)
	assert.Len(t, files, 1)

	_, err = collectFiles([]string{filepath.Join(dir, "sub", "skip.docx")})
	assert.ErrorIs(t, err, services.ErrUnsupportedFile)

	_, err = collectFiles([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "ingest", "reset", "chat", "mcp"} {
		assert.Contains(t, subcommands, name)
	}
}
