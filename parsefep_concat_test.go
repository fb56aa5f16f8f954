package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestConcatFepoutNumericOrder(t *testing.T) {
	resultsDir := t.TempDir()
	// deliberately created out of order; numeric sort must put fep2 before fep10
	require.NoError(t, os.WriteFile(filepath.Join(resultsDir, "fep10.fepout"), []byte("ten\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(resultsDir, "fep2.fepout"), []byte("two\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(resultsDir, "fep1.fepout"), []byte("one\n"), 0644))
	// non-fepout files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(resultsDir, "notes.txt"), []byte("skip\n"), 0644))

	chdir(t, t.TempDir())
	outPath, err := concatFepout(resultsDir, "results", "F")
	require.NoError(t, err)
	assert.Equal(t, "results_F.fepout", outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nten\n", string(data))
}

func TestConcatFepoutGzipMembers(t *testing.T) {
	resultsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(resultsDir, "fep1.fepout"), []byte("plain\n"), 0644))

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("compressed\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(filepath.Join(resultsDir, "fep2.fepout.gz"), buf.Bytes(), 0644))

	chdir(t, t.TempDir())
	outPath, err := concatFepout(resultsDir, "results", "R")
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "plain\ncompressed\n", string(data))
}

func TestConcatFepoutReusesExistingSummary(t *testing.T) {
	resultsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(resultsDir, "fep1.fepout"), []byte("new data\n"), 0644))

	workDir := t.TempDir()
	chdir(t, workDir)
	require.NoError(t, os.WriteFile("results_F.fepout", []byte("old data\n"), 0644))

	outPath, err := concatFepout(resultsDir, "results", "F")
	require.NoError(t, err)

	// existing summary is kept, not rebuilt
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "old data\n", string(data))
}

func TestConcatFepoutEmptyDirectory(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := concatFepout(t.TempDir(), "results", "F")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no *.fepout files")
}

func TestDirectionResultsDir(t *testing.T) {
	target := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(target, "FEP_F", "results"), 0755))

	dir, err := directionResultsDir(target, "F")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(target, "FEP_F", "results"), dir)

	_, err = directionResultsDir(target, "R")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such file or directory")
}
