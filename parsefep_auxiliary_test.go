package main

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericLess(t *testing.T) {
	assert.True(t, numericLess("fep2.fepout", "fep10.fepout"))
	assert.False(t, numericLess("fep10.fepout", "fep2.fepout"))
	assert.True(t, numericLess("fep1.fepout", "fep1a.fepout"))
	assert.False(t, numericLess("b1", "a2"))
}

func TestNumericLessSortsWindows(t *testing.T) {
	names := []string{"win12.fepout", "win2.fepout", "win1.fepout", "win10.fepout"}
	sort.Slice(names, func(i, j int) bool { return numericLess(names[i], names[j]) })
	assert.Equal(t, []string{"win1.fepout", "win2.fepout", "win10.fepout", "win12.fepout"}, names)
}

func TestNumericChunks(t *testing.T) {
	assert.Equal(t, []string{"fep", "15", ".fepout"}, numericChunks("fep15.fepout"))
	assert.Equal(t, []string{"5"}, numericChunks("5"))
	assert.Equal(t, []string{"abc"}, numericChunks("abc"))
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()

	exists, err := pathExists(dir)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = pathExists(dir + "/nope")
	require.NoError(t, err)
	assert.False(t, exists)
}
