package main

import (
	"os"
	"strconv"
	"unicode"
)

// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Auxiliary: contains utility functions with usage in multiple parts of the program
// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// exists returns whether the given file or directory exists
func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	// file exists and no error
	if err == nil {
		return true, nil
	}
	// file does not exist and no error
	if os.IsNotExist(err) {
		return false, nil
	}
	// file exists and error
	return true, err
}

// numericChunks splits a string into alternating runs of non-digit and digit
// characters, so "fep15.fepout" becomes ["fep", "15", ".fepout"]
func numericChunks(s string) []string {
	var chunks []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || isDigitByte(s[i]) != isDigitByte(s[i-1]) {
			chunks = append(chunks, s[start:i])
			start = i
		}
	}
	return chunks
}

func isDigitByte(b byte) bool {
	return unicode.IsDigit(rune(b))
}

// numericLess orders strings with embedded numbers numerically, so fep2
// sorts before fep10. Non-digit chunks compare as plain strings.
func numericLess(a string, b string) bool {
	ca, cb := numericChunks(a), numericChunks(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		if ca[i] == cb[i] {
			continue
		}
		na, errA := strconv.Atoi(ca[i])
		nb, errB := strconv.Atoi(cb[i])
		if errA == nil && errB == nil {
			return na < nb
		}
		return ca[i] < cb[i]
	}
	return len(ca) < len(cb)
}
