package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Concat: combines per-window fepout result files into one per-direction stream
// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// concatFepout combines all per-window *.fepout results of one direction into
// a single summary file in numeric filename order, so window segments appear
// in the order the windows were simulated. Gzip-compressed members
// (*.fepout.gz) are decompressed on the fly. If the summary file already
// exists it is reused and a warning is printed.
func concatFepout(resultsDir string, label string, direction string) (string, error) {
	memberPaths, err := findFepoutFiles(resultsDir)
	if err != nil {
		return "", err
	}
	if len(memberPaths) == 0 {
		return "", errors.New("no *.fepout files found in directory " + resultsDir)
	}

	outPath := label + "_" + direction + ".fepout"

	// Don't rebuild an existing summary - rerunning the analysis on the same
	// dataset is the common case
	exists, err := pathExists(outPath)
	if err != nil {
		return "", err
	}
	if exists {
		fmt.Println("!!!WARNING: " + outPath + " already exists")
		return outPath, nil
	}

	fmt.Println("Concatenating " + outPath)
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Println("Failed to create summary file: " + outPath)
		return "", err
	}
	defer out.Close()

	for _, member := range memberPaths {
		if err := appendFepoutFile(out, member); err != nil {
			return "", err
		}
	}

	return outPath, nil
}

// findFepoutFiles lists the per-window result files of a directory in
// numeric order. Plain and gzip-compressed files are both accepted.
func findFepoutFiles(resultsDir string) ([]string, error) {
	entries, err := os.ReadDir(resultsDir)
	if err != nil {
		fmt.Println("Failed to read directory " + resultsDir)
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".fepout") || strings.HasSuffix(name, ".fepout.gz") {
			names = append(names, name)
		}
	}

	less := func(i, j int) bool {
		return numericLess(names[i], names[j])
	}
	sort.Slice(names, less)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(resultsDir, name)
	}
	return paths, nil
}

// appendFepoutFile copies the contents of one per-window result file into the
// summary file, decompressing gzip members transparently.
func appendFepoutFile(out io.Writer, path string) error {
	sourceFile, err := os.Open(path)
	if err != nil {
		fmt.Println("failed to open file: " + path)
		return err
	}
	defer sourceFile.Close()

	var reader io.Reader = sourceFile
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(sourceFile)
		if err != nil {
			fmt.Println("failed to read gzip header of file: " + path)
			return err
		}
		defer gz.Close()
		reader = gz
	}

	_, err = io.Copy(out, reader)
	if err != nil {
		fmt.Println("failed to copy contents of file: " + path)
		return err
	}
	return nil
}

// directionResultsDir resolves the conventional layout of one direction's raw
// results: <target>/FEP_<D>/results for D in {F, R}.
func directionResultsDir(targetDirectory string, direction string) (string, error) {
	dir := filepath.Join(targetDirectory, "FEP_"+direction, "results")
	exists, err := pathExists(dir)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", errors.New("no such file or directory '" + dir + "'")
	}
	return dir, nil
}
