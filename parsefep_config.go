package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Config: reads INI settings files and produces the parameter structs
// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// Contains fields for parameters relevant to locating the dataset
type generalParameters struct {
	targetDirectory string
}

// Read INI file and return analysis params
func getParams(iniPath string) (generalParameters, analysisOptions, error) {
	var genPrm generalParameters
	opt := defaultAnalysisOptions()

	// Get lines of INI with comment blocks and empty lines removed
	lines, err := getSanitizedINIData(iniPath)
	if err != nil {
		return genPrm, opt, fmt.Errorf("failed to clean comments from ini file %s: %w", iniPath, err)
	}

	// Identify keyword blocks in lines
	blocks, err := getBlocks(lines)
	if err != nil {
		return genPrm, opt, err
	}

	// Set counters to make sure duplicate blocks are not defined
	genPrmCounter := 0
	analysisPrmCounter := 0

	for _, b := range blocks {
		paramsMap := b.generateParamsMap()
		switch b.blockType {
		case "general":
			genPrm, err = generateGenParams(paramsMap)
			if err != nil {
				return genPrm, opt, err
			}
			genPrmCounter++
		case "analysis":
			opt, err = generateAnalysisOptions(paramsMap, opt)
			if err != nil {
				return genPrm, opt, err
			}
			analysisPrmCounter++
		default:
			return genPrm, opt, errors.New("unrecognized keyword in INI file: " + b.blockType)
		}
	}

	// Make sure correct number of blocks are defined. The analysis block is
	// optional since every one of its settings has a default.
	if genPrmCounter != 1 {
		return genPrm, opt, errors.New("missing \"general\" block or multiple \"general\" blocks defined in INI file")
	}
	if analysisPrmCounter > 1 {
		return genPrm, opt, errors.New("multiple \"analysis\" blocks defined in INI file")
	}

	return genPrm, opt, nil
}

func defaultAnalysisOptions() analysisOptions {
	return analysisOptions{outputLabel: "results"}
}

// Removes comment blocks and empty lines from a file - only suitable for short files!
func getSanitizedINIData(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open INI file %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := cleanLine(scanner.Text())
		if len(strings.TrimSpace(line)) > 0 {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// removes comment blocks from a line (string)
func cleanLine(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// get all keyword blocks in cleaned ini
func getBlocks(lines []string) ([]block, error) {
	// valid block literals
	blockLiterals := []string{"general", "analysis"}

	// Find all instances of these block literals at the beginning of lines
	// and save the line numbers they were seen at. Block headers stand alone
	// on their line; parameter lines always carry a value, so a lone unknown
	// keyword is a misspelled block.
	var dividers []int
	for i := 0; i < len(lines); i++ {
		tokens := strings.Fields(lines[i])
		known := false
		for _, literal := range blockLiterals {
			if tokens[0] == literal {
				dividers = append(dividers, i)
				known = true
				break
			}
		}
		if !known && len(tokens) == 1 {
			return nil, errors.New("unrecognized keyword in INI file: " + tokens[0])
		}
	}
	if len(dividers) == 0 {
		return nil, errors.New("no recognized blocks found in INI file - expected \"general\" and optionally \"analysis\"")
	}

	// make a block struct for each divider, copying the lines between
	// dividers into the struct
	blocks := make([]block, len(dividers))
	for i := 0; i < len(dividers); i++ {
		blocks[i].blockType = strings.Fields(lines[dividers[i]])[0]
		startSlice := dividers[i] + 1
		if i < len(dividers)-1 {
			blocks[i].lines = lines[startSlice:dividers[i+1]]
		} else {
			blocks[i].lines = lines[startSlice:]
		}
	}
	return blocks, nil
}

// Get map of parameters from block lines
func (b block) generateParamsMap() map[string][]string {
	paramsMap := map[string][]string{}
	for _, line := range b.lines {
		tokens := strings.Fields(line)
		key := tokens[0]
		paramsMap[key] = tokens[1:]
	}
	return paramsMap
}

// Generate general parameters struct from parameters map
func generateGenParams(paramsMap map[string][]string) (generalParameters, error) {
	prm := generalParameters{}
	var err error

	if values, ok := paramsMap["targetDirectory"]; ok && len(values) > 0 {
		prm.targetDirectory = values[0]
	} else {
		// targetDirectory not specified - assumed to be current working directory
		prm.targetDirectory, err = os.Getwd()
		if err != nil {
			return prm, fmt.Errorf("error while setting target directory to current working directory: %w", err)
		}
	}

	exists, err := pathExists(prm.targetDirectory)
	if err != nil {
		return prm, fmt.Errorf("error while verifying existence of directory \"%s\": %w", prm.targetDirectory, err)
	}
	if !exists {
		return prm, errors.New("directory specified in INI \"" + prm.targetDirectory + "\" does not exist")
	}

	return prm, nil
}

// Generate analysis options from parameters map, on top of the defaults
func generateAnalysisOptions(paramsMap map[string][]string, opt analysisOptions) (analysisOptions, error) {
	if values, ok := paramsMap["outputLabel"]; ok && len(values) > 0 {
		opt.outputLabel = values[0]
	}
	if len(opt.outputLabel) < 1 {
		return opt, errors.New("parameter \"outputLabel\" in block \"analysis\" must be at least one character in length")
	}

	boolParams := []struct {
		key    string
		target *bool
	}{
		{"decompose", &opt.decompose},
		{"verbose", &opt.verbose},
		{"plot", &opt.plotEnabled},
	}
	for _, p := range boolParams {
		values, ok := paramsMap[p.key]
		if !ok {
			continue
		}
		if len(values) < 1 {
			return opt, errors.New("parameter \"" + p.key + "\" in block \"analysis\" has no value - use true or false")
		}
		v, err := strconv.ParseBool(values[0])
		if err != nil {
			return opt, errors.New("parameter \"" + p.key + "\" in block \"analysis\" must be true or false, got \"" + values[0] + "\"")
		}
		*p.target = v
	}

	return opt, nil
}

// Derived from a keyword section of the ini file
type block struct {
	// type: general or analysis
	blockType string
	// lines of ini inside the block
	lines []string
}
