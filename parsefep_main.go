package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

const parseFEPversion string = "1.0"
const parseFEPPlatform string = "Linux"
const parseFEPArch string = "amd64"

// Main function - entry point for command line interface
func main() {

	// Get cmd line arguments without program name
	if len(os.Args) < 2 {
		help()
		return
	}

	iniPath := flag.String("i", "", "path to a settings INI file")
	dir := flag.String("d", "", "directory containing FEP_F and FEP_R result directories")
	outputLabel := flag.String("o", "", "label for output files")
	plot := flag.Bool("p", false, "export plot data files")
	decomp := flag.Bool("decomp", false, "decompose free energies into electrostatic and van der Waals contributions")
	verbose := flag.Bool("v", false, "print per-window correlation and BAR tables")
	flag.Parse()

	// Start from INI settings when provided, defaults otherwise
	var genPrm generalParameters
	opt := defaultAnalysisOptions()
	var err error
	if *iniPath != "" {
		absIniPath, err := filepath.Abs(*iniPath)
		if err != nil {
			reportFatal("Failed to compute absolute path to INI file at "+*iniPath, err)
		}
		genPrm, opt, err = getParams(absIniPath)
		if err != nil {
			reportFatal("Failed to read settings from INI file "+absIniPath, err)
		}
	} else {
		genPrm.targetDirectory, err = os.Getwd()
		if err != nil {
			reportFatal("Failed to determine current working directory", err)
		}
	}

	// Command line flags that were explicitly set override INI settings
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d":
			genPrm.targetDirectory = *dir
		case "o":
			opt.outputLabel = *outputLabel
		case "p":
			opt.plotEnabled = *plot
		case "decomp":
			opt.decompose = *decomp
		case "v":
			opt.verbose = *verbose
		}
	})

	genPrm.targetDirectory, err = filepath.Abs(genPrm.targetDirectory)
	if err != nil {
		reportFatal("Failed to compute absolute path to target directory", err)
	}

	// Set application working directory to target directory so summary and
	// result files land next to the data
	err = os.Chdir(genPrm.targetDirectory)
	if err != nil {
		reportFatal("Failed to move working directory to: "+genPrm.targetDirectory, err)
	}

	if err := runParseFEP(genPrm, opt); err != nil {
		reportFatal("Analysis failed", err)
	}
}

// runParseFEP loads both directions and runs the channel analysis
func runParseFEP(genPrm generalParameters, opt analysisOptions) error {
	fwdWindows, err := loadDirection(genPrm, opt, "F")
	if err != nil {
		return err
	}
	revWindows, err := loadDirection(genPrm, opt, "R")
	if err != nil {
		return err
	}

	rep := newReporter(os.Stdout, opt.verbose)

	var p plotter
	if opt.plotEnabled {
		fmt.Println("   Exporting plot data")
		p = dataFilePlotter{directory: genPrm.targetDirectory, label: opt.outputLabel}
	}

	composite, err := AnalysisManager(fwdWindows, revWindows, opt, timeseriesAnalyzer{}, newBAREstimator(), rep, p)
	if err != nil {
		return err
	}

	return writeResultsFile(genPrm.targetDirectory, opt.outputLabel, composite)
}

// loadDirection concatenates and parses one direction's raw results
func loadDirection(genPrm generalParameters, opt analysisOptions, direction string) ([]windowSamples, error) {
	resultsDir, err := directionResultsDir(genPrm.targetDirectory, direction)
	if err != nil {
		return nil, err
	}

	fepoutPath, err := concatFepout(resultsDir, opt.outputLabel, direction)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fepoutPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open summary file %s: %w", fepoutPath, err)
	}
	defer file.Close()

	windows, err := parseFEPStream(file)
	if err != nil {
		return nil, fmt.Errorf("direction %s: %w", direction, err)
	}
	return windows, nil
}

func help() {
	fmt.Println()
	fmt.Println("goParseFEP v" + parseFEPversion)
	fmt.Println("Compiled for " + parseFEPPlatform + "-" + parseFEPArch)
	fmt.Println()
	fmt.Println("Analyzes forward/reverse FEP simulations from NAMD with the Bennett acceptance ratio")
	fmt.Println()
	fmt.Println("The target directory must contain FEP_F/results and FEP_R/results with the")
	fmt.Println("per-window *.fepout output files (gzip-compressed files are accepted)")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -i path    settings INI file with \"general\" and \"analysis\" blocks")
	fmt.Println("  -d path    target directory (default: current directory)")
	fmt.Println("  -o label   output file label (default: \"results\")")
	fmt.Println("  -decomp    also analyze the electrostatic and van der Waals channels")
	fmt.Println("  -v         print per-window correlation times and BAR tables")
	fmt.Println("  -p         export plot-ready data files for an external renderer")
	fmt.Println()
	fmt.Println("Usage: \"goparsefep -d path/to/fep -o results -decomp -v\"")
	fmt.Println()
}
