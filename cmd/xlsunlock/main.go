// Package main provides the CLI entry point for xlsunlock-go.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/moritahr/xlsunlock-go/pkg/unlocker"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	outputSuffix           string
	keepWorkbookProtection bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xlsunlock [input_path] [output_path]",
		Short: "Remove sheet protection from Excel workbooks",
		Long: `xlsunlock removes sheet-level protection from Excel files without
requiring the original password. It rewrites each sheet's protection
metadata and saves an unlocked copy of the workbook.

With a directory as input, every Excel file in it is processed.
With no arguments, an interactive prompt is shown.`,
		Args:         cobra.MaximumNArgs(2),
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&outputSuffix, "suffix", unlocker.DefaultSuffix, "Suffix for derived output filenames")
	rootCmd.Flags().BoolVar(&keepWorkbookProtection, "keep-workbook-protection", false, "Leave workbook-level protection in place")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	opts := unlocker.DefaultOptions()
	opts.Suffix = outputSuffix
	opts.KeepWorkbookProtection = keepWorkbookProtection

	if len(args) == 0 {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("no input path given (interactive mode requires a terminal)")
		}
		return runInteractive(opts)
	}

	inputPath := args[0]
	info, err := os.Stat(inputPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	if err == nil && info.IsDir() {
		return runBatch(inputPath, opts)
	}

	outputPath := ""
	if len(args) == 2 {
		outputPath = args[1]
	}
	return runSingle(inputPath, outputPath, opts)
}

func runSingle(inputPath, outputPath string, opts unlocker.Options) error {
	report, err := unlocker.UnlockFile(inputPath, outputPath, opts)
	if err != nil {
		return err
	}
	fmt.Printf("done: %s\n", report.OutputPath)
	return nil
}

func runBatch(dir string, opts unlocker.Options) error {
	_, err := unlocker.UnlockDir(dir, opts)
	return err
}

func runInteractive(opts unlocker.Options) error {
	fmt.Println("Excel Sheet Unlocker")
	fmt.Println("====================")
	fmt.Println("This tool removes sheet protection without needing passwords")
	fmt.Println()
	fmt.Println("Choose an option:")
	fmt.Println("1. Process a single file")
	fmt.Println("2. Process all Excel files in a folder")

	scanner := bufio.NewScanner(os.Stdin)

	choice, err := prompt(scanner, "\nEnter your choice (1 or 2): ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		inputPath, err := prompt(scanner, "\nPath to the Excel file: ")
		if err != nil {
			return err
		}
		outputPath, err := prompt(scanner, "Custom output path (press Enter to auto-name): ")
		if err != nil {
			return err
		}
		fmt.Println()
		return runSingle(trimQuotes(inputPath), trimQuotes(outputPath), opts)
	case "2":
		dir, err := prompt(scanner, "\nFolder containing Excel files: ")
		if err != nil {
			return err
		}
		fmt.Println()
		return runBatch(trimQuotes(dir), opts)
	default:
		return fmt.Errorf("invalid choice %q (must be 1 or 2)", choice)
	}
}

func prompt(scanner *bufio.Scanner, msg string) (string, error) {
	fmt.Print(msg)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("input closed")
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// trimQuotes strips surrounding quotes left by drag-and-drop into a terminal.
func trimQuotes(s string) string {
	return strings.Trim(s, `"'`)
}
