package unlocker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/moritahr/xlsunlock-go/pkg/unlocker/models"
	"github.com/moritahr/xlsunlock-go/pkg/unlocker/parser"
	"github.com/xuri/excelize/v2"
)

// UnlockFile removes sheet-level protection from every sheet of a workbook
// and saves the result to outputPath. An empty outputPath derives
// "<stem><suffix><ext>" next to the input. Per-sheet failures are recorded in
// the report and do not abort the run; the returned error covers whole-file
// failures only (missing input, unreadable container, save errors).
func UnlockFile(inputPath, outputPath string, opts Options) (*models.FileReport, error) {
	log := opts.logw()

	if _, err := os.Stat(inputPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}
		return nil, err
	}

	kind, err := parser.SniffContainer(inputPath)
	if err == nil {
		switch kind {
		case parser.ContainerLegacyWorkbook:
			return nil, fmt.Errorf("%w: %s (convert it to .xlsx first)", ErrLegacyFormat, inputPath)
		case parser.ContainerOLE, parser.ContainerUnknown:
			return nil, fmt.Errorf("%w: %s", ErrNotWorkbook, inputPath)
		}
	}

	fmt.Fprintf(log, "loading workbook: %s\n", inputPath)

	// Best-effort read of prior protection state. A failed read leaves
	// prior nil and every sheet is treated as protected.
	prior, err := parser.ReadSheetProtection(inputPath)
	if err != nil {
		prior = nil
	}
	hadWorkbookProtection, wbErr := parser.ReadWorkbookProtection(inputPath)
	if wbErr != nil {
		// unreadable state gets the same conservative default as sheets
		hadWorkbookProtection = true
	}

	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("permission denied reading %s (close the file in Excel and retry): %w", inputPath, err)
		}
		return nil, fmt.Errorf("loading %s: %w", inputPath, err)
	}
	defer f.Close()

	report := &models.FileReport{InputPath: inputPath}

	for _, sheetName := range f.GetSheetList() {
		fmt.Fprintf(log, "processing sheet %q\n", sheetName)

		wasProtected := true
		if prior != nil {
			if d, ok := prior[sheetName]; ok {
				wasProtected = !d.Unlocked()
			}
		}

		res := stripSheet(f, sheetName, wasProtected)
		report.Sheets = append(report.Sheets, res)

		switch res.Status {
		case models.StatusUnlocked:
			report.Unlocked++
			fmt.Fprintf(log, "unlocked sheet %q\n", sheetName)
		case models.StatusAlreadyUnlocked:
			report.AlreadyUnlocked++
			fmt.Fprintf(log, "sheet %q was already unlocked\n", sheetName)
		case models.StatusFailed:
			report.Failed++
			fmt.Fprintf(log, "could not unlock sheet %q: %s (left as-is)\n", sheetName, res.Error)
		}
	}

	if !opts.KeepWorkbookProtection && hadWorkbookProtection {
		if err := f.UnprotectWorkbook(); err == nil {
			report.WorkbookProtectionCleared = true
			fmt.Fprintf(log, "cleared workbook-level protection\n")
		} else {
			fmt.Fprintf(log, "could not clear workbook-level protection: %v\n", err)
		}
	}

	out := resolveOutputPath(inputPath, outputPath, opts.OutputSuffix())
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return report, fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(log, "saving unlocked file: %s\n", out)
	if err := f.SaveAs(out); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return report, fmt.Errorf("permission denied writing %s (close the file in Excel and retry): %w", out, err)
		}
		return report, fmt.Errorf("saving %s: %w", out, err)
	}
	report.OutputPath = out

	fmt.Fprintf(log, "unlocked %d of %d sheets (%d already unlocked, %d failed)\n",
		report.Unlocked, len(report.Sheets), report.AlreadyUnlocked, report.Failed)

	return report, nil
}

// resolveOutputPath derives the output path when none is given: the input
// filename with suffix inserted before the extension, in the same directory.
func resolveOutputPath(inputPath, outputPath, suffix string) string {
	if outputPath != "" {
		return outputPath
	}
	ext := filepath.Ext(inputPath)
	stem := strings.TrimSuffix(filepath.Base(inputPath), ext)
	return filepath.Join(filepath.Dir(inputPath), stem+suffix+ext)
}
