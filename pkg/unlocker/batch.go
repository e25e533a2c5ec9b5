package unlocker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/moritahr/xlsunlock-go/pkg/unlocker/models"
)

// excelExtensions is the fixed set of extensions discovered in batch mode,
// matched case-insensitively.
var excelExtensions = []string{".xlsx", ".xlsm", ".xls"}

// UnlockDir runs UnlockFile over every Excel file directly inside dir.
// A single file's failure does not stop the batch. The returned error covers
// an unusable directory or an empty scan; per-file failures live in the
// report.
func UnlockDir(dir string, opts Options) (*models.BatchReport, error) {
	log := opts.logw()

	files, err := DiscoverExcelFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return &models.BatchReport{Dir: dir}, fmt.Errorf("%w: %s", ErrNoExcelFiles, dir)
	}

	fmt.Fprintf(log, "found %d Excel file(s) to process\n", len(files))

	report := &models.BatchReport{Dir: dir, Processed: len(files)}
	for i, path := range files {
		fmt.Fprintf(log, "--- processing file %d/%d: %s ---\n", i+1, len(files), filepath.Base(path))

		fileReport, err := UnlockFile(path, "", opts)
		outcome := models.FileOutcome{Path: path, Report: fileReport}
		if err != nil {
			outcome.Error = err.Error()
			fmt.Fprintf(log, "error: %v\n", err)
		} else {
			report.Succeeded++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	fmt.Fprintf(log, "final results: %d/%d files processed successfully\n", report.Succeeded, report.Processed)

	return report, nil
}

// DiscoverExcelFiles lists regular files in dir whose extension matches the
// supported set, case-insensitively. The scan is non-recursive; each distinct
// path appears exactly once, sorted.
func DiscoverExcelFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	seen := make(map[string]bool)
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !hasExcelExtension(entry.Name()) {
			continue
		}
		path := filepath.Clean(filepath.Join(dir, entry.Name()))
		if seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}

	sort.Strings(files)
	return files, nil
}

func hasExcelExtension(name string) bool {
	ext := filepath.Ext(name)
	for _, want := range excelExtensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
