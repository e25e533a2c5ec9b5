// Package models defines the data records produced by the unlocker.
package models

// SheetStatus describes the outcome of processing one sheet.
type SheetStatus string

const (
	// StatusUnlocked means the sheet was protected and is now unlocked.
	StatusUnlocked SheetStatus = "unlocked"
	// StatusAlreadyUnlocked means the sheet carried no protection.
	StatusAlreadyUnlocked SheetStatus = "already_unlocked"
	// StatusFailed means every unlock attempt errored; the sheet is left as-is.
	StatusFailed SheetStatus = "failed"
)

// SheetResult records the outcome for a single sheet.
type SheetResult struct {
	// Name is the sheet name.
	Name string `json:"name"`
	// Status is the processing outcome.
	Status SheetStatus `json:"status"`
	// Error holds the failure detail when Status is StatusFailed.
	Error string `json:"error,omitempty"`
}

// FileReport summarizes one workbook run.
type FileReport struct {
	// InputPath is the workbook that was read.
	InputPath string `json:"input_path"`
	// OutputPath is where the unlocked copy was written.
	OutputPath string `json:"output_path"`
	// Sheets holds per-sheet outcomes in workbook order.
	Sheets []SheetResult `json:"sheets"`
	// Unlocked counts sheets that went from protected to unprotected.
	Unlocked int `json:"unlocked"`
	// AlreadyUnlocked counts sheets that carried no protection.
	AlreadyUnlocked int `json:"already_unlocked"`
	// Failed counts sheets left untouched after all attempts errored.
	Failed int `json:"failed"`
	// WorkbookProtectionCleared reports whether workbook-level structure
	// protection was present and removed.
	WorkbookProtectionCleared bool `json:"workbook_protection_cleared,omitempty"`
}

// FileOutcome pairs a discovered file with its run result.
type FileOutcome struct {
	// Path is the workbook path.
	Path string `json:"path"`
	// Report is the per-file report; nil when the file failed to load.
	Report *FileReport `json:"report,omitempty"`
	// Error holds the failure detail for whole-file failures.
	Error string `json:"error,omitempty"`
}

// BatchReport summarizes a directory run.
type BatchReport struct {
	// Dir is the directory that was scanned.
	Dir string `json:"dir"`
	// Outcomes holds per-file results in processing order.
	Outcomes []FileOutcome `json:"outcomes"`
	// Processed counts files attempted.
	Processed int `json:"processed"`
	// Succeeded counts files saved successfully.
	Succeeded int `json:"succeeded"`
}
