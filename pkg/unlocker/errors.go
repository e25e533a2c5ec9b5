package unlocker

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrLegacyFormat indicates a BIFF (.xls) workbook, which cannot be rewritten.
var ErrLegacyFormat = errors.New("legacy .xls format is not supported")

// ErrNotWorkbook indicates the file is not an Excel workbook container.
var ErrNotWorkbook = errors.New("not an Excel workbook")

// ErrNoExcelFiles indicates a directory scan found nothing to process.
var ErrNoExcelFiles = errors.New("no Excel files found")

// SheetUnlockError represents an exhausted unlock attempt on one sheet.
// The terminal failure comes from the rebuild tier; when the direct
// descriptor removal errored first, that error is folded into Err.
type SheetUnlockError struct {
	SheetName string
	Err       error
}

func (e *SheetUnlockError) Error() string {
	return fmt.Sprintf("unlock failed for sheet %q: %v", e.SheetName, e.Err)
}

func (e *SheetUnlockError) Unwrap() error {
	return e.Err
}
