package unlocker

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/moritahr/xlsunlock-go/pkg/unlocker/parser"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook creates a workbook with the given sheets, protecting the
// ones named in protected with a password and no allowed actions.
func writeWorkbook(t *testing.T, path string, sheets []string, protected map[string]bool) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName failed: %v", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("NewSheet failed: %v", err)
			}
		}
		if err := f.SetCellValue(name, "A1", "data"); err != nil {
			t.Fatalf("SetCellValue failed: %v", err)
		}
	}

	for _, name := range sheets {
		if !protected[name] {
			continue
		}
		err := f.ProtectSheet(name, &excelize.SheetProtectionOptions{
			AlgorithmName: "SHA-512",
			Password:      "secret",
		})
		if err != nil {
			t.Fatalf("ProtectSheet failed: %v", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
}

func quietOptions() Options {
	opts := DefaultOptions()
	opts.Log = io.Discard
	return opts
}

func TestUnlockFileRemovesProtection(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "book.xlsx")
	writeWorkbook(t, input, []string{"Locked1", "Open", "Locked2"}, map[string]bool{
		"Locked1": true,
		"Locked2": true,
	})

	report, err := UnlockFile(input, "", quietOptions())
	if err != nil {
		t.Fatalf("UnlockFile failed: %v", err)
	}

	if report.Unlocked != 2 {
		t.Errorf("Expected 2 unlocked sheets, got %d", report.Unlocked)
	}
	if report.AlreadyUnlocked != 1 {
		t.Errorf("Expected 1 already-unlocked sheet, got %d", report.AlreadyUnlocked)
	}
	if report.Failed != 0 {
		t.Errorf("Expected 0 failed sheets, got %d", report.Failed)
	}

	wantOut := filepath.Join(tmpDir, "book_unlocked.xlsx")
	if report.OutputPath != wantOut {
		t.Errorf("Expected output path %q, got %q", wantOut, report.OutputPath)
	}
	if _, err := os.Stat(wantOut); err != nil {
		t.Fatalf("Output file missing: %v", err)
	}

	descriptors, err := parser.ReadSheetProtection(wantOut)
	if err != nil {
		t.Fatalf("ReadSheetProtection failed: %v", err)
	}
	for _, name := range []string{"Locked1", "Open", "Locked2"} {
		d, ok := descriptors[name]
		if !ok {
			t.Fatalf("Sheet %q missing from output", name)
		}
		if !d.Unlocked() {
			t.Errorf("Sheet %q still locked in output", name)
		}
	}
}

func TestUnlockFileIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "book.xlsx")
	writeWorkbook(t, input, []string{"A", "B"}, map[string]bool{"A": true})

	first, err := UnlockFile(input, "", quietOptions())
	if err != nil {
		t.Fatalf("First UnlockFile failed: %v", err)
	}

	second, err := UnlockFile(first.OutputPath, "", quietOptions())
	if err != nil {
		t.Fatalf("Second UnlockFile failed: %v", err)
	}
	if second.Unlocked != 0 {
		t.Errorf("Expected 0 unlocked sheets on second run, got %d", second.Unlocked)
	}
	if second.AlreadyUnlocked != 2 {
		t.Errorf("Expected 2 already-unlocked sheets on second run, got %d", second.AlreadyUnlocked)
	}
}

func TestUnlockFileCreatesOutputDir(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "book.xlsx")
	writeWorkbook(t, input, []string{"A"}, map[string]bool{"A": true})

	output := filepath.Join(tmpDir, "nested", "deep", "out.xlsx")
	report, err := UnlockFile(input, output, quietOptions())
	if err != nil {
		t.Fatalf("UnlockFile failed: %v", err)
	}
	if report.OutputPath != output {
		t.Errorf("Expected output path %q, got %q", output, report.OutputPath)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("Output file missing: %v", err)
	}
}

func TestUnlockFileMissingInput(t *testing.T) {
	_, err := UnlockFile(filepath.Join(t.TempDir(), "missing.xlsx"), "", quietOptions())
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}

func TestUnlockFileLegacyFormat(t *testing.T) {
	_, err := UnlockFile(filepath.Join("testdata", "legacy.xls"), "", quietOptions())
	if !errors.Is(err, ErrLegacyFormat) {
		t.Errorf("Expected ErrLegacyFormat, got %v", err)
	}
}

func TestUnlockFileNotWorkbook(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "fake.xlsx")
	if err := os.WriteFile(input, []byte("not a workbook at all"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := UnlockFile(input, "", quietOptions())
	if !errors.Is(err, ErrNotWorkbook) {
		t.Errorf("Expected ErrNotWorkbook, got %v", err)
	}
}

func TestUnlockFileClearsWorkbookProtection(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "book.xlsx")

	f := excelize.NewFile()
	err := f.ProtectWorkbook(&excelize.WorkbookProtectionOptions{
		AlgorithmName: "SHA-512",
		Password:      "secret",
		LockStructure: true,
	})
	if err != nil {
		t.Fatalf("ProtectWorkbook failed: %v", err)
	}
	if err := f.SaveAs(input); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	f.Close()

	report, err := UnlockFile(input, "", quietOptions())
	if err != nil {
		t.Fatalf("UnlockFile failed: %v", err)
	}
	if !report.WorkbookProtectionCleared {
		t.Error("Expected workbook protection to be cleared")
	}
	protected, err := parser.ReadWorkbookProtection(report.OutputPath)
	if err != nil {
		t.Fatalf("ReadWorkbookProtection failed: %v", err)
	}
	if protected {
		t.Error("Workbook protection still present in output")
	}
}

func TestUnlockFileKeepsWorkbookProtection(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "book.xlsx")

	f := excelize.NewFile()
	err := f.ProtectWorkbook(&excelize.WorkbookProtectionOptions{
		AlgorithmName: "SHA-512",
		Password:      "secret",
		LockStructure: true,
	})
	if err != nil {
		t.Fatalf("ProtectWorkbook failed: %v", err)
	}
	if err := f.SaveAs(input); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	f.Close()

	opts := quietOptions()
	opts.KeepWorkbookProtection = true
	report, err := UnlockFile(input, "", opts)
	if err != nil {
		t.Fatalf("UnlockFile failed: %v", err)
	}
	if report.WorkbookProtectionCleared {
		t.Error("Workbook protection should not have been cleared")
	}
	protected, err := parser.ReadWorkbookProtection(report.OutputPath)
	if err != nil {
		t.Fatalf("ReadWorkbookProtection failed: %v", err)
	}
	if !protected {
		t.Error("Workbook protection missing from output")
	}
}

// repackageWorkbookPart rewrites an xlsx so the workbook part lives at
// xl/book.xml instead of xl/workbook.xml, with the package relationships
// updated to match. The spreadsheet library resolves the part through the
// relationships; the protection pre-read, which addresses the standard part
// name, cannot.
func repackageWorkbookPart(t *testing.T, src, dst string) {
	t.Helper()

	r, err := zip.OpenReader(src)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer r.Close()

	out, err := os.Create(dst)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer out.Close()

	w := zip.NewWriter(out)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}

		name := f.Name
		switch name {
		case "xl/workbook.xml":
			name = "xl/book.xml"
		case "xl/_rels/workbook.xml.rels":
			name = "xl/_rels/book.xml.rels"
		case "_rels/.rels":
			data = bytes.ReplaceAll(data, []byte("xl/workbook.xml"), []byte("xl/book.xml"))
		case "[Content_Types].xml":
			data = bytes.ReplaceAll(data, []byte("/xl/workbook.xml"), []byte("/xl/book.xml"))
		}

		dw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Create entry failed: %v", err)
		}
		if _, err := dw.Write(data); err != nil {
			t.Fatalf("Write entry failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestUnlockFileUnreadableProtectionState(t *testing.T) {
	tmpDir := t.TempDir()
	orig := filepath.Join(tmpDir, "orig.xlsx")
	writeWorkbook(t, orig, []string{"Only"}, nil)

	input := filepath.Join(tmpDir, "moved.xlsx")
	repackageWorkbookPart(t, orig, input)

	report, err := UnlockFile(input, "", quietOptions())
	if err != nil {
		t.Fatalf("UnlockFile failed: %v", err)
	}

	// With the protection state unreadable, every sheet falls back to the
	// was-protected default and workbook protection is cleared anyway.
	if report.Unlocked != 1 {
		t.Errorf("Expected 1 unlocked sheet, got %d", report.Unlocked)
	}
	if report.AlreadyUnlocked != 0 {
		t.Errorf("Expected 0 already-unlocked sheets, got %d", report.AlreadyUnlocked)
	}
	if !report.WorkbookProtectionCleared {
		t.Error("Expected workbook protection to be cleared on an unreadable pre-read")
	}
}

func TestResolveOutputPath(t *testing.T) {
	tests := []struct {
		input    string
		output   string
		suffix   string
		expected string
	}{
		{filepath.Join("dir", "book.xlsx"), "", "_unlocked", filepath.Join("dir", "book_unlocked.xlsx")},
		{filepath.Join("dir", "book.XLSM"), "", "_unlocked", filepath.Join("dir", "book_unlocked.XLSM")},
		{"book.xlsx", "", "_open", "book_open.xlsx"},
		{"noext", "", "_unlocked", "noext_unlocked"},
		{filepath.Join("dir", "book.xlsx"), filepath.Join("other", "out.xlsx"), "_unlocked", filepath.Join("other", "out.xlsx")},
	}

	for _, tt := range tests {
		result := resolveOutputPath(tt.input, tt.output, tt.suffix)
		if result != tt.expected {
			t.Errorf("resolveOutputPath(%q, %q, %q) = %q, expected %q",
				tt.input, tt.output, tt.suffix, result, tt.expected)
		}
	}
}
