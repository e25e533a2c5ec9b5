package parser

import (
	"bytes"
	"os"

	"github.com/richardlehane/mscfb"
)

// ContainerKind identifies the on-disk container format of a workbook file.
type ContainerKind int

const (
	// ContainerUnknown means the file matches no known workbook container.
	ContainerUnknown ContainerKind = iota
	// ContainerOOXML is a zip-based xlsx/xlsm container.
	ContainerOOXML
	// ContainerLegacyWorkbook is an OLE compound file holding a BIFF
	// Workbook stream (.xls).
	ContainerLegacyWorkbook
	// ContainerOLE is an OLE compound file without a workbook stream
	// (e.g. a .doc renamed to .xls).
	ContainerOLE
)

var (
	zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}
	oleMagic = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}
)

// SniffContainer classifies a file by its container format without parsing
// workbook content.
func SniffContainer(path string) (ContainerKind, error) {
	f, err := os.Open(path)
	if err != nil {
		return ContainerUnknown, err
	}
	defer f.Close()

	magic := make([]byte, 8)
	n, err := f.Read(magic)
	if err != nil || n < len(magic) {
		return ContainerUnknown, nil
	}

	switch {
	case bytes.HasPrefix(magic, zipMagic):
		return ContainerOOXML, nil
	case bytes.Equal(magic, oleMagic):
		if hasWorkbookStream(f) {
			return ContainerLegacyWorkbook, nil
		}
		return ContainerOLE, nil
	default:
		return ContainerUnknown, nil
	}
}

// hasWorkbookStream walks the compound file directory looking for the BIFF
// workbook stream ("Workbook" in BIFF8, "Book" in BIFF5).
func hasWorkbookStream(f *os.File) bool {
	doc, err := mscfb.New(f)
	if err != nil {
		return false
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name == "Workbook" || entry.Name == "Book" {
			return true
		}
	}
	return false
}
