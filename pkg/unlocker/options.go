// Package unlocker removes sheet-level protection from Excel workbook files
// without requiring the original password.
package unlocker

import (
	"io"
	"os"
)

// DefaultSuffix is appended to the input filename stem when no explicit
// output path is given.
const DefaultSuffix = "_unlocked"

// Options configures unlock behavior.
type Options struct {
	// Suffix is the output filename suffix used when no explicit output
	// path is given. Empty means DefaultSuffix.
	Suffix string
	// KeepWorkbookProtection leaves workbook-level structure/window
	// protection in place instead of clearing it alongside sheet
	// protection.
	KeepWorkbookProtection bool
	// Log receives progress and status lines. Nil means os.Stdout.
	Log io.Writer
}

// DefaultOptions returns default unlock options.
func DefaultOptions() Options {
	return Options{
		Suffix: DefaultSuffix,
	}
}

// OutputSuffix returns the effective output filename suffix.
func (o Options) OutputSuffix() string {
	if o.Suffix != "" {
		return o.Suffix
	}
	return DefaultSuffix
}

func (o Options) logw() io.Writer {
	if o.Log != nil {
		return o.Log
	}
	return os.Stdout
}
