package unlocker

import (
	"fmt"

	"github.com/moritahr/xlsunlock-go/pkg/unlocker/models"
	"github.com/xuri/excelize/v2"
)

// stripSheet removes protection from a single sheet and classifies the
// outcome. wasProtected comes from a best-effort read of the prior
// descriptor; a sheet whose state could not be read is treated as protected.
//
// Two tiers: first drop the sheetProtection element outright, which is the
// maximal-permissive unlocked state in OOXML. If that errors, overwrite the
// descriptor wholesale with an all-permissive, passwordless one and drop it
// again. Both tiers erroring leaves the sheet untouched.
func stripSheet(f *excelize.File, sheetName string, wasProtected bool) models.SheetResult {
	if err := f.UnprotectSheet(sheetName); err != nil {
		if perr := f.ProtectSheet(sheetName, permissiveProtectionOptions()); perr != nil {
			return models.SheetResult{
				Name:   sheetName,
				Status: models.StatusFailed,
				Error: (&SheetUnlockError{
					SheetName: sheetName,
					Err:       fmt.Errorf("rebuild failed: %w (direct removal failed first: %v)", perr, err),
				}).Error(),
			}
		}
		if uerr := f.UnprotectSheet(sheetName); uerr != nil {
			return models.SheetResult{
				Name:   sheetName,
				Status: models.StatusFailed,
				Error: (&SheetUnlockError{
					SheetName: sheetName,
					Err:       fmt.Errorf("removing rebuilt descriptor: %w", uerr),
				}).Error(),
			}
		}
	}

	status := models.StatusAlreadyUnlocked
	if wasProtected {
		status = models.StatusUnlocked
	}
	return models.SheetResult{Name: sheetName, Status: status}
}

// permissiveProtectionOptions returns a descriptor with every action allowed
// and no password, matching models.Permissive.
func permissiveProtectionOptions() *excelize.SheetProtectionOptions {
	return &excelize.SheetProtectionOptions{
		SelectLockedCells:   true,
		SelectUnlockedCells: true,
		FormatCells:         true,
		FormatColumns:       true,
		FormatRows:          true,
		InsertColumns:       true,
		InsertRows:          true,
		InsertHyperlinks:    true,
		DeleteColumns:       true,
		DeleteRows:          true,
		Sort:                true,
		AutoFilter:          true,
		PivotTables:         true,
		EditObjects:         true,
		EditScenarios:       true,
	}
}
