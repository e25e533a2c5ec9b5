package models

// ProtectionDescriptor represents the protection state of a single sheet as
// stored in the worksheet's sheetProtection element. The Allow* fields follow
// the user-facing meaning (true = the action is permitted while the sheet is
// protected), which is the inverse of the raw OOXML attributes.
type ProtectionDescriptor struct {
	// Locked reports whether sheet protection is enabled.
	Locked bool `json:"locked"`
	// HasPassword reports whether a password (legacy hash or hashValue)
	// is attached to the protection.
	HasPassword bool `json:"has_password"`

	AllowSelectLockedCells   bool `json:"allow_select_locked_cells"`
	AllowSelectUnlockedCells bool `json:"allow_select_unlocked_cells"`
	AllowFormatCells         bool `json:"allow_format_cells"`
	AllowFormatColumns       bool `json:"allow_format_columns"`
	AllowFormatRows          bool `json:"allow_format_rows"`
	AllowInsertColumns       bool `json:"allow_insert_columns"`
	AllowInsertRows          bool `json:"allow_insert_rows"`
	AllowInsertHyperlinks    bool `json:"allow_insert_hyperlinks"`
	AllowDeleteColumns       bool `json:"allow_delete_columns"`
	AllowDeleteRows          bool `json:"allow_delete_rows"`
	AllowSort                bool `json:"allow_sort"`
	AllowAutoFilter          bool `json:"allow_auto_filter"`
	AllowPivotTables         bool `json:"allow_pivot_tables"`
	AllowEditObjects         bool `json:"allow_edit_objects"`
	AllowEditScenarios       bool `json:"allow_edit_scenarios"`
}

// Permissive returns the maximal-permissive unlocked descriptor: protection
// off, no password, every action allowed. This is the state a sheet without a
// sheetProtection element is in.
func Permissive() ProtectionDescriptor {
	return ProtectionDescriptor{
		AllowSelectLockedCells:   true,
		AllowSelectUnlockedCells: true,
		AllowFormatCells:         true,
		AllowFormatColumns:       true,
		AllowFormatRows:          true,
		AllowInsertColumns:       true,
		AllowInsertRows:          true,
		AllowInsertHyperlinks:    true,
		AllowDeleteColumns:       true,
		AllowDeleteRows:          true,
		AllowSort:                true,
		AllowAutoFilter:          true,
		AllowPivotTables:         true,
		AllowEditObjects:         true,
		AllowEditScenarios:       true,
	}
}

// Unlocked reports whether the descriptor signals an unprotected sheet.
func (d ProtectionDescriptor) Unlocked() bool {
	return !d.Locked && !d.HasPassword
}
