// Package parser provides low-level read access to OOXML workbook parts
// that the spreadsheet library exposes no getters for.
package parser

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/moritahr/xlsunlock-go/pkg/unlocker/models"
)

const worksheetRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet"

// ReadSheetProtection reads the protection descriptor of every sheet in an
// xlsx/xlsm file. Sheets without a sheetProtection element map to the
// permissive descriptor.
func ReadSheetProtection(path string) (map[string]models.ProtectionDescriptor, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	parts, err := sheetPartMap(&r.Reader)
	if err != nil {
		return nil, err
	}

	result := make(map[string]models.ProtectionDescriptor)
	for sheetName, partPath := range parts {
		data, err := readZipFile(&r.Reader, partPath)
		if err != nil || data == nil {
			continue
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(data); err != nil {
			continue
		}
		el := doc.FindElement("//sheetProtection")
		if el == nil {
			result[sheetName] = models.Permissive()
			continue
		}
		result[sheetName] = descriptorFromElement(el)
	}

	return result, nil
}

// ReadWorkbookProtection reports whether xl/workbook.xml carries a
// workbookProtection element.
func ReadWorkbookProtection(path string) (bool, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false, err
	}
	defer r.Close()

	data, err := readZipFile(&r.Reader, "xl/workbook.xml")
	if err != nil || data == nil {
		return false, fmt.Errorf("xl/workbook.xml missing in %s", path)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return false, err
	}
	return doc.FindElement("//workbookProtection") != nil, nil
}

// descriptorFromElement decodes a sheetProtection element. The raw attributes
// mean "blocked"; the descriptor's Allow* fields invert that. Defaults follow
// ECMA-376: edit actions are blocked while protected, selection and
// object/scenario editing are allowed.
func descriptorFromElement(el *etree.Element) models.ProtectionDescriptor {
	return models.ProtectionDescriptor{
		Locked:      boolAttr(el, "sheet", false),
		HasPassword: el.SelectAttrValue("password", "") != "" || el.SelectAttrValue("hashValue", "") != "",

		AllowSelectLockedCells:   !boolAttr(el, "selectLockedCells", false),
		AllowSelectUnlockedCells: !boolAttr(el, "selectUnlockedCells", false),
		AllowFormatCells:         !boolAttr(el, "formatCells", true),
		AllowFormatColumns:       !boolAttr(el, "formatColumns", true),
		AllowFormatRows:          !boolAttr(el, "formatRows", true),
		AllowInsertColumns:       !boolAttr(el, "insertColumns", true),
		AllowInsertRows:          !boolAttr(el, "insertRows", true),
		AllowInsertHyperlinks:    !boolAttr(el, "insertHyperlinks", true),
		AllowDeleteColumns:       !boolAttr(el, "deleteColumns", true),
		AllowDeleteRows:          !boolAttr(el, "deleteRows", true),
		AllowSort:                !boolAttr(el, "sort", true),
		AllowAutoFilter:          !boolAttr(el, "autoFilter", true),
		AllowPivotTables:         !boolAttr(el, "pivotTables", true),
		AllowEditObjects:         !boolAttr(el, "objects", false),
		AllowEditScenarios:       !boolAttr(el, "scenarios", false),
	}
}

// boolAttr reads an xsd:boolean attribute, falling back to def when absent.
func boolAttr(el *etree.Element, name string, def bool) bool {
	switch el.SelectAttrValue(name, "") {
	case "1", "true":
		return true
	case "0", "false":
		return false
	default:
		return def
	}
}

// sheetPartMap returns a mapping of sheet names to their worksheet part
// paths, resolved through xl/workbook.xml and its relationships part.
func sheetPartMap(r *zip.Reader) (map[string]string, error) {
	result := make(map[string]string)

	workbookXML, err := readZipFile(r, "xl/workbook.xml")
	if err != nil || workbookXML == nil {
		return nil, fmt.Errorf("xl/workbook.xml missing")
	}
	wbDoc := etree.NewDocument()
	if err := wbDoc.ReadFromBytes(workbookXML); err != nil {
		return nil, err
	}

	// rId -> sheet name
	sheetNames := make(map[string]string)
	for _, el := range wbDoc.FindElements("//sheets/sheet") {
		var name, rID string
		for _, attr := range el.Attr {
			switch attr.Key {
			case "name":
				name = attr.Value
			case "id":
				rID = attr.Value
			}
		}
		if name != "" && rID != "" {
			sheetNames[rID] = name
		}
	}
	if len(sheetNames) == 0 {
		return result, nil
	}

	relsXML, err := readZipFile(r, "xl/_rels/workbook.xml.rels")
	if err != nil || relsXML == nil {
		return nil, fmt.Errorf("xl/_rels/workbook.xml.rels missing")
	}
	relsDoc := etree.NewDocument()
	if err := relsDoc.ReadFromBytes(relsXML); err != nil {
		return nil, err
	}

	for _, el := range relsDoc.FindElements("//Relationship") {
		relType := el.SelectAttrValue("Type", "")
		if relType != "" && relType != worksheetRelType {
			continue
		}
		rID := el.SelectAttrValue("Id", "")
		target := el.SelectAttrValue("Target", "")
		name, ok := sheetNames[rID]
		if !ok || target == "" {
			continue
		}
		result[name] = resolvePartPath(target)
	}

	return result, nil
}

// resolvePartPath resolves a workbook-relative relationship target to a full
// part path inside the container.
func resolvePartPath(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	for strings.HasPrefix(target, "../") {
		target = strings.TrimPrefix(target, "../")
	}
	if strings.HasPrefix(target, "xl/") {
		return target
	}
	return "xl/" + target
}

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}
