package ingestion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/haolun/policygraph-backend/internal/data/graph"
)

// readSheet opens a workbook and returns the first sheet's rows as a header
// column index plus data rows.
func readSheet(path string) (map[string]int, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ingestion: open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("ingestion: read workbook %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("ingestion: workbook %s has no header row", path)
	}
	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.TrimSpace(name)] = i
	}
	return col, rows[1:], nil
}

func cell(row []string, col map[string]int, name string) string {
	idx, ok := col[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseToolCategories reads the tool -> category mapping workbook (PolicyTool
// and Category columns). Tools without a category map to empty, which clears
// the property on load.
func (l *Loader) ParseToolCategories(path string) (map[string]string, error) {
	col, rows, err := readSheet(path)
	if err != nil {
		return nil, err
	}
	if _, ok := col["PolicyTool"]; !ok {
		return nil, fmt.Errorf("ingestion: %s is missing the PolicyTool column", path)
	}

	categories := map[string]string{}
	for _, row := range rows {
		tool := cell(row, col, "PolicyTool")
		if tool == "" {
			continue
		}
		categories[tool] = cell(row, col, "Category")
	}
	return categories, nil
}

// ParseAreaCodes reads the administrative-division workbook (Code, Name,
// Level, Pcode columns) into attribute updates and parent links. A Pcode of
// "0" marks a top-level division with no parent.
func (l *Loader) ParseAreaCodes(path string) ([]graph.RegionAttrs, []graph.ParentLink, error) {
	col, rows, err := readSheet(path)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := col["Name"]; !ok {
		return nil, nil, fmt.Errorf("ingestion: %s is missing the Name column", path)
	}

	var attrs []graph.RegionAttrs
	var parents []graph.ParentLink
	for _, row := range rows {
		name := cell(row, col, "Name")
		if name == "" {
			continue
		}

		attr := graph.RegionAttrs{Name: name, Code: cell(row, col, "Code")}
		if levelStr := cell(row, col, "Level"); levelStr != "" {
			level, err := strconv.Atoi(levelStr)
			if err != nil {
				l.log.Warn("area level is not numeric, leaving unset", "region", name, "level", levelStr)
			} else {
				attr.Level = &level
			}
		}
		attrs = append(attrs, attr)

		pcode := cell(row, col, "Pcode")
		if pcode == "" || pcode == "0" {
			continue
		}
		parents = append(parents, graph.ParentLink{ChildName: name, ParentCode: pcode})
	}
	return attrs, parents, nil
}
