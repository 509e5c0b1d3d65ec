package ingestion

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, name string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cellRef, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestParseToolCategories(t *testing.T) {
	path := writeWorkbook(t, "policy_tool.xlsx", [][]interface{}{
		{"PolicyTool", "Category"},
		{"财政直接补贴", "财政支持"},
		{"税额基数扣减", "税收优惠"},
		{"", "孤立分类"},
		{"未分类工具", ""},
	})

	categories, err := testLoader(t).ParseToolCategories(path)
	if err != nil {
		t.Fatalf("ParseToolCategories: %v", err)
	}
	if len(categories) != 3 {
		t.Fatalf("expected 3 tools, got %d: %v", len(categories), categories)
	}
	if categories["财政直接补贴"] != "财政支持" {
		t.Fatalf("wrong category: %v", categories)
	}
	if categories["未分类工具"] != "" {
		t.Fatalf("uncategorized tool should map to empty: %v", categories)
	}
}

func TestParseAreaCodes(t *testing.T) {
	path := writeWorkbook(t, "area_code.xlsx", [][]interface{}{
		{"Code", "Name", "Level", "Pcode"},
		{"110000", "北京市", "1", "0"},
		{"320000", "某省", "1", "0"},
		{"320100", "某省某市", "2", "320000"},
		{"999999", "缺级别地区", "", "320000"},
		{"888888", "坏级别地区", "一级", "0"},
	})

	attrs, parents, err := testLoader(t).ParseAreaCodes(path)
	if err != nil {
		t.Fatalf("ParseAreaCodes: %v", err)
	}

	if len(attrs) != 5 {
		t.Fatalf("expected 5 attr rows, got %d", len(attrs))
	}
	if attrs[2].Level == nil || *attrs[2].Level != 2 {
		t.Fatalf("municipal level not parsed: %+v", attrs[2])
	}
	if attrs[3].Level != nil {
		t.Fatalf("empty level should stay unset: %+v", attrs[3])
	}
	if attrs[4].Level != nil {
		t.Fatalf("non-numeric level should stay unset: %+v", attrs[4])
	}

	// Pcode "0" rows are top level and get no parent edge.
	if len(parents) != 2 {
		t.Fatalf("expected 2 parent links, got %d: %+v", len(parents), parents)
	}
	if parents[0].ChildName != "某省某市" || parents[0].ParentCode != "320000" {
		t.Fatalf("wrong parent link: %+v", parents[0])
	}
}
