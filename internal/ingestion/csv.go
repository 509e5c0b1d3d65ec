package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/haolun/policygraph-backend/internal/data/graph"
	"github.com/haolun/policygraph-backend/internal/quantdetail"
)

// industryCodes maps sector names to national classification codes. Sectors
// outside the mapping are linked without a code.
var industryCodes = map[string]string{
	"农、林、牧、渔业":         "A",
	"采矿业":              "B",
	"制造业":              "C",
	"电力、热力、燃气及水生产和供应业": "D",
	"建筑业":              "E",
	"批发和零售业":           "F",
	"交通运输、仓储和邮政业":      "G",
	"住宿和餐饮业":           "H",
	"信息传输、软件和信息技术服务业":  "I",
	"金融业":              "J",
	"房地产业":             "K",
	"租赁和商务服务业":         "L",
	"科学研究和技术服务业":       "M",
	"水利、环境和公共设施管理业":    "N",
	"居民服务、修理和其他服务业":    "O",
	"教育":               "P",
	"卫生和社会工作":          "Q",
	"文化、体育和娱乐业":        "R",
	"公共管理、社会保障和社会组织":   "S",
	"国际组织":             "T",
	"全行业":              "Z",
}

var (
	dottedDate = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)
	isoDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	serialDate = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// excelEpoch is the origin spreadsheet serial dates count from.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// NormalizeDate converts "YYYY.MM.DD" and spreadsheet serial numbers to
// "YYYY-MM-DD". Already-normalized dates pass through; anything else becomes
// empty, which the store writes as null.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ""
	case dottedDate.MatchString(s):
		return strings.ReplaceAll(s, ".", "-")
	case isoDate.MatchString(s):
		return s
	case serialDate.MatchString(s):
		days, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return ""
		}
		return excelEpoch.Add(time.Duration(days * 24 * float64(time.Hour))).Format("2006-01-02")
	default:
		return ""
	}
}

// splitMulti splits a semicolon-joined multi-value field, trimming items and
// dropping empties.
func splitMulti(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParsePolicyCSV reads the extracted policy corpus. Rows without a citation
// are skipped with a warning; issuer short names are paired with full names
// by position, padding with empty when the lists disagree.
func (l *Loader) ParsePolicyCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ingestion: read csv header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["FabaoCitation"]; !ok {
		return nil, fmt.Errorf("ingestion: csv is missing the FabaoCitation column")
	}
	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	ds := &Dataset{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingestion: read csv row: %w", err)
		}
		line++

		citation := field(record, "FabaoCitation")
		if citation == "" {
			l.log.Warn("skipping row without citation", "line", line)
			continue
		}

		ds.Policies = append(ds.Policies, graph.PolicyRow{
			Citation:         citation,
			Title:            field(record, "Title"),
			DocumentNumber:   field(record, "DocumentNumber"),
			AnnounceDate:     NormalizeDate(field(record, "AnnounceDate")),
			ImplementDate:    NormalizeDate(field(record, "ImplementDate")),
			Level:            field(record, "Level"),
			ValidationStatus: field(record, "Validation"),
			FullText:         field(record, "FullText"),
		})

		fullNames := splitMulti(field(record, "IssuingBodyFullName"))
		shortNames := splitMulti(field(record, "IssuingBodyShortName"))
		if len(shortNames) != len(fullNames) && len(shortNames) > 0 {
			l.log.Warn("issuer name lists disagree",
				"line", line,
				"full_names", len(fullNames),
				"short_names", len(shortNames),
			)
		}
		for i, full := range fullNames {
			short := ""
			if i < len(shortNames) {
				short = shortNames[i]
			}
			ds.Issuers = append(ds.Issuers, graph.IssuerLink{
				Citation:  citation,
				FullName:  full,
				ShortName: short,
			})
		}

		for _, name := range splitMulti(field(record, "PolicyTopic")) {
			ds.Topics = append(ds.Topics, graph.NameLink{Citation: citation, Name: name})
		}
		for _, name := range splitMulti(field(record, "TargetBeneficiary")) {
			ds.Beneficiaries = append(ds.Beneficiaries, graph.NameLink{Citation: citation, Name: name})
		}
		for _, name := range splitMulti(field(record, "GeographicRegion")) {
			ds.Regions = append(ds.Regions, graph.NameLink{Citation: citation, Name: name})
		}
		for _, name := range splitMulti(field(record, "IndustryFocus")) {
			ds.Industries = append(ds.Industries, graph.IndustryLink{
				Citation: citation,
				Name:     name,
				Code:     industryCodes[name],
			})
		}

		details := quantdetail.Decode(field(record, "QuantitativeInfo"))
		for _, name := range splitMulti(field(record, "PolicyTool")) {
			ds.Tools = append(ds.Tools, graph.ToolLink{
				Citation:           citation,
				ToolName:           name,
				QuantitativeDetail: details[name],
			})
		}
	}
	return ds, nil
}
