// Package quantdetail decodes the compact textual encoding of per-tool
// quantitative parameters attached to APPLIES_TOOL relationships:
//
//	工具A(信息A); 工具B(信息B)
//
// Tools are separated by ";" plus optional whitespace, each tool's detail
// sits in a trailing parenthesized group, and components inside the detail
// are ", "-separated free text such as "[金额]50万元".
package quantdetail

import (
	"regexp"
	"strings"
)

// Sentinels the upstream extractor emits when it found nothing usable.
// They are data-quality markers, not quantitative content.
var extractionSentinels = []string{
	"政策工具缺失或为空",
	"未找到可处理的政策工具（均未在格式映射中定义或原始列表为空）",
}

var (
	segmentSplit = regexp.MustCompile(`;\s*`)
	// Greedy name keeps parenthetical qualifiers inside tool names intact:
	// the detail group is the last (...) before segment end.
	toolDetail = regexp.MustCompile(`^(.*)\(([^)]*)\)$`)
)

// Clean normalizes extraction-failure sentinels (and the literal "" string)
// to the empty string. Other input passes through trimmed.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if s == `""` {
		return ""
	}
	for _, sentinel := range extractionSentinels {
		if s == sentinel {
			return ""
		}
	}
	return s
}

// Decode parses a quantitative-detail string into toolName -> raw detail
// text. Segments that do not match the name(detail) grammar are skipped;
// empty, whitespace-only and sentinel input yields an empty map.
func Decode(s string) map[string]string {
	out := map[string]string{}
	s = Clean(s)
	if s == "" {
		return out
	}

	for _, segment := range segmentSplit.Split(s, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		m := toolDetail.FindStringSubmatch(segment)
		if m == nil {
			continue
		}
		toolName := strings.TrimSpace(m[1])
		if toolName == "" {
			continue
		}
		out[toolName] = strings.TrimSpace(m[2])
	}
	return out
}
