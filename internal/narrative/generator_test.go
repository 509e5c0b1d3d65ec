package narrative

import (
	"strings"
	"testing"

	"github.com/haolun/policygraph-backend/internal/analysis"
	"github.com/haolun/policygraph-backend/internal/domain"
)

func TestSplitSections_AllMarkersPresent(t *testing.T) {
	response := strings.Join([]string{
		"### 第一部分：市A政策指标分析",
		"目标区域内容。",
		"### 第二部分：全国政策基准指标参考",
		"全国基准内容。",
		"### 第三部分：市A详细薄弱点评估报告",
		"评估内容。",
	}, "\n")

	got := splitSections(response, "市A")
	if got.TargetSummary != "目标区域内容。" {
		t.Fatalf("unexpected target summary: %q", got.TargetSummary)
	}
	if got.NationalSummary != "全国基准内容。" {
		t.Fatalf("unexpected national summary: %q", got.NationalSummary)
	}
	if got.WeaknessAssessment != "评估内容。" {
		t.Fatalf("unexpected assessment: %q", got.WeaknessAssessment)
	}
}

func TestSplitSections_MissingMiddleMarker(t *testing.T) {
	response := strings.Join([]string{
		"### 第一部分：省B政策指标分析",
		"目标内容。",
		"### 第三部分：省B详细薄弱点评估报告",
		"评估内容。",
	}, "\n")

	got := splitSections(response, "省B")
	if got.TargetSummary != "目标内容。" {
		t.Fatalf("unexpected target summary: %q", got.TargetSummary)
	}
	if got.NationalSummary != "" {
		t.Fatalf("expected empty national summary, got %q", got.NationalSummary)
	}
	if got.WeaknessAssessment != "评估内容。" {
		t.Fatalf("unexpected assessment: %q", got.WeaknessAssessment)
	}
}

func TestSplitSections_NoMarkersKeepsWholeResponse(t *testing.T) {
	got := splitSections("模型忽略了格式要求，直接输出了整段分析。", "市A")
	if !strings.HasPrefix(got.WeaknessAssessment, "LLM完整响应：") {
		t.Fatalf("expected whole-response fallback, got %q", got.WeaknessAssessment)
	}
	if got.TargetSummary != "" || got.NationalSummary != "" {
		t.Fatalf("expected other sections empty: %+v", got)
	}
}

func TestRenderFindings_SentinelAndWeaknessForms(t *testing.T) {
	sentinel := renderFindings([]domain.Finding{{Kind: domain.FindingSatisfied, Message: analysis.MsgSatisfied}})
	if !strings.HasPrefix(sentinel, "基于规则的初步评估显示：") {
		t.Fatalf("unexpected sentinel rendering: %q", sentinel)
	}

	weaknesses := renderFindings([]domain.Finding{
		{Kind: domain.FindingWeakness, Message: "政策数量不足: 3 (阈值至少 5)"},
		{Kind: domain.FindingWeakness, Message: "政策工具种类不足: 1 (阈值至少 3)"},
	})
	if !strings.Contains(weaknesses, "识别出以下潜在薄弱点") {
		t.Fatalf("unexpected weakness rendering: %q", weaknesses)
	}
	if strings.Count(weaknesses, "\n- ") != 2 {
		t.Fatalf("expected two bullet lines: %q", weaknesses)
	}
}

func TestBuildPrompt_EmbedsMetricsAndContext(t *testing.T) {
	in := analysis.NarrativeInput{
		RegionName:   "市A",
		QueryContext: "分析区域 '市A'，政策主题 '科技创新驱动与研发激励'",
		TargetMetrics: domain.MetricsPayload{
			RegionName:          "市A",
			NumberOfPolicies:    4,
			PolicyLevels:        []string{"省级"},
			ToolCategories:      []string{},
			QuantitativeDetails: []string{},
		},
		NationalMetrics: domain.MetricsPayload{
			RegionName:          domain.NationalRegionName,
			PolicyLevels:        []string{},
			ToolCategories:      []string{},
			QuantitativeDetails: []string{},
		},
		Findings: []domain.Finding{{Kind: domain.FindingSatisfied, Message: analysis.MsgSatisfied}},
	}

	prompt, err := buildPrompt(in)
	if err != nil {
		t.Fatalf("buildPrompt: %v", err)
	}
	for _, want := range []string{
		"### 第一部分：市A政策指标分析",
		"### 第二部分：全国政策基准指标参考",
		"### 第三部分：市A详细薄弱点评估报告",
		`"numberOfPolicies": 4`,
		"科技创新驱动与研发激励",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
