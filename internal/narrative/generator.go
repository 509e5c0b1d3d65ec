// Package narrative turns computed policy metrics and rule findings into the
// three-section analyst report, delegating prose to a chat-completions model.
package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haolun/policygraph-backend/internal/analysis"
	"github.com/haolun/policygraph-backend/internal/domain"
	"github.com/haolun/policygraph-backend/internal/platform/deepseek"
	"github.com/haolun/policygraph-backend/internal/platform/logger"
)

const systemPrompt = "你是一位资深的中国民营经济政策分析专家，擅长解读政策数据并撰写专业的、结构清晰的分析报告。请严格按照用户要求的格式和风格输出。"

// Section markers the model is instructed to emit; the response splitter
// keys on them.
const (
	part1Prefix = "### 第一部分："
	part2Marker = "### 第二部分：全国政策基准指标参考"
	part3Prefix = "### 第三部分："
)

type Generator struct {
	log *logger.Logger
	llm deepseek.Client
}

func NewGenerator(log *logger.Logger, llm deepseek.Client) *Generator {
	return &Generator{
		log: log.With("service", "NarrativeGenerator"),
		llm: llm,
	}
}

// Summarize renders the prompt, calls the model, and splits the response
// into the three report sections. A response that ignores the section
// markers is preserved whole in the assessment section rather than dropped.
func (g *Generator) Summarize(ctx context.Context, in analysis.NarrativeInput) (*domain.NarrativeSections, error) {
	if g.llm == nil {
		return nil, fmt.Errorf("narrative: llm client not configured")
	}

	prompt, err := buildPrompt(in)
	if err != nil {
		return nil, fmt.Errorf("narrative: build prompt: %w", err)
	}

	g.log.Debug("requesting narrative report", "region", in.RegionName)
	response, err := g.llm.GenerateText(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("narrative: generate: %w", err)
	}

	sections := splitSections(response, in.RegionName)
	return &sections, nil
}

func buildPrompt(in analysis.NarrativeInput) (string, error) {
	targetJSON, err := json.MarshalIndent(in.TargetMetrics, "", "  ")
	if err != nil {
		return "", err
	}
	nationalJSON, err := json.MarshalIndent(in.NationalMetrics, "", "  ")
	if err != nil {
		return "", err
	}
	thresholdsJSON, err := json.MarshalIndent(in.Thresholds, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "作为一名资深的中国民营经济政策分析专家，请根据以下提供的原始数据和分析要求，生成一份关于“%s”在“%s”方面的民营经济政策支持情况分析报告。\n", in.RegionName, in.QueryContext)
	b.WriteString("请严格按照下面三个部分组织您的回答，并针对每个部分采用清晰、专业且用户友好的语言风格，对 quantitativeDetails 等列表信息进行恰当的解读、分类和摘要，数值较大的金额请使用如“万亿元”这样的易读单位。请直接输出报告内容，不要包含额外的对话或解释。\n\n")

	fmt.Fprintf(&b, "---\n%s%s政策指标分析\n\n", part1Prefix, in.RegionName)
	fmt.Fprintf(&b, "**请分析以下“%s”的原始指标数据：**\n```json\n%s\n```\n", in.RegionName, targetJSON)
	b.WriteString("**要求：** 将内部键名（如 averagePolicyAgeInDays, quantitativeDetails）转换为流畅的中文描述，结构化展示政策统计（数量、平均生效时间、最新发布日期）、政策特征（层级、工具种类与主要类别），并从量化信息中智能提取关键金额、比例等摘要。\n\n")

	fmt.Fprintf(&b, "---\n%s\n\n", part2Marker)
	fmt.Fprintf(&b, "**请分析以下“全国基准”的原始指标数据：**\n```json\n%s\n```\n", nationalJSON)
	b.WriteString("**要求：** 与第一部分类似，将键名转换为中文并结构化展示；对 quantitativeDetails 进行分类、提炼和摘要，使用“如”、“例如”等词语表明是示例性数据。\n\n")

	fmt.Fprintf(&b, "---\n%s%s详细薄弱点评估报告\n\n", part3Prefix, in.RegionName)
	fmt.Fprintf(&b, "**请结合以下所有信息：**\n1. “%s”的原始指标（见第一部分）。\n2. “全国基准”的原始指标（见第二部分）。\n", in.RegionName)
	fmt.Fprintf(&b, "3. 用户设定的评估阈值：\n```json\n%s\n```\n", thresholdsJSON)
	fmt.Fprintf(&b, "4. 系统基于上述阈值初步识别的薄弱点：\n%s\n\n", renderFindings(in.Findings))
	b.WriteString("**要求：** 明确指出与用户设定阈值相比的具体不足；与全国基准对比时注意地区量化指标不能与全国直接比较（例如全国资金池为10万亿级别时，不能要求地方有相同数量级），重点考虑地方量化指标是否与其经济体量相匹配；对薄弱原因进行有逻辑的推测；若初步识别结果为空或提示“相对满足”，请确认覆盖情况是否良好或指出仍值得关注的差距；语言专业、客观，并给出建设性总结。\n\n")

	fmt.Fprintf(&b, "---\n请确保三部分内容完整且格式清晰，每一部分都以对应的 \"%s...\" \"%s\" \"%s...\" 作为开头。\n", part1Prefix, part2Marker, part3Prefix)
	return b.String(), nil
}

func renderFindings(findings []domain.Finding) string {
	if len(findings) == 0 {
		return "基于规则的初步评估显示：" + analysis.MsgNoData
	}
	if len(findings) == 1 && findings[0].Kind != domain.FindingWeakness {
		return "基于规则的初步评估显示：" + findings[0].Message
	}
	var b strings.Builder
	b.WriteString("基于规则的初步评估识别出以下潜在薄弱点：")
	for _, f := range findings {
		b.WriteString("\n- ")
		b.WriteString(f.Message)
	}
	return b.String()
}

// splitSections carves the model response along the three part markers.
// Missing markers degrade gracefully: whatever was returned ends up in the
// assessment section so no prose is lost.
func splitSections(response, regionName string) domain.NarrativeSections {
	part1Marker := part1Prefix + regionName + "政策指标分析"
	part3Marker := part3Prefix + regionName + "详细薄弱点评估报告"

	idx1 := strings.Index(response, part1Marker)
	idx2 := strings.Index(response, part2Marker)
	idx3 := strings.Index(response, part3Marker)

	sections := domain.NarrativeSections{}

	if idx1 != -1 {
		start := idx1 + len(part1Marker)
		end := len(response)
		if idx2 != -1 {
			end = idx2
		} else if idx3 != -1 {
			end = idx3
		}
		sections.TargetSummary = strings.TrimSpace(response[start:end])
	}
	if idx2 != -1 {
		start := idx2 + len(part2Marker)
		end := len(response)
		if idx3 != -1 {
			end = idx3
		}
		sections.NationalSummary = strings.TrimSpace(response[start:end])
	}
	if idx3 != -1 {
		sections.WeaknessAssessment = strings.TrimSpace(response[idx3+len(part3Marker):])
	}

	if sections.TargetSummary == "" && sections.NationalSummary == "" && sections.WeaknessAssessment == "" && strings.TrimSpace(response) != "" {
		sections.WeaknessAssessment = "LLM完整响应：\n" + strings.TrimSpace(response)
	}
	return sections
}
