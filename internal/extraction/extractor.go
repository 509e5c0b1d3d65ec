// Package extraction defines the entity-extraction capability the ingestion
// pipeline consumes, with a chat-model implementation and a bounded-retry
// decorator. Each extracted string is either a semicolon-joined multi-value
// field or a single "其他（...）" fallback; an empty slice means the model
// found nothing.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haolun/policygraph-backend/internal/platform/deepseek"
	"github.com/haolun/policygraph-backend/internal/platform/logger"
)

type EntityType string

const (
	EntityPolicyTopic       EntityType = "PolicyTopic"
	EntityPolicyTool        EntityType = "PolicyTool"
	EntityTargetBeneficiary EntityType = "TargetBeneficiary"
	EntityGeographicRegion  EntityType = "GeographicRegion"
	EntityIndustryFocus     EntityType = "IndustryFocus"
)

// Extractor extracts structured values of one entity type from a policy
// document.
type Extractor interface {
	Extract(ctx context.Context, entityType EntityType, title string, fullText string) ([]string, error)
}

type entityDefinition struct {
	description string
	instruction string
}

var entityDefinitions = map[EntityType]entityDefinition{
	EntityPolicyTopic: {
		description: "政策内容主要涉及的促进民营经济发展的具体议题或领域。",
		instruction: "请从预定义的政策主题列表中选择一项或多项。如果涉及多项，请用半角分号“;”隔开各项。如果均不包含，请输出“其他（此处填写实际政策主题的简要描述）”。",
	},
	EntityPolicyTool: {
		description: "政策为达成目标所采用的具体措施、手段或方法。",
		instruction: "请从预定义的政策工具列表中选择一项或多项。如果涉及多项，请用半角分号“;”隔开各项。如果均不包含，请输出“其他（此处填写实际政策工具的简要描述）”。",
	},
	EntityTargetBeneficiary: {
		description: "政策主要面向的民营经济主体类型。",
		instruction: "请从预定义的受益对象列表中选择一项或多项。如果涉及多项，请用半角分号“;”隔开各项。如果均不包含，请输出“其他（此处填写实际受益对象的简要描述）”。",
	},
	EntityGeographicRegion: {
		description: "政策适用的地理范围或颁布机构所属的行政区域。",
		instruction: "请提取政策适用的地理范围，并使用正式全称。如果提及多个区域，请用半角分号“;”隔开。如果范围为全国，请输出“全国各省、自治区、直辖市、新疆生产建设兵团”且不要再输出其他地区。",
	},
	EntityIndustryFocus: {
		description: "政策特别关注或倾斜的产业领域。",
		instruction: "请从预定义的行业分类列表中选择一项或多项该政策侧重的行业。如果未明确，一般为“全行业”。如果涉及多项，请用半角分号“;”隔开各项。",
	},
}

// LLMExtractor asks a chat model for one entity type at a time, with a
// per-type candidate catalog injected at construction.
type LLMExtractor struct {
	log      *logger.Logger
	llm      deepseek.Client
	catalogs map[EntityType][]string
}

func NewLLMExtractor(log *logger.Logger, llm deepseek.Client, catalogs map[EntityType][]string) *LLMExtractor {
	return &LLMExtractor{
		log:      log.With("service", "LLMExtractor"),
		llm:      llm,
		catalogs: catalogs,
	}
}

func (e *LLMExtractor) Extract(ctx context.Context, entityType EntityType, title string, fullText string) ([]string, error) {
	def, ok := entityDefinitions[entityType]
	if !ok {
		return nil, fmt.Errorf("extraction: unknown entity type %q", entityType)
	}

	system := fmt.Sprintf("你是一位专业的政策文本分析助手，需要从文本中提取指定的 '%s' 信息，并严格按照指示的JSON格式和内容要求返回。", entityType)
	user := e.buildPrompt(entityType, def, title, fullText)

	content, err := e.llm.GenerateText(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("extraction: %s: %w", entityType, err)
	}

	values, err := parseEntityResponse(content, entityType)
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (e *LLMExtractor) buildPrompt(entityType EntityType, def entityDefinition, title, fullText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "请你扮演一位专业的政策分析助手。根据以下提供的政策标题和政策全文内容，仅提取与 \"%s\" 相关的信息。\n\n", entityType)
	fmt.Fprintf(&b, "实体类型 \"%s\" 定义如下:\n描述: %s\n", entityType, def.description)
	if catalog := e.catalogs[entityType]; len(catalog) > 0 {
		b.WriteString("预定义的候选列表如下 (请不要在回答中包含序号):\n")
		for _, item := range catalog {
			b.WriteString("- ")
			b.WriteString(item)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "指示: %s\n\n", def.instruction)
	b.WriteString("请尽可能根据文本推断。只有文本为空或者完全没有提及任何相关信息，或者该实体类型不适用，才在JSON中返回一个空列表。\n\n")
	fmt.Fprintf(&b, "政策标题:\n%s\n\n政策全文内容:\n%s\n\n", title, fullText)
	fmt.Fprintf(&b, "请严格按照以下JSON格式输出：\n{\n  \"%s\": [\"提取结果1;提取结果2\"]\n}\n\nJSON Output:\n", entityType)
	return b.String()
}

// parseEntityResponse strips markdown code fences the model sometimes wraps
// around its JSON and pulls out the entity's value list.
func parseEntityResponse(content string, entityType EntityType) ([]string, error) {
	content = stripJSONFence(content)

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("extraction: %s: malformed response: %w", entityType, err)
	}
	raw, ok := payload[string(entityType)]
	if !ok {
		return []string{}, nil
	}

	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		// Some responses collapse the list into a single string.
		var single string
		if err2 := json.Unmarshal(raw, &single); err2 != nil {
			return nil, fmt.Errorf("extraction: %s: unexpected value shape: %w", entityType, err)
		}
		values = []string{single}
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func stripJSONFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}
	return content
}
