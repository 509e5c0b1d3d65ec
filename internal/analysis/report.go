package analysis

import (
	"math"

	"github.com/haolun/policygraph-backend/internal/domain"
)

// ToPayload converts a metrics tuple into its portable wire form: ISO-8601
// dates, a duration breakdown for the average age, and always-present sets.
func ToPayload(m domain.Metrics) domain.MetricsPayload {
	p := domain.MetricsPayload{
		RegionName:            m.RegionName,
		NumberOfPolicies:      m.PolicyCount,
		PolicyLevels:          emptyIfNil(m.Levels),
		NumberOfDistinctTools: m.DistinctToolCount,
		ToolCategories:        emptyIfNil(m.ToolCategories),
		QuantitativeDetails:   emptyIfNil(m.QuantitativeDetails),
	}
	if m.LatestAnnounceDate != nil {
		iso := m.LatestAnnounceDate.Format("2006-01-02")
		p.LatestPolicyAnnounceDate = &iso
	}
	if m.AverageAgeDays != nil {
		days := *m.AverageAgeDays
		p.AveragePolicyAgeInDays = &days

		wholeDays := math.Trunc(days)
		fracSeconds := (days - wholeDays) * 86400
		wholeSeconds := math.Trunc(fracSeconds)
		p.AveragePolicyAge = &domain.DurationParts{
			Days:         int64(wholeDays),
			Seconds:      int64(wholeSeconds),
			Nanoseconds:  int64((fracSeconds - wholeSeconds) * 1e9),
			TotalSeconds: days * 86400,
		}
	}
	return p
}

// BuildReport packages the computed portions of an analysis. The narrative
// is attached separately so prose generation can fail, be skipped, or run
// late without touching the numbers.
func BuildReport(target, national domain.Metrics, findings []domain.Finding) domain.Report {
	return domain.Report{
		TargetMetrics:   ToPayload(target),
		NationalMetrics: ToPayload(national),
		Findings:        findings,
	}
}

// unconfiguredNarrative fills the prose sections when narrative was requested
// but no generator is wired (missing API key, narrative disabled).
func unconfiguredNarrative() *domain.NarrativeSections {
	return &domain.NarrativeSections{
		TargetSummary:      "LLM服务未配置或初始化失败：无法生成目标区域指标分析。",
		NationalSummary:    "LLM服务未配置或初始化失败：无法生成全国基准指标参考。",
		WeaknessAssessment: "LLM服务未配置或初始化失败：无法生成详细薄弱点评估报告。",
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
