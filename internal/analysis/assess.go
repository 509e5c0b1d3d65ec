package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/haolun/policygraph-backend/internal/domain"
)

// Sentinel messages, fixed by the report contract.
const (
	MsgNoData    = "指定范围内未查询到有效政策，或政策指标数据不足。"
	MsgSatisfied = "当前观察维度下，政策支持度相对满足用户设定的阈值要求。"
)

const daysPerYear = 365.25

// Assess evaluates every configured threshold dimension against the metrics
// tuple, in table order, without short-circuiting. It never returns an empty
// list: the result is concrete weaknesses, the single satisfied sentinel, or
// the single no-data sentinel.
func Assess(metrics domain.Metrics, thresholds domain.ThresholdConfig, now time.Time) []domain.Finding {
	if metrics.PolicyCount == 0 && metrics.LatestAnnounceDate == nil {
		return []domain.Finding{{Kind: domain.FindingNoData, Message: MsgNoData}}
	}

	var findings []domain.Finding

	if thresholds.MinPolicies != nil && metrics.PolicyCount < *thresholds.MinPolicies {
		findings = append(findings, domain.Finding{
			Kind:      domain.FindingWeakness,
			Dimension: domain.DimPolicyCount,
			Observed:  strconv.Itoa(metrics.PolicyCount),
			Threshold: strconv.Itoa(*thresholds.MinPolicies),
			Message:   fmt.Sprintf("政策数量不足: %d (阈值至少 %d)", metrics.PolicyCount, *thresholds.MinPolicies),
		})
	}

	if thresholds.MaxAvgPolicyAgeDays != nil && metrics.AverageAgeDays != nil && *metrics.AverageAgeDays > *thresholds.MaxAvgPolicyAgeDays {
		observedYears := *metrics.AverageAgeDays / daysPerYear
		limitYears := *thresholds.MaxAvgPolicyAgeDays / daysPerYear
		findings = append(findings, domain.Finding{
			Kind:      domain.FindingWeakness,
			Dimension: domain.DimAverageAge,
			Observed:  fmt.Sprintf("%.1f", *metrics.AverageAgeDays),
			Threshold: fmt.Sprintf("%.1f", *thresholds.MaxAvgPolicyAgeDays),
			Message:   fmt.Sprintf("政策平均年龄过大: %.1f年 (阈值不超过 %.1f年)", observedYears, limitYears),
		})
	}

	if thresholds.LatestPolicyMinRecencyDays != nil {
		limit := *thresholds.LatestPolicyMinRecencyDays
		if metrics.LatestAnnounceDate != nil {
			daysSince := int(now.Sub(*metrics.LatestAnnounceDate).Hours() / 24)
			if daysSince > limit {
				findings = append(findings, domain.Finding{
					Kind:      domain.FindingWeakness,
					Dimension: domain.DimLatestRecency,
					Observed:  strconv.Itoa(daysSince),
					Threshold: strconv.Itoa(limit),
					Message:   fmt.Sprintf("最新政策发布距今过久: %d天 (阈值不超过 %d天)", daysSince, limit),
				})
			}
		} else if metrics.PolicyCount >= minPoliciesOrZero(thresholds) {
			// Enough policies exist but none carries an announce date; the
			// recency requirement cannot be verified, which is itself a
			// finding. Below the policy-count minimum the count finding
			// already covers the scope.
			findings = append(findings, domain.Finding{
				Kind:      domain.FindingWeakness,
				Dimension: domain.DimLatestRecency,
				Observed:  "unknown",
				Threshold: strconv.Itoa(limit),
				Message:   fmt.Sprintf("无法确定最新政策时效性 (阈值要求最新政策距今不超过 %d天)", limit),
			})
		}
	}

	if len(thresholds.RequiredLevelsAny) > 0 {
		present := map[string]bool{}
		for _, lvl := range metrics.Levels {
			present[lvl] = true
		}
		any := false
		for _, required := range thresholds.RequiredLevelsAny {
			if present[required] {
				any = true
				break
			}
		}
		if !any {
			observed := "无"
			if len(metrics.Levels) > 0 {
				observed = strings.Join(metrics.Levels, ", ")
			}
			findings = append(findings, domain.Finding{
				Kind:      domain.FindingWeakness,
				Dimension: domain.DimRequiredLevels,
				Observed:  observed,
				Threshold: strings.Join(thresholds.RequiredLevelsAny, ", "),
				Message:   fmt.Sprintf("缺少关键政策层级中的任何一种: %s (现有: %s)", strings.Join(thresholds.RequiredLevelsAny, ", "), observed),
			})
		}
	}

	if thresholds.MinDistinctTools != nil && metrics.DistinctToolCount < *thresholds.MinDistinctTools {
		findings = append(findings, domain.Finding{
			Kind:      domain.FindingWeakness,
			Dimension: domain.DimDistinctTools,
			Observed:  strconv.Itoa(metrics.DistinctToolCount),
			Threshold: strconv.Itoa(*thresholds.MinDistinctTools),
			Message:   fmt.Sprintf("政策工具种类不足: %d (阈值至少 %d)", metrics.DistinctToolCount, *thresholds.MinDistinctTools),
		})
	}

	if thresholds.MinQuantitativeDetailsCount != nil && len(metrics.QuantitativeDetails) < *thresholds.MinQuantitativeDetailsCount {
		findings = append(findings, domain.Finding{
			Kind:      domain.FindingWeakness,
			Dimension: domain.DimQuantitativeDetails,
			Observed:  strconv.Itoa(len(metrics.QuantitativeDetails)),
			Threshold: strconv.Itoa(*thresholds.MinQuantitativeDetailsCount),
			Message:   fmt.Sprintf("包含具体量化支持的政策不足: %d (阈值至少 %d)", len(metrics.QuantitativeDetails), *thresholds.MinQuantitativeDetailsCount),
		})
	}

	if len(findings) == 0 {
		return []domain.Finding{{Kind: domain.FindingSatisfied, Message: MsgSatisfied}}
	}
	return findings
}

func minPoliciesOrZero(thresholds domain.ThresholdConfig) int {
	if thresholds.MinPolicies == nil {
		return 0
	}
	return *thresholds.MinPolicies
}
