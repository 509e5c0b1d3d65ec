package domain

import "time"

// Metrics is the aggregate tuple computed over one resolved policy scope.
// Scalar fields are nil when the scope is empty or no policy carries the
// source attribute.
type Metrics struct {
	RegionName          string
	PolicyCount         int
	LatestAnnounceDate  *time.Time
	AverageAgeDays      *float64
	Levels              []string
	DistinctToolCount   int
	ToolCategories      []string
	QuantitativeDetails []string
}

// ThresholdConfig is the per-dimension assessment configuration. Nil fields
// mean "no requirement". Unknown keys are rejected at the decoding boundary.
type ThresholdConfig struct {
	MinPolicies                 *int     `json:"min_policies,omitempty" yaml:"min_policies,omitempty"`
	MaxAvgPolicyAgeDays         *float64 `json:"max_avg_policy_age_days,omitempty" yaml:"max_avg_policy_age_days,omitempty"`
	LatestPolicyMinRecencyDays  *int     `json:"latest_policy_min_recency_days,omitempty" yaml:"latest_policy_min_recency_days,omitempty"`
	RequiredLevelsAny           []string `json:"required_levels_any,omitempty" yaml:"required_levels_any,omitempty"`
	MinDistinctTools            *int     `json:"min_distinct_tools,omitempty" yaml:"min_distinct_tools,omitempty"`
	MinQuantitativeDetailsCount *int     `json:"min_quantitative_details_count,omitempty" yaml:"min_quantitative_details_count,omitempty"`
}

// FindingKind distinguishes concrete weaknesses from the two sentinel
// outcomes. Assess never returns an empty list: callers always get either
// weaknesses, one satisfied sentinel, or one no-data sentinel.
type FindingKind string

const (
	FindingWeakness  FindingKind = "weakness"
	FindingSatisfied FindingKind = "satisfied"
	FindingNoData    FindingKind = "no_data"
)

// Finding is one assessment outcome. Weakness findings carry the dimension
// plus the observed and threshold values rendered as strings; sentinels
// carry only the message.
type Finding struct {
	Kind      FindingKind `json:"kind"`
	Dimension string      `json:"dimension,omitempty"`
	Observed  string      `json:"observed,omitempty"`
	Threshold string      `json:"threshold,omitempty"`
	Message   string      `json:"message"`
}

// Threshold dimensions, in evaluation order.
const (
	DimPolicyCount         = "policy_count"
	DimAverageAge          = "average_policy_age"
	DimLatestRecency       = "latest_policy_recency"
	DimRequiredLevels      = "required_levels"
	DimDistinctTools       = "distinct_tools"
	DimQuantitativeDetails = "quantitative_details"
)
