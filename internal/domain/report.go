package domain

// DurationParts is the portable rendering of a day-granularity duration,
// mirroring the {days, seconds, nanoseconds} shape the store's native
// duration type carries.
type DurationParts struct {
	Days         int64   `json:"days"`
	Seconds      int64   `json:"seconds"`
	Nanoseconds  int64   `json:"nanoseconds"`
	TotalSeconds float64 `json:"total_seconds"`
}

// MetricsPayload is the wire form of Metrics: dates as ISO-8601 strings,
// averages as both a day count and a duration struct, sets always non-nil.
type MetricsPayload struct {
	RegionName               string         `json:"regionName"`
	NumberOfPolicies         int            `json:"numberOfPolicies"`
	LatestPolicyAnnounceDate *string        `json:"latestPolicyAnnounceDate"`
	AveragePolicyAgeInDays   *float64       `json:"averagePolicyAgeInDays"`
	AveragePolicyAge         *DurationParts `json:"averagePolicyAge,omitempty"`
	PolicyLevels             []string       `json:"policyLevels"`
	NumberOfDistinctTools    int            `json:"numberOfDistinctTools"`
	ToolCategories           []string       `json:"toolCategories"`
	QuantitativeDetails      []string       `json:"quantitativeDetails"`
}

// NarrativeSections are the three prose sections produced by the narrative
// generator. Field names follow the upstream report contract.
type NarrativeSections struct {
	TargetSummary      string `json:"llm_target_metrics_summary"`
	NationalSummary    string `json:"llm_national_metrics_summary"`
	WeaknessAssessment string `json:"llm_weakness_assessment"`
}

// Report is the full analysis payload. The numeric portions are always
// populated. Narrative is nil when prose was not requested or the generation
// call failed; when prose was requested but no generator is configured it
// carries explicit unavailable markers. NarrativeError retains the cause in
// both degraded cases.
type Report struct {
	TargetMetrics   MetricsPayload     `json:"target_metrics"`
	NationalMetrics MetricsPayload     `json:"national_metrics"`
	Findings        []Finding          `json:"rule_based_weaknesses"`
	Narrative       *NarrativeSections `json:"narrative,omitempty"`
	NarrativeError  string             `json:"narrative_error,omitempty"`
}
