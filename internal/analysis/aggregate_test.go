package analysis

import (
	"testing"
	"time"

	"github.com/haolun/policygraph-backend/internal/domain"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestAggregate_EmptyScope(t *testing.T) {
	m := Aggregate("市A", nil, time.Now())

	if m.PolicyCount != 0 {
		t.Fatalf("expected count 0, got %d", m.PolicyCount)
	}
	if m.LatestAnnounceDate != nil {
		t.Fatalf("expected nil latest announce date")
	}
	if m.AverageAgeDays != nil {
		t.Fatalf("expected nil average age")
	}
	if m.Levels == nil || len(m.Levels) != 0 {
		t.Fatalf("expected empty levels, got %v", m.Levels)
	}
	if m.DistinctToolCount != 0 {
		t.Fatalf("expected 0 distinct tools, got %d", m.DistinctToolCount)
	}
	if m.ToolCategories == nil || len(m.ToolCategories) != 0 {
		t.Fatalf("expected empty categories, got %v", m.ToolCategories)
	}
	if m.QuantitativeDetails == nil || len(m.QuantitativeDetails) != 0 {
		t.Fatalf("expected empty details, got %v", m.QuantitativeDetails)
	}
}

func TestAggregate_AverageAgeExcludesMissingImplementDate(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	policies := []domain.ScopedPolicy{
		{Policy: domain.Policy{Citation: "a", ImplementDate: datePtr(now.AddDate(0, 0, -10))}},
		{Policy: domain.Policy{Citation: "b", ImplementDate: datePtr(now.AddDate(0, 0, -20))}},
		{Policy: domain.Policy{Citation: "c"}},
	}

	m := Aggregate("省B", policies, now)
	if m.AverageAgeDays == nil {
		t.Fatalf("expected average age")
	}
	if *m.AverageAgeDays != 15 {
		t.Fatalf("expected average 15 (null excluded, not zero), got %v", *m.AverageAgeDays)
	}
}

func TestAggregate_AllImplementDatesMissing(t *testing.T) {
	policies := []domain.ScopedPolicy{
		{Policy: domain.Policy{Citation: "a"}},
		{Policy: domain.Policy{Citation: "b"}},
	}
	m := Aggregate("省B", policies, time.Now())
	if m.AverageAgeDays != nil {
		t.Fatalf("expected nil average when no policy has an implement date")
	}
	if m.PolicyCount != 2 {
		t.Fatalf("expected count 2, got %d", m.PolicyCount)
	}
}

func TestAggregate_LatestAnnounceDate(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	older := now.AddDate(-1, 0, 0)
	newer := now.AddDate(0, -1, 0)
	policies := []domain.ScopedPolicy{
		{Policy: domain.Policy{Citation: "a", AnnounceDate: &older}},
		{Policy: domain.Policy{Citation: "b", AnnounceDate: &newer}},
		{Policy: domain.Policy{Citation: "c"}},
	}
	m := Aggregate("省B", policies, now)
	if m.LatestAnnounceDate == nil || !m.LatestAnnounceDate.Equal(newer) {
		t.Fatalf("expected latest %v, got %v", newer, m.LatestAnnounceDate)
	}
}

func TestAggregate_ToolSetsDeduplicate(t *testing.T) {
	policies := []domain.ScopedPolicy{
		{
			Policy: domain.Policy{Citation: "a", Level: "省级"},
			Tools: []domain.ToolUse{
				{ToolName: "财政直接补贴", Category: "财税支持", QuantitativeDetail: "[补贴金额]100万元"},
				{ToolName: "税额加计扣除", Category: "财税支持"},
			},
		},
		{
			Policy: domain.Policy{Citation: "b", Level: "地方规范性文件"},
			Tools: []domain.ToolUse{
				// Same tool and identical detail string as policy a: both
				// collapse in the distinct sets.
				{ToolName: "财政直接补贴", Category: "财税支持", QuantitativeDetail: "[补贴金额]100万元"},
			},
		},
	}

	m := Aggregate("市A", policies, time.Now())
	if m.DistinctToolCount != 2 {
		t.Fatalf("expected 2 distinct tools, got %d", m.DistinctToolCount)
	}
	if len(m.ToolCategories) != 1 || m.ToolCategories[0] != "财税支持" {
		t.Fatalf("unexpected categories: %v", m.ToolCategories)
	}
	if len(m.QuantitativeDetails) != 1 {
		t.Fatalf("expected identical detail strings to collapse, got %v", m.QuantitativeDetails)
	}
	if len(m.Levels) != 2 {
		t.Fatalf("expected 2 levels, got %v", m.Levels)
	}
}

func TestToPayload_EmptyMetricsSerializeClean(t *testing.T) {
	p := ToPayload(Aggregate("市A", nil, time.Now()))
	if p.LatestPolicyAnnounceDate != nil || p.AveragePolicyAgeInDays != nil || p.AveragePolicyAge != nil {
		t.Fatalf("expected nil scalars for empty scope")
	}
	if p.PolicyLevels == nil || p.ToolCategories == nil || p.QuantitativeDetails == nil {
		t.Fatalf("expected non-nil empty slices for JSON shape")
	}
}

func TestToPayload_DurationParts(t *testing.T) {
	avg := 365.25
	m := domain.Metrics{
		RegionName:     "省B",
		PolicyCount:    1,
		AverageAgeDays: &avg,
	}
	p := ToPayload(m)
	if p.AveragePolicyAge == nil {
		t.Fatalf("expected duration parts")
	}
	if p.AveragePolicyAge.Days != 365 {
		t.Fatalf("expected 365 whole days, got %d", p.AveragePolicyAge.Days)
	}
	if p.AveragePolicyAge.Seconds != 21600 {
		t.Fatalf("expected 0.25 day = 21600s, got %d", p.AveragePolicyAge.Seconds)
	}
	if p.AveragePolicyAge.TotalSeconds != avg*86400 {
		t.Fatalf("unexpected total seconds %v", p.AveragePolicyAge.TotalSeconds)
	}
}
