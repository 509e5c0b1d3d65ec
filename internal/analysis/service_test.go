package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/haolun/policygraph-backend/internal/domain"
	"github.com/haolun/policygraph-backend/internal/platform/apierr"
	"github.com/haolun/policygraph-backend/internal/platform/logger"
)

// fakeStore serves a small in-memory graph: regions with parents, policies
// keyed by the region they are applicable in.
type fakeStore struct {
	regions  map[string]domain.Region
	policies map[string][]domain.ScopedPolicy
}

func (f *fakeStore) GetRegion(_ context.Context, name string) (*domain.Region, error) {
	r, ok := f.regions[name]
	if !ok {
		return nil, apierr.RegionNotFound(name)
	}
	return &r, nil
}

func (f *fakeStore) FetchScopedPolicies(_ context.Context, pool []string, _ domain.Filters) ([]domain.ScopedPolicy, error) {
	seen := map[string]bool{}
	var out []domain.ScopedPolicy
	for _, region := range pool {
		for _, p := range f.policies[region] {
			if seen[p.Citation] {
				continue
			}
			seen[p.Citation] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) PoolRegions(region domain.Region) []string {
	switch {
	case region.Name == domain.NationalRegionName:
		return []string{region.Name}
	case region.Level == domain.RegionLevelMunicipal && region.ParentName != "":
		return []string{region.Name, region.ParentName}
	default:
		return []string{region.Name}
	}
}

type fakeNarrative struct {
	sections *domain.NarrativeSections
	err      error
	called   bool
}

func (f *fakeNarrative) Summarize(_ context.Context, _ NarrativeInput) (*domain.NarrativeSections, error) {
	f.called = true
	return f.sections, f.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func inForce(citation string) domain.ScopedPolicy {
	return domain.ScopedPolicy{Policy: domain.Policy{
		Citation:         citation,
		ValidationStatus: domain.StatusInForce,
	}}
}

func scenarioStore() *fakeStore {
	shared := inForce("CLI.4.SHARED")
	return &fakeStore{
		regions: map[string]domain.Region{
			"市A": {Name: "市A", Level: domain.RegionLevelMunicipal, ParentName: "省B"},
			"省B": {Name: "省B", Level: domain.RegionLevelProvincial},
			domain.NationalRegionName: {Name: domain.NationalRegionName, Level: domain.RegionLevelNational},
		},
		policies: map[string][]domain.ScopedPolicy{
			"市A": {inForce("CLI.2.C1"), shared},
			"省B": {inForce("CLI.4.P1"), inForce("CLI.4.P2"), shared},
			domain.NationalRegionName: {inForce("CLI.1.N1")},
		},
	}
}

func TestAnalyze_MunicipalScopeUnionsProvincialWithoutDoubleCounting(t *testing.T) {
	// 市A has 2 own policies, 省B has 3, one of which also applies in 市A:
	// the union is exactly 4 distinct policies.
	svc := NewService(testLogger(t), scenarioStore(), nil, 0)

	report, err := svc.AnalyzePolicyStrength(context.Background(), Request{RegionName: "市A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TargetMetrics.NumberOfPolicies != 4 {
		t.Fatalf("expected 4 distinct policies in scope, got %d", report.TargetMetrics.NumberOfPolicies)
	}
	if report.NationalMetrics.NumberOfPolicies != 1 {
		t.Fatalf("expected national baseline of 1, got %d", report.NationalMetrics.NumberOfPolicies)
	}
}

func TestAnalyze_ProvincialScopeDoesNotInheritNational(t *testing.T) {
	svc := NewService(testLogger(t), scenarioStore(), nil, 0)

	report, err := svc.AnalyzePolicyStrength(context.Background(), Request{RegionName: "省B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TargetMetrics.NumberOfPolicies != 3 {
		t.Fatalf("expected 3 provincial policies (no national inheritance), got %d", report.TargetMetrics.NumberOfPolicies)
	}
}

func TestAnalyze_UnknownRegionIsClientError(t *testing.T) {
	svc := NewService(testLogger(t), scenarioStore(), nil, 0)

	_, err := svc.AnalyzePolicyStrength(context.Background(), Request{RegionName: "不存在的区域"})
	if err == nil {
		t.Fatalf("expected error for unknown region")
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != apierr.CodeRegionNotFound {
		t.Fatalf("expected region_not_found, got %v", err)
	}
}

func TestAnalyze_EmptyScopeYieldsNoDataSentinelNotError(t *testing.T) {
	store := scenarioStore()
	store.regions["空市"] = domain.Region{Name: "空市", Level: domain.RegionLevelMunicipal}
	svc := NewService(testLogger(t), store, nil, 0)

	report, err := svc.AnalyzePolicyStrength(context.Background(), Request{
		RegionName: "空市",
		Thresholds: domain.ThresholdConfig{MinPolicies: intPtr(5)},
	})
	if err != nil {
		t.Fatalf("empty scope must not be an error: %v", err)
	}
	if report.TargetMetrics.NumberOfPolicies != 0 {
		t.Fatalf("expected 0 policies, got %d", report.TargetMetrics.NumberOfPolicies)
	}
	if len(report.Findings) != 1 || report.Findings[0].Kind != domain.FindingNoData {
		t.Fatalf("expected no-data sentinel, got %+v", report.Findings)
	}
}

func TestAnalyze_NarrativeFailureDegradesReport(t *testing.T) {
	gen := &fakeNarrative{err: fmt.Errorf("upstream 503")}
	svc := NewService(testLogger(t), scenarioStore(), gen, time.Second)

	report, err := svc.AnalyzePolicyStrength(context.Background(), Request{
		RegionName:       "市A",
		IncludeNarrative: true,
	})
	if err != nil {
		t.Fatalf("narrative failure must not fail the report: %v", err)
	}
	if !gen.called {
		t.Fatalf("expected narrative generator to be invoked")
	}
	if report.Narrative != nil {
		t.Fatalf("expected no narrative sections on failure")
	}
	if report.NarrativeError == "" {
		t.Fatalf("expected narrative error to be retained for diagnostics")
	}
	if report.TargetMetrics.NumberOfPolicies != 4 {
		t.Fatalf("metrics must survive narrative failure, got %d", report.TargetMetrics.NumberOfPolicies)
	}
}

func TestAnalyze_NarrativeRequestedWithoutGeneratorIsMarkedUnavailable(t *testing.T) {
	// Narrative requested but no generator wired (missing API key): the
	// sections must say so explicitly rather than mimic "not requested".
	svc := NewService(testLogger(t), scenarioStore(), nil, 0)

	report, err := svc.AnalyzePolicyStrength(context.Background(), Request{
		RegionName:       "市A",
		IncludeNarrative: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Narrative == nil {
		t.Fatalf("expected explicit unavailable sections")
	}
	for _, section := range []string{
		report.Narrative.TargetSummary,
		report.Narrative.NationalSummary,
		report.Narrative.WeaknessAssessment,
	} {
		if !strings.Contains(section, "LLM服务未配置") {
			t.Fatalf("section should name the unconfigured service, got %q", section)
		}
	}
	if report.NarrativeError == "" {
		t.Fatalf("expected narrative error to record the unconfigured generator")
	}
	if report.TargetMetrics.NumberOfPolicies != 4 {
		t.Fatalf("metrics must be unaffected, got %d", report.TargetMetrics.NumberOfPolicies)
	}
}

func TestAnalyze_NarrativeSkippedWhenNotRequested(t *testing.T) {
	gen := &fakeNarrative{sections: &domain.NarrativeSections{TargetSummary: "x"}}
	svc := NewService(testLogger(t), scenarioStore(), gen, time.Second)

	report, err := svc.AnalyzePolicyStrength(context.Background(), Request{RegionName: "市A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.called {
		t.Fatalf("narrative generator must not run when not requested")
	}
	if report.Narrative != nil {
		t.Fatalf("expected nil narrative")
	}
}
