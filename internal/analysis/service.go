package analysis

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haolun/policygraph-backend/internal/domain"
	"github.com/haolun/policygraph-backend/internal/platform/logger"
)

// Store is the read contract the analysis core needs from the policy graph.
type Store interface {
	// GetRegion resolves a region with its direct parent; a missing region
	// is a client error.
	GetRegion(ctx context.Context, name string) (*domain.Region, error)
	// FetchScopedPolicies returns the de-duplicated in-force policies
	// applicable in any of the pool regions, after categorical filters.
	FetchScopedPolicies(ctx context.Context, poolRegions []string, filters domain.Filters) ([]domain.ScopedPolicy, error)
	// PoolRegions applies the scope-inheritance rule table.
	PoolRegions(region domain.Region) []string
}

// NarrativeInput is everything the prose generator sees.
type NarrativeInput struct {
	RegionName      string
	QueryContext    string
	TargetMetrics   domain.MetricsPayload
	NationalMetrics domain.MetricsPayload
	Findings        []domain.Finding
	Thresholds      domain.ThresholdConfig
}

// NarrativeGenerator turns computed metrics and findings into report prose.
// Implementations are external and may be slow or unavailable; the service
// treats failure as a degraded report, never a failed one.
type NarrativeGenerator interface {
	Summarize(ctx context.Context, in NarrativeInput) (*domain.NarrativeSections, error)
}

// Request is the single analysis operation's input.
type Request struct {
	RegionName       string
	Filters          domain.Filters
	Thresholds       domain.ThresholdConfig
	IncludeNarrative bool
}

type Service struct {
	log              *logger.Logger
	store            Store
	narrative        NarrativeGenerator
	narrativeTimeout time.Duration
	now              func() time.Time
}

func NewService(log *logger.Logger, store Store, narrative NarrativeGenerator, narrativeTimeout time.Duration) *Service {
	if narrativeTimeout <= 0 {
		narrativeTimeout = 3 * time.Minute
	}
	return &Service{
		log:              log.With("service", "AnalysisService"),
		store:            store,
		narrative:        narrative,
		narrativeTimeout: narrativeTimeout,
		now:              time.Now,
	}
}

// AnalyzePolicyStrength resolves the target scope and the national baseline,
// aggregates both, assesses the target against the thresholds, and attaches
// narrative prose when requested. Metrics are complete before the narrative
// call starts, so a narrative failure degrades the report instead of
// failing it.
func (s *Service) AnalyzePolicyStrength(ctx context.Context, req Request) (*domain.Report, error) {
	now := s.now()

	var targetMetrics, nationalMetrics domain.Metrics

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.metricsForRegion(gctx, req.RegionName, req.Filters, now)
		if err != nil {
			return err
		}
		targetMetrics = m
		return nil
	})
	g.Go(func() error {
		// The baseline reuses the resolver with the national region; a graph
		// without that node yields legitimate empty baseline metrics.
		policies, err := s.store.FetchScopedPolicies(gctx, []string{domain.NationalRegionName}, req.Filters)
		if err != nil {
			return err
		}
		nationalMetrics = Aggregate(domain.NationalRegionName, policies, now)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	findings := Assess(targetMetrics, req.Thresholds, now)
	report := BuildReport(targetMetrics, nationalMetrics, findings)

	s.log.Info("policy strength analyzed",
		"region", req.RegionName,
		"target_policies", targetMetrics.PolicyCount,
		"national_policies", nationalMetrics.PolicyCount,
		"findings", len(findings),
	)

	if req.IncludeNarrative && s.narrative == nil {
		// The caller asked for prose but no generator is configured; mark the
		// sections explicitly instead of leaving them indistinguishable from
		// "not requested".
		report.Narrative = unconfiguredNarrative()
		report.NarrativeError = "narrative generator not configured"
	}
	if req.IncludeNarrative && s.narrative != nil {
		nctx, cancel := context.WithTimeout(ctx, s.narrativeTimeout)
		defer cancel()

		sections, err := s.narrative.Summarize(nctx, NarrativeInput{
			RegionName:      req.RegionName,
			QueryContext:    req.Filters.Describe(req.RegionName),
			TargetMetrics:   report.TargetMetrics,
			NationalMetrics: report.NationalMetrics,
			Findings:        findings,
			Thresholds:      req.Thresholds,
		})
		if err != nil {
			s.log.Warn("narrative generation failed; returning metrics without prose",
				"region", req.RegionName, "error", err)
			report.NarrativeError = err.Error()
		} else {
			report.Narrative = sections
		}
	}

	return &report, nil
}

func (s *Service) metricsForRegion(ctx context.Context, regionName string, filters domain.Filters, now time.Time) (domain.Metrics, error) {
	region, err := s.store.GetRegion(ctx, regionName)
	if err != nil {
		return domain.Metrics{}, err
	}
	pool := s.store.PoolRegions(*region)
	policies, err := s.store.FetchScopedPolicies(ctx, pool, filters)
	if err != nil {
		return domain.Metrics{}, err
	}
	return Aggregate(regionName, policies, now), nil
}
