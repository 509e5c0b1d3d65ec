package analysis

import (
	"sort"
	"time"

	"github.com/haolun/policygraph-backend/internal/domain"
)

// Aggregate reduces a resolved policy scope into the metrics tuple. The
// empty scope yields count 0, nil scalars and empty sets by construction;
// policies missing a date are excluded from that metric only.
func Aggregate(regionName string, policies []domain.ScopedPolicy, now time.Time) domain.Metrics {
	m := domain.Metrics{
		RegionName:          regionName,
		PolicyCount:         len(policies),
		Levels:              []string{},
		ToolCategories:      []string{},
		QuantitativeDetails: []string{},
	}
	if len(policies) == 0 {
		return m
	}

	levels := map[string]bool{}
	toolNames := map[string]bool{}
	categories := map[string]bool{}
	details := map[string]bool{}

	var ageSumDays float64
	var ageCount int

	for _, p := range policies {
		if p.AnnounceDate != nil {
			if m.LatestAnnounceDate == nil || p.AnnounceDate.After(*m.LatestAnnounceDate) {
				m.LatestAnnounceDate = p.AnnounceDate
			}
		}
		if p.ImplementDate != nil {
			ageSumDays += daysBetween(*p.ImplementDate, now)
			ageCount++
		}
		if p.Level != "" {
			levels[p.Level] = true
		}
		for _, tu := range p.Tools {
			if tu.ToolName != "" {
				toolNames[tu.ToolName] = true
			}
			if tu.Category != "" {
				categories[tu.Category] = true
			}
			if tu.QuantitativeDetail != "" {
				details[tu.QuantitativeDetail] = true
			}
		}
	}

	if ageCount > 0 {
		avg := ageSumDays / float64(ageCount)
		m.AverageAgeDays = &avg
	}
	m.Levels = sortedKeys(levels)
	m.DistinctToolCount = len(toolNames)
	m.ToolCategories = sortedKeys(categories)
	m.QuantitativeDetails = sortedKeys(details)
	return m
}

// daysBetween counts whole calendar days from a to b, matching the store's
// day-granularity duration semantics.
func daysBetween(a, b time.Time) float64 {
	return float64(int(b.Sub(a).Hours() / 24))
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
