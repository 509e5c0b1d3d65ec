package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/haolun/policygraph-backend/internal/domain"
	"github.com/haolun/policygraph-backend/internal/platform/apierr"
	"github.com/haolun/policygraph-backend/internal/platform/neo4jdb"
)

// GetRegion resolves a GeographicRegion by name, with its direct parent one
// hop up IS_SUBREGION_OF. Missing region is a client error, not a store
// failure.
func GetRegion(ctx context.Context, client *neo4jdb.Client, name string) (*domain.Region, error) {
	session := client.ReadSession(ctx)
	defer session.Close(ctx)

	record, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (g:GeographicRegion {name: $name})
OPTIONAL MATCH (g)-[:IS_SUBREGION_OF]->(parent:GeographicRegion)
RETURN g.name AS name, g.code AS code, g.level AS level, parent.name AS parent_name
`, map[string]any{"name": name})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			return res.Record(), nil
		}
		return nil, res.Err()
	})
	if err != nil {
		return nil, storeError("get region", err)
	}
	if record == nil {
		return nil, apierr.RegionNotFound(name)
	}

	rec := record.(*neo4j.Record)
	region := &domain.Region{Name: name}
	if v, ok := rec.Get("code"); ok {
		region.Code = asString(v)
	}
	if v, ok := rec.Get("level"); ok {
		region.Level = asInt(v)
	}
	if v, ok := rec.Get("parent_name"); ok {
		region.ParentName = asString(v)
	}
	return region, nil
}

// PoolRegions is the scope-inheritance rule table. The asymmetry is
// deliberate and mirrors the production query semantics: provinces do not
// pick up national policies, cities pick up their province but not the
// nation. Revisit here if that policy decision changes.
func PoolRegions(region domain.Region) []string {
	switch {
	case region.Name == domain.NationalRegionName:
		return []string{region.Name}
	case region.Level == domain.RegionLevelProvincial:
		return []string{region.Name}
	case region.Level == domain.RegionLevelMunicipal && region.ParentName != "":
		return []string{region.Name, region.ParentName}
	default:
		// Cities without a resolvable parent, and any other level, fall back
		// to directly applicable policies only.
		return []string{region.Name}
	}
}

// FetchScopedPolicies returns the de-duplicated in-force policies applicable
// in any of the pool regions, with their tool applications, after the
// categorical filters. An empty result is a valid outcome.
func FetchScopedPolicies(ctx context.Context, client *neo4jdb.Client, poolRegions []string, filters domain.Filters) ([]domain.ScopedPolicy, error) {
	conditions := []string{"g.name IN $region_names", "p.validationStatus = $in_force"}
	params := map[string]any{
		"region_names": poolRegions,
		"in_force":     domain.StatusInForce,
	}

	if topic := strings.TrimSpace(filters.Topic); topic != "" {
		conditions = append(conditions, "EXISTS((p)-[:HAS_TOPIC]->(:PolicyTopic {name: $topic}))")
		params["topic"] = topic
	}
	if beneficiary := strings.TrimSpace(filters.Beneficiary); beneficiary != "" {
		conditions = append(conditions, "EXISTS((p)-[:TARGETS_BENEFICIARY]->(:TargetBeneficiary {name: $beneficiary}))")
		params["beneficiary"] = beneficiary
	}
	if category := strings.TrimSpace(filters.ToolCategory); category != "" {
		conditions = append(conditions, `EXISTS {
    MATCH (p)-[:APPLIES_TOOL]->(pt_check:PolicyTool)
    WHERE pt_check.category = $tool_category
}`)
		params["tool_category"] = category
	}

	query := fmt.Sprintf(`
MATCH (p:Policy)-[:APPLICABLE_IN]->(g:GeographicRegion)
WHERE %s
WITH DISTINCT p
OPTIONAL MATCH (p)-[r:APPLIES_TOOL]->(tool:PolicyTool)
RETURN p.citation AS citation,
       p.title AS title,
       p.documentNumber AS document_number,
       p.announceDate AS announce_date,
       p.implementDate AS implement_date,
       p.policyLevel AS policy_level,
       p.validationStatus AS validation_status,
       [t IN collect(DISTINCT CASE
           WHEN tool IS NULL THEN null
           ELSE {name: tool.name, category: tool.category, detail: r.quantitativeDetail}
       END) WHERE t IS NOT NULL] AS tools
`, strings.Join(conditions, " AND "))

	session := client.ReadSession(ctx)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, storeError("fetch scoped policies", err)
	}

	rows := records.([]*neo4j.Record)
	policies := make([]domain.ScopedPolicy, 0, len(rows))
	for _, rec := range rows {
		sp := domain.ScopedPolicy{}
		if v, ok := rec.Get("citation"); ok {
			sp.Citation = asString(v)
		}
		if sp.Citation == "" {
			continue
		}
		if v, ok := rec.Get("title"); ok {
			sp.Title = asString(v)
		}
		if v, ok := rec.Get("document_number"); ok {
			sp.DocumentNumber = asString(v)
		}
		if v, ok := rec.Get("announce_date"); ok {
			sp.AnnounceDate = asDate(v)
		}
		if v, ok := rec.Get("implement_date"); ok {
			sp.ImplementDate = asDate(v)
		}
		if v, ok := rec.Get("policy_level"); ok {
			sp.Level = asString(v)
		}
		if v, ok := rec.Get("validation_status"); ok {
			sp.ValidationStatus = asString(v)
		}
		if v, ok := rec.Get("tools"); ok {
			sp.Tools = asTools(v)
		}
		policies = append(policies, sp)
	}
	return policies, nil
}

func asTools(v any) []domain.ToolUse {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	tools := make([]domain.ToolUse, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		tu := domain.ToolUse{
			ToolName:           asString(m["name"]),
			Category:           asString(m["category"]),
			QuantitativeDetail: asString(m["detail"]),
		}
		if tu.ToolName == "" {
			continue
		}
		tools = append(tools, tu)
	}
	return tools
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func asInt(v any) int {
	switch t := v.(type) {
	case int64:
		return int(t)
	case int:
		return t
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return 0
}

func asDate(v any) *time.Time {
	switch t := v.(type) {
	case dbtype.Date:
		tt := t.Time()
		return &tt
	case time.Time:
		return &t
	case string:
		if parsed, err := time.Parse("2006-01-02", strings.TrimSpace(t)); err == nil {
			return &parsed
		}
	}
	return nil
}

func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apierr.New(http.StatusGatewayTimeout, apierr.CodeStoreTimeout, fmt.Errorf("graph: %s: %w", op, err))
	}
	return apierr.New(http.StatusBadGateway, apierr.CodeStoreUnavailable, fmt.Errorf("graph: %s: %w", op, err))
}
