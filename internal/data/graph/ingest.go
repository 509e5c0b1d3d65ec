package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/haolun/policygraph-backend/internal/platform/neo4jdb"
)

// PolicyRow is one policy upsert. Dates travel as "YYYY-MM-DD" strings and
// become date properties in the store; empty means null.
type PolicyRow struct {
	Citation         string
	Title            string
	DocumentNumber   string
	AnnounceDate     string
	ImplementDate    string
	Level            string
	ValidationStatus string
	FullText         string
}

// IssuerLink pairs a policy with one promulgating body.
type IssuerLink struct {
	Citation  string
	FullName  string
	ShortName string
}

// NameLink pairs a policy with a named categorical node (topic, beneficiary,
// applicable region).
type NameLink struct {
	Citation string
	Name     string
}

// IndustryLink pairs a policy with an industry sector and its optional
// classification code.
type IndustryLink struct {
	Citation string
	Name     string
	Code     string
}

// ToolLink pairs a policy with a policy tool; the quantitative detail lives
// on the relationship, not the tool node.
type ToolLink struct {
	Citation           string
	ToolName           string
	QuantitativeDetail string
}

// UpsertPolicies merges policies by citation, updating attributes in place on
// re-ingestion. Never creates a duplicate node for a known citation.
func UpsertPolicies(ctx context.Context, client *neo4jdb.Client, rows []PolicyRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		batch = append(batch, map[string]any{
			"citation":          r.Citation,
			"title":             r.Title,
			"document_number":   r.DocumentNumber,
			"announce_date":     nullable(r.AnnounceDate),
			"implement_date":    nullable(r.ImplementDate),
			"level":             r.Level,
			"validation_status": r.ValidationStatus,
			"full_text":         r.FullText,
		})
	}
	return write(ctx, client, `
UNWIND $rows AS row
MERGE (p:Policy {citation: row.citation})
SET p.title = row.title,
    p.documentNumber = row.document_number,
    p.announceDate = CASE WHEN row.announce_date IS NOT NULL THEN date(row.announce_date) ELSE null END,
    p.implementDate = CASE WHEN row.implement_date IS NOT NULL THEN date(row.implement_date) ELSE null END,
    p.policyLevel = row.level,
    p.validationStatus = row.validation_status,
    p.fullText = row.full_text
`, map[string]any{"rows": batch})
}

// LinkIssuers merges issuing bodies by full name and attaches ISSUED_BY
// edges. Joint issuance produces one edge per body.
func LinkIssuers(ctx context.Context, client *neo4jdb.Client, links []IssuerLink) error {
	if len(links) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(links))
	for _, l := range links {
		if l.FullName == "" {
			continue
		}
		batch = append(batch, map[string]any{
			"citation":   l.Citation,
			"full_name":  l.FullName,
			"short_name": l.ShortName,
		})
	}
	return write(ctx, client, `
UNWIND $rows AS row
MATCH (p:Policy {citation: row.citation})
MERGE (ib:IssuingBody {fullName: row.full_name})
SET ib.shortName = row.short_name
MERGE (p)-[:ISSUED_BY]->(ib)
`, map[string]any{"rows": batch})
}

// linkableLabels guards the label/relationship interpolation below; Cypher
// cannot parameterize labels.
var linkableLabels = map[string]string{
	"PolicyTopic":       "HAS_TOPIC",
	"TargetBeneficiary": "TARGETS_BENEFICIARY",
	"GeographicRegion":  "APPLICABLE_IN",
}

// LinkNamed merges a categorical node by name and attaches the relationship
// type registered for the label.
func LinkNamed(ctx context.Context, client *neo4jdb.Client, label string, links []NameLink) error {
	relType, ok := linkableLabels[label]
	if !ok {
		return fmt.Errorf("graph: unsupported link label %q", label)
	}
	if len(links) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(links))
	for _, l := range links {
		if l.Name == "" {
			continue
		}
		batch = append(batch, map[string]any{"citation": l.Citation, "name": l.Name})
	}
	query := fmt.Sprintf(`
UNWIND $rows AS row
MATCH (p:Policy {citation: row.citation})
MERGE (n:%s {name: row.name})
MERGE (p)-[:%s]->(n)
`, label, relType)
	return write(ctx, client, query, map[string]any{"rows": batch})
}

// LinkIndustries merges IndustryFocus nodes, setting the classification code
// (null when the sector has no mapping).
func LinkIndustries(ctx context.Context, client *neo4jdb.Client, links []IndustryLink) error {
	if len(links) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(links))
	for _, l := range links {
		if l.Name == "" {
			continue
		}
		batch = append(batch, map[string]any{
			"citation": l.Citation,
			"name":     l.Name,
			"code":     nullable(l.Code),
		})
	}
	return write(ctx, client, `
UNWIND $rows AS row
MATCH (p:Policy {citation: row.citation})
MERGE (indf:IndustryFocus {name: row.name})
SET indf.code = row.code
MERGE (p)-[:FOCUSES_ON_INDUSTRY]->(indf)
`, map[string]any{"rows": batch})
}

// LinkTools merges PolicyTool nodes and APPLIES_TOOL edges, writing the
// quantitative detail onto the edge (null when none was extracted).
func LinkTools(ctx context.Context, client *neo4jdb.Client, links []ToolLink) error {
	if len(links) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(links))
	for _, l := range links {
		if l.ToolName == "" {
			continue
		}
		batch = append(batch, map[string]any{
			"citation": l.Citation,
			"tool":     l.ToolName,
			"detail":   nullable(l.QuantitativeDetail),
		})
	}
	return write(ctx, client, `
UNWIND $rows AS row
MATCH (p:Policy {citation: row.citation})
MERGE (ptool:PolicyTool {name: row.tool})
MERGE (p)-[r:APPLIES_TOOL]->(ptool)
SET r.quantitativeDetail = row.detail
`, map[string]any{"rows": batch})
}

// SetToolCategories applies the tool -> category mapping pass to existing
// PolicyTool nodes.
func SetToolCategories(ctx context.Context, client *neo4jdb.Client, categories map[string]string) error {
	if len(categories) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(categories))
	for name, category := range categories {
		if name == "" {
			continue
		}
		batch = append(batch, map[string]any{"name": name, "category": nullable(category)})
	}
	return write(ctx, client, `
UNWIND $rows AS row
MATCH (ptool:PolicyTool {name: row.name})
SET ptool.category = row.category
`, map[string]any{"rows": batch})
}

// RegionAttrs is one administrative-division attribute update. A nil Level
// leaves any existing level untouched.
type RegionAttrs struct {
	Name  string
	Code  string
	Level *int
}

// SetRegionAttrs writes code and level onto existing GeographicRegion nodes.
func SetRegionAttrs(ctx context.Context, client *neo4jdb.Client, rows []RegionAttrs) error {
	if len(rows) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		if r.Name == "" {
			continue
		}
		var level any
		if r.Level != nil {
			level = int64(*r.Level)
		}
		batch = append(batch, map[string]any{
			"name":  r.Name,
			"code":  nullable(r.Code),
			"level": level,
		})
	}
	return write(ctx, client, `
UNWIND $rows AS row
MATCH (gr:GeographicRegion {name: row.name})
SET gr.code = row.code
FOREACH (_ IN CASE WHEN row.level IS NULL THEN [] ELSE [1] END | SET gr.level = row.level)
`, map[string]any{"rows": batch})
}

// ParentLink nests one region under its parent via the parent's
// administrative code.
type ParentLink struct {
	ChildName  string
	ParentCode string
}

// LinkRegionParents creates IS_SUBREGION_OF edges. Rows whose parent code is
// unknown to the graph simply match nothing.
func LinkRegionParents(ctx context.Context, client *neo4jdb.Client, links []ParentLink) error {
	if len(links) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(links))
	for _, l := range links {
		if l.ChildName == "" || l.ParentCode == "" {
			continue
		}
		batch = append(batch, map[string]any{"child": l.ChildName, "parent_code": l.ParentCode})
	}
	return write(ctx, client, `
UNWIND $rows AS row
MATCH (child:GeographicRegion {name: row.child})
MATCH (parent:GeographicRegion {code: row.parent_code})
MERGE (child)-[:IS_SUBREGION_OF]->(parent)
`, map[string]any{"rows": batch})
}

func write(ctx context.Context, client *neo4jdb.Client, query string, params map[string]any) error {
	if client == nil || client.Driver == nil {
		return fmt.Errorf("graph: client not initialized")
	}
	session := client.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
