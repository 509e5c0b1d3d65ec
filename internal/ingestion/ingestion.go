// Package ingestion turns the extracted policy CSV and the two mapping
// workbooks (tool categories, administrative area codes) into graph writes.
// Parsing is separated from loading so either half can be tested without a
// live store.
package ingestion

import (
	"context"
	"fmt"

	"github.com/haolun/policygraph-backend/internal/data/graph"
	"github.com/haolun/policygraph-backend/internal/platform/logger"
	"github.com/haolun/policygraph-backend/internal/platform/neo4jdb"
)

// Dataset is the fully parsed policy corpus, grouped by graph write pass.
type Dataset struct {
	Policies      []graph.PolicyRow
	Issuers       []graph.IssuerLink
	Topics        []graph.NameLink
	Beneficiaries []graph.NameLink
	Regions       []graph.NameLink
	Industries    []graph.IndustryLink
	Tools         []graph.ToolLink
}

type Loader struct {
	log    *logger.Logger
	client *neo4jdb.Client
}

func NewLoader(log *logger.Logger, client *neo4jdb.Client) *Loader {
	return &Loader{log: log.With("service", "Loader"), client: client}
}

// LoadDataset runs the policy write passes in dependency order: policies
// first, then every edge pass against the now-existing Policy nodes.
func (l *Loader) LoadDataset(ctx context.Context, ds *Dataset) error {
	if err := graph.UpsertPolicies(ctx, l.client, ds.Policies); err != nil {
		return fmt.Errorf("ingestion: upsert policies: %w", err)
	}
	if err := graph.LinkIssuers(ctx, l.client, ds.Issuers); err != nil {
		return fmt.Errorf("ingestion: link issuers: %w", err)
	}
	named := []struct {
		label string
		links []graph.NameLink
	}{
		{"PolicyTopic", ds.Topics},
		{"TargetBeneficiary", ds.Beneficiaries},
		{"GeographicRegion", ds.Regions},
	}
	for _, n := range named {
		if err := graph.LinkNamed(ctx, l.client, n.label, n.links); err != nil {
			return fmt.Errorf("ingestion: link %s: %w", n.label, err)
		}
	}
	if err := graph.LinkIndustries(ctx, l.client, ds.Industries); err != nil {
		return fmt.Errorf("ingestion: link industries: %w", err)
	}
	if err := graph.LinkTools(ctx, l.client, ds.Tools); err != nil {
		return fmt.Errorf("ingestion: link tools: %w", err)
	}
	l.log.Info("policy dataset loaded",
		"policies", len(ds.Policies),
		"issuer_links", len(ds.Issuers),
		"tool_links", len(ds.Tools),
	)
	return nil
}

// LoadToolCategories applies the tool -> category mapping workbook.
func (l *Loader) LoadToolCategories(ctx context.Context, categories map[string]string) error {
	if err := graph.SetToolCategories(ctx, l.client, categories); err != nil {
		return fmt.Errorf("ingestion: tool categories: %w", err)
	}
	l.log.Info("tool categories applied", "tools", len(categories))
	return nil
}

// LoadAreaCodes applies administrative-division attributes first, then the
// parent edges, so parents are resolvable by code when linking.
func (l *Loader) LoadAreaCodes(ctx context.Context, attrs []graph.RegionAttrs, parents []graph.ParentLink) error {
	if err := graph.SetRegionAttrs(ctx, l.client, attrs); err != nil {
		return fmt.Errorf("ingestion: region attrs: %w", err)
	}
	if err := graph.LinkRegionParents(ctx, l.client, parents); err != nil {
		return fmt.Errorf("ingestion: region parents: %w", err)
	}
	l.log.Info("area codes applied", "regions", len(attrs), "parent_links", len(parents))
	return nil
}
