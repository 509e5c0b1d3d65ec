package graph

import (
	"context"

	"github.com/haolun/policygraph-backend/internal/platform/logger"
	"github.com/haolun/policygraph-backend/internal/platform/neo4jdb"
)

var schemaStatements = []string{
	`CREATE CONSTRAINT policy_citation_unique IF NOT EXISTS FOR (p:Policy) REQUIRE p.citation IS UNIQUE`,
	`CREATE CONSTRAINT issuingbody_fullname_unique IF NOT EXISTS FOR (ib:IssuingBody) REQUIRE ib.fullName IS UNIQUE`,
	`CREATE CONSTRAINT policytopic_name_unique IF NOT EXISTS FOR (pt:PolicyTopic) REQUIRE pt.name IS UNIQUE`,
	`CREATE CONSTRAINT policytool_name_unique IF NOT EXISTS FOR (ptool:PolicyTool) REQUIRE ptool.name IS UNIQUE`,
	`CREATE CONSTRAINT targetbeneficiary_name_unique IF NOT EXISTS FOR (tb:TargetBeneficiary) REQUIRE tb.name IS UNIQUE`,
	`CREATE CONSTRAINT geographicregion_name_unique IF NOT EXISTS FOR (gr:GeographicRegion) REQUIRE gr.name IS UNIQUE`,
	`CREATE CONSTRAINT industryfocus_name_unique IF NOT EXISTS FOR (indf:IndustryFocus) REQUIRE indf.name IS UNIQUE`,
	`CREATE INDEX policy_title_idx IF NOT EXISTS FOR (p:Policy) ON (p.title)`,
	`CREATE INDEX policytool_category_idx IF NOT EXISTS FOR (ptool:PolicyTool) ON (ptool.category)`,
	`CREATE INDEX geographicregion_code_idx IF NOT EXISTS FOR (gr:GeographicRegion) ON (gr.code)`,
	`CREATE INDEX geographicregion_level_idx IF NOT EXISTS FOR (gr:GeographicRegion) ON (gr.level)`,
	`CREATE INDEX industryfocus_code_idx IF NOT EXISTS FOR (indf:IndustryFocus) ON (indf.code)`,
}

// EnsureSchema creates the uniqueness constraints backing identity-merge
// semantics, plus the lookup indexes the resolver leans on. Best-effort:
// restricted users get a warning per statement, not a failure.
func EnsureSchema(ctx context.Context, client *neo4jdb.Client, log *logger.Logger) {
	if client == nil || client.Driver == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := client.WriteSession(ctx)
	defer session.Close(ctx)

	for _, stmt := range schemaStatements {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			if log != nil {
				log.Warn("neo4j schema init failed (continuing)", "statement", stmt, "error", err)
			}
			continue
		}
		_, _ = res.Consume(ctx)
	}
}
