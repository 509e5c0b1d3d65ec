package graph

import (
	"context"

	"github.com/haolun/policygraph-backend/internal/domain"
	"github.com/haolun/policygraph-backend/internal/platform/neo4jdb"
)

// Store adapts the Neo4j client to the analysis layer's read contract.
type Store struct {
	client *neo4jdb.Client
}

func NewStore(client *neo4jdb.Client) *Store {
	return &Store{client: client}
}

func (s *Store) GetRegion(ctx context.Context, name string) (*domain.Region, error) {
	return GetRegion(ctx, s.client, name)
}

func (s *Store) FetchScopedPolicies(ctx context.Context, poolRegions []string, filters domain.Filters) ([]domain.ScopedPolicy, error) {
	return FetchScopedPolicies(ctx, s.client, poolRegions, filters)
}

func (s *Store) PoolRegions(region domain.Region) []string {
	return PoolRegions(region)
}
