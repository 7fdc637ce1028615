package graphql

import (
	"fmt"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/metrics"
	"github.com/dd0wney/cluso-pockets/pkg/pocket"
	"github.com/graphql-go/graphql"
)

// Source hands resolvers the index to answer from. *pocket.Holder satisfies it.
type Source interface {
	Require() (*pocket.Index, error)
}

// SchemaConfig carries optional schema dependencies.
type SchemaConfig struct {
	// Metrics, when set, counts entity lookups under surface "graphql".
	Metrics *metrics.Registry
	// Limits caps the pockets list. Nil uses DefaultLimitConfig.
	Limits *LimitConfig
}

// summary is the resolver source for the Summary type.
type summary struct {
	runID     string
	createdAt time.Time
	stats     pocket.Stats
}

// entityPocket is the resolver source for the EntityPocket type.
type entityPocket struct {
	entityID string
	pocket   *pocket.Pocket
}

// GenerateSchema builds the pocket query schema. Every resolver reads the
// index from src at execution time, so a reload is visible to the next query.
func GenerateSchema(src Source, cfg SchemaConfig) (graphql.Schema, error) {
	limits := cfg.Limits
	if limits == nil {
		limits = DefaultLimitConfig()
	}
	if err := ValidateLimitConfig(limits); err != nil {
		return graphql.Schema{}, err
	}

	pocketType := createPocketType()
	summaryType := createSummaryType()
	entityType := createEntityPocketType(pocketType)

	record := func(hit bool) {
		if cfg.Metrics != nil {
			cfg.Metrics.RecordPocketQuery("graphql", hit)
		}
	}

	queryFields := graphql.Fields{
		"pocketCount": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				ix, err := src.Require()
				if err != nil {
					return nil, err
				}
				return ix.PocketCount(), nil
			},
		},
		"pocketOf": &graphql.Field{
			Type: graphql.Int,
			Args: graphql.FieldConfigArgument{
				"entityId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				ix, err := src.Require()
				if err != nil {
					return nil, err
				}
				id, _ := p.Args["entityId"].(string)
				n, ok := ix.PocketOf(id)
				record(ok)
				if !ok {
					return nil, nil
				}
				return n, nil
			},
		},
		"isInPocket": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Boolean),
			Args: graphql.FieldConfigArgument{
				"entityId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				ix, err := src.Require()
				if err != nil {
					return nil, err
				}
				id, _ := p.Args["entityId"].(string)
				ok := ix.IsInPocket(id)
				record(ok)
				return ok, nil
			},
		},
		"entity": &graphql.Field{
			Type: graphql.NewNonNull(entityType),
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				ix, err := src.Require()
				if err != nil {
					return nil, err
				}
				id, _ := p.Args["id"].(string)
				out := entityPocket{entityID: id}
				if n, ok := ix.PocketOf(id); ok {
					pk, _ := ix.Pocket(n)
					out.pocket = &pk
				}
				record(out.pocket != nil)
				return out, nil
			},
		},
		"pocket": &graphql.Field{
			Type: pocketType,
			Args: graphql.FieldConfigArgument{
				"index": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				ix, err := src.Require()
				if err != nil {
					return nil, err
				}
				n, _ := p.Args["index"].(int)
				pk, ok := ix.Pocket(n)
				if !ok {
					return nil, nil
				}
				return pk, nil
			},
		},
		"pockets": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(pocketType))),
			Args: graphql.FieldConfigArgument{
				"limit":  &graphql.ArgumentConfig{Type: graphql.Int},
				"offset": &graphql.ArgumentConfig{Type: graphql.Int},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				ix, err := src.Require()
				if err != nil {
					return nil, err
				}
				limit := -1
				if v, ok := p.Args["limit"].(int); ok {
					limit = v
				}
				offset, _ := p.Args["offset"].(int)
				if offset < 0 {
					return nil, fmt.Errorf("offset must be non-negative, got %d", offset)
				}
				return window(ix.Pockets(), offset, applyLimit(limit, limits)), nil
			},
		},
		"summary": &graphql.Field{
			Type: graphql.NewNonNull(summaryType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				ix, err := src.Require()
				if err != nil {
					return nil, err
				}
				return summary{runID: ix.RunID(), createdAt: ix.CreatedAt(), stats: ix.Stats()}, nil
			},
		},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: queryFields,
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}

	return schema, nil
}

func window(ps []pocket.Pocket, offset, limit int) []pocket.Pocket {
	if offset >= len(ps) {
		return []pocket.Pocket{}
	}
	ps = ps[offset:]
	if limit < len(ps) {
		ps = ps[:limit]
	}
	return ps
}

func createPocketType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Pocket",
		Fields: graphql.Fields{
			"index": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if pk, ok := p.Source.(pocket.Pocket); ok {
						return pk.Index, nil
					}
					return nil, nil
				},
			},
			"size": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if pk, ok := p.Source.(pocket.Pocket); ok {
						return pk.Size(), nil
					}
					return nil, nil
				},
			},
			"color": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if pk, ok := p.Source.(pocket.Pocket); ok {
						return pk.Color, nil
					}
					return nil, nil
				},
			},
			"entities": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID))),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if pk, ok := p.Source.(pocket.Pocket); ok {
						return pk.Entities, nil
					}
					return nil, nil
				},
			},
		},
	})
}

func createEntityPocketType(pocketType *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "EntityPocket",
		Fields: graphql.Fields{
			"entityId": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if e, ok := p.Source.(entityPocket); ok {
						return e.entityID, nil
					}
					return nil, nil
				},
			},
			"inPocket": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if e, ok := p.Source.(entityPocket); ok {
						return e.pocket != nil, nil
					}
					return nil, nil
				},
			},
			"pocket": &graphql.Field{
				Type: pocketType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if e, ok := p.Source.(entityPocket); ok && e.pocket != nil {
						return *e.pocket, nil
					}
					return nil, nil
				},
			},
		},
	})
}

func createSummaryType() *graphql.Object {
	stat := func(get func(pocket.Stats) int) *graphql.Field {
		return &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if s, ok := p.Source.(summary); ok {
					return get(s.stats), nil
				}
				return nil, nil
			},
		}
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Summary",
		Fields: graphql.Fields{
			"runId": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if s, ok := p.Source.(summary); ok {
						return s.runID, nil
					}
					return nil, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if s, ok := p.Source.(summary); ok {
						return s.createdAt.UTC().Format(time.RFC3339), nil
					}
					return nil, nil
				},
			},
			"entities":          stat(func(s pocket.Stats) int { return s.Entities }),
			"concaveLinks":      stat(func(s pocket.Stats) int { return s.ConcaveLinks }),
			"pockets":           stat(func(s pocket.Stats) int { return s.Pockets }),
			"entitiesInPockets": stat(func(s pocket.Stats) int { return s.EntitiesInPockets }),
			"largestPocket":     stat(func(s pocket.Stats) int { return s.LargestPocket }),
			"singletons":        stat(func(s pocket.Stats) int { return s.Singletons }),
		},
	})
}
